/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package liveness

import (
	"testing"

	"github.com/cloudwego/wasmflow/internal/cfg"
	"github.com/cloudwego/wasmflow/internal/irtest"
	"github.com/cloudwego/wasmflow/ir"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func set(vs ...uint32) LiveSet {
	ret := make(LiveSet)
	for _, v := range vs {
		ret.add(v)
	}
	return ret
}

func TestLiveSet_Ops(t *testing.T) {
	s := set(3, 1)
	require.True(t, s.add(2))
	require.False(t, s.add(2))
	require.True(t, s.remove(3))
	require.False(t, s.remove(3))
	require.Equal(t, []uint32{1, 2}, s.Slice())
	require.Equal(t, "{1, 2}", s.String())
	require.True(t, s.Equal(s.Clone()))
	require.False(t, s.Equal(set(1)))
	require.Equal(t, "{}", set().String())
}

func TestLiveness_StraightLine(t *testing.T) {
	fn := ir.NewFunction("straight", nil, nil)
	x := fn.AddVar(ir.I32)
	b := ir.NewBuilder(fn)
	s1 := b.LocalSet(x, b.I32(1))
	s2 := b.LocalSet(x, b.I32(2))
	b.Finish(b.Block("", s1, s2, b.Drop(b.LocalGet(x))))

	res, err := Compute(fn)
	require.NoError(t, err)
	require.Equal(t, 1, res.Graph.Len())
	require.Equal(t, []ir.Ref{s1}, res.Ineffective())

	ins := res.Graph.Block(0).Ins
	require.Len(t, ins, 3)
	require.False(t, ins[0].Effective)
	require.True(t, ins[1].Effective)
	require.True(t, ins[2].EndsLiveRange)
	require.Equal(t, "set 0 effective", ins[1].String())
	require.Empty(t, res.Live.In[0])
}

func TestLiveness_Loop(t *testing.T) {
	fn := ir.NewFunction("loop", []ir.Type{ir.I32}, nil)
	x := fn.AddVar(ir.I32)
	b := ir.NewBuilder(fn)
	body := b.Block("",
		b.LocalSet(x, b.Binary(ir.OpAdd, ir.I32, b.LocalGet(x), b.I32(1))),
		b.BrIf("l", b.LocalGet(0), ir.Nil),
	)
	b.Finish(b.Block("",
		b.LocalSet(x, b.I32(0)),
		b.Loop("l", body),
		b.Drop(b.LocalGet(x)),
	))

	res, err := Compute(fn)
	require.NoError(t, err)
	require.Equal(t, 4, res.Graph.Len())

	live := res.Live
	require.Equal(t, set(0), live.In[0])
	require.Equal(t, set(0, 1), live.Out[0])
	require.Equal(t, set(0, 1), live.In[1])
	require.Equal(t, set(0, 1), live.Out[1])
	require.Equal(t, set(1), live.In[2])
	require.Empty(t, live.Out[2])
	require.Equal(t, set(1), live.In[3])
	require.Equal(t, set(1), live.Out[3])

	/* the loop variable is written while the parameter is live */
	require.Equal(t, [][2]uint32{{0, 1}}, res.Interference.Edges())
	require.Empty(t, res.Ineffective())
	require.Contains(t, live.Dump(), "In:")
}

func TestLiveness_StoreBeforeBrIf(t *testing.T) {
	fn := ir.NewFunction("br-if", []ir.Type{ir.I32}, nil)
	x := fn.AddVar(ir.I32)
	b := ir.NewBuilder(fn)
	b.Finish(b.Block("",
		b.Block("out",
			b.LocalSet(x, b.I32(5)),
			b.BrIf("out", b.LocalGet(0), ir.Nil),
			b.LocalSet(x, b.I32(1)),
		),
		b.Drop(b.LocalGet(x)),
	))

	/* the first store leaves through the branch */
	res, err := Compute(fn)
	require.NoError(t, err)
	require.Equal(t, 3, res.Graph.Len())
	require.Equal(t, set(1), res.Live.Out[0])
	require.Empty(t, res.Live.In[2])
	require.True(t, res.Graph.Block(0).Ins[0].Effective)
	require.True(t, res.Graph.Block(2).Ins[0].Effective)
	require.Empty(t, res.Ineffective())
	require.True(t, res.Interference.Interferes(0, 1))
}

func TestInterference_Copies(t *testing.T) {
	build := func(copy bool) *ir.Function {
		fn := ir.NewFunction("copies", nil, nil)
		a := fn.AddVar(ir.I32)
		c := fn.AddVar(ir.I32)
		b := ir.NewBuilder(fn)
		val := b.I32(2)
		if copy {
			val = b.LocalGet(a)
		}
		return b.Finish(b.Block("",
			b.LocalSet(a, b.I32(1)),
			b.LocalSet(c, val),
			b.Drop(b.Binary(ir.OpAdd, ir.I32, b.LocalGet(a), b.LocalGet(c))),
		))
	}

	/* a copy holds the same value, so both can share a slot */
	res, err := Compute(build(true))
	require.NoError(t, err)
	require.False(t, res.Interference.Interferes(0, 1))
	ins := res.Graph.Block(0).Ins
	require.True(t, ins[2].IsCopy)
	require.Equal(t, "set 1 <- 0 effective", ins[2].String())

	/* a fresh value does not */
	res, err = Compute(build(false))
	require.NoError(t, err)
	require.True(t, res.Interference.Interferes(0, 1))
	require.True(t, res.Interference.Interferes(1, 0))
	require.Equal(t, []uint32{1}, res.Interference.Neighbors(0))
	require.Equal(t, 1, res.Interference.Degree(1))
}

func TestInterference_ZeroVariables(t *testing.T) {
	fn := ir.NewFunction("zeros", nil, nil)
	a := fn.AddVar(ir.I64)
	c := fn.AddVar(ir.I64)
	b := ir.NewBuilder(fn)
	b.Finish(b.Block("",
		b.Drop(b.Binary(ir.OpAdd, ir.I64, b.LocalGet(a), b.LocalGet(c))),
	))

	/* both still hold their initial zero */
	res, err := Compute(fn)
	require.NoError(t, err)
	require.Equal(t, set(0, 1), res.Live.In[0])
	require.False(t, res.Interference.Interferes(0, 1))
}

func TestInterference_Undirected(t *testing.T) {
	ig := NewInterference(4)
	ig.Add(0, 2)
	ig.Add(3, 2)
	ig.Add(1, 1)
	require.Equal(t, [][2]uint32{{0, 2}, {2, 3}}, ig.Edges())
	require.False(t, ig.Interferes(1, 1))

	g := ig.Undirected()
	require.Equal(t, 4, g.Nodes().Len())
	require.True(t, g.HasEdgeBetween(0, 2))
	require.True(t, g.HasEdgeBetween(2, 3))
	require.False(t, g.HasEdgeBetween(0, 3))
	require.Equal(t, 2, g.From(2).Len())
}

func TestCompute_Errors(t *testing.T) {
	fn := ir.NewFunction("bad", nil, nil)
	b := ir.NewBuilder(fn)
	b.Finish(b.Block("", b.LocalSet(3, b.I32(1))))
	_, err := Compute(fn)
	var le ir.LocalIndexError
	require.True(t, errors.As(err, &le))

	fn = ir.NewFunction("empty", nil, nil)
	res, err := Compute(fn)
	require.NoError(t, err)
	require.Equal(t, 1, res.Graph.Len())
	require.Empty(t, res.Interference.Edges())
}

// liveAfter returns, for every action of bb, the locals live right after it.
func liveAfter(bb *cfg.Block[Action], out LiveSet) []LiveSet {
	ret := make([]LiveSet, len(bb.Ins))
	live := out.Clone()
	for i := len(bb.Ins) - 1; i >= 0; i-- {
		ret[i] = live.Clone()
		if bb.Ins[i].Kind == Set {
			live.remove(bb.Ins[i].Index)
		} else {
			live.add(bb.Ins[i].Index)
		}
	}
	return ret
}

func TestLiveness_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fn := irtest.Function(t)
		res, err := Compute(fn)
		require.NoError(t, err)
		g, live := res.Graph, res.Live

		/* running the fixpoint again changes nothing */
		again := live.Clone()
		require.False(t, again.Iterate(g))
		require.True(t, again.Equal(live))

		/* the dataflow equations hold */
		for _, bb := range g.Blocks {
			out := make(LiveSet)
			for _, s := range bb.Succ {
				out.union(live.In[s])
			}
			require.True(t, out.Equal(live.Out[bb.Id]), "live-out of bb_%d", bb.Id)
			after := liveAfter(bb, out)
			in := out
			if len(bb.Ins) != 0 {
				in = after[0].Clone()
				if act := bb.Ins[0]; act.Kind == Set {
					in.remove(act.Index)
				} else {
					in.add(act.Index)
				}
			}
			require.True(t, in.Equal(live.In[bb.Id]), "live-in of bb_%d", bb.Id)
		}
	})
}

func TestInterference_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fn := irtest.Function(t)
		res, err := Compute(fn)
		require.NoError(t, err)
		ig := res.Interference
		n := fn.NumLocals()

		/* collect every pair of locals live at the same point */
		both := make([]bool, n*n)
		mark := func(ls LiveSet) {
			vs := ls.Slice()
			for _, a := range vs {
				for _, b := range vs {
					both[int(a)*n+int(b)] = true
				}
			}
		}

		/* check the flags, and that fresh values interfere with what is live */
		for _, bb := range res.Graph.Blocks {
			mark(res.Live.In[bb.Id])
			for i, ls := range liveAfter(bb, res.Live.Out[bb.Id]) {
				mark(ls)
				act := bb.Ins[i]
				if act.Kind == Get {
					continue
				}
				require.Equal(t, ls.Has(act.Index), act.Effective)
				if act.Effective && !act.IsCopy {
					for v := range ls {
						if v != act.Index {
							require.True(t, ig.Interferes(v, act.Index), "%d and %d", v, act.Index)
						}
					}
				}
			}
		}

		/* locals never live together never interfere */
		for _, e := range ig.Edges() {
			require.True(t, both[int(e[0])*n+int(e[1])], "%d and %d are never live together", e[0], e[1])
		}
	})
}
