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

package cfg

import (
	"testing"

	"github.com/cloudwego/wasmflow/ir"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func buildNodes(t *testing.T, fn *ir.Function) *Graph[ir.Ref] {
	g, err := Build[ir.Ref](fn, fn.Body, Nodes)
	require.NoError(t, err)
	return g
}

func succs[T any](g *Graph[T]) [][]int {
	ret := make([][]int, g.Len())
	for i, bb := range g.Blocks {
		ret[i] = bb.Succ
	}
	return ret
}

func TestBuild_IfElse(t *testing.T) {
	fn := ir.NewFunction("diamond", nil, nil)
	x := fn.AddVar(ir.I32)
	b := ir.NewBuilder(fn)
	c := b.I32(1)
	s1 := b.LocalSet(x, b.I32(10))
	s2 := b.LocalSet(x, b.I32(20))
	get := b.LocalGet(x)
	b.Finish(b.Block("", b.If(c, s1, s2), b.Drop(get)))

	g := buildNodes(t, fn)
	require.Equal(t, 4, g.Len())
	require.Equal(t, 0, g.Entry)
	require.Equal(t, [][]int{{1, 2}, {3}, {3}, nil}, succs(g))
	require.Equal(t, []int{1, 2}, g.Block(3).Pred)
	require.Equal(t, []ir.Ref{c}, g.Block(0).Ins)
	require.Equal(t, s1, g.Block(1).Ins[1])
	require.Equal(t, s2, g.Block(2).Ins[1])
	require.Equal(t, get, g.Block(3).Ins[0])
	require.Equal(t, []int{0, 2, 1, 3}, g.ReversePostOrder())
	require.Equal(t, []int{3}, g.Exits())
	require.Equal(t, 4, g.NumEdges())
}

func TestBuild_OneArmedIf(t *testing.T) {
	fn := ir.NewFunction("one-armed", []ir.Type{ir.I32}, nil)
	b := ir.NewBuilder(fn)
	b.Finish(b.Block("", b.If(b.LocalGet(0), b.Drop(b.I32(1)), ir.Nil), b.Nop()))

	g := buildNodes(t, fn)
	require.Equal(t, 3, g.Len())
	require.Equal(t, [][]int{{1, 2}, {2}, nil}, succs(g))
}

func TestBuild_LoopBackEdge(t *testing.T) {
	fn := ir.NewFunction("loop", nil, nil)
	x := fn.AddVar(ir.I32)
	b := ir.NewBuilder(fn)
	br := b.BrIf("l", b.LocalGet(x), ir.Nil)
	loop := b.Loop("l", b.Block("", b.LocalSet(x, b.I32(1)), br))
	b.Finish(b.Block("", loop, b.Drop(b.LocalGet(x))))

	g := buildNodes(t, fn)
	require.Equal(t, 4, g.Len())
	require.Equal(t, [][]int{{1}, {1, 3}, nil, {2}}, succs(g))
	require.Equal(t, []int{0, 1}, g.Block(1).Pred)
	require.Equal(t, []int{3}, g.Block(2).Pred)
	require.Equal(t, br, g.Block(1).Ins[3])
	require.Empty(t, g.Block(3).Ins)
	require.Equal(t, Target{Break: 2, Continue: 1}, g.Targets[loop])
}

func TestBuild_ConditionalBreak(t *testing.T) {
	fn := ir.NewFunction("br-if", []ir.Type{ir.I32}, nil)
	x := fn.AddVar(ir.I32)
	b := ir.NewBuilder(fn)
	br := b.BrIf("out", b.LocalGet(0), ir.Nil)
	s2 := b.LocalSet(x, b.I32(1))
	get := b.LocalGet(x)
	inner := b.Block("out", b.LocalSet(x, b.I32(5)), br, s2)
	b.Finish(b.Block("", inner, b.Drop(get)))

	/* the code after the br_if starts a new block */
	g := buildNodes(t, fn)
	require.Equal(t, 3, g.Len())
	require.Equal(t, [][]int{{1, 2}, nil, {1}}, succs(g))
	require.Equal(t, []int{0, 2}, g.Block(1).Pred)
	require.Equal(t, br, g.Block(0).Ins[3])
	require.Equal(t, s2, g.Block(2).Ins[1])
	require.Equal(t, get, g.Block(1).Ins[0])
	require.Equal(t, Target{Break: 1, Continue: -1}, g.Targets[inner])
}

func TestBuild_BreakOutOfBlock(t *testing.T) {
	fn := ir.NewFunction("break", nil, nil)
	b := ir.NewBuilder(fn)
	blk := b.Block("out", b.Br("out", ir.Nil), b.Drop(b.I32(1)))
	b.Finish(blk)

	g := buildNodes(t, fn)
	require.Equal(t, 3, g.Len())
	require.Equal(t, [][]int{{1}, nil, {1}}, succs(g))
	require.Equal(t, []int{0, 2}, g.Block(1).Pred)
	require.Equal(t, []bool{true, true, false}, g.Reachable())
	require.Equal(t, []int{0, 1}, g.ReversePostOrder())
	require.Equal(t, []int{1}, g.Exits())
	require.Equal(t, Target{Break: 1, Continue: -1}, g.Targets[blk])
	require.Len(t, g.Block(2).Ins, 2)
}

func TestBuild_Switch(t *testing.T) {
	fn := ir.NewFunction("switch", nil, nil)
	b := ir.NewBuilder(fn)
	sw := b.Switch([]string{"a", "b", "a"}, "b", b.I32(0), ir.Nil)
	inner := b.Block("b", sw)
	b.Finish(b.Block("a", inner))

	g := buildNodes(t, fn)
	require.Equal(t, 4, g.Len())
	require.Equal(t, [][]int{{1, 2}, nil, {1}, {2}}, succs(g))
	require.Equal(t, sw, g.Block(0).Ins[1])
	require.Equal(t, Target{Break: 2, Continue: -1}, g.Targets[inner])
}

func TestBuild_ReturnAndUnreachable(t *testing.T) {
	fn := ir.NewFunction("return", []ir.Type{ir.I32}, nil)
	b := ir.NewBuilder(fn)
	b.Finish(b.Block("",
		b.If(b.LocalGet(0), b.Return(ir.Nil), ir.Nil),
		b.If(b.LocalGet(0), b.Unreachable(), ir.Nil),
		b.Nop(),
	))

	g := buildNodes(t, fn)
	require.Equal(t, 7, g.Len())
	require.Equal(t, [][]int{{1, 2}, nil, {4, 5}, {2}, nil, nil, {5}}, succs(g))
	require.Equal(t, []int{1, 4, 5}, g.Exits())
	require.Equal(t, []bool{true, true, true, false, true, true, false}, g.Reachable())
}

func TestBuild_UnresolvedLabel(t *testing.T) {
	fn := ir.NewFunction("bad", nil, nil)
	b := ir.NewBuilder(fn)
	b.Finish(b.Block("x", b.Br("y", ir.Nil)))

	_, err := Build[ir.Ref](fn, fn.Body, Nodes)
	var ue UnresolvedLabelError
	require.True(t, errors.As(err, &ue))
	require.Equal(t, "y", ue.Label)
	require.Contains(t, err.Error(), `"y"`)

	fn = ir.NewFunction("empty-label", nil, nil)
	b = ir.NewBuilder(fn)
	b.Finish(b.Block("", b.Br("", ir.Nil)))
	_, err = Build[ir.Ref](fn, fn.Body, Nodes)
	require.Equal(t, UnresolvedLabelError{}, err)
}

func TestBuild_FilteringRecorder(t *testing.T) {
	fn := ir.NewFunction("filter", []ir.Type{ir.I32}, nil)
	b := ir.NewBuilder(fn)
	b.Finish(b.Block("", b.LocalSet(0, b.LocalGet(0)), b.Drop(b.LocalGet(0))))

	g, err := Build[uint32](fn, fn.Body, func(fn *ir.Function, r ir.Ref) (uint32, bool) {
		if p := fn.Node(r); p.Kind == ir.KindLocalGet {
			return p.Index, true
		}
		return 0, false
	})
	require.NoError(t, err)
	require.Equal(t, 1, g.Len())
	require.Equal(t, []uint32{0, 0}, g.Block(0).Ins)
}

func TestBuild_EmptyBody(t *testing.T) {
	fn := ir.NewFunction("empty", nil, nil)
	g := buildNodes(t, fn)
	require.Equal(t, 1, g.Len())
	require.Empty(t, g.Block(0).Ins)
	require.Equal(t, []int{0}, g.Exits())
}

func TestGraph_AddEdgeDedup(t *testing.T) {
	g := newGraph[int]()
	g.AddBlock()
	g.AddBlock()
	g.AddEdge(0, 1)
	g.AddEdge(0, 1)
	g.AddEdge(1, 1)
	g.AddEdge(1, 1)
	require.Equal(t, []int{1}, g.Block(0).Succ)
	require.Equal(t, []int{0, 1}, g.Block(1).Pred)
	require.Equal(t, 2, g.NumEdges())
}

func TestGraph_DotAndDump(t *testing.T) {
	fn := ir.NewFunction("dot", nil, nil)
	b := ir.NewBuilder(fn)
	b.Finish(b.Block("out", b.Br("out", ir.Nil), b.Drop(b.I32(1))))

	g := buildNodes(t, fn)
	dot := g.Dot("dot", fn.Format)
	require.Contains(t, dot, "bb_0 -> bb_1;")
	require.Contains(t, dot, "bb_2 -> bb_1;")
	require.Contains(t, dot, "style=\"dashed\"")
	require.Contains(t, dot, "(br $out)")
	require.Contains(t, g.Dump(), "Succ")
}
