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
	"github.com/cloudwego/wasmflow/internal/cfg"
	"github.com/cloudwego/wasmflow/ir"
	"gonum.org/v1/gonum/graph/simple"
)

// Interference is a symmetric relation over the locals of a function. Two
// locals interfere when they cannot share a slot.
type Interference struct {
	n    int
	bits []bool
}

func NewInterference(n int) *Interference {
	return &Interference{n: n, bits: make([]bool, n*n)}
}

func (self *Interference) NumLocals() int {
	return self.n
}

// Add records that a and b interfere. A local never interferes with itself.
func (self *Interference) Add(a uint32, b uint32) {
	if a != b {
		self.bits[int(a)*self.n+int(b)] = true
		self.bits[int(b)*self.n+int(a)] = true
	}
}

func (self *Interference) Interferes(a uint32, b uint32) bool {
	return self.bits[int(a)*self.n+int(b)]
}

// Neighbors returns the locals interfering with a in ascending order.
func (self *Interference) Neighbors(a uint32) []uint32 {
	var ret []uint32
	for b := 0; b < self.n; b++ {
		if self.bits[int(a)*self.n+b] {
			ret = append(ret, uint32(b))
		}
	}
	return ret
}

func (self *Interference) Degree(a uint32) int {
	return len(self.Neighbors(a))
}

// Edges returns every interfering pair once, smaller local first.
func (self *Interference) Edges() [][2]uint32 {
	var ret [][2]uint32
	for a := 0; a < self.n; a++ {
		for b := a + 1; b < self.n; b++ {
			if self.bits[a*self.n+b] {
				ret = append(ret, [2]uint32{uint32(a), uint32(b)})
			}
		}
	}
	return ret
}

// Undirected exports the relation as a gonum graph, node ids being local
// indices.
func (self *Interference) Undirected() *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := 0; i < self.n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range self.Edges() {
		g.SetEdge(g.NewEdge(simple.Node(e[0]), simple.Node(e[1])))
	}
	return g
}

type _ValueNumbers struct {
	next   int
	values []int
}

func (self *_ValueNumbers) fresh() int {
	self.next++
	return self.next
}

// Interfere builds the interference relation of fn from its action graph g
// and the liveness of g. It also sets the Effective and EndsLiveRange flags
// of every action in g. Every action must name a declared local.
func Interfere(fn *ir.Function, g *cfg.Graph[Action], live *Liveness) *Interference {
	n := fn.NumLocals()
	ret := NewInterference(n)
	vn := &_ValueNumbers{values: make([]int, n)}

	/* Phase 1: find the last uses and the effective sets */
	for _, bb := range g.Blocks {
		markRanges(bb, live.Out[bb.Id])
	}

	/* Phase 2: number the values and connect the overlapping ranges */
	for _, bb := range g.Blocks {
		interfereBlock(fn, g, bb, live.In[bb.Id], vn, ret)
	}
	return ret
}

func markRanges(bb *cfg.Block[Action], out LiveSet) {
	live := out.Clone()
	for i := len(bb.Ins) - 1; i >= 0; i-- {
		act := &bb.Ins[i]
		if act.Kind == Get {
			act.EndsLiveRange = live.add(act.Index)
		} else {
			act.Effective = live.remove(act.Index)
		}
	}
}

func interfereBlock(fn *ir.Function, g *cfg.Graph[Action], bb *cfg.Block[Action], in LiveSet, vn *_ValueNumbers, ret *Interference) {
	live := in.Clone()
	zero := bb.Id == g.Entry && len(bb.Pred) == 0

	/* variables start out equal to zero, everything else is unknown */
	for _, v := range live.Slice() {
		if zero && fn.IsVar(v) {
			vn.values[v] = 0
		} else {
			vn.values[v] = vn.fresh()
		}
	}

	/* walk forward */
	for _, act := range bb.Ins {
		if act.Kind == Get {
			if act.EndsLiveRange {
				live.remove(act.Index)
			}
			continue
		}

		/* copies keep the value number of their source */
		if act.IsCopy {
			vn.values[act.Index] = vn.values[act.Copy]
		} else {
			vn.values[act.Index] = vn.fresh()
		}

		/* a store nobody reads does not start a live range */
		if !act.Effective {
			continue
		}

		/* interfere with every live local holding a different value */
		for v := range live {
			if v != act.Index && vn.values[v] != vn.values[act.Index] {
				ret.Add(v, act.Index)
			}
		}
		live.add(act.Index)
	}
}
