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

/** This is an implementation of the iterative algorithm described in
 *  "A Simple, Fast Dominance Algorithm" by Cooper, Harvey and Kennedy,
 *  the dominance frontiers are computed with the method from the same paper.
 */

package ssa

import (
	"github.com/cloudwego/wasmflow/internal/cfg"
	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/slices"
)

// DominanceTree holds the immediate dominators, the dominated sets and the
// dominance frontiers of every block reachable from the entry. Unreachable
// blocks take part in no dominance relation.
type DominanceTree struct {
	Entry int
	idom  []int
	rpo   []int
	order []int
	kids  [][]int
	doms  []mapset.Set[int]
	front []mapset.Set[int]
}

// BuildDominanceTree computes the dominance information of g.
func BuildDominanceTree[T any](g *cfg.Graph[T]) *DominanceTree {
	nb := g.Len()
	dt := &DominanceTree{
		Entry: g.Entry,
		idom:  make([]int, nb),
		rpo:   make([]int, nb),
		kids:  make([][]int, nb),
		doms:  make([]mapset.Set[int], nb),
		front: make([]mapset.Set[int], nb),
	}

	/* number the reachable blocks in reverse post order */
	for i := range dt.rpo {
		dt.rpo[i] = -1
		dt.idom[i] = -1
	}
	for i, id := range g.ReversePostOrder() {
		dt.rpo[id] = i
		dt.order = append(dt.order, id)
	}

	/* predecessor lists */
	preds := make([][]int, nb)
	for i, bb := range g.Blocks {
		preds[i] = bb.Pred
	}

	/* Phase 1: immediate dominators */
	dt.computeIdom(preds)

	/* Phase 2: dominator tree children and dominated sets */
	dt.computeTree()

	/* Phase 3: dominance frontiers */
	dt.computeFrontiers(preds)
	return dt
}

func (self *DominanceTree) intersect(a int, b int) int {
	for a != b {
		for self.rpo[a] > self.rpo[b] {
			a = self.idom[a]
		}
		for self.rpo[b] > self.rpo[a] {
			b = self.idom[b]
		}
	}
	return a
}

func (self *DominanceTree) computeIdom(preds [][]int) {
	if len(self.order) == 0 {
		return
	}

	/* the entry dominates itself */
	self.idom[self.Entry] = self.Entry
	for changed := true; changed; {
		changed = false

		/* every other block, in reverse post order */
		for _, b := range self.order[1:] {
			nd := -1

			/* intersect the processed predecessors */
			for _, p := range preds[b] {
				if self.idom[p] < 0 {
					continue
				}
				if nd < 0 {
					nd = p
				} else {
					nd = self.intersect(p, nd)
				}
			}

			/* update if changed */
			if nd >= 0 && self.idom[b] != nd {
				self.idom[b] = nd
				changed = true
			}
		}
	}
}

func (self *DominanceTree) computeTree() {
	for i := range self.doms {
		self.doms[i] = mapset.NewThreadUnsafeSet[int]()
		self.front[i] = mapset.NewThreadUnsafeSet[int]()
	}

	/* children lists, sorted by block id */
	for _, b := range self.order {
		if b != self.Entry {
			p := self.idom[b]
			self.kids[p] = append(self.kids[p], b)
		}
	}
	for _, v := range self.kids {
		slices.Sort(v)
	}

	/* register every block in the dominated set of each ancestor */
	for _, b := range self.order {
		for x := b; ; x = self.idom[x] {
			self.doms[x].Add(b)
			if x == self.Entry {
				break
			}
		}
	}
}

func (self *DominanceTree) computeFrontiers(preds [][]int) {
	for _, b := range self.order {
		var ps []int
		for _, p := range preds[b] {
			if self.rpo[p] >= 0 {
				ps = append(ps, p)
			}
		}

		/* only join points have frontier contributions, the entry is
		 * entered once more from outside the function */
		if len(ps) < 2 && (b != self.Entry || len(ps) == 0) {
			continue
		}

		/* walk up from every predecessor until reaching a strict dominator of b */
		for _, p := range ps {
			for x := p; !self.StrictlyDominates(x, b); x = self.idom[x] {
				self.front[x].Add(b)
				if x == self.Entry {
					break
				}
			}
		}
	}
}

// Reachable reports whether b is reachable from the entry.
func (self *DominanceTree) Reachable(b int) bool {
	return b >= 0 && b < len(self.rpo) && self.rpo[b] >= 0
}

// Order returns the reachable blocks in reverse post order.
func (self *DominanceTree) Order() []int {
	return self.order
}

// Idom returns the immediate dominator of b. The entry is its own immediate
// dominator; unreachable blocks have none.
func (self *DominanceTree) Idom(b int) (int, bool) {
	if !self.Reachable(b) {
		return -1, false
	} else {
		return self.idom[b], true
	}
}

// Dominates reports whether every path from the entry to b passes through a.
func (self *DominanceTree) Dominates(a int, b int) bool {
	return self.Reachable(a) && self.Reachable(b) && self.doms[a].Contains(b)
}

func (self *DominanceTree) StrictlyDominates(a int, b int) bool {
	return a != b && self.Dominates(a, b)
}

// DominatedBy returns the blocks dominated by a, a included.
func (self *DominanceTree) DominatedBy(a int) mapset.Set[int] {
	if !self.Reachable(a) {
		return mapset.NewThreadUnsafeSet[int]()
	} else {
		return self.doms[a].Clone()
	}
}

// Frontier returns the dominance frontier of b.
func (self *DominanceTree) Frontier(b int) mapset.Set[int] {
	if !self.Reachable(b) {
		return mapset.NewThreadUnsafeSet[int]()
	} else {
		return self.front[b].Clone()
	}
}

// SortedFrontier returns the dominance frontier of b in block id order.
func (self *DominanceTree) SortedFrontier(b int) []int {
	ret := self.Frontier(b).ToSlice()
	slices.Sort(ret)
	return ret
}

// Children returns the blocks immediately dominated by b, in id order.
func (self *DominanceTree) Children(b int) []int {
	if !self.Reachable(b) {
		return nil
	} else {
		return self.kids[b]
	}
}

// LCA returns the nearest block dominating both a and b, or -1 if either of
// them is unreachable.
func (self *DominanceTree) LCA(a int, b int) int {
	if !self.Reachable(a) || !self.Reachable(b) {
		return -1
	}

	/* collect the ancestors of a */
	anc := mapset.NewThreadUnsafeSet[int]()
	for x := a; ; x = self.idom[x] {
		anc.Add(x)
		if x == self.Entry {
			break
		}
	}

	/* the first ancestor of b that is also an ancestor of a */
	for x := b; ; x = self.idom[x] {
		if anc.Contains(x) || x == self.Entry {
			return x
		}
	}
}
