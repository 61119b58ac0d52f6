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

package ssa

import (
	"github.com/cloudwego/wasmflow/ir"
	"github.com/oleiade/lane"
)

// definitionSites returns, for every local, the reachable blocks that write
// it. The entry block defines every local with its parameter or zero value.
func (self *Builder) definitionSites() ([][]int, error) {
	nl := self.fn.NumLocals()
	ret := make([][]int, nl)
	seen := make([]int, nl)

	/* the entry defines everything */
	for i := range ret {
		ret[i] = []int{self.dom.Entry}
		seen[i] = self.dom.Entry
	}

	/* scan the reachable blocks in id order */
	for _, bb := range self.graph.Blocks {
		if !self.dom.Reachable(bb.Id) {
			continue
		}

		/* every local access must name a declared local */
		for _, r := range bb.Ins {
			p := self.fn.Node(r)
			if !p.Kind.IsLocalAccess() {
				continue
			}
			if int(p.Index) >= nl {
				return nil, ir.LocalIndexError{Func: self.fn.Name, Ref: r, Index: p.Index, NumLocals: nl}
			}
			if p.Kind.IsLocalWrite() && seen[p.Index] != bb.Id {
				seen[p.Index] = bb.Id
				ret[p.Index] = append(ret[p.Index], bb.Id)
			}
		}
	}
	return ret, nil
}

// insertPhiNodes places phi nodes on the iterated dominance frontier of
// every local's definition sites. Locals are processed in index order, so
// the phis of every block end up sorted by local.
func (self *Builder) insertPhiNodes(sites [][]int) {
	q := lane.NewQueue()

	/* one round per local */
	for v, bbs := range sites {
		local := uint32(v)
		isdef := make(map[int]bool, len(bbs))
		hasphi := make(map[int]bool)

		/* seed the worklist with the definition sites */
		for _, b := range bbs {
			isdef[b] = true
			q.Enqueue(b)
		}

		/* a phi is a definition as well */
		for !q.Empty() {
			b := q.Dequeue().(int)
			for _, f := range self.dom.SortedFrontier(b) {
				if hasphi[f] {
					continue
				}
				hasphi[f] = true
				self.phis[f] = append(self.phis[f], &PhiNode{
					Local:    local,
					Block:    f,
					Incoming: make(map[int]Def),
				})
				if !isdef[f] {
					isdef[f] = true
					q.Enqueue(f)
				}
			}
		}
	}
}
