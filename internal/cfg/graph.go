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
	"github.com/cloudwego/wasmflow/ir"
	"github.com/oleiade/lane"
)

// Block is a basic block carrying one payload value per recorded node.
type Block[T any] struct {
	Id   int
	Pred []int
	Succ []int
	Ins  []T
}

// Target is where control goes when a labeled construct is broken out of
// or continued. Continue is -1 for blocks.
type Target struct {
	Break    int
	Continue int
}

// Graph is a control-flow graph. Block ids are dense indices into Blocks.
type Graph[T any] struct {
	Entry   int
	Blocks  []*Block[T]
	Targets map[ir.Ref]Target
}

func newGraph[T any]() *Graph[T] {
	return &Graph[T]{Targets: make(map[ir.Ref]Target)}
}

func (self *Graph[T]) Len() int {
	return len(self.Blocks)
}

func (self *Graph[T]) Block(id int) *Block[T] {
	return self.Blocks[id]
}

// AddBlock creates a new, empty block with the next free id.
func (self *Graph[T]) AddBlock() *Block[T] {
	bb := &Block[T]{Id: len(self.Blocks)}
	self.Blocks = append(self.Blocks, bb)
	return bb
}

// AddEdge links two blocks. Duplicate edges are ignored.
func (self *Graph[T]) AddEdge(from int, to int) {
	src := self.Blocks[from]
	dst := self.Blocks[to]

	/* check for existing edges */
	for _, v := range src.Succ {
		if v == to {
			return
		}
	}

	/* link both directions */
	src.Succ = append(src.Succ, to)
	dst.Pred = append(dst.Pred, from)
}

type _DfsFrame struct {
	id   int
	next int
}

// PostOrder returns the ids of the blocks reachable from the entry in
// depth-first post order. Successors are explored in edge order.
func (self *Graph[T]) PostOrder() []int {
	if len(self.Blocks) == 0 {
		return nil
	}

	/* iterative DFS, one frame per block on the current path */
	st := lane.NewStack()
	ret := make([]int, 0, len(self.Blocks))
	vis := make([]bool, len(self.Blocks))

	/* start from the entry */
	vis[self.Entry] = true
	st.Push(&_DfsFrame{id: self.Entry})

	/* visit successors before finishing a block */
	for !st.Empty() {
		fp := st.Head().(*_DfsFrame)
		succ := self.Blocks[fp.id].Succ

		/* skip the visited ones */
		for fp.next < len(succ) && vis[succ[fp.next]] {
			fp.next++
		}

		/* all successors done */
		if fp.next == len(succ) {
			ret = append(ret, fp.id)
			st.Pop()
			continue
		}

		/* descend */
		id := succ[fp.next]
		vis[id] = true
		fp.next++
		st.Push(&_DfsFrame{id: id})
	}
	return ret
}

// ReversePostOrder returns the reachable block ids in reverse post order.
// The entry always comes first.
func (self *Graph[T]) ReversePostOrder() []int {
	ret := self.PostOrder()
	for i, j := 0, len(ret)-1; i < j; i, j = i+1, j-1 {
		ret[i], ret[j] = ret[j], ret[i]
	}
	return ret
}

// Reachable returns a bitmap of the blocks reachable from the entry.
func (self *Graph[T]) Reachable() []bool {
	ret := make([]bool, len(self.Blocks))
	for _, id := range self.PostOrder() {
		ret[id] = true
	}
	return ret
}

// Exits returns the reachable blocks without successors, in id order.
func (self *Graph[T]) Exits() []int {
	var ret []int
	rs := self.Reachable()

	/* a block without successors leaves the function */
	for _, bb := range self.Blocks {
		if rs[bb.Id] && len(bb.Succ) == 0 {
			ret = append(ret, bb.Id)
		}
	}
	return ret
}

// NumEdges returns the total number of edges.
func (self *Graph[T]) NumEdges() int {
	n := 0
	for _, bb := range self.Blocks {
		n += len(bb.Succ)
	}
	return n
}
