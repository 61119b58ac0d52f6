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
)

// Recorder turns a visited node into a block payload. It is called once per
// non-structured node, in evaluation order. Returning false records nothing.
type Recorder[T any] func(fn *ir.Function, r ir.Ref) (T, bool)

// Nodes records every visited node by its handle.
func Nodes(_ *ir.Function, r ir.Ref) (ir.Ref, bool) {
	return r, true
}

type _Scope struct {
	ref   ir.Ref
	label string
	brk   int
	cont  int
}

type _GraphBuilder[T any] struct {
	fn    *ir.Function
	rec   Recorder[T]
	graph *Graph[T]
	scope []*_Scope
	cur   int
}

// Build lowers the structured control flow of the subtree rooted at root
// into a graph of basic blocks. Breaks must name an enclosing block or loop.
func Build[T any](fn *ir.Function, root ir.Ref, rec Recorder[T]) (*Graph[T], error) {
	gb := &_GraphBuilder[T]{
		fn:    fn,
		rec:   rec,
		graph: newGraph[T](),
	}

	/* the entry block */
	gb.cur = gb.graph.AddBlock().Id
	gb.graph.Entry = gb.cur

	/* lower the tree */
	if err := gb.visit(root); err != nil {
		return nil, err
	} else {
		return gb.graph, nil
	}
}

func (self *_GraphBuilder[T]) block() int {
	return self.graph.AddBlock().Id
}

func (self *_GraphBuilder[T]) record(r ir.Ref) {
	if v, ok := self.rec(self.fn, r); ok {
		bb := self.graph.Blocks[self.cur]
		bb.Ins = append(bb.Ins, v)
	}
}

func (self *_GraphBuilder[T]) visitKids(r ir.Ref) error {
	for _, c := range self.fn.Node(r).Kids {
		if err := self.visit(c); err != nil {
			return err
		}
	}
	return nil
}

func (self *_GraphBuilder[T]) visit(r ir.Ref) error {
	if !r.Valid() {
		return nil
	}

	/* structured nodes shape the graph, everything else is recorded */
	switch p := self.fn.Node(r); p.Kind {
	case ir.KindBlock:
		return self.visitBlock(r, p)
	case ir.KindLoop:
		return self.visitLoop(r, p)
	case ir.KindIf:
		return self.visitIf(p)
	case ir.KindBreak:
		return self.visitBreak(r, p)
	case ir.KindSwitch:
		return self.visitSwitch(r, p)
	case ir.KindReturn, ir.KindUnreachable:
		return self.visitExit(r)
	default:
		if err := self.visitKids(r); err != nil {
			return err
		}
		self.record(r)
		return nil
	}
}

func (self *_GraphBuilder[T]) visitBlock(r ir.Ref, p *ir.Node) error {
	sc := &_Scope{ref: r, label: p.Label, brk: -1, cont: -1}
	kids := p.Kids

	/* visit the list inside the scope */
	self.scope = append(self.scope, sc)
	for _, c := range kids {
		if err := self.visit(c); err != nil {
			return err
		}
	}

	/* pop the scope, and fall into the end block if anyone breaks to it */
	self.scope = self.scope[:len(self.scope)-1]
	if sc.brk >= 0 {
		self.graph.AddEdge(self.cur, sc.brk)
		self.cur = sc.brk
	}

	/* remember where the block ends */
	self.graph.Targets[r] = Target{Break: self.cur, Continue: -1}
	return nil
}

func (self *_GraphBuilder[T]) visitLoop(r ir.Ref, p *ir.Node) error {
	head := self.block()
	exit := self.block()
	body := p.Kid(0)

	/* enter the loop header */
	self.graph.AddEdge(self.cur, head)
	self.cur = head
	self.graph.Targets[r] = Target{Break: exit, Continue: head}

	/* visit the body, breaks to the loop continue at the header */
	self.scope = append(self.scope, &_Scope{ref: r, label: p.Label, brk: exit, cont: head})
	err := self.visit(body)
	self.scope = self.scope[:len(self.scope)-1]

	/* fall out of the loop */
	if err != nil {
		return err
	}
	self.graph.AddEdge(self.cur, exit)
	self.cur = exit
	return nil
}

func (self *_GraphBuilder[T]) visitIf(p *ir.Node) error {
	cond, ifTrue, ifFalse := p.Kid(0), p.Kid(1), p.Kid(2)
	if err := self.visit(cond); err != nil {
		return err
	}

	/* allocate the arms and the join block, in that order */
	els := -1
	src := self.cur
	then := self.block()
	if ifFalse.Valid() {
		els = self.block()
	}
	join := self.block()

	/* branch out of the condition block */
	self.graph.AddEdge(src, then)
	if els >= 0 {
		self.graph.AddEdge(src, els)
	} else {
		self.graph.AddEdge(src, join)
	}

	/* the true arm */
	self.cur = then
	if err := self.visit(ifTrue); err != nil {
		return err
	}
	self.graph.AddEdge(self.cur, join)

	/* the false arm, if any */
	if els >= 0 {
		self.cur = els
		if err := self.visit(ifFalse); err != nil {
			return err
		}
		self.graph.AddEdge(self.cur, join)
	}

	/* continue after the if */
	self.cur = join
	return nil
}

func (self *_GraphBuilder[T]) resolve(label string) (int, error) {
	if label != "" {
		for i := len(self.scope) - 1; i >= 0; i-- {
			if sc := self.scope[i]; sc.label == label {
				return self.targetOf(sc), nil
			}
		}
	}
	return -1, UnresolvedLabelError{Label: label}
}

func (self *_GraphBuilder[T]) targetOf(sc *_Scope) int {
	if sc.cont >= 0 {
		return sc.cont
	}
	if sc.brk < 0 {
		sc.brk = self.block()
	}
	return sc.brk
}

func (self *_GraphBuilder[T]) visitBreak(r ir.Ref, p *ir.Node) error {
	if err := self.visitKids(r); err != nil {
		return err
	}

	/* resolve the target before recording anything */
	to, err := self.resolve(p.Label)
	if err != nil {
		return err
	}

	/* record the branch and link to the target */
	self.record(r)
	self.graph.AddEdge(self.cur, to)

	/* conditional breaks fall through into a new block, otherwise the rest is dead */
	next := self.block()
	if p.Kid(1).Valid() {
		self.graph.AddEdge(self.cur, next)
	}
	self.cur = next
	return nil
}

func (self *_GraphBuilder[T]) visitSwitch(r ir.Ref, p *ir.Node) error {
	if err := self.visitKids(r); err != nil {
		return err
	}

	/* resolve every target, the default last */
	tos := make([]int, 0, len(p.Labels)+1)
	for _, lb := range append(append([]string(nil), p.Labels...), p.Label) {
		if to, err := self.resolve(lb); err != nil {
			return err
		} else {
			tos = append(tos, to)
		}
	}

	/* record the branch, AddEdge drops the duplicates */
	self.record(r)
	for _, to := range tos {
		self.graph.AddEdge(self.cur, to)
	}

	/* nothing falls through a switch */
	self.cur = self.block()
	return nil
}

func (self *_GraphBuilder[T]) visitExit(r ir.Ref) error {
	if err := self.visitKids(r); err != nil {
		return err
	}
	self.record(r)
	self.cur = self.block()
	return nil
}
