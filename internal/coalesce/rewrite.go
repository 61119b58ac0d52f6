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

package coalesce

import (
	"github.com/cloudwego/wasmflow/ir"
)

type _Rewriter struct {
	fn          *ir.Function
	mapping     []uint32
	ineffective map[ir.Ref]bool
	stores      int
	copies      int
}

func newRewriter(fn *ir.Function, mapping []uint32, ineffective []ir.Ref) *_Rewriter {
	ret := &_Rewriter{
		fn:          fn,
		mapping:     mapping,
		ineffective: make(map[ir.Ref]bool, len(ineffective)),
	}
	for _, r := range ineffective {
		ret.ineffective[r] = true
	}
	return ret
}

// removeStore turns the set or tee r into what remains of its value: the
// value itself for a tee, a drop if evaluating it has side effects, or
// nothing at all.
func (self *_Rewriter) removeStore(r ir.Ref) {
	p := self.fn.Node(r)
	v := p.Operand()

	/* a tee still yields its value */
	if p.Kind == ir.KindLocalTee {
		self.fn.Replace(r, v)
	} else if self.fn.HasSideEffects(v) {
		self.fn.MakeDrop(r, v)
	} else {
		self.fn.MakeNop(r)
	}
}

func (self *_Rewriter) isSelfCopy(p *ir.Node) bool {
	v := self.fn.Node(p.Operand())
	return v.Kind == ir.KindLocalGet && v.Index == p.Index
}

// remap rewrites every local access through the slot mapping. Stores nobody
// reads are removed before they could clobber a slot they now share, and
// copies between locals merged into one slot disappear.
func (self *_Rewriter) remap() {
	self.fn.PostOrder(self.fn.Body, func(r ir.Ref) {
		p := self.fn.Node(r)
		if !p.Kind.IsLocalAccess() {
			return
		}

		/* ineffective stores go first */
		if p.Kind.IsLocalWrite() && self.ineffective[r] {
			self.stores++
			self.removeStore(r)
			return
		}

		/* the value was visited already, so a self copy compares new slots */
		p.Index = self.mapping[p.Index]
		if p.Kind.IsLocalWrite() && self.isSelfCopy(p) {
			self.copies++
			self.removeStore(r)
		}
	})
}

// removeDeadStores removes the stores to slots that are never read.
func (self *_Rewriter) removeDeadStores(read []bool) {
	self.fn.PostOrder(self.fn.Body, func(r ir.Ref) {
		if p := self.fn.Node(r); p.Kind.IsLocalWrite() && !read[p.Index] {
			self.stores++
			self.removeStore(r)
		}
	})
}
