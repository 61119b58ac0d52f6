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
)

type _Renamer struct {
	b     *Builder
	stack [][]Def
}

func newRenamer(b *Builder) _Renamer {
	nl := b.fn.NumLocals()
	st := make([][]Def, nl)

	/* every local starts with its entry definition */
	for i := range st {
		st[i] = []Def{entryDef(b.fn, uint32(i))}
	}
	return _Renamer{b: b, stack: st}
}

func (self _Renamer) top(v uint32) Def {
	return self.stack[v][len(self.stack[v])-1]
}

func (self _Renamer) push(v uint32, d Def) {
	self.stack[v] = append(self.stack[v], d)
}

func (self _Renamer) pop(v uint32) {
	self.stack[v] = self.stack[v][:len(self.stack[v])-1]
}

func (self _Renamer) renameblock(id int) {
	var d []uint32
	bb := self.b.graph.Blocks[id]

	/* phi nodes define their locals first */
	for _, phi := range self.b.phis[id] {
		d = append(d, phi.Local)
		self.push(phi.Local, phi.Def())
	}

	/* gets read the reaching definition, sets and tees push a new one */
	for _, r := range bb.Ins {
		switch p := self.b.fn.Node(r); p.Kind {
		case ir.KindLocalGet:
			self.b.use(r, self.top(p.Index))
		case ir.KindLocalSet, ir.KindLocalTee:
			d = append(d, p.Index)
			self.push(p.Index, instrDef(r, p.Index))
		}
	}

	/* fill in our incoming definitions of the successors' phis */
	for _, s := range bb.Succ {
		for _, phi := range self.b.phis[s] {
			phi.Incoming[id] = self.top(phi.Local)
		}
	}

	/* rename all its children in the dominator tree */
	for _, c := range self.b.dom.Children(id) {
		self.renameblock(c)
	}

	/* pop the definitions */
	for _, v := range d {
		self.pop(v)
	}
}
