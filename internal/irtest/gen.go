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

// Package irtest draws random well-formed functions for property tests and
// runs them with a small reference interpreter.
package irtest

import (
	"fmt"

	"github.com/cloudwego/wasmflow/ir"
	"pgregory.net/rapid"
)

const (
	_MaxDepth = 4
	_MaxStmts = 4
)

var localTypes = []ir.Type{ir.I32, ir.I64}

type _Label struct {
	name string
	loop bool
}

type _Gen struct {
	t      *rapid.T
	fn     *ir.Function
	b      ir.Builder
	labels []_Label
	nextid int
}

// Function draws a random function with up to two parameters, up to seven
// variables and structured control flow nested a few levels deep.
func Function(t *rapid.T) *ir.Function {
	np := rapid.IntRange(0, 2).Draw(t, "params")
	nv := rapid.IntRange(1, 7).Draw(t, "vars")
	params := make([]ir.Type, np)

	/* the signature */
	for i := range params {
		params[i] = rapid.SampledFrom(localTypes).Draw(t, "param")
	}
	fn := ir.NewFunction("rand", params, nil)
	for i := 0; i < nv; i++ {
		fn.AddVar(rapid.SampledFrom(localTypes).Draw(t, "var"))
	}

	/* the body */
	gen := &_Gen{t: t, fn: fn, b: ir.NewBuilder(fn)}
	return gen.b.Finish(gen.block(0, false))
}

func (self *_Gen) label() string {
	self.nextid++
	return fmt.Sprintf("L%d", self.nextid)
}

func (self *_Gen) draw(n int, what string) int {
	return rapid.IntRange(0, n-1).Draw(self.t, what)
}

func (self *_Gen) localOf(t ir.Type) (uint32, bool) {
	var cands []uint32
	for i := 0; i < self.fn.NumLocals(); i++ {
		if self.fn.LocalType(uint32(i)) == t {
			cands = append(cands, uint32(i))
		}
	}
	if len(cands) == 0 {
		return 0, false
	} else {
		return cands[self.draw(len(cands), "local")], true
	}
}

func (self *_Gen) anyLocal() uint32 {
	return uint32(self.draw(self.fn.NumLocals(), "local"))
}

func (self *_Gen) stmts(depth int) []ir.Ref {
	n := rapid.IntRange(1, _MaxStmts).Draw(self.t, "stmts")
	ret := make([]ir.Ref, 0, n)
	for i := 0; i < n; i++ {
		ret = append(ret, self.stmt(depth))
	}
	return ret
}

func (self *_Gen) block(depth int, labeled bool) ir.Ref {
	if !labeled {
		return self.b.Block("", self.stmts(depth)...)
	}

	/* a labeled block can be broken out of */
	name := self.label()
	self.labels = append(self.labels, _Label{name: name})
	body := self.stmts(depth)
	self.labels = self.labels[:len(self.labels)-1]
	return self.b.Block(name, body...)
}

func (self *_Gen) stmt(depth int) ir.Ref {
	n := 12
	if depth >= _MaxDepth {
		n = 4
	}

	/* pick a statement */
	switch self.draw(n, "stmt") {
	case 0, 1:
		v := self.anyLocal()
		return self.b.LocalSet(v, self.expr(self.fn.LocalType(v), depth+1))
	case 2:
		v := self.anyLocal()
		return self.b.Drop(self.b.LocalTee(v, self.expr(self.fn.LocalType(v), depth+1)))
	case 3:
		return self.observe(depth)
	case 4, 5:
		then := self.block(depth+1, false)
		els := ir.Nil
		if rapid.Bool().Draw(self.t, "else") {
			els = self.block(depth+1, false)
		}
		return self.b.If(self.cond(depth+1), then, els)
	case 6:
		return self.block(depth+1, true)
	case 7:
		return self.loop(depth + 1)
	case 8, 9:
		return self.branch(depth, true)
	case 10:
		return self.branch(depth, false)
	default:
		return self.exit(depth)
	}
}

func (self *_Gen) observe(depth int) ir.Ref {
	v := self.anyLocal()
	get := self.b.LocalGet(v)
	switch self.draw(3, "observe") {
	case 0:
		return self.b.GlobalSet(uint32(self.fn.LocalType(v)), get)
	case 1:
		return self.b.Store(self.b.I32(int32(v)), get)
	default:
		return self.b.Call("sink", ir.None, get, self.expr(ir.I32, depth+1))
	}
}

func (self *_Gen) loop(depth int) ir.Ref {
	name := self.label()
	self.labels = append(self.labels, _Label{name: name, loop: true})
	body := self.stmts(depth)
	body = append(body, self.b.BrIf(name, self.cond(depth+1), ir.Nil))
	self.labels = self.labels[:len(self.labels)-1]
	return self.b.Loop(name, self.b.Block("", body...))
}

func (self *_Gen) branch(depth int, conditional bool) ir.Ref {
	if len(self.labels) == 0 {
		return self.observe(depth)
	}

	/* forward branches only when unconditional, loops would never end */
	lb := self.labels[self.draw(len(self.labels), "label")]
	if !conditional && lb.loop {
		return self.observe(depth)
	}

	/* br_if or br */
	if conditional {
		return self.b.BrIf(lb.name, self.cond(depth+1), ir.Nil)
	} else {
		return self.b.Br(lb.name, ir.Nil)
	}
}

func (self *_Gen) exit(depth int) ir.Ref {
	switch self.draw(3, "exit") {
	case 0:
		return self.b.Return(ir.Nil)
	case 1:
		return self.b.If(self.cond(depth+1), self.b.Unreachable(), ir.Nil)
	default:
		var labels []string
		for i := len(self.labels) - 1; i >= 0; i-- {
			if !self.labels[i].loop {
				labels = append(labels, self.labels[i].name)
			}
		}
		if len(labels) == 0 {
			return self.b.Return(ir.Nil)
		}
		return self.b.Switch(labels[1:], labels[0], self.expr(ir.I32, depth+1), ir.Nil)
	}
}

func (self *_Gen) cond(depth int) ir.Ref {
	if v, ok := self.localOf(ir.I32); ok && rapid.Bool().Draw(self.t, "cond-local") {
		return self.b.LocalGet(v)
	} else {
		return self.expr(ir.I32, depth)
	}
}

func (self *_Gen) expr(t ir.Type, depth int) ir.Ref {
	n := 7
	if depth >= _MaxDepth {
		n = 2
	}

	/* pick an expression */
	switch self.draw(n, "expr") {
	case 0:
		return self.constant(t)
	case 1:
		if v, ok := self.localOf(t); ok {
			return self.b.LocalGet(v)
		} else {
			return self.constant(t)
		}
	case 2:
		op := rapid.SampledFrom([]ir.Op{ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpXor}).Draw(self.t, "op")
		return self.b.Binary(op, t, self.expr(t, depth+1), self.expr(t, depth+1))
	case 3:
		if v, ok := self.localOf(t); ok {
			return self.b.LocalTee(v, self.expr(t, depth+1))
		} else {
			return self.constant(t)
		}
	case 4:
		return self.b.Call("value", t, self.expr(ir.I32, depth+1))
	case 5:
		return self.b.Load(t, self.b.I32(int32(self.draw(8, "ptr"))))
	default:
		return self.b.Select(self.expr(t, depth+1), self.expr(t, depth+1), self.cond(depth+1))
	}
}

func (self *_Gen) constant(t ir.Type) ir.Ref {
	v := rapid.IntRange(-3, 3).Draw(self.t, "const")
	if t == ir.I64 {
		return self.b.I64(int64(v))
	} else {
		return self.b.I32(int32(v))
	}
}
