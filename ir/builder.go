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

package ir

// Builder creates nodes inside a function and infers their result types.
type Builder struct {
	fn *Function
}

func NewBuilder(fn *Function) Builder {
	return Builder{fn}
}

func (self Builder) Func() *Function {
	return self.fn
}

func (self Builder) typeOf(r Ref) Type {
	if r.Valid() {
		return self.fn.Node(r).Type
	} else {
		return None
	}
}

func (self Builder) Nop() Ref {
	return self.fn.Add(Node{Kind: KindNop, Type: None})
}

func (self Builder) Const(v Literal) Ref {
	return self.fn.Add(Node{Kind: KindConst, Type: v.Type, Value: v})
}

func (self Builder) I32(v int32) Ref { return self.Const(LitI32(v)) }
func (self Builder) I64(v int64) Ref { return self.Const(LitI64(v)) }

func (self Builder) Unary(op Op, t Type, x Ref) Ref {
	return self.fn.Add(Node{Kind: KindUnary, Type: t, Op: op, Kids: []Ref{x}})
}

func (self Builder) Binary(op Op, t Type, x Ref, y Ref) Ref {
	return self.fn.Add(Node{Kind: KindBinary, Type: t, Op: op, Kids: []Ref{x, y}})
}

func (self Builder) LocalGet(i uint32) Ref {
	return self.fn.Add(Node{Kind: KindLocalGet, Type: self.fn.LocalType(i), Index: i})
}

func (self Builder) LocalSet(i uint32, value Ref) Ref {
	return self.fn.Add(Node{Kind: KindLocalSet, Type: None, Index: i, Kids: []Ref{value}})
}

func (self Builder) LocalTee(i uint32, value Ref) Ref {
	return self.fn.Add(Node{Kind: KindLocalTee, Type: self.fn.LocalType(i), Index: i, Kids: []Ref{value}})
}

func (self Builder) GlobalGet(i uint32, t Type) Ref {
	return self.fn.Add(Node{Kind: KindGlobalGet, Type: t, Index: i})
}

func (self Builder) GlobalSet(i uint32, value Ref) Ref {
	return self.fn.Add(Node{Kind: KindGlobalSet, Type: None, Index: i, Kids: []Ref{value}})
}

// Block creates a labeled sequence. Its type is the type of the last item.
func (self Builder) Block(label string, list ...Ref) Ref {
	t := None
	if n := len(list); n != 0 {
		t = self.typeOf(list[n-1])
	}
	if t == Unreachable {
		t = None
	}
	return self.fn.Add(Node{Kind: KindBlock, Type: t, Label: label, Kids: list})
}

func (self Builder) Loop(label string, body Ref) Ref {
	t := self.typeOf(body)
	if t == Unreachable {
		t = None
	}
	return self.fn.Add(Node{Kind: KindLoop, Type: t, Label: label, Kids: []Ref{body}})
}

// If creates a conditional. Pass Nil as ifFalse for a one-armed if.
func (self Builder) If(cond Ref, ifTrue Ref, ifFalse Ref) Ref {
	t := None
	kids := []Ref{cond, ifTrue}

	/* two-armed ifs carry a value when both arms agree */
	if ifFalse.Valid() {
		kids = append(kids, ifFalse)
		if a, b := self.typeOf(ifTrue), self.typeOf(ifFalse); a == b && a != Unreachable {
			t = a
		}
	}
	return self.fn.Add(Node{Kind: KindIf, Type: t, Kids: kids})
}

// Br creates an unconditional break carrying an optional value.
func (self Builder) Br(label string, value Ref) Ref {
	return self.fn.Add(Node{Kind: KindBreak, Type: Unreachable, Label: label, Kids: []Ref{value, Nil}})
}

// BrIf creates a conditional break carrying an optional value.
func (self Builder) BrIf(label string, cond Ref, value Ref) Ref {
	t := self.typeOf(value)
	if !value.Valid() {
		t = None
	}
	return self.fn.Add(Node{Kind: KindBreak, Type: t, Label: label, Kids: []Ref{value, cond}})
}

// Switch creates a br_table over labels, falling back to def.
func (self Builder) Switch(labels []string, def string, cond Ref, value Ref) Ref {
	return self.fn.Add(Node{
		Kind:   KindSwitch,
		Type:   Unreachable,
		Label:  def,
		Labels: labels,
		Kids:   []Ref{value, cond},
	})
}

func (self Builder) Return(value Ref) Ref {
	return self.fn.Add(Node{Kind: KindReturn, Type: Unreachable, Kids: []Ref{value}})
}

func (self Builder) Unreachable() Ref {
	return self.fn.Add(Node{Kind: KindUnreachable, Type: Unreachable})
}

func (self Builder) Drop(value Ref) Ref {
	return self.fn.Add(Node{Kind: KindDrop, Type: None, Kids: []Ref{value}})
}

func (self Builder) Select(ifTrue Ref, ifFalse Ref, cond Ref) Ref {
	return self.fn.Add(Node{Kind: KindSelect, Type: self.typeOf(ifTrue), Kids: []Ref{ifTrue, ifFalse, cond}})
}

func (self Builder) Call(target string, result Type, args ...Ref) Ref {
	return self.fn.Add(Node{Kind: KindCall, Type: result, Label: target, Kids: args})
}

func (self Builder) Load(t Type, ptr Ref) Ref {
	return self.fn.Add(Node{Kind: KindLoad, Type: t, Kids: []Ref{ptr}})
}

func (self Builder) Store(ptr Ref, value Ref) Ref {
	return self.fn.Add(Node{Kind: KindStore, Type: None, Kids: []Ref{ptr, value}})
}

func (self Builder) MemorySize() Ref {
	return self.fn.Add(Node{Kind: KindMemorySize, Type: I32})
}

func (self Builder) MemoryGrow(delta Ref) Ref {
	return self.fn.Add(Node{Kind: KindMemoryGrow, Type: I32, Kids: []Ref{delta}})
}

// Finish sets the function body and returns the function.
func (self Builder) Finish(body Ref) *Function {
	self.fn.Body = body
	return self.fn
}
