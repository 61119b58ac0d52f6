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

import (
	"fmt"
)

// Ref is a stable handle to a node inside the arena of its Function.
type Ref int32

// Nil marks an absent optional child.
const Nil Ref = -1

func (self Ref) Valid() bool {
	return self >= 0
}

func (self Ref) String() string {
	if self < 0 {
		return "nil"
	} else {
		return fmt.Sprintf("#%d", int32(self))
	}
}

// Kind discriminates the node variants.
type Kind uint8

const (
	KindNop Kind = iota
	KindConst
	KindUnary
	KindBinary
	KindLocalGet
	KindLocalSet
	KindLocalTee
	KindGlobalGet
	KindGlobalSet
	KindBlock
	KindLoop
	KindIf
	KindBreak
	KindSwitch
	KindReturn
	KindUnreachable
	KindDrop
	KindSelect
	KindCall
	KindLoad
	KindStore
	KindMemorySize
	KindMemoryGrow
)

var kindNames = [...]string{
	KindNop:         "nop",
	KindConst:       "const",
	KindUnary:       "unary",
	KindBinary:      "binary",
	KindLocalGet:    "local.get",
	KindLocalSet:    "local.set",
	KindLocalTee:    "local.tee",
	KindGlobalGet:   "global.get",
	KindGlobalSet:   "global.set",
	KindBlock:       "block",
	KindLoop:        "loop",
	KindIf:          "if",
	KindBreak:       "br",
	KindSwitch:      "br_table",
	KindReturn:      "return",
	KindUnreachable: "unreachable",
	KindDrop:        "drop",
	KindSelect:      "select",
	KindCall:        "call",
	KindLoad:        "load",
	KindStore:       "store",
	KindMemorySize:  "memory.size",
	KindMemoryGrow:  "memory.grow",
}

func (self Kind) String() string {
	if int(self) < len(kindNames) {
		return kindNames[self]
	} else {
		return fmt.Sprintf("kind(%d)", uint8(self))
	}
}

// IsLocalAccess reports whether the kind reads or writes a local variable.
func (self Kind) IsLocalAccess() bool {
	return self == KindLocalGet || self == KindLocalSet || self == KindLocalTee
}

// IsLocalWrite reports whether the kind writes a local variable.
func (self Kind) IsLocalWrite() bool {
	return self == KindLocalSet || self == KindLocalTee
}

// IsStructured reports whether the kind is a structured control construct.
func (self Kind) IsStructured() bool {
	return self == KindBlock || self == KindLoop || self == KindIf
}

// Node is one expression. The meaning of Kids depends on Kind:
//
//	Block      list...
//	Loop       body
//	If         cond, then [, else]
//	Break      value|Nil, cond|Nil
//	Switch     value|Nil, cond
//	Return     value|Nil
//	Select     ifTrue, ifFalse, cond
//	Store      ptr, value
//	Call       operands...
//	others     operand(s) in evaluation order
type Node struct {
	Kind   Kind
	Type   Type
	Op     Op
	Index  uint32
	Value  Literal
	Label  string
	Labels []string
	Kids   []Ref
}

// Operand returns the single value operand of a LocalSet, LocalTee, GlobalSet or Drop.
func (self *Node) Operand() Ref {
	if len(self.Kids) == 0 {
		return Nil
	} else {
		return self.Kids[len(self.Kids)-1]
	}
}

// Kid returns the i-th child slot, or Nil if the slot does not exist.
func (self *Node) Kid(i int) Ref {
	if i < 0 || i >= len(self.Kids) {
		return Nil
	} else {
		return self.Kids[i]
	}
}
