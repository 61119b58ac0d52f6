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
	"math"
	"strconv"
)

// Type is the value type of an expression or a local variable.
type Type uint8

const (
	None Type = iota
	I32
	I64
	F32
	F64
	V128
	FuncRef
	ExternRef
	Unreachable
)

var typeNames = [...]string{
	None:        "none",
	I32:         "i32",
	I64:         "i64",
	F32:         "f32",
	F64:         "f64",
	V128:        "v128",
	FuncRef:     "funcref",
	ExternRef:   "externref",
	Unreachable: "unreachable",
}

func (self Type) String() string {
	if int(self) < len(typeNames) {
		return typeNames[self]
	} else {
		return fmt.Sprintf("type(%d)", uint8(self))
	}
}

// IsConcrete reports whether a value of this type can be stored in a local.
func (self Type) IsConcrete() bool {
	return self != None && self != Unreachable && int(self) < len(typeNames)
}

// Literal is a constant value. Floating point values keep their raw bits.
type Literal struct {
	Type Type
	Bits uint64
}

func LitI32(v int32) Literal   { return Literal{Type: I32, Bits: uint64(uint32(v))} }
func LitI64(v int64) Literal   { return Literal{Type: I64, Bits: uint64(v)} }
func LitF32(v float32) Literal { return Literal{Type: F32, Bits: uint64(math.Float32bits(v))} }
func LitF64(v float64) Literal { return Literal{Type: F64, Bits: math.Float64bits(v)} }

func (self Literal) String() string {
	switch self.Type {
	case I32:
		return strconv.FormatInt(int64(int32(uint32(self.Bits))), 10)
	case I64:
		return strconv.FormatInt(int64(self.Bits), 10)
	case F32:
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(self.Bits))), 'g', -1, 32)
	case F64:
		return strconv.FormatFloat(math.Float64frombits(self.Bits), 'g', -1, 64)
	default:
		return fmt.Sprintf("0x%x", self.Bits)
	}
}

// Op selects the operation of a unary or binary node.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDivS
	OpDivU
	OpRemS
	OpRemU
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShrS
	OpShrU
	OpEq
	OpNe
	OpLtS
	OpLtU
	OpGtS
	OpGtU
	OpEqz
	OpClz
	OpCtz
	OpPopcnt
	OpNeg
	OpAbs
	OpWrap
	OpExtendS
	OpExtendU
)

var opNames = [...]string{
	OpAdd:     "add",
	OpSub:     "sub",
	OpMul:     "mul",
	OpDivS:    "div_s",
	OpDivU:    "div_u",
	OpRemS:    "rem_s",
	OpRemU:    "rem_u",
	OpAnd:     "and",
	OpOr:      "or",
	OpXor:     "xor",
	OpShl:     "shl",
	OpShrS:    "shr_s",
	OpShrU:    "shr_u",
	OpEq:      "eq",
	OpNe:      "ne",
	OpLtS:     "lt_s",
	OpLtU:     "lt_u",
	OpGtS:     "gt_s",
	OpGtU:     "gt_u",
	OpEqz:     "eqz",
	OpClz:     "clz",
	OpCtz:     "ctz",
	OpPopcnt:  "popcnt",
	OpNeg:     "neg",
	OpAbs:     "abs",
	OpWrap:    "wrap",
	OpExtendS: "extend_s",
	OpExtendU: "extend_u",
}

func (self Op) String() string {
	if int(self) < len(opNames) {
		return opNames[self]
	} else {
		return fmt.Sprintf("op(%d)", uint8(self))
	}
}
