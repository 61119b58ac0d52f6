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

package irtest

import (
	"fmt"

	"github.com/cloudwego/wasmflow/ir"
)

// Outcome tells how an execution ended.
type Outcome string

const (
	Finished Outcome = "finished"
	Returned Outcome = "returned"
	Trapped  Outcome = "trapped"
	NoFuel   Outcome = "out-of-fuel"
)

// Trace is everything an execution made observable: the calls it made, the
// globals and memory it wrote, and how it ended. Local variables are not
// observable.
type Trace struct {
	Events  []string
	Outcome Outcome
}

type _SigKind uint8

const (
	_SigBreak _SigKind = iota + 1
	_SigReturn
	_SigTrap
	_SigFuel
)

type _Signal struct {
	kind  _SigKind
	label string
	value uint64
}

type _Machine struct {
	fn     *ir.Function
	locals []uint64
	memory map[uint64]uint64
	events []string
	calls  uint64
	fuel   int
}

// Run interprets fn with the given arguments. Every taken loop back edge
// costs one unit of fuel; the execution stops when it runs out.
func Run(fn *ir.Function, args []uint64, fuel int) Trace {
	m := &_Machine{
		fn:     fn,
		locals: make([]uint64, fn.NumLocals()),
		memory: make(map[uint64]uint64),
		fuel:   fuel,
	}

	/* parameters take the arguments, variables start at zero */
	for i := range fn.Params {
		if i < len(args) {
			m.locals[i] = mask(fn.Params[i], args[i])
		}
	}

	/* run the body */
	_, sig := m.eval(fn.Body)
	ret := Trace{Events: m.events, Outcome: Finished}
	if sig != nil {
		switch sig.kind {
		case _SigReturn:
			ret.Outcome = Returned
		case _SigTrap:
			ret.Outcome = Trapped
		case _SigFuel:
			ret.Outcome = NoFuel
		default:
			panic("irtest: branch escaped the function")
		}
	}
	return ret
}

func mask(t ir.Type, v uint64) uint64 {
	if t == ir.I32 {
		return v & 0xffffffff
	} else {
		return v
	}
}

func (self *_Machine) emit(format string, args ...interface{}) {
	self.events = append(self.events, fmt.Sprintf(format, args...))
}

func (self *_Machine) evalKids(r ir.Ref) ([]uint64, *_Signal) {
	kids := self.fn.Node(r).Kids
	vals := make([]uint64, len(kids))
	for i, c := range kids {
		if c.Valid() {
			v, sig := self.eval(c)
			if sig != nil {
				return nil, sig
			}
			vals[i] = v
		}
	}
	return vals, nil
}

func (self *_Machine) eval(r ir.Ref) (uint64, *_Signal) {
	if !r.Valid() {
		return 0, nil
	}

	/* control flow first, the children are not evaluated eagerly */
	p := self.fn.Node(r)
	switch p.Kind {
	case ir.KindBlock:
		return self.evalBlock(p)
	case ir.KindLoop:
		return self.evalLoop(p)
	case ir.KindIf:
		return self.evalIf(p)
	}

	/* everything else evaluates its operands in order */
	vals, sig := self.evalKids(r)
	if sig != nil {
		return 0, sig
	}

	/* then applies itself */
	switch p.Kind {
	case ir.KindNop:
		return 0, nil
	case ir.KindConst:
		return p.Value.Bits, nil
	case ir.KindLocalGet:
		return self.locals[p.Index], nil
	case ir.KindLocalSet:
		self.locals[p.Index] = vals[0]
		return 0, nil
	case ir.KindLocalTee:
		self.locals[p.Index] = vals[0]
		return vals[0], nil
	case ir.KindGlobalGet:
		return self.memory[1<<40|uint64(p.Index)], nil
	case ir.KindGlobalSet:
		self.memory[1<<40|uint64(p.Index)] = vals[0]
		self.emit("global.set %d %d", p.Index, vals[0])
		return 0, nil
	case ir.KindLoad:
		return mask(p.Type, self.memory[vals[0]]), nil
	case ir.KindStore:
		self.memory[vals[0]] = vals[1]
		self.emit("store %d %d", vals[0], vals[1])
		return 0, nil
	case ir.KindCall:
		h := self.calls * 0x9e3779b97f4a7c15
		for _, v := range vals {
			h ^= v
		}
		self.calls++
		self.emit("call %s %v", p.Label, vals)
		return mask(p.Type, h), nil
	case ir.KindDrop:
		return 0, nil
	case ir.KindSelect:
		if mask(ir.I32, vals[2]) != 0 {
			return vals[0], nil
		} else {
			return vals[1], nil
		}
	case ir.KindUnary:
		return self.unary(p, vals[0]), nil
	case ir.KindBinary:
		return self.binary(p, vals[0], vals[1])
	case ir.KindMemorySize:
		return 1, nil
	case ir.KindMemoryGrow:
		self.emit("memory.grow %d", vals[0])
		return 1, nil
	case ir.KindBreak:
		if p.Kid(1).Valid() && mask(ir.I32, vals[1]) == 0 {
			return vals[0], nil
		}
		return 0, &_Signal{kind: _SigBreak, label: p.Label, value: vals[0]}
	case ir.KindSwitch:
		lb := p.Label
		if i := mask(ir.I32, vals[1]); i < uint64(len(p.Labels)) {
			lb = p.Labels[i]
		}
		return 0, &_Signal{kind: _SigBreak, label: lb, value: vals[0]}
	case ir.KindReturn:
		return 0, &_Signal{kind: _SigReturn, value: vals[0]}
	case ir.KindUnreachable:
		return 0, &_Signal{kind: _SigTrap}
	default:
		panic("irtest: cannot interpret " + p.Kind.String())
	}
}

func (self *_Machine) evalBlock(p *ir.Node) (uint64, *_Signal) {
	var v uint64
	var sig *_Signal

	/* run the list, a break to this block ends it */
	for _, c := range p.Kids {
		if v, sig = self.eval(c); sig != nil {
			if sig.kind == _SigBreak && p.Label != "" && sig.label == p.Label {
				return sig.value, nil
			}
			return 0, sig
		}
	}
	return v, nil
}

func (self *_Machine) evalLoop(p *ir.Node) (uint64, *_Signal) {
	for {
		v, sig := self.eval(p.Kid(0))
		if sig == nil {
			return v, nil
		}

		/* only a branch to the loop itself continues it */
		if sig.kind != _SigBreak || sig.label != p.Label {
			return 0, sig
		}
		if self.fuel--; self.fuel < 0 {
			return 0, &_Signal{kind: _SigFuel}
		}
	}
}

func (self *_Machine) evalIf(p *ir.Node) (uint64, *_Signal) {
	c, sig := self.eval(p.Kid(0))
	if sig != nil {
		return 0, sig
	}
	if mask(ir.I32, c) != 0 {
		return self.eval(p.Kid(1))
	} else {
		return self.eval(p.Kid(2))
	}
}

func (self *_Machine) unary(p *ir.Node, x uint64) uint64 {
	switch p.Op {
	case ir.OpEqz:
		if x == 0 {
			return 1
		} else {
			return 0
		}
	case ir.OpNeg:
		return mask(p.Type, -x)
	case ir.OpWrap:
		return mask(ir.I32, x)
	case ir.OpExtendU:
		return mask(ir.I32, x)
	default:
		panic("irtest: cannot interpret unary " + p.Op.String())
	}
}

func (self *_Machine) binary(p *ir.Node, x uint64, y uint64) (uint64, *_Signal) {
	switch p.Op {
	case ir.OpAdd:
		return mask(p.Type, x+y), nil
	case ir.OpSub:
		return mask(p.Type, x-y), nil
	case ir.OpMul:
		return mask(p.Type, x*y), nil
	case ir.OpXor:
		return x ^ y, nil
	case ir.OpAnd:
		return x & y, nil
	case ir.OpOr:
		return x | y, nil
	case ir.OpDivU:
		if y == 0 {
			return 0, &_Signal{kind: _SigTrap}
		}
		return x / y, nil
	case ir.OpEq:
		if x == y {
			return 1, nil
		}
		return 0, nil
	default:
		panic("irtest: cannot interpret binary " + p.Op.String())
	}
}
