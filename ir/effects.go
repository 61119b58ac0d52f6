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
	"strings"
)

// Effect is a summary of what evaluating an expression may do besides
// producing its value.
type Effect uint32

const (
	EffectMemoryRead Effect = 1 << iota
	EffectMemoryWrite
	EffectGlobalRead
	EffectGlobalWrite
	EffectLocalWrite
	EffectMayTrap
	EffectTraps
	EffectCalls
	EffectBranches
	EffectGrows
)

const (
	EffectNone   Effect = 0
	EffectReads         = EffectMemoryRead | EffectGlobalRead
	EffectWrites        = EffectMemoryWrite | EffectGlobalWrite | EffectLocalWrite

	/* a possible trap alone does not keep an expression alive */
	EffectSideEffects = EffectWrites | EffectCalls | EffectTraps | EffectBranches | EffectGrows
)

var effectNames = []struct {
	bit  Effect
	name string
}{
	{EffectMemoryRead, "memory-read"},
	{EffectMemoryWrite, "memory-write"},
	{EffectGlobalRead, "global-read"},
	{EffectGlobalWrite, "global-write"},
	{EffectLocalWrite, "local-write"},
	{EffectMayTrap, "may-trap"},
	{EffectTraps, "traps"},
	{EffectCalls, "calls"},
	{EffectBranches, "branches"},
	{EffectGrows, "grows"},
}

func (self Effect) String() string {
	var ret []string
	for _, e := range effectNames {
		if self&e.bit != 0 {
			ret = append(ret, e.name)
		}
	}
	if len(ret) == 0 {
		return "none"
	} else {
		return strings.Join(ret, "|")
	}
}

func (self Effect) HasSideEffects() bool {
	return self&EffectSideEffects != 0
}

func (self Effect) MayTrap() bool {
	return self&(EffectMayTrap|EffectTraps) != 0
}

func (self Effect) TransfersControl() bool {
	return self&(EffectBranches|EffectTraps) != 0
}

// LocalEffect returns the effect of a single node, ignoring its children.
func (self *Function) LocalEffect(r Ref) Effect {
	p := self.Node(r)

	/* classify by kind */
	switch p.Kind {
	case KindLocalSet, KindLocalTee:
		return EffectLocalWrite
	case KindGlobalGet:
		return EffectGlobalRead
	case KindGlobalSet:
		return EffectGlobalWrite
	case KindLoad:
		return EffectMemoryRead | EffectMayTrap
	case KindStore:
		return EffectMemoryWrite | EffectMayTrap
	case KindMemorySize:
		return EffectMemoryRead
	case KindMemoryGrow:
		return EffectGrows | EffectMemoryWrite
	case KindCall:
		return EffectCalls | EffectMemoryRead | EffectMemoryWrite | EffectGlobalRead | EffectGlobalWrite | EffectMayTrap
	case KindBreak, KindSwitch, KindReturn:
		return EffectBranches
	case KindUnreachable:
		return EffectTraps
	case KindBinary:
		switch p.Op {
		case OpDivS, OpDivU, OpRemS, OpRemU:
			return EffectMayTrap
		}
	}
	return EffectNone
}

// Effects returns the accumulated effect of evaluating the subtree rooted at r.
func (self *Function) Effects(r Ref) Effect {
	ret := EffectNone
	self.PostOrder(r, func(c Ref) {
		ret |= self.LocalEffect(c)
	})
	return ret
}

// HasSideEffects is a shorthand for Effects(r).HasSideEffects().
func (self *Function) HasSideEffects(r Ref) bool {
	return r.Valid() && self.Effects(r).HasSideEffects()
}
