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
	"strings"
)

// Format renders the subtree rooted at r as a single-line s-expression.
func (self *Function) Format(r Ref) string {
	var sb strings.Builder
	self.format(&sb, r)
	return sb.String()
}

// String renders the whole function.
func (self *Function) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "(func $%s", self.Name)

	/* signature */
	for _, t := range self.Params {
		fmt.Fprintf(&sb, " (param %s)", t)
	}
	for _, t := range self.Results {
		fmt.Fprintf(&sb, " (result %s)", t)
	}
	for _, t := range self.Vars {
		fmt.Fprintf(&sb, " (local %s)", t)
	}

	/* body */
	if self.Body.Valid() {
		sb.WriteByte(' ')
		self.format(&sb, self.Body)
	}
	sb.WriteByte(')')
	return sb.String()
}

func (self *Function) format(sb *strings.Builder, r Ref) {
	if !r.Valid() {
		sb.WriteString("nil")
		return
	}

	/* node head */
	p := self.Node(r)
	sb.WriteByte('(')
	sb.WriteString(self.head(p))

	/* operands */
	for _, c := range p.Kids {
		if c.Valid() {
			sb.WriteByte(' ')
			self.format(sb, c)
		}
	}
	sb.WriteByte(')')
}

func (self *Function) head(p *Node) string {
	switch p.Kind {
	case KindConst:
		return fmt.Sprintf("%s.const %s", p.Value.Type, p.Value)
	case KindUnary, KindBinary:
		return fmt.Sprintf("%s.%s", p.Type, p.Op)
	case KindLoad:
		return fmt.Sprintf("%s.load", p.Type)
	case KindLocalGet, KindLocalSet, KindLocalTee, KindGlobalGet, KindGlobalSet:
		return fmt.Sprintf("%s %d", p.Kind, p.Index)
	case KindBlock, KindLoop:
		if p.Label == "" {
			return p.Kind.String()
		} else {
			return fmt.Sprintf("%s $%s", p.Kind, p.Label)
		}
	case KindBreak:
		if p.Kid(1).Valid() {
			return fmt.Sprintf("br_if $%s", p.Label)
		} else {
			return fmt.Sprintf("br $%s", p.Label)
		}
	case KindSwitch:
		var sb strings.Builder
		sb.WriteString("br_table")
		for _, v := range p.Labels {
			sb.WriteString(" $" + v)
		}
		sb.WriteString(" $" + p.Label)
		return sb.String()
	case KindCall:
		return fmt.Sprintf("call $%s", p.Label)
	default:
		return p.Kind.String()
	}
}
