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

type _Arity struct {
	min int
	max int
}

const _Any = -1

var arities = [...]_Arity{
	KindNop:         {0, 0},
	KindConst:       {0, 0},
	KindUnary:       {1, 1},
	KindBinary:      {2, 2},
	KindLocalGet:    {0, 0},
	KindLocalSet:    {1, 1},
	KindLocalTee:    {1, 1},
	KindGlobalGet:   {0, 0},
	KindGlobalSet:   {1, 1},
	KindBlock:       {0, _Any},
	KindLoop:        {1, 1},
	KindIf:          {2, 3},
	KindBreak:       {2, 2},
	KindSwitch:      {2, 2},
	KindReturn:      {1, 1},
	KindUnreachable: {0, 0},
	KindDrop:        {1, 1},
	KindSelect:      {3, 3},
	KindCall:        {0, _Any},
	KindLoad:        {1, 1},
	KindStore:       {2, 2},
	KindMemorySize:  {0, 0},
	KindMemoryGrow:  {1, 1},
}

// Validate checks that the body is a well-formed tree: every child handle is
// in range, no node has two parents, every node has the child shape of its
// kind, and every local access names a declared local.
func (self *Function) Validate() error {
	if !self.Body.Valid() {
		return nil
	}

	/* the body itself must exist */
	if int(self.Body) >= len(self.nodes) {
		return MalformedNodeError{self.Name, self.Body, "body handle out of range"}
	}

	/* walk the tree, parents first */
	var err error
	seen := make([]bool, len(self.nodes))
	self.PreOrder(self.Body, func(r Ref) bool {
		if err != nil {
			return false
		}
		if seen[r] {
			err = MalformedNodeError{self.Name, r, "node has more than one parent"}
			return false
		}
		seen[r] = true
		err = self.checkNode(r)
		return err == nil
	})
	return err
}

func (self *Function) checkNode(r Ref) error {
	p := self.Node(r)
	if int(p.Kind) >= len(arities) {
		return MalformedNodeError{self.Name, r, fmt.Sprintf("unknown node kind %s", p.Kind)}
	}

	/* check the number of child slots */
	ar := arities[p.Kind]
	if n := len(p.Kids); n < ar.min || (ar.max != _Any && n > ar.max) {
		return MalformedNodeError{self.Name, r, fmt.Sprintf("%s has %d child slots", p.Kind, n)}
	}

	/* check every child handle */
	for i, c := range p.Kids {
		if c == Nil {
			if !self.isOptionalSlot(p, i) {
				return MalformedNodeError{self.Name, r, fmt.Sprintf("%s is missing child %d", p.Kind, i)}
			}
		} else if c < 0 || int(c) >= len(self.nodes) {
			return MalformedNodeError{self.Name, r, fmt.Sprintf("child %d handle %s out of range", i, c)}
		}
	}

	/* local accesses must stay within the declared locals */
	if p.Kind.IsLocalAccess() && int(p.Index) >= self.NumLocals() {
		return LocalIndexError{self.Name, r, p.Index, self.NumLocals()}
	}
	return nil
}

func (self *Function) isOptionalSlot(p *Node, i int) bool {
	switch p.Kind {
	case KindBreak, KindReturn:
		return true
	case KindSwitch:
		return i == 0
	default:
		return false
	}
}
