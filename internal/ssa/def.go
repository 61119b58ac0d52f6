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
	"fmt"
	"strings"

	"github.com/cloudwego/wasmflow/ir"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type DefKind uint8

const (
	// DefInstr is a local.set or local.tee node.
	DefInstr DefKind = iota

	// DefPhi merges the definitions flowing into a join block.
	DefPhi

	// DefParam is the incoming value of a parameter.
	DefParam

	// DefZero is the implicit zero value of a non-parameter local.
	DefZero
)

// Def identifies one definition of a local. Defs are comparable and can be
// used as map keys.
type Def struct {
	Kind  DefKind
	Ref   ir.Ref
	Block int
	Local uint32
}

func instrDef(r ir.Ref, local uint32) Def {
	return Def{Kind: DefInstr, Ref: r, Block: -1, Local: local}
}

func phiDef(block int, local uint32) Def {
	return Def{Kind: DefPhi, Ref: ir.Nil, Block: block, Local: local}
}

func entryDef(fn *ir.Function, local uint32) Def {
	if fn.IsParam(local) {
		return Def{Kind: DefParam, Ref: ir.Nil, Block: -1, Local: local}
	} else {
		return Def{Kind: DefZero, Ref: ir.Nil, Block: -1, Local: local}
	}
}

func (self Def) String() string {
	switch self.Kind {
	case DefInstr:
		return fmt.Sprintf("instr(%s)", self.Ref)
	case DefPhi:
		return fmt.Sprintf("phi(bb_%d, %d)", self.Block, self.Local)
	case DefParam:
		return fmt.Sprintf("param(%d)", self.Local)
	case DefZero:
		return fmt.Sprintf("zero(%d)", self.Local)
	default:
		return fmt.Sprintf("def(%d)", self.Kind)
	}
}

// PhiNode selects the definition of Local depending on the predecessor
// control arrived from.
type PhiNode struct {
	Local    uint32
	Block    int
	Incoming map[int]Def
}

func (self *PhiNode) Def() Def {
	return phiDef(self.Block, self.Local)
}

func (self *PhiNode) String() string {
	preds := maps.Keys(self.Incoming)
	slices.Sort(preds)

	/* format the incoming definitions in predecessor order */
	args := make([]string, 0, len(preds))
	for _, p := range preds {
		args = append(args, fmt.Sprintf("bb_%d: %s", p, self.Incoming[p]))
	}
	return fmt.Sprintf("%d = phi {%s}", self.Local, strings.Join(args, ", "))
}
