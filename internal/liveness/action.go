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

package liveness

import (
	"fmt"
	"strings"

	"github.com/cloudwego/wasmflow/internal/cfg"
	"github.com/cloudwego/wasmflow/ir"
)

type ActionKind uint8

const (
	Get ActionKind = iota
	Set
)

func (self ActionKind) String() string {
	switch self {
	case Get:
		return "get"
	case Set:
		return "set"
	default:
		return fmt.Sprintf("ActionKind(%d)", uint8(self))
	}
}

// Action is one local access inside a basic block. A local.tee is a Set.
// A Set whose value is a bare local.get is a copy of that local.
type Action struct {
	Kind          ActionKind
	Index         uint32
	Origin        ir.Ref
	Copy          uint32
	IsCopy        bool
	Effective     bool
	EndsLiveRange bool
}

func (self Action) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d", self.Kind, self.Index)

	/* copies name their source */
	if self.IsCopy {
		fmt.Fprintf(&sb, " <- %d", self.Copy)
	}

	/* the interference flags */
	if self.Effective {
		sb.WriteString(" effective")
	}
	if self.EndsLiveRange {
		sb.WriteString(" last")
	}
	return sb.String()
}

// Record is a cfg.Recorder that keeps the local accesses and nothing else.
func Record(fn *ir.Function, r ir.Ref) (Action, bool) {
	switch p := fn.Node(r); p.Kind {
	case ir.KindLocalGet:
		return Action{Kind: Get, Index: p.Index, Origin: r}, true
	case ir.KindLocalSet, ir.KindLocalTee:
		act := Action{Kind: Set, Index: p.Index, Origin: r}
		if v := p.Operand(); v.Valid() && fn.Node(v).Kind == ir.KindLocalGet {
			act.Copy = fn.Node(v).Index
			act.IsCopy = true
		}
		return act, true
	default:
		return Action{}, false
	}
}

// BuildGraph lowers fn into basic blocks of local accesses.
func BuildGraph(fn *ir.Function) (*cfg.Graph[Action], error) {
	return cfg.Build[Action](fn, fn.Body, Record)
}
