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
	"github.com/cloudwego/wasmflow/internal/cfg"
	"github.com/cloudwego/wasmflow/internal/logs"
	"github.com/cloudwego/wasmflow/ir"
)

// Result bundles everything the local allocator needs from one analysis run.
type Result struct {
	Graph        *cfg.Graph[Action]
	Live         *Liveness
	Interference *Interference
}

// Compute validates fn, then runs the liveness and interference analyses.
func Compute(fn *ir.Function) (*Result, error) {
	if err := fn.Validate(); err != nil {
		return nil, err
	}

	/* lower the body into blocks of local accesses */
	g, err := BuildGraph(fn)
	if err != nil {
		return nil, err
	}

	/* live sets first, interference needs them */
	live := Analyze(g)
	ret := &Result{
		Graph:        g,
		Live:         live,
		Interference: Interfere(fn, g, live),
	}

	/* log the statistics */
	logs.For("liveness", fn.Name).
		WithField("blocks", g.Len()).
		WithField("interferences", len(ret.Interference.Edges())).
		Debug("liveness computed")
	return ret, nil
}

// Ineffective returns the sets and tees whose written value is never read.
func (self *Result) Ineffective() []ir.Ref {
	var ret []ir.Ref
	for _, bb := range self.Graph.Blocks {
		for _, act := range bb.Ins {
			if act.Kind == Set && !act.Effective {
				ret = append(ret, act.Origin)
			}
		}
	}
	return ret
}
