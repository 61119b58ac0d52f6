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

// Package liveness computes which locals are live at every point of a
// function, and which locals interfere with each other.
package liveness

import (
	"github.com/cloudwego/wasmflow/internal/cfg"
	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "    ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Liveness holds the locals live on entry to and on exit from every block.
type Liveness struct {
	In  []LiveSet
	Out []LiveSet
}

func newLiveness(n int) *Liveness {
	ret := &Liveness{
		In:  make([]LiveSet, n),
		Out: make([]LiveSet, n),
	}
	for i := 0; i < n; i++ {
		ret.In[i] = make(LiveSet)
		ret.Out[i] = make(LiveSet)
	}
	return ret
}

// Analyze runs the backward dataflow over g until no set changes.
func Analyze(g *cfg.Graph[Action]) *Liveness {
	ret := newLiveness(g.Len())
	for ret.Iterate(g) {
	}
	return ret
}

// Iterate runs one full pass over the blocks of g in reverse id order and
// reports whether any set changed. Both sets only ever grow.
func (self *Liveness) Iterate(g *cfg.Graph[Action]) bool {
	changed := false
	for id := g.Len() - 1; id >= 0; id-- {
		bb := g.Block(id)
		out := self.Out[id]

		/* live-out(b) = ∑(live-in(succ(b))) */
		for _, s := range bb.Succ {
			for v := range self.In[s] {
				if out.add(v) {
					changed = true
				}
			}
		}

		/* live(i-1) = use(i) ∪ (live(i) - { def(i) }) */
		live := out.Clone()
		for i := len(bb.Ins) - 1; i >= 0; i-- {
			if act := bb.Ins[i]; act.Kind == Set {
				live.remove(act.Index)
			} else {
				live.add(act.Index)
			}
		}

		/* merge into live-in */
		for v := range live {
			if self.In[id].add(v) {
				changed = true
			}
		}
	}
	return changed
}

func (self *Liveness) Clone() *Liveness {
	ret := &Liveness{
		In:  make([]LiveSet, len(self.In)),
		Out: make([]LiveSet, len(self.Out)),
	}
	for i := range self.In {
		ret.In[i] = self.In[i].Clone()
		ret.Out[i] = self.Out[i].Clone()
	}
	return ret
}

func (self *Liveness) Equal(other *Liveness) bool {
	if len(self.In) != len(other.In) {
		return false
	}
	for i := range self.In {
		if !self.In[i].Equal(other.In[i]) || !self.Out[i].Equal(other.Out[i]) {
			return false
		}
	}
	return true
}

// Dump returns a deterministic dump of the live sets for diagnostics.
func (self *Liveness) Dump() string {
	return dumpConfig.Sdump(self)
}
