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

// LocalGraph is a flow-insensitive summary of where every local is written
// and read. A tee writes its local and yields the written value, so it is a
// definition and not a use.
type LocalGraph struct {
	defs [][]Ref
	uses [][]Ref
}

// BuildLocalGraph scans the body of fn in evaluation order. Accesses to
// undeclared locals are ignored; Validate reports those.
func BuildLocalGraph(fn *Function) *LocalGraph {
	n := fn.NumLocals()
	ret := &LocalGraph{
		defs: make([][]Ref, n),
		uses: make([][]Ref, n),
	}

	/* record every access */
	fn.PostOrder(fn.Body, func(r Ref) {
		p := fn.Node(r)
		if !p.Kind.IsLocalAccess() || int(p.Index) >= n {
			return
		}
		if p.Kind == KindLocalGet {
			ret.uses[p.Index] = append(ret.uses[p.Index], r)
		} else {
			ret.defs[p.Index] = append(ret.defs[p.Index], r)
		}
	})
	return ret
}

func (self *LocalGraph) NumLocals() int {
	return len(self.defs)
}

// Definitions returns the sets and tees of local i in evaluation order.
func (self *LocalGraph) Definitions(i uint32) []Ref {
	if int(i) < len(self.defs) {
		return self.defs[i]
	} else {
		return nil
	}
}

// Uses returns the gets of local i in evaluation order.
func (self *LocalGraph) Uses(i uint32) []Ref {
	if int(i) < len(self.uses) {
		return self.uses[i]
	} else {
		return nil
	}
}

func (self *LocalGraph) DefCount(i uint32) int { return len(self.Definitions(i)) }
func (self *LocalGraph) UseCount(i uint32) int { return len(self.Uses(i)) }
func (self *LocalGraph) IsUnused(i uint32) bool { return self.UseCount(i) == 0 }

// SingleDef returns the only definition of local i, if there is exactly one.
func (self *LocalGraph) SingleDef(i uint32) (Ref, bool) {
	if d := self.Definitions(i); len(d) == 1 {
		return d[0], true
	} else {
		return Nil, false
	}
}

// SingleUse returns the only use of local i, if there is exactly one.
func (self *LocalGraph) SingleUse(i uint32) (Ref, bool) {
	if u := self.Uses(i); len(u) == 1 {
		return u[0], true
	} else {
		return Nil, false
	}
}

// ReadLocals returns a bitmap of the locals that are read anywhere.
func (self *LocalGraph) ReadLocals() []bool {
	ret := make([]bool, len(self.uses))
	for i, u := range self.uses {
		ret[i] = len(u) != 0
	}
	return ret
}
