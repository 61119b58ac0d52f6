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

// Function owns every node of its body. Locals are numbered with the
// parameters first, followed by Vars.
type Function struct {
	Name    string
	Params  []Type
	Results []Type
	Vars    []Type
	Body    Ref
	nodes   []Node
}

// Module is an ordered collection of functions.
type Module struct {
	Functions []*Function
}

// NewFunction creates an empty function with the given signature.
func NewFunction(name string, params []Type, results []Type) *Function {
	return &Function{
		Name:    name,
		Params:  params,
		Results: results,
		Body:    Nil,
	}
}

// AddVar declares a new non-parameter local and returns its index.
func (self *Function) AddVar(t Type) uint32 {
	self.Vars = append(self.Vars, t)
	return uint32(len(self.Params) + len(self.Vars) - 1)
}

// Add appends a node to the arena and returns its handle.
func (self *Function) Add(n Node) Ref {
	self.nodes = append(self.nodes, n)
	return Ref(len(self.nodes) - 1)
}

// Node returns the node behind r. The pointer stays valid until the next Add.
func (self *Function) Node(r Ref) *Node {
	return &self.nodes[r]
}

func (self *Function) NumNodes() int {
	return len(self.nodes)
}

func (self *Function) NumParams() int {
	return len(self.Params)
}

func (self *Function) NumVars() int {
	return len(self.Vars)
}

func (self *Function) NumLocals() int {
	return len(self.Params) + len(self.Vars)
}

func (self *Function) IsParam(i uint32) bool {
	return int(i) < len(self.Params)
}

func (self *Function) IsVar(i uint32) bool {
	return int(i) >= len(self.Params) && int(i) < self.NumLocals()
}

// LocalType returns the declared type of local i, or None if i is out of range.
func (self *Function) LocalType(i uint32) Type {
	if np := uint32(len(self.Params)); i < np {
		return self.Params[i]
	} else if i -= np; i < uint32(len(self.Vars)) {
		return self.Vars[i]
	} else {
		return None
	}
}

// LocalTypes returns the types of all locals, parameters first.
func (self *Function) LocalTypes() []Type {
	ret := make([]Type, 0, self.NumLocals())
	ret = append(ret, self.Params...)
	ret = append(ret, self.Vars...)
	return ret
}

// Children returns the present children of r in evaluation order.
func (self *Function) Children(r Ref) []Ref {
	p := self.Node(r)
	ret := make([]Ref, 0, len(p.Kids))

	/* skip the absent optional slots */
	for _, c := range p.Kids {
		if c.Valid() {
			ret = append(ret, c)
		}
	}
	return ret
}

// PreOrder visits r and its descendants, parents first. Returning false from
// fn skips the children of the visited node.
func (self *Function) PreOrder(r Ref, fn func(Ref) bool) {
	if r.Valid() && fn(r) {
		for _, c := range self.Node(r).Kids {
			self.PreOrder(c, fn)
		}
	}
}

// PostOrder visits r and its descendants, children first, which is the
// evaluation order of the expression.
func (self *Function) PostOrder(r Ref, fn func(Ref)) {
	if r.Valid() {
		for _, c := range self.Node(r).Kids {
			self.PostOrder(c, fn)
		}
		fn(r)
	}
}

// Replace overwrites the node at dst with the contents of src. The handle
// src is left orphaned.
func (self *Function) Replace(dst Ref, src Ref) {
	if dst != src {
		self.nodes[dst] = self.nodes[src]
	}
}

// MakeNop turns r into a nop.
func (self *Function) MakeNop(r Ref) {
	self.nodes[r] = Node{Kind: KindNop, Type: None}
}

// MakeDrop turns r into a drop of value.
func (self *Function) MakeDrop(r Ref, value Ref) {
	self.nodes[r] = Node{Kind: KindDrop, Type: None, Kids: []Ref{value}}
}

// Clone returns a deep copy of the function.
func (self *Function) Clone() *Function {
	ret := *self
	ret.Params = append([]Type(nil), self.Params...)
	ret.Results = append([]Type(nil), self.Results...)
	ret.Vars = append([]Type(nil), self.Vars...)
	ret.nodes = make([]Node, len(self.nodes))

	/* copy the per-node slices as well */
	for i, n := range self.nodes {
		n.Kids = append([]Ref(nil), n.Kids...)
		n.Labels = append([]string(nil), n.Labels...)
		ret.nodes[i] = n
	}
	return &ret
}
