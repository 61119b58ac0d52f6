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
	"github.com/cloudwego/wasmflow/internal/cfg"
	"github.com/cloudwego/wasmflow/internal/logs"
	"github.com/cloudwego/wasmflow/ir"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Builder holds the SSA form of a function: which definition every local.get
// observes, and the phi nodes merging definitions at join points.
type Builder struct {
	fn      *ir.Function
	graph   *cfg.Graph[ir.Ref]
	dom     *DominanceTree
	phis    map[int][]*PhiNode
	useDef  map[ir.Ref]Def
	defUses map[Def][]ir.Ref
}

// Build computes the SSA form of fn over its node graph g and the dominance
// tree of g.
func Build(fn *ir.Function, g *cfg.Graph[ir.Ref], dom *DominanceTree) (*Builder, error) {
	b := &Builder{
		fn:      fn,
		graph:   g,
		dom:     dom,
		phis:    make(map[int][]*PhiNode),
		useDef:  make(map[ir.Ref]Def),
		defUses: make(map[Def][]ir.Ref),
	}

	/* Phase 1: find the definition sites */
	sites, err := b.definitionSites()
	if err != nil {
		return nil, err
	}

	/* Phase 2: place the phi nodes */
	b.insertPhiNodes(sites)

	/* Phase 3: rename along the dominator tree */
	if len(dom.Order()) != 0 {
		newRenamer(b).renameblock(dom.Entry)
	}

	/* log the statistics */
	logs.For("ssa", fn.Name).
		WithField("blocks", g.Len()).
		WithField("phis", b.NumPhis()).
		Debug("ssa form built")
	return b, nil
}

// BuildFunction lowers fn to a node graph and computes its SSA form.
func BuildFunction(fn *ir.Function) (*Builder, error) {
	g, err := cfg.Build[ir.Ref](fn, fn.Body, cfg.Nodes)
	if err != nil {
		return nil, errors.Wrapf(err, "ssa: %s", fn.Name)
	}
	b, err := Build(fn, g, BuildDominanceTree(g))
	if err != nil {
		return nil, errors.Wrapf(err, "ssa: %s", fn.Name)
	}
	return b, nil
}

func (self *Builder) use(r ir.Ref, d Def) {
	self.useDef[r] = d
	self.defUses[d] = append(self.defUses[d], r)
}

func (self *Builder) Graph() *cfg.Graph[ir.Ref] {
	return self.graph
}

func (self *Builder) Dominance() *DominanceTree {
	return self.dom
}

// UseDef returns the definition observed by the local.get r. Gets in
// unreachable code have none.
func (self *Builder) UseDef(r ir.Ref) (Def, bool) {
	d, ok := self.useDef[r]
	return d, ok
}

// DefUses returns the local.get nodes observing d, in visiting order.
func (self *Builder) DefUses(d Def) []ir.Ref {
	return self.defUses[d]
}

// Uses returns every resolved local.get in ascending handle order.
func (self *Builder) Uses() []ir.Ref {
	ret := maps.Keys(self.useDef)
	slices.Sort(ret)
	return ret
}

// Phis returns the phi nodes of block b, ordered by local.
func (self *Builder) Phis(b int) []*PhiNode {
	return self.phis[b]
}

// Phi returns the phi node of local v in block b, if any.
func (self *Builder) Phi(b int, v uint32) (*PhiNode, bool) {
	for _, p := range self.phis[b] {
		if p.Local == v {
			return p, true
		}
	}
	return nil, false
}

func (self *Builder) NumPhis() int {
	n := 0
	for _, v := range self.phis {
		n += len(v)
	}
	return n
}

// DefBlock returns the block a definition happens in. Parameter and zero
// definitions happen at the entry.
func (self *Builder) DefBlock(d Def) int {
	switch d.Kind {
	case DefPhi:
		return d.Block
	case DefInstr:
		return self.blockOf(d.Ref)
	default:
		return self.dom.Entry
	}
}

func (self *Builder) blockOf(r ir.Ref) int {
	for _, bb := range self.graph.Blocks {
		if slices.Contains(bb.Ins, r) {
			return bb.Id
		}
	}
	return -1
}
