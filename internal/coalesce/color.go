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

package coalesce

import (
	"sort"

	"github.com/cloudwego/wasmflow/internal/liveness"
	"github.com/cloudwego/wasmflow/internal/opts"
	"github.com/cloudwego/wasmflow/ir"
)

type _Coloring struct {
	mapping []uint32
	classes [][]uint32
}

// visitOrder returns the non-parameter locals in the order they get colored.
func visitOrder(fn *ir.Function, ig *liveness.Interference, order opts.ColorOrder) []uint32 {
	np := fn.NumParams()
	ret := make([]uint32, 0, fn.NumVars())
	for i := np; i < fn.NumLocals(); i++ {
		ret = append(ret, uint32(i))
	}

	/* index order needs nothing else */
	if order != opts.ColorByDegree {
		return ret
	}

	/* most constrained first, ties broken by index */
	ug := ig.Undirected()
	deg := make(map[uint32]int, len(ret))
	for _, v := range ret {
		deg[v] = ug.From(int64(v)).Len()
	}
	sort.SliceStable(ret, func(i int, j int) bool {
		return deg[ret[i]] > deg[ret[j]]
	})
	return ret
}

// color greedily assigns every variable to the first slot holding locals of
// the same type, none of which interferes with it. Parameters keep their
// own slots.
func color(fn *ir.Function, ig *liveness.Interference, order opts.ColorOrder) *_Coloring {
	np := uint32(fn.NumParams())
	types := fn.LocalTypes()
	ret := &_Coloring{mapping: make([]uint32, fn.NumLocals())}

	/* parameters are dictated by the signature */
	for i := uint32(0); i < np; i++ {
		ret.mapping[i] = i
	}

	/* try the existing classes first */
	for _, v := range visitOrder(fn, ig, order) {
		slot := -1
		for j, members := range ret.classes {
			if types[members[0]] == types[v] && !interferesWithAny(ig, v, members) {
				slot = j
				break
			}
		}

		/* open a new class if nothing fits */
		if slot < 0 {
			slot = len(ret.classes)
			ret.classes = append(ret.classes, nil)
		}
		ret.classes[slot] = append(ret.classes[slot], v)
		ret.mapping[v] = np + uint32(slot)
	}
	return ret
}

func interferesWithAny(ig *liveness.Interference, v uint32, members []uint32) bool {
	for _, m := range members {
		if ig.Interferes(v, m) {
			return true
		}
	}
	return false
}

// vars returns the variable types after coalescing, one per class.
func (self *_Coloring) vars(fn *ir.Function) []ir.Type {
	ret := make([]ir.Type, len(self.classes))
	for i, members := range self.classes {
		ret[i] = fn.LocalType(members[0])
	}
	return ret
}
