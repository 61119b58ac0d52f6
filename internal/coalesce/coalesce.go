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

// Package coalesce merges non-interfering locals of a function into shared
// slots, then removes the stores and copies that became redundant.
package coalesce

import (
	"sync/atomic"

	"github.com/cloudwego/wasmflow/internal/liveness"
	"github.com/cloudwego/wasmflow/internal/logs"
	"github.com/cloudwego/wasmflow/internal/opts"
	"github.com/cloudwego/wasmflow/ir"
	"github.com/pkg/errors"
)

var (
	FuncCount     uint64 = 0
	LocalsBefore  uint64 = 0
	LocalsAfter   uint64 = 0
	StoresRemoved uint64 = 0
	CopiesRemoved uint64 = 0
)

// Result describes what one run did to a function.
type Result struct {
	Mapping       []uint32
	LocalsBefore  int
	LocalsAfter   int
	StoresRemoved int
	CopiesRemoved int
}

// Run coalesces the locals of fn in place. On error fn is left untouched.
func Run(fn *ir.Function, o opts.Options) (*Result, error) {
	res, err := liveness.Compute(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "coalesce-locals: %s", fn.Name)
	}

	/* assign the slots, nothing below can fail */
	col := color(fn, res.Interference, o.ColorOrder)
	ret := &Result{
		Mapping:      col.mapping,
		LocalsBefore: fn.NumLocals(),
	}

	/* Phase 1: drop the ineffective stores, remap, and remove self copies */
	rw := newRewriter(fn, col.mapping, res.Ineffective())
	rw.remap()

	/* Phase 2: the slot table follows the classes */
	fn.Vars = col.vars(fn)

	/* Phase 3: stores to slots nobody reads are dead */
	rw.removeDeadStores(ir.BuildLocalGraph(fn).ReadLocals())

	/* update the statistics */
	ret.LocalsAfter = fn.NumLocals()
	ret.StoresRemoved = rw.stores
	ret.CopiesRemoved = rw.copies
	atomic.AddUint64(&FuncCount, 1)
	atomic.AddUint64(&LocalsBefore, uint64(ret.LocalsBefore))
	atomic.AddUint64(&LocalsAfter, uint64(ret.LocalsAfter))
	atomic.AddUint64(&StoresRemoved, uint64(ret.StoresRemoved))
	atomic.AddUint64(&CopiesRemoved, uint64(ret.CopiesRemoved))

	/* log the result */
	logs.For("coalesce-locals", fn.Name).
		WithField("before", ret.LocalsBefore).
		WithField("after", ret.LocalsAfter).
		WithField("stores", ret.StoresRemoved).
		WithField("copies", ret.CopiesRemoved).
		Debug("locals coalesced")
	return ret, nil
}
