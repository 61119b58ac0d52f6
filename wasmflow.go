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

// Package wasmflow runs dataflow optimizations over functions of a
// WebAssembly-like expression tree.
package wasmflow

import (
	"context"

	"github.com/cloudwego/wasmflow/internal/coalesce"
	"github.com/cloudwego/wasmflow/ir"
	"golang.org/x/sync/errgroup"
)

// Result describes what coalescing did to one function.
type Result = coalesce.Result

// CoalesceLocals merges the locals of fn that are never live at the same
// time into shared slots, and removes the stores and copies that became
// redundant. fn is modified in place, or left untouched if an error is
// returned.
func CoalesceLocals(fn *ir.Function, options ...Option) (*Result, error) {
	return coalesce.Run(fn, buildOptions(options))
}

// CoalesceModule runs CoalesceLocals over every function of mod, several
// functions at a time. It stops at the first error; functions that were
// already processed stay modified. The results are in function order.
func CoalesceModule(ctx context.Context, mod *ir.Module, options ...Option) ([]*Result, error) {
	o := buildOptions(options)
	ret := make([]*Result, len(mod.Functions))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.Parallelism)

	/* one task per function */
	for i, fn := range mod.Functions {
		i, fn := i, fn
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := coalesce.Run(fn, o)
			ret[i] = res
			return err
		})
	}

	/* wait for all of them */
	if err := eg.Wait(); err != nil {
		return nil, err
	} else {
		return ret, nil
	}
}
