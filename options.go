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

package wasmflow

import (
	"fmt"

	"github.com/cloudwego/wasmflow/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// ColorOrder selects the order in which locals are assigned to slots.
type ColorOrder = opts.ColorOrder

const (
	// ColorByIndex assigns slots in ascending local index order.
	ColorByIndex = opts.ColorByIndex

	// ColorByDegree assigns slots to the most constrained locals first.
	ColorByDegree = opts.ColorByDegree
)

// WithColorOrder sets the order in which the coalescing pass assigns slots.
//
// ColorByIndex reproduces the classic lowest-index-first greedy assignment,
// ColorByDegree visits locals with more interferences first, which sometimes
// needs fewer slots.
//
// The default value of this option is ColorByIndex.
func WithColorOrder(order ColorOrder) Option {
	if order != ColorByIndex && order != ColorByDegree {
		panic(fmt.Sprintf("wasmflow: invalid color order: %s", order))
	} else {
		return func(o *opts.Options) { o.ColorOrder = order }
	}
}

// WithParallelism sets how many functions CoalesceModule processes at once.
//
// The default value of this option is runtime.GOMAXPROCS(0).
func WithParallelism(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("wasmflow: invalid parallelism: %d", n))
	} else {
		return func(o *opts.Options) { o.Parallelism = n }
	}
}

// SetColorOrder sets the default color order for all passes from now on.
//
// This value can also be configured with the `WASMFLOW_COLOR_ORDER`
// environment variable, either "index" or "degree".
//
// Returns the old opts.ColorOrderDefault value.
func SetColorOrder(order ColorOrder) ColorOrder {
	order, opts.ColorOrderDefault = opts.ColorOrderDefault, order
	return order
}

// SetParallelism sets the default parallelism for all passes from now on.
//
// This value can also be configured with the `WASMFLOW_PARALLELISM`
// environment variable.
//
// Returns the old opts.ParallelismDefault value.
func SetParallelism(n int) int {
	n, opts.ParallelismDefault = opts.ParallelismDefault, n
	return n
}

func buildOptions(options []Option) opts.Options {
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}
	return o
}
