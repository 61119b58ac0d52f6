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


package opts

import (
	"fmt"
)

// ColorOrder selects the order in which the coalescing allocator assigns
// storage slots to locals.
type ColorOrder uint8

const (
	// ColorByIndex visits locals in ascending index order.
	ColorByIndex ColorOrder = iota

	// ColorByDegree visits locals with more interferences first, ties broken
	// by index.
	ColorByDegree
)

func (self ColorOrder) String() string {
	switch self {
	case ColorByIndex:
		return "index"
	case ColorByDegree:
		return "degree"
	default:
		return fmt.Sprintf("ColorOrder(%d)", uint8(self))
	}
}

func ParseColorOrder(s string) (ColorOrder, error) {
	switch s {
	case "index":
		return ColorByIndex, nil
	case "degree":
		return ColorByDegree, nil
	default:
		return 0, fmt.Errorf("unknown color order %q", s)
	}
}

type Options struct {
	ColorOrder  ColorOrder
	Parallelism int
}

func GetDefaultOptions() Options {
	return Options{
		ColorOrder:  ColorOrderDefault,
		Parallelism: ParallelismDefault,
	}
}
