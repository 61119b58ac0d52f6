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

package cfg

import (
	"fmt"
	"html"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "    ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump returns a deep, deterministic dump of the graph for diagnostics.
func (self *Graph[T]) Dump() string {
	return dumpConfig.Sdump(self.Blocks)
}

// Dot renders the graph in graphviz format. The label function formats a
// single payload value; unreachable blocks are drawn dashed.
func (self *Graph[T]) Dot(name string, label func(T) string) string {
	var sb strings.Builder
	rs := self.Reachable()

	/* graph header */
	fmt.Fprintf(&sb, "digraph %q {\n", name)
	sb.WriteString("    node [shape=plaintext fontname=\"monospace\"];\n")

	/* one html table per block */
	for _, bb := range self.Blocks {
		style := ""
		if !rs[bb.Id] {
			style = " style=\"dashed\""
		}

		/* block header and contents */
		fmt.Fprintf(&sb, "    bb_%d [label=<<table border=\"1\" cellborder=\"0\"%s>", bb.Id, style)
		fmt.Fprintf(&sb, "<tr><td align=\"left\"><b>bb_%d</b></td></tr>", bb.Id)
		for _, v := range bb.Ins {
			fmt.Fprintf(&sb, "<tr><td align=\"left\">%s</td></tr>", html.EscapeString(label(v)))
		}
		sb.WriteString("</table>>];\n")
	}

	/* edges */
	for _, bb := range self.Blocks {
		for _, to := range bb.Succ {
			fmt.Fprintf(&sb, "    bb_%d -> bb_%d;\n", bb.Id, to)
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}
