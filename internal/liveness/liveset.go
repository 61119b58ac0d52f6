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

package liveness

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type (
	LiveSet map[uint32]struct{}
)

func (self LiveSet) add(v uint32) bool {
	if _, ok := self[v]; ok {
		return false
	} else {
		self[v] = struct{}{}
		return true
	}
}

func (self LiveSet) remove(v uint32) bool {
	if _, ok := self[v]; !ok {
		return false
	} else {
		delete(self, v)
		return true
	}
}

func (self LiveSet) union(other LiveSet) {
	for v := range other {
		self.add(v)
	}
}

func (self LiveSet) Has(v uint32) bool {
	_, ok := self[v]
	return ok
}

func (self LiveSet) Clone() (rs LiveSet) {
	rs = make(LiveSet, len(self))
	for v := range self {
		rs.add(v)
	}
	return
}

func (self LiveSet) Equal(other LiveSet) bool {
	if len(self) != len(other) {
		return false
	}
	for v := range self {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// Slice returns the members in ascending order.
func (self LiveSet) Slice() []uint32 {
	rs := maps.Keys(self)
	slices.Sort(rs)
	return rs
}

func (self LiveSet) String() string {
	rr := self.Slice()
	rs := make([]string, 0, len(rr))

	/* convert every local */
	for _, v := range rr {
		rs = append(rs, fmt.Sprint(v))
	}

	/* join them together */
	return fmt.Sprintf(
		"{%s}",
		strings.Join(rs, ", "),
	)
}
