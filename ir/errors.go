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

import (
	"fmt"
)

// LocalIndexError is returned when a local access refers to a local the
// function does not declare.
type LocalIndexError struct {
	Func      string
	Ref       Ref
	Index     uint32
	NumLocals int
}

func (self LocalIndexError) Error() string {
	return fmt.Sprintf(
		"function %q: node %s accesses local %d, but only %d locals are declared",
		self.Func,
		self.Ref,
		self.Index,
		self.NumLocals,
	)
}

// MalformedNodeError is returned when a node does not have the shape its
// kind requires.
type MalformedNodeError struct {
	Func   string
	Ref    Ref
	Reason string
}

func (self MalformedNodeError) Error() string {
	return fmt.Sprintf("function %q: malformed node %s: %s", self.Func, self.Ref, self.Reason)
}
