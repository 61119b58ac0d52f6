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
)

// UnresolvedLabelError is returned when a break names no enclosing block or loop.
type UnresolvedLabelError struct {
	Label string
}

func (self UnresolvedLabelError) Error() string {
	if self.Label == "" {
		return "branch without a target label"
	} else {
		return fmt.Sprintf("unresolved branch label %q", self.Label)
	}
}
