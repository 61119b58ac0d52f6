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

package debug

import (
	"sync/atomic"

	"github.com/cloudwego/wasmflow/internal/coalesce"
)

// A Stats records statistics about the optimization passes.
type Stats struct {
	Coalesce CoalesceStats
}

// A CoalesceStats records what the local coalescing pass did so far.
type CoalesceStats struct {
	Functions     int
	LocalsBefore  int
	LocalsAfter   int
	StoresRemoved int
	CopiesRemoved int
}

// LocalsSaved is the number of local slots the pass got rid of.
func (self CoalesceStats) LocalsSaved() int {
	return self.LocalsBefore - self.LocalsAfter
}

// GetStats returns statistics of the optimization passes.
func GetStats() Stats {
	return Stats{
		Coalesce: CoalesceStats{
			Functions:     int(atomic.LoadUint64(&coalesce.FuncCount)),
			LocalsBefore:  int(atomic.LoadUint64(&coalesce.LocalsBefore)),
			LocalsAfter:   int(atomic.LoadUint64(&coalesce.LocalsAfter)),
			StoresRemoved: int(atomic.LoadUint64(&coalesce.StoresRemoved)),
			CopiesRemoved: int(atomic.LoadUint64(&coalesce.CopiesRemoved)),
		},
	}
}
