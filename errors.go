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
	"github.com/cloudwego/wasmflow/internal/cfg"
	"github.com/cloudwego/wasmflow/ir"
)

type (
	// UnresolvedLabelError occurs when a branch names no enclosing block or loop.
	UnresolvedLabelError = cfg.UnresolvedLabelError

	// LocalIndexError occurs when a local access names an undeclared local.
	LocalIndexError = ir.LocalIndexError

	// MalformedNodeError occurs when a node does not have the shape of its kind.
	MalformedNodeError = ir.MalformedNodeError
)
