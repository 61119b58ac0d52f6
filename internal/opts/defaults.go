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
	"os"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
)

const (
	_DefaultColorOrder = ColorByIndex // index-ascending greedy coloring
	_DefaultLogLevel   = logrus.WarnLevel
)

var (
	ColorOrderDefault  = parseOrderOrDefault("WASMFLOW_COLOR_ORDER", _DefaultColorOrder)
	ParallelismDefault = parseOrDefault("WASMFLOW_PARALLELISM", runtime.GOMAXPROCS(0), 1)
	LogLevel           = parseLevelOrDefault("WASMFLOW_LOG_LEVEL", _DefaultLogLevel)
)

func parseOrDefault(key string, def int, min int) int {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseUint(env, 0, 64); err != nil {
		panic("wasmflow: invalid value for " + key)
	} else if ret := int(val); ret < min {
		panic("wasmflow: value too small for " + key)
	} else {
		return ret
	}
}

func parseOrderOrDefault(key string, def ColorOrder) ColorOrder {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := ParseColorOrder(env); err != nil {
		panic("wasmflow: invalid value for " + key)
	} else {
		return val
	}
}

func parseLevelOrDefault(key string, def logrus.Level) logrus.Level {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := logrus.ParseLevel(env); err != nil {
		panic("wasmflow: invalid value for " + key)
	} else {
		return val
	}
}
