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


package logs

import (
	"os"

	"github.com/cloudwego/wasmflow/internal/opts"
	"github.com/sirupsen/logrus"
)

var std = newLogger()

func newLogger() *logrus.Logger {
	ret := logrus.New()
	ret.SetOutput(os.Stderr)
	ret.SetLevel(opts.LogLevel)
	ret.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return ret
}

// Logger returns the logger shared by all passes.
func Logger() *logrus.Logger {
	return std
}

// For returns an entry tagged with the pass and the function it works on.
func For(pass string, fn string) *logrus.Entry {
	return std.WithFields(logrus.Fields{
		"pass": pass,
		"func": fn,
	})
}
