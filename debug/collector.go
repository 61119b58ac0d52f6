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
	"github.com/prometheus/client_golang/prometheus"
)

type _Counter struct {
	desc  *prometheus.Desc
	value func(Stats) int
}

// Collector exports the pass statistics as prometheus counters.
type Collector struct {
	counters []_Counter
}

func counter(name string, help string, value func(Stats) int) _Counter {
	return _Counter{
		desc:  prometheus.NewDesc(prometheus.BuildFQName("wasmflow", "coalesce", name), help, nil, nil),
		value: value,
	}
}

// NewCollector creates a collector reading GetStats on every scrape.
func NewCollector() *Collector {
	return &Collector{
		counters: []_Counter{
			counter("functions_total", "Functions processed by the local coalescing pass.", func(s Stats) int { return s.Coalesce.Functions }),
			counter("locals_before_total", "Locals declared before coalescing.", func(s Stats) int { return s.Coalesce.LocalsBefore }),
			counter("locals_after_total", "Locals declared after coalescing.", func(s Stats) int { return s.Coalesce.LocalsAfter }),
			counter("stores_removed_total", "Dead or ineffective local stores removed.", func(s Stats) int { return s.Coalesce.StoresRemoved }),
			counter("copies_removed_total", "Local self copies removed.", func(s Stats) int { return s.Coalesce.CopiesRemoved }),
		},
	}
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range self.counters {
		ch <- c.desc
	}
}

func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	st := GetStats()
	for _, c := range self.counters {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.CounterValue, float64(c.value(st)))
	}
}
