// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/optakt/credit-ledger/models/ledger"
)

// Appender is what the settlement needs from the ledger.
type Appender interface {
	Append(payload ledger.Payload) (ledger.Block, error)
	Blocks() []ledger.Block
}

// Chain wraps the ledger and times block appends, which include mining.
type Chain struct {
	chain    Appender
	duration *prometheus.HistogramVec
	failures prometheus.Counter
}

// NewChain creates a ledger decorator registering its metrics on the given
// registerer.
func NewChain(chain Appender, reg prometheus.Registerer) *Chain {

	factory := promauto.With(reg)

	durationOpts := prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "append_duration_seconds",
		Help:      "time spent mining and appending a block",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	}
	duration := factory.NewHistogramVec(durationOpts, []string{"kind"})

	failureOpts := prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "append_failures_total",
		Help:      "number of failed block appends",
	}
	failures := factory.NewCounter(failureOpts)

	c := Chain{
		chain:    chain,
		duration: duration,
		failures: failures,
	}

	return &c
}

func (c *Chain) Append(payload ledger.Payload) (ledger.Block, error) {
	start := time.Now()
	block, err := c.chain.Append(payload)
	if err != nil {
		c.failures.Inc()
		return ledger.Block{}, err
	}
	c.duration.WithLabelValues(string(payload.Kind)).Observe(time.Since(start).Seconds())
	return block, nil
}

func (c *Chain) Blocks() []ledger.Block {
	return c.chain.Blocks()
}
