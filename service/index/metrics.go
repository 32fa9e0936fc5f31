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

package index

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/optakt/credit-ledger/models/ledger"
)

const (
	labelKind = "kind"
	labelRole = "role"
)

// MetricsWriter wraps an archive writer and records metrics for the data it
// writes.
type MetricsWriter struct {
	write ledger.Writer

	blocks   *prometheus.CounterVec
	height   prometheus.Gauge
	accounts *prometheus.CounterVec
}

// NewMetricsWriter creates a new archive writer that records metrics on the
// given registerer before forwarding to the wrapped writer.
func NewMetricsWriter(write ledger.Writer, reg prometheus.Registerer) *MetricsWriter {

	factory := promauto.With(reg)

	blockOpts := prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "archived_blocks_total",
		Help:      "number of archived blocks",
	}
	blocks := factory.NewCounterVec(blockOpts, []string{labelKind})

	heightOpts := prometheus.GaugeOpts{
		Namespace: "ledger",
		Name:      "chain_height",
		Help:      "height of the last archived block",
	}
	height := factory.NewGauge(heightOpts)

	accountOpts := prometheus.CounterOpts{
		Namespace: "ledger",
		Name:      "archived_accounts_total",
		Help:      "number of archived account updates",
	}
	accounts := factory.NewCounterVec(accountOpts, []string{labelRole})

	w := MetricsWriter{
		write:    write,
		blocks:   blocks,
		height:   height,
		accounts: accounts,
	}

	return &w
}

// Block forwards the block and, on success, counts it and updates the height.
func (w *MetricsWriter) Block(block ledger.Block) error {
	err := w.write.Block(block)
	if err != nil {
		return err
	}

	w.blocks.WithLabelValues(string(block.Payload.Kind)).Inc()
	w.height.Set(float64(block.Height))

	return nil
}

// Account forwards the account and, on success, counts the update.
func (w *MetricsWriter) Account(account ledger.Account) error {
	err := w.write.Account(account)
	if err != nil {
		return err
	}

	w.accounts.WithLabelValues(string(account.Role)).Inc()

	return nil
}
