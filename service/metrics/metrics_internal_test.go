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
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/credit-ledger/codec/zbor"
	"github.com/optakt/credit-ledger/models/ledger"
	"github.com/optakt/credit-ledger/testing/mocks"
)

func TestGate(t *testing.T) {
	inner := mocks.BaselineGate(t)
	outcomes := []ledger.Decision{mocks.GenericCommitted, mocks.GenericAborted, mocks.GenericCommitted}
	calls := 0
	inner.DecideFunc = func(ledger.Proposal) ledger.Decision {
		decision := outcomes[calls]
		calls++
		return decision
	}

	gate := NewGate(inner, prometheus.NewRegistry())
	for i := range outcomes {
		decision := gate.Decide(ledger.Proposal{})
		assert.Equal(t, outcomes[i], decision)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(gate.decisions.WithLabelValues("committed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(gate.decisions.WithLabelValues("aborted")))
	assert.Equal(t, 8.0, testutil.ToFloat64(gate.votes.WithLabelValues("prepare")))
	assert.Equal(t, 8.0, testutil.ToFloat64(gate.votes.WithLabelValues("commit")))
}

func TestChain(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		inner := mocks.BaselineChain(t)
		chain := NewChain(inner, prometheus.NewRegistry())

		block, err := chain.Append(mocks.GenericIssuance)
		require.NoError(t, err)
		assert.Equal(t, mocks.GenericIssuance, block.Payload)
		assert.Equal(t, []ledger.Block{mocks.GenericBlock}, chain.Blocks())

		assert.Equal(t, 1, testutil.CollectAndCount(chain.duration))
		assert.Zero(t, testutil.ToFloat64(chain.failures))
	})

	t.Run("handles append failure", func(t *testing.T) {
		t.Parallel()

		inner := mocks.BaselineChain(t)
		inner.AppendFunc = func(ledger.Payload) (ledger.Block, error) {
			return ledger.Block{}, mocks.GenericError
		}
		chain := NewChain(inner, prometheus.NewRegistry())

		_, err := chain.Append(mocks.GenericIssuance)
		assert.ErrorIs(t, err, mocks.GenericError)
		assert.Equal(t, 1.0, testutil.ToFloat64(chain.failures))
		assert.Zero(t, testutil.CollectAndCount(chain.duration))
	})
}

func TestObserver(t *testing.T) {
	deliveries := NewDeliveries(prometheus.NewRegistry())

	good := deliveries.Wrap(mocks.BaselineObserver(t))
	failing := mocks.BaselineObserver(t)
	failing.SendFunc = func(ledger.Message) error {
		return mocks.GenericError
	}
	bad := deliveries.Wrap(failing)

	assert.NoError(t, good.Send(ledger.Message{Topic: ledger.TopicChain}))
	assert.NoError(t, good.Send(ledger.Message{Topic: ledger.TopicBalance}))
	assert.ErrorIs(t, bad.Send(ledger.Message{Topic: ledger.TopicChain}), mocks.GenericError)

	assert.Equal(t, "observer", good.ID())
	assert.NoError(t, good.Close())

	assert.Equal(t, 1.0, testutil.ToFloat64(deliveries.sent.WithLabelValues("chain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(deliveries.sent.WithLabelValues("balance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(deliveries.failed.WithLabelValues("chain")))
}

func TestCodec(t *testing.T) {
	inner, err := zbor.NewCodec()
	require.NoError(t, err)

	codec := NewCodec(inner, prometheus.NewRegistry())

	data, err := codec.Marshal(mocks.GenericBlock)
	require.NoError(t, err)
	_, err = codec.Marshal(uint64(3))
	require.NoError(t, err)

	var block ledger.Block
	err = codec.Unmarshal(data, &block)
	require.NoError(t, err)
	assert.Equal(t, mocks.GenericBlock, block)

	assert.Equal(t, float64(len(data)), testutil.ToFloat64(codec.compressed.WithLabelValues("block")))
	assert.Greater(t, testutil.ToFloat64(codec.encoded.WithLabelValues("block")), 0.0)
	assert.Greater(t, testutil.ToFloat64(codec.encoded.WithLabelValues("height")), 0.0)
}

func TestRegisterBadgerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	err := RegisterBadgerMetrics(reg)
	require.NoError(t, err)

	err = RegisterBadgerMetrics(reg)
	assert.Error(t, err)
}

func TestServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	gate := NewGate(mocks.BaselineGate(t), reg)
	gate.Decide(ledger.Proposal{})

	server := NewServer(mocks.NoopLogger, "127.0.0.1:0", reg)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	server.server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "ledger_gate_decisions_total"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, server.Stop(ctx))
}
