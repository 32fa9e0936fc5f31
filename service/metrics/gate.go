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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/optakt/credit-ledger/models/ledger"
)

// Decider is what the settlement needs from the quorum gate.
type Decider interface {
	Decide(proposal ledger.Proposal) ledger.Decision
}

// Gate wraps a quorum gate and counts its decisions.
type Gate struct {
	gate      Decider
	decisions *prometheus.CounterVec
	votes     *prometheus.CounterVec
}

// NewGate creates a gate decorator registering its counters on the given
// registerer.
func NewGate(gate Decider, reg prometheus.Registerer) *Gate {

	factory := promauto.With(reg)

	decisionOpts := prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "number of quorum decisions by outcome",
	}
	decisions := factory.NewCounterVec(decisionOpts, []string{"outcome"})

	voteOpts := prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_votes_total",
		Help:      "number of affirmative validator votes by phase",
	}
	votes := factory.NewCounterVec(voteOpts, []string{"phase"})

	g := Gate{
		gate:      gate,
		decisions: decisions,
		votes:     votes,
	}

	return &g
}

func (g *Gate) Decide(proposal ledger.Proposal) ledger.Decision {
	decision := g.gate.Decide(proposal)
	g.decisions.WithLabelValues(decision.Outcome.String()).Inc()
	g.votes.WithLabelValues("prepare").Add(float64(decision.Tally.Prepare))
	g.votes.WithLabelValues("commit").Add(float64(decision.Tally.Commit))
	return decision
}
