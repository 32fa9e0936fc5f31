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

package mocks

import (
	"testing"

	"github.com/optakt/credit-ledger/models/ledger"
)

type Gate struct {
	DecideFunc func(proposal ledger.Proposal) ledger.Decision
}

func BaselineGate(t *testing.T) *Gate {
	t.Helper()

	g := Gate{
		DecideFunc: func(ledger.Proposal) ledger.Decision {
			return GenericCommitted
		},
	}

	return &g
}

func (g *Gate) Decide(proposal ledger.Proposal) ledger.Decision {
	return g.DecideFunc(proposal)
}

var (
	GenericCommitted = ledger.Decision{
		Outcome: ledger.OutcomeCommitted,
		Tally:   ledger.Tally{Validators: 4, Threshold: 3, Prepare: 4, Commit: 4},
	}

	GenericAborted = ledger.Decision{
		Outcome: ledger.OutcomeAborted,
		Tally:   ledger.Tally{Validators: 4, Threshold: 3, Prepare: 0, Reason: "prepare below threshold"},
	}
)
