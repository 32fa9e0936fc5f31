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

package quorum_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/credit-ledger/models/ledger"
	"github.com/optakt/credit-ledger/service/quorum"
	"github.com/optakt/credit-ledger/testing/mocks"
)

var proposal = ledger.Proposal{
	ID:        "proposal-1",
	Kind:      ledger.KindIssuance,
	Payload:   mocks.GenericIssuance,
	Requester: mocks.GenericIssuer,
}

func TestThreshold(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{n: 1, want: 1},
		{n: 2, want: 1},
		{n: 3, want: 1},
		{n: 4, want: 3},
		{n: 6, want: 3},
		{n: 7, want: 5},
		{n: 10, want: 7},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, quorum.Threshold(test.n), "n=%d", test.n)
	}
}

func TestNew(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		gate, err := quorum.New(mocks.NoopLogger)

		require.NoError(t, err)
		assert.NotNil(t, gate)
	})

	t.Run("empty validator set", func(t *testing.T) {
		t.Parallel()

		_, err := quorum.New(mocks.NoopLogger, quorum.WithValidators(0))

		assert.ErrorIs(t, err, ledger.ErrInvalidConfig)
	})

	t.Run("probability out of range", func(t *testing.T) {
		t.Parallel()

		_, err := quorum.New(mocks.NoopLogger, quorum.WithProbability(1.5))
		assert.ErrorIs(t, err, ledger.ErrInvalidConfig)

		_, err = quorum.New(mocks.NoopLogger, quorum.WithProbability(-0.1))
		assert.ErrorIs(t, err, ledger.ErrInvalidConfig)
	})
}

func TestGate_Decide(t *testing.T) {
	tests := []struct {
		desc string
		n    uint
		vote quorum.VoteFunc

		wantOutcome ledger.Outcome
		wantTally   ledger.Tally
	}{
		{
			desc:        "always yes commits",
			n:           4,
			vote:        quorum.Always(true),
			wantOutcome: ledger.OutcomeCommitted,
			wantTally:   ledger.Tally{Validators: 4, Threshold: 3, Prepare: 4, Commit: 4},
		},
		{
			desc:        "always no aborts in prepare",
			n:           4,
			vote:        quorum.Always(false),
			wantOutcome: ledger.OutcomeAborted,
			wantTally:   ledger.Tally{Validators: 4, Threshold: 3, Prepare: 0, Commit: 0, Reason: quorum.ReasonPrepare},
		},
		{
			desc:        "prepare exactly at threshold then commit at threshold",
			n:           4,
			vote:        quorum.Sequence(true, true, true, false, false, true, true, true),
			wantOutcome: ledger.OutcomeCommitted,
			wantTally:   ledger.Tally{Validators: 4, Threshold: 3, Prepare: 3, Commit: 3},
		},
		{
			desc:        "prepare one below threshold skips commit",
			n:           4,
			vote:        quorum.Sequence(true, true, false, false, true, true, true, true),
			wantOutcome: ledger.OutcomeAborted,
			wantTally:   ledger.Tally{Validators: 4, Threshold: 3, Prepare: 2, Reason: quorum.ReasonPrepare},
		},
		{
			desc:        "commit below threshold",
			n:           4,
			vote:        quorum.Sequence(true, true, true, true, true, true, false, false),
			wantOutcome: ledger.OutcomeAborted,
			wantTally:   ledger.Tally{Validators: 4, Threshold: 3, Prepare: 4, Commit: 2, Reason: quorum.ReasonCommit},
		},
		{
			desc:        "single validator",
			n:           1,
			vote:        quorum.Always(true),
			wantOutcome: ledger.OutcomeCommitted,
			wantTally:   ledger.Tally{Validators: 1, Threshold: 1, Prepare: 1, Commit: 1},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.desc, func(t *testing.T) {
			t.Parallel()

			gate, err := quorum.New(mocks.NoopLogger, quorum.WithValidators(test.n), quorum.WithVote(test.vote))
			require.NoError(t, err)

			decision := gate.Decide(proposal)

			assert.Equal(t, test.wantOutcome, decision.Outcome)
			assert.Equal(t, test.wantTally, decision.Tally)
		})
	}

	t.Run("every validator votes once per phase", func(t *testing.T) {
		t.Parallel()

		votes := make(map[quorum.Phase][]ledger.Validator)
		vote := func(validator ledger.Validator, phase quorum.Phase, p ledger.Proposal) bool {
			assert.Equal(t, proposal, p)
			votes[phase] = append(votes[phase], validator)
			return true
		}

		gate, err := quorum.New(mocks.NoopLogger, quorum.WithValidators(7), quorum.WithVote(vote))
		require.NoError(t, err)

		decision := gate.Decide(proposal)

		assert.Equal(t, ledger.OutcomeCommitted, decision.Outcome)
		assert.Equal(t, ledger.Validators(7), votes[quorum.PhasePrepare])
		assert.Equal(t, ledger.Validators(7), votes[quorum.PhaseCommit])
	})
}

func TestRandom(t *testing.T) {
	t.Run("probability one always votes yes", func(t *testing.T) {
		t.Parallel()

		vote := quorum.Random(1, rand.NewSource(1))
		for i := 0; i < 100; i++ {
			assert.True(t, vote("validator-0", quorum.PhasePrepare, proposal))
		}
	})

	t.Run("probability zero always votes no", func(t *testing.T) {
		t.Parallel()

		vote := quorum.Random(0, rand.NewSource(1))
		for i := 0; i < 100; i++ {
			assert.False(t, vote("validator-0", quorum.PhaseCommit, proposal))
		}
	})

	t.Run("same seed gives same votes", func(t *testing.T) {
		t.Parallel()

		first := quorum.Random(0.5, rand.NewSource(42))
		second := quorum.Random(0.5, rand.NewSource(42))
		for i := 0; i < 100; i++ {
			assert.Equal(t, first("v", quorum.PhasePrepare, proposal), second("v", quorum.PhasePrepare, proposal))
		}
	})
}

func TestSequence(t *testing.T) {
	vote := quorum.Sequence(true, false, true)

	assert.True(t, vote("v", quorum.PhasePrepare, proposal))
	assert.False(t, vote("v", quorum.PhasePrepare, proposal))
	assert.True(t, vote("v", quorum.PhasePrepare, proposal))
	assert.False(t, vote("v", quorum.PhaseCommit, proposal), "exhausted sequence votes no")
}
