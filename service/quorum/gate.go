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

package quorum

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/optakt/credit-ledger/models/ledger"
)

// Reasons given for aborted decisions.
const (
	ReasonPrepare = "prepare below threshold"
	ReasonCommit  = "commit below threshold"
)

// Gate simulates a three-phase agreement between a fixed set of in-process
// validators. It holds no state between decisions.
type Gate struct {
	log        zerolog.Logger
	validators []ledger.Validator
	threshold  int
	vote       VoteFunc
}

// New creates a new quorum gate.
func New(log zerolog.Logger, options ...Option) (*Gate, error) {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	if cfg.Validators == 0 {
		return nil, fmt.Errorf("empty validator set: %w", ledger.ErrInvalidConfig)
	}
	if cfg.Probability < 0 || cfg.Probability > 1 {
		return nil, fmt.Errorf("probability out of range (have: %f): %w", cfg.Probability, ledger.ErrInvalidConfig)
	}

	vote := cfg.Vote
	if vote == nil {
		vote = Random(cfg.Probability, rand.NewSource(time.Now().UnixNano()))
	}

	g := Gate{
		log:        log.With().Str("component", "quorum_gate").Logger(),
		validators: ledger.Validators(cfg.Validators),
		threshold:  Threshold(int(cfg.Validators)),
		vote:       vote,
	}

	return &g, nil
}

// Threshold returns the number of affirmative votes needed to pass a phase
// with n validators, which is 2f+1 for f = floor((n-1)/3) tolerated faults.
func Threshold(n int) int {
	f := (n - 1) / 3
	return 2*f + 1
}

// Decide runs the voting phases for the proposal and returns the outcome. It
// returns immediately, as all votes are computed locally.
func (g *Gate) Decide(proposal ledger.Proposal) ledger.Decision {

	log := g.log.With().
		Str("proposal", proposal.ID).
		Str("kind", string(proposal.Kind)).
		Logger()

	tally := ledger.Tally{
		Validators: len(g.validators),
		Threshold:  g.threshold,
	}

	log.Debug().Str("requester", proposal.Requester).Msg("pre-prepare broadcast")

	tally.Prepare = g.round(PhasePrepare, proposal)
	if tally.Prepare < g.threshold {
		tally.Reason = ReasonPrepare
		log.Info().Int("prepare", tally.Prepare).Int("threshold", g.threshold).Msg("proposal aborted")
		return ledger.Decision{Outcome: ledger.OutcomeAborted, Tally: tally}
	}

	tally.Commit = g.round(PhaseCommit, proposal)
	if tally.Commit < g.threshold {
		tally.Reason = ReasonCommit
		log.Info().Int("prepare", tally.Prepare).Int("commit", tally.Commit).Int("threshold", g.threshold).Msg("proposal aborted")
		return ledger.Decision{Outcome: ledger.OutcomeAborted, Tally: tally}
	}

	log.Info().Int("prepare", tally.Prepare).Int("commit", tally.Commit).Msg("proposal committed")

	return ledger.Decision{Outcome: ledger.OutcomeCommitted, Tally: tally}
}

func (g *Gate) round(phase Phase, proposal ledger.Proposal) int {
	count := 0
	for _, validator := range g.validators {
		if g.vote(validator, phase, proposal) {
			count++
		}
	}
	return count
}
