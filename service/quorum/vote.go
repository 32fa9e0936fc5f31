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
	"sync"

	"github.com/optakt/credit-ledger/models/ledger"
)

// Phase is the voting phase in which a vote is cast.
type Phase uint8

// The following is an enumeration of the voting phases.
const (
	PhasePrepare Phase = iota + 1
	PhaseCommit
)

// String implements the Stringer interface.
func (p Phase) String() string {
	switch p {
	case PhasePrepare:
		return "prepare"
	case PhaseCommit:
		return "commit"
	default:
		return fmt.Sprintf("invalid phase %d", p)
	}
}

// VoteFunc casts the binary vote of one validator for a proposal in a phase.
// Each call is an independent vote.
type VoteFunc func(validator ledger.Validator, phase Phase, proposal ledger.Proposal) bool

// Random returns a vote function that votes YES with probability p, drawing
// from the given source. The source is guarded so the vote function can be
// shared between concurrent decisions.
func Random(p float64, source rand.Source) VoteFunc {
	mutex := &sync.Mutex{}
	random := rand.New(source)
	return func(ledger.Validator, Phase, ledger.Proposal) bool {
		mutex.Lock()
		defer mutex.Unlock()
		return random.Float64() < p
	}
}

// Always returns a vote function that always casts the same vote.
func Always(vote bool) VoteFunc {
	return func(ledger.Validator, Phase, ledger.Proposal) bool {
		return vote
	}
}

// Sequence returns a vote function that casts the given votes in order. Once
// the sequence is exhausted, every further vote is NO.
func Sequence(votes ...bool) VoteFunc {
	mutex := &sync.Mutex{}
	next := 0
	return func(ledger.Validator, Phase, ledger.Proposal) bool {
		mutex.Lock()
		defer mutex.Unlock()
		if next >= len(votes) {
			return false
		}
		vote := votes[next]
		next++
		return vote
	}
}
