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

package ledger

import (
	"fmt"
)

// Validator is the identity of a simulated voting node.
type Validator string

// Validators returns the identities of a validator set of the given size.
func Validators(n uint) []Validator {
	validators := make([]Validator, 0, n)
	for i := uint(0); i < n; i++ {
		validators = append(validators, Validator(fmt.Sprintf("validator-%d", i)))
	}
	return validators
}

// Proposal wraps a transaction record that is submitted to the quorum gate.
type Proposal struct {
	ID        string
	Kind      Kind
	Payload   Payload
	Requester string
}

// Outcome is the terminal result of a quorum decision.
type Outcome uint8

// The following is an enumeration of all decision outcomes.
const (
	OutcomeAborted Outcome = iota + 1
	OutcomeCommitted
)

// String implements the Stringer interface.
func (o Outcome) String() string {
	switch o {
	case OutcomeAborted:
		return "aborted"
	case OutcomeCommitted:
		return "committed"
	default:
		return fmt.Sprintf("invalid outcome %d", o)
	}
}

// Tally counts the affirmative votes of both voting phases.
type Tally struct {
	Validators int
	Threshold  int
	Prepare    int
	Commit     int
	Reason     string
}

// Decision is what the quorum gate returns for a proposal.
type Decision struct {
	Outcome Outcome
	Tally   Tally
}
