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
	"time"
)

// Status is the lifecycle status of a listing.
type Status string

// The following is an enumeration of all listing statuses. A listing is never
// stored with StatusDeleted; it is the target of the purchase transition, at
// which point the listing is removed.
const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusFailed   Status = "failed"
	StatusDeleted  Status = "deleted"
)

// Listing is an issuer's offer of credits.
type Listing struct {
	ID        string    `json:"id"`
	Issuer    string    `json:"seller"`
	Quantity  int64     `json:"quantity"`
	UnitPrice float64   `json:"unitPrice"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

var transitions = map[Status][]Status{
	StatusPending:  {StatusVerified, StatusFailed},
	StatusVerified: {StatusDeleted},
}

// Transition checks whether a listing may move from one status to another. It
// only accepts pending→verified, pending→failed and verified→deleted.
func Transition(from Status, to Status) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w (from: %s, to: %s)", ErrIllegalTransition, from, to)
}
