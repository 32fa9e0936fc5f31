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

package rest

import (
	"github.com/optakt/credit-ledger/models/ledger"
)

// Settlement is the set of ledger operations exposed over HTTP.
type Settlement interface {
	Register(id string, role ledger.Role) (ledger.Account, error)
	Issue(issuer string, quantity int64, unitPrice float64) (string, error)
	Purchase(buyer string, listingID string) (ledger.Receipt, error)
	Marketplace() []ledger.Listing
	Account(id string) (ledger.Account, error)
	Listing(id string) (ledger.Listing, error)
	Chain() []ledger.Block
	Subscribe(observer ledger.Observer) error
	Unsubscribe(id string) error
}

// Verifier checks the integrity of the chain.
type Verifier interface {
	Verify() (uint64, error)
}
