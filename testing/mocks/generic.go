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
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/optakt/credit-ledger/models/ledger"
)

// Global variables that can be used for testing. They are non-nil valid values for the types commonly needed
// to test ledger components.
var (
	NoopLogger = zerolog.New(io.Discard)

	GenericError = errors.New("dummy error")

	GenericTime = time.Date(1972, 11, 12, 13, 14, 15, 16, time.UTC)

	GenericIssuer = "issuer-1"

	GenericTrader = "trader-1"

	GenericListingID = "0b4f6f8e-7d35-4a7a-9a2b-3c0d3f1f6e52"

	GenericIssuance = ledger.Payload{
		Kind:      ledger.KindIssuance,
		ListingID: GenericListingID,
		Issuer:    GenericIssuer,
		Quantity:  10,
		UnitPrice: 2.5,
		Outcome:   ledger.StatusVerified,
	}

	GenericTransfer = ledger.Payload{
		Kind:      ledger.KindTransfer,
		ListingID: GenericListingID,
		Buyer:     GenericTrader,
		Seller:    GenericIssuer,
		Quantity:  10,
		UnitPrice: 2.5,
	}

	GenericBlock = ledger.Block{
		Height:    1,
		Timestamp: GenericTime,
		Payload:   GenericIssuance,
		Nonce:     42,
	}

	GenericListing = ledger.Listing{
		ID:        GenericListingID,
		Issuer:    GenericIssuer,
		Quantity:  10,
		UnitPrice: 2.5,
		Status:    ledger.StatusVerified,
		CreatedAt: GenericTime,
	}

	GenericAccount = ledger.Account{
		ID:      GenericIssuer,
		Role:    ledger.RoleIssuer,
		Balance: 10,
	}
)

// GenericClock returns a clock that starts at GenericTime and advances by one
// second on every call.
func GenericClock() func() time.Time {
	now := GenericTime
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}
