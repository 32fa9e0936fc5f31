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

package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/credit-ledger/models/ledger"
	"github.com/optakt/credit-ledger/testing/mocks"
)

func TestSettlement_PurchaseInsufficientBalance(t *testing.T) {
	chain := mocks.BaselineChain(t)
	chain.AppendFunc = func(ledger.Payload) (ledger.Block, error) {
		t.Fatal("no block should be appended")
		return ledger.Block{}, nil
	}

	s := New(mocks.NoopLogger, chain, mocks.BaselineGate(t), mocks.BaselinePublisher(t))
	s.accounts[mocks.GenericIssuer] = &ledger.Account{ID: mocks.GenericIssuer, Role: ledger.RoleIssuer, Balance: 3}
	s.accounts[mocks.GenericTrader] = &ledger.Account{ID: mocks.GenericTrader, Role: ledger.RoleTrader, Balance: 0}
	s.listings[mocks.GenericListingID] = &ledger.Listing{
		ID:        mocks.GenericListingID,
		Issuer:    mocks.GenericIssuer,
		Quantity:  5,
		UnitPrice: 1,
		Status:    ledger.StatusVerified,
	}
	s.order = []string{mocks.GenericListingID}

	_, err := s.Purchase(mocks.GenericTrader, mocks.GenericListingID)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	seller, err := s.Account(mocks.GenericIssuer)
	require.NoError(t, err)
	assert.Equal(t, int64(3), seller.Balance)
	assert.Len(t, s.Marketplace(), 1)
}

func TestSettlement_Remove(t *testing.T) {
	s := New(mocks.NoopLogger, mocks.BaselineChain(t), mocks.BaselineGate(t), mocks.BaselinePublisher(t))
	for _, id := range []string{"a", "b", "c"} {
		s.listings[id] = &ledger.Listing{ID: id, Status: ledger.StatusVerified}
		s.order = append(s.order, id)
	}

	s.remove("b")
	assert.Equal(t, []string{"a", "c"}, s.order)
	assert.NotContains(t, s.listings, "b")

	s.remove("ghost")
	assert.Equal(t, []string{"a", "c"}, s.order)
}
