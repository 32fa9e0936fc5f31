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

type Settlement struct {
	RegisterFunc    func(id string, role ledger.Role) (ledger.Account, error)
	IssueFunc       func(issuer string, quantity int64, unitPrice float64) (string, error)
	PurchaseFunc    func(buyer string, listingID string) (ledger.Receipt, error)
	MarketplaceFunc func() []ledger.Listing
	AccountFunc     func(id string) (ledger.Account, error)
	ListingFunc     func(id string) (ledger.Listing, error)
	ChainFunc       func() []ledger.Block
	SubscribeFunc   func(observer ledger.Observer) error
	UnsubscribeFunc func(id string) error
}

func BaselineSettlement(t *testing.T) *Settlement {
	t.Helper()

	s := Settlement{
		RegisterFunc: func(id string, role ledger.Role) (ledger.Account, error) {
			return ledger.Account{ID: id, Role: role}, nil
		},
		IssueFunc: func(string, int64, float64) (string, error) {
			return GenericListingID, nil
		},
		PurchaseFunc: func(buyer string, listingID string) (ledger.Receipt, error) {
			receipt := ledger.Receipt{
				ListingID: listingID,
				Seller:    GenericIssuer,
				Buyer:     buyer,
				Quantity:  GenericListing.Quantity,
				UnitPrice: GenericListing.UnitPrice,
			}
			return receipt, nil
		},
		MarketplaceFunc: func() []ledger.Listing {
			return []ledger.Listing{GenericListing}
		},
		AccountFunc: func(string) (ledger.Account, error) {
			return GenericAccount, nil
		},
		ListingFunc: func(string) (ledger.Listing, error) {
			return GenericListing, nil
		},
		ChainFunc: func() []ledger.Block {
			return []ledger.Block{GenericBlock}
		},
		SubscribeFunc: func(ledger.Observer) error {
			return nil
		},
		UnsubscribeFunc: func(string) error {
			return nil
		},
	}

	return &s
}

func (s *Settlement) Register(id string, role ledger.Role) (ledger.Account, error) {
	return s.RegisterFunc(id, role)
}

func (s *Settlement) Issue(issuer string, quantity int64, unitPrice float64) (string, error) {
	return s.IssueFunc(issuer, quantity, unitPrice)
}

func (s *Settlement) Purchase(buyer string, listingID string) (ledger.Receipt, error) {
	return s.PurchaseFunc(buyer, listingID)
}

func (s *Settlement) Marketplace() []ledger.Listing {
	return s.MarketplaceFunc()
}

func (s *Settlement) Account(id string) (ledger.Account, error) {
	return s.AccountFunc(id)
}

func (s *Settlement) Listing(id string) (ledger.Listing, error) {
	return s.ListingFunc(id)
}

func (s *Settlement) Chain() []ledger.Block {
	return s.ChainFunc()
}

func (s *Settlement) Subscribe(observer ledger.Observer) error {
	return s.SubscribeFunc(observer)
}

func (s *Settlement) Unsubscribe(id string) error {
	return s.UnsubscribeFunc(id)
}
