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

package index

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/optakt/credit-ledger/models/ledger"
	"github.com/optakt/credit-ledger/service/storage"
)

// Reader reads archived blocks and accounts from a Badger database.
type Reader struct {
	db  *badger.DB
	lib *storage.Library
}

// NewReader creates a new index reader on the given Badger database.
func NewReader(db *badger.DB, lib *storage.Library) *Reader {

	r := Reader{
		db:  db,
		lib: lib,
	}

	return &r
}

// Last returns the height of the last archived block. It returns an error
// wrapping ErrNotFound when nothing was archived yet.
func (r *Reader) Last() (uint64, error) {
	var height uint64
	err := r.db.View(r.lib.RetrieveLast(&height))
	if err != nil {
		return 0, fmt.Errorf("could not retrieve last height: %w", notFound(err))
	}
	return height, nil
}

// Block returns the archived block at the given height.
func (r *Reader) Block(height uint64) (ledger.Block, error) {
	var block ledger.Block
	err := r.db.View(r.lib.RetrieveBlock(height, &block))
	if err != nil {
		return ledger.Block{}, fmt.Errorf("could not retrieve block (height: %d): %w", height, notFound(err))
	}
	return block, nil
}

// Blocks returns all archived blocks, ordered by height.
func (r *Reader) Blocks() ([]ledger.Block, error) {
	var blocks []ledger.Block
	err := r.db.View(r.lib.IterateBlocks(func(block ledger.Block) error {
		blocks = append(blocks, block)
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("could not iterate blocks: %w", err)
	}
	return blocks, nil
}

// Account returns the archived account with the given identifier.
func (r *Reader) Account(id string) (ledger.Account, error) {
	var account ledger.Account
	err := r.db.View(r.lib.RetrieveAccount(id, &account))
	if err != nil {
		return ledger.Account{}, fmt.Errorf("could not retrieve account (id: %s): %w", id, notFound(err))
	}
	return account, nil
}

// Accounts returns all archived accounts, ordered by identifier.
func (r *Reader) Accounts() ([]ledger.Account, error) {
	var accounts []ledger.Account
	err := r.db.View(r.lib.IterateAccounts(func(account ledger.Account) error {
		accounts = append(accounts, account)
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("could not iterate accounts: %w", err)
	}
	return accounts, nil
}

func notFound(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ledger.ErrNotFound, err)
	}
	return err
}
