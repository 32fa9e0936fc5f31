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
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/optakt/credit-ledger/models/ledger"
	"github.com/optakt/credit-ledger/service/storage"
)

// Writer archives blocks and accounts to a Badger database.
type Writer struct {
	db  *badger.DB
	lib *storage.Library
}

// NewWriter creates a new index writer that writes to the given Badger
// database.
func NewWriter(db *badger.DB, lib *storage.Library) *Writer {

	w := Writer{
		db:  db,
		lib: lib,
	}

	return &w
}

// Block writes the block and moves the last height to it, in one transaction.
func (w *Writer) Block(block ledger.Block) error {
	err := w.db.Update(storage.Combine(
		w.lib.SaveBlock(block),
		w.lib.SaveLast(block.Height),
	))
	if err != nil {
		return fmt.Errorf("could not index block (height: %d): %w", block.Height, err)
	}
	return nil
}

// Account writes the current state of the account.
func (w *Writer) Account(account ledger.Account) error {
	err := w.db.Update(w.lib.SaveAccount(account))
	if err != nil {
		return fmt.Errorf("could not index account (id: %s): %w", account.ID, err)
	}
	return nil
}
