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

package storage

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/optakt/credit-ledger/models/ledger"
)

// SaveLast is an operation that writes the height of the last archived block.
func (l *Library) SaveLast(height uint64) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixLast), height)
}

// SaveBlock is an operation that writes a block at its height.
func (l *Library) SaveBlock(block ledger.Block) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixBlock, block.Height), block)
}

// SaveAccount is an operation that writes an account under its identifier,
// replacing any previous version.
func (l *Library) SaveAccount(account ledger.Account) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixAccount, account.ID), account)
}

// RetrieveLast retrieves the height of the last archived block.
func (l *Library) RetrieveLast(height *uint64) func(*badger.Txn) error {
	return l.retrieve(EncodeKey(PrefixLast), height)
}

// RetrieveBlock retrieves the block at the given height.
func (l *Library) RetrieveBlock(height uint64, block *ledger.Block) func(*badger.Txn) error {
	return l.retrieve(EncodeKey(PrefixBlock, height), block)
}

// RetrieveAccount retrieves the account with the given identifier.
func (l *Library) RetrieveAccount(id string, account *ledger.Account) func(*badger.Txn) error {
	return l.retrieve(EncodeKey(PrefixAccount, id), account)
}

// IterateBlocks steps through all archived blocks in ascending height and
// calls the given callback for each of them.
func (l *Library) IterateBlocks(process func(block ledger.Block) error) func(*badger.Txn) error {
	return l.iterate(EncodeKey(PrefixBlock), func(val []byte) error {
		var block ledger.Block
		err := l.codec.Unmarshal(val, &block)
		if err != nil {
			return fmt.Errorf("could not decode block: %w", err)
		}
		return process(block)
	})
}

// IterateAccounts steps through all archived accounts in identifier order and
// calls the given callback for each of them.
func (l *Library) IterateAccounts(process func(account ledger.Account) error) func(*badger.Txn) error {
	return l.iterate(EncodeKey(PrefixAccount), func(val []byte) error {
		var account ledger.Account
		err := l.codec.Unmarshal(val, &account)
		if err != nil {
			return fmt.Errorf("could not decode account: %w", err)
		}
		return process(account)
	})
}
