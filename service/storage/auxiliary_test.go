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

package storage_test

import (
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"

	"github.com/optakt/credit-ledger/service/storage"
	"github.com/optakt/credit-ledger/testing/helpers"
)

func TestCombine(t *testing.T) {
	db := helpers.InMemoryDB(t)
	defer db.Close()
	txn := db.NewTransaction(false)

	noCallFn := func(txn *badger.Txn) error {
		t.Log("unexpected function call")
		t.FailNow()
		return nil
	}
	successFn := func(txn *badger.Txn) error {
		return nil
	}
	failFn := func(txn *badger.Txn) error {
		return errors.New("fail")
	}

	t.Run("nominal case", func(t *testing.T) {
		calls := 0
		f := func(txn *badger.Txn) error {
			calls++
			return nil
		}
		err := storage.Combine(f, f, f, f)(txn)

		assert.NoError(t, err)
		assert.Equal(t, 4, calls)
	})

	t.Run("should error if first op fails", func(t *testing.T) {
		err := storage.Combine(
			failFn,
			noCallFn,
		)(txn)

		assert.Error(t, err)
	})

	t.Run("should error if any op fails", func(t *testing.T) {
		err := storage.Combine(
			successFn,
			successFn,
			failFn,
			noCallFn,
		)(txn)

		assert.Error(t, err)
	})
}
