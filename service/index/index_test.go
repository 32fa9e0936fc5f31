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

package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/credit-ledger/codec/zbor"
	"github.com/optakt/credit-ledger/models/ledger"
	"github.com/optakt/credit-ledger/service/index"
	"github.com/optakt/credit-ledger/service/storage"
	"github.com/optakt/credit-ledger/testing/helpers"
	"github.com/optakt/credit-ledger/testing/mocks"
)

func TestIndex(t *testing.T) {
	t.Run("blocks", func(t *testing.T) {
		t.Parallel()

		writer, reader := setupIndex(t)

		var want []ledger.Block
		for height := uint64(0); height < 4; height++ {
			block := mocks.GenericBlock
			block.Height = height
			want = append(want, block)

			err := writer.Block(block)
			require.NoError(t, err)
		}

		last, err := reader.Last()
		require.NoError(t, err)
		assert.Equal(t, uint64(3), last)

		block, err := reader.Block(2)
		require.NoError(t, err)
		assert.Equal(t, want[2], block)

		blocks, err := reader.Blocks()
		require.NoError(t, err)
		assert.Equal(t, want, blocks)
	})

	t.Run("accounts", func(t *testing.T) {
		t.Parallel()

		writer, reader := setupIndex(t)

		trader := ledger.Account{ID: mocks.GenericTrader, Role: ledger.RoleTrader}
		err := writer.Account(trader)
		require.NoError(t, err)
		err = writer.Account(mocks.GenericAccount)
		require.NoError(t, err)

		trader.Balance = 5
		err = writer.Account(trader)
		require.NoError(t, err)

		accounts, err := reader.Accounts()
		require.NoError(t, err)
		assert.Equal(t, []ledger.Account{mocks.GenericAccount, trader}, accounts)

		account, err := reader.Account(mocks.GenericTrader)
		require.NoError(t, err)
		assert.Equal(t, trader, account)
	})

	t.Run("empty archive", func(t *testing.T) {
		t.Parallel()

		_, reader := setupIndex(t)

		_, err := reader.Last()
		assert.ErrorIs(t, err, ledger.ErrNotFound)

		_, err = reader.Block(0)
		assert.ErrorIs(t, err, ledger.ErrNotFound)

		blocks, err := reader.Blocks()
		require.NoError(t, err)
		assert.Empty(t, blocks)

		accounts, err := reader.Accounts()
		require.NoError(t, err)
		assert.Empty(t, accounts)

		_, err = reader.Account(mocks.GenericIssuer)
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})

	t.Run("handles encoding failure", func(t *testing.T) {
		t.Parallel()

		codec := mocks.BaselineCodec(t)
		codec.MarshalFunc = func(interface{}) ([]byte, error) {
			return nil, mocks.GenericError
		}
		db := helpers.InMemoryDB(t)
		defer db.Close()
		lib := storage.New(codec)
		writer := index.NewWriter(db, lib)
		reader := index.NewReader(db, lib)

		err := writer.Block(mocks.GenericBlock)
		assert.ErrorIs(t, err, mocks.GenericError)

		err = writer.Account(mocks.GenericAccount)
		assert.ErrorIs(t, err, mocks.GenericError)

		_, err = reader.Last()
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})
}

func setupIndex(t *testing.T) (*index.Writer, *index.Reader) {
	t.Helper()

	db := helpers.InMemoryDB(t)
	t.Cleanup(func() {
		_ = db.Close()
	})

	codec, err := zbor.NewCodec()
	require.NoError(t, err)
	lib := storage.New(codec)

	return index.NewWriter(db, lib), index.NewReader(db, lib)
}
