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

package loader_test

import (
	"fmt"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/credit-ledger/codec/zbor"
	"github.com/optakt/credit-ledger/models/ledger"
	"github.com/optakt/credit-ledger/service/chain"
	"github.com/optakt/credit-ledger/service/index"
	"github.com/optakt/credit-ledger/service/loader"
	"github.com/optakt/credit-ledger/service/settlement"
	"github.com/optakt/credit-ledger/service/storage"
	"github.com/optakt/credit-ledger/testing/helpers"
	"github.com/optakt/credit-ledger/testing/mocks"
)

func TestIndex_Ledger(t *testing.T) {
	t.Run("empty archive", func(t *testing.T) {
		t.Parallel()

		_, _, reader, writer := setupArchive(t)
		load := loader.FromIndex(mocks.NoopLogger, reader, writer)

		l, err := load.Ledger(chain.WithDifficulty(2))
		require.NoError(t, err)
		require.Len(t, l.Blocks(), 1)

		last, err := reader.Last()
		require.NoError(t, err)
		assert.Zero(t, last)

		genesis, err := reader.Block(0)
		require.NoError(t, err)
		assert.Equal(t, l.Last(), genesis)
	})

	t.Run("restores and keeps archiving", func(t *testing.T) {
		t.Parallel()

		_, _, reader, writer := setupArchive(t)

		first, err := loader.FromIndex(mocks.NoopLogger, reader, writer).Ledger(chain.WithDifficulty(2))
		require.NoError(t, err)
		for i := int64(1); i <= 3; i++ {
			payload := mocks.GenericIssuance
			payload.Quantity = i
			_, err = first.Append(payload)
			require.NoError(t, err)
		}

		second, err := loader.FromIndex(mocks.NoopLogger, reader, writer).Ledger(chain.WithDifficulty(2))
		require.NoError(t, err)
		assert.Equal(t, first.Blocks(), second.Blocks())

		_, err = second.Append(mocks.GenericTransfer)
		require.NoError(t, err)

		last, err := reader.Last()
		require.NoError(t, err)
		assert.Equal(t, uint64(4), last)
	})

	t.Run("handles tampered archive", func(t *testing.T) {
		t.Parallel()

		db, lib, reader, writer := setupArchive(t)

		l, err := loader.FromIndex(mocks.NoopLogger, reader, writer).Ledger(chain.WithDifficulty(2))
		require.NoError(t, err)
		block, err := l.Append(mocks.GenericIssuance)
		require.NoError(t, err)

		block.Payload.Quantity = 1000
		err = db.Update(lib.SaveBlock(block))
		require.NoError(t, err)

		_, err = loader.FromIndex(mocks.NoopLogger, reader, writer).Ledger(chain.WithDifficulty(2))
		assert.ErrorIs(t, err, ledger.ErrIntegrity)
	})

	t.Run("handles different difficulty", func(t *testing.T) {
		t.Parallel()

		_, _, reader, writer := setupArchive(t)

		_, err := loader.FromIndex(mocks.NoopLogger, reader, writer).Ledger(chain.WithDifficulty(0))
		require.NoError(t, err)

		// The genesis mined without difficulty has no leading zero bits.
		_, err = loader.FromIndex(mocks.NoopLogger, reader, writer).Ledger(chain.WithDifficulty(12))
		assert.ErrorIs(t, err, ledger.ErrIntegrity)
	})

	t.Run("handles missing blocks", func(t *testing.T) {
		t.Parallel()

		reader := mocks.BaselineReader(t)
		reader.LastFunc = func() (uint64, error) {
			return 5, nil
		}

		_, err := loader.FromIndex(mocks.NoopLogger, reader, mocks.BaselineWriter(t)).Ledger()
		assert.ErrorIs(t, err, ledger.ErrIntegrity)
	})

	t.Run("handles reader failure", func(t *testing.T) {
		t.Parallel()

		reader := mocks.BaselineReader(t)
		reader.LastFunc = func() (uint64, error) {
			return 0, mocks.GenericError
		}

		_, err := loader.FromIndex(mocks.NoopLogger, reader, mocks.BaselineWriter(t)).Ledger()
		assert.ErrorIs(t, err, mocks.GenericError)

		reader = mocks.BaselineReader(t)
		reader.BlocksFunc = func() ([]ledger.Block, error) {
			return nil, mocks.GenericError
		}

		_, err = loader.FromIndex(mocks.NoopLogger, reader, mocks.BaselineWriter(t)).Ledger()
		assert.ErrorIs(t, err, mocks.GenericError)
	})

	t.Run("handles genesis archive failure", func(t *testing.T) {
		t.Parallel()

		reader := mocks.BaselineReader(t)
		reader.LastFunc = func() (uint64, error) {
			return 0, fmt.Errorf("empty: %w", ledger.ErrNotFound)
		}
		writer := mocks.BaselineWriter(t)
		writer.BlockFunc = func(ledger.Block) error {
			return mocks.GenericError
		}

		_, err := loader.FromIndex(mocks.NoopLogger, reader, writer).Ledger(chain.WithDifficulty(1))
		assert.ErrorIs(t, err, mocks.GenericError)
	})
}

func TestIndex_Settle(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		_, _, reader, writer := setupArchive(t)

		// First run: trade on top of an empty archive.
		load := loader.FromIndex(mocks.NoopLogger, reader, writer)
		l, err := load.Ledger(chain.WithDifficulty(2))
		require.NoError(t, err)

		original := settlement.New(mocks.NoopLogger, l, mocks.BaselineGate(t), mocks.BaselinePublisher(t), settlement.WithArchive(writer))
		err = load.Settle(l, original)
		require.NoError(t, err)

		_, err = original.Register(mocks.GenericIssuer, ledger.RoleIssuer)
		require.NoError(t, err)
		_, err = original.Register(mocks.GenericTrader, ledger.RoleTrader)
		require.NoError(t, err)
		_, err = original.Register("bystander", ledger.RoleTrader)
		require.NoError(t, err)

		sold, err := original.Issue(mocks.GenericIssuer, 5, 1)
		require.NoError(t, err)
		kept, err := original.Issue(mocks.GenericIssuer, 8, 3)
		require.NoError(t, err)
		_, err = original.Purchase(mocks.GenericTrader, sold)
		require.NoError(t, err)

		// Second run: restore everything from the archive.
		load = loader.FromIndex(mocks.NoopLogger, reader, writer)
		restored, err := load.Ledger(chain.WithDifficulty(2))
		require.NoError(t, err)

		replayed := settlement.New(mocks.NoopLogger, restored, mocks.BaselineGate(t), mocks.BaselinePublisher(t), settlement.WithArchive(writer))
		err = load.Settle(restored, replayed)
		require.NoError(t, err)

		assert.Equal(t, original.Accounts(), replayed.Accounts())
		assert.Equal(t, original.Chain(), replayed.Chain())

		marketplace := replayed.Marketplace()
		require.Len(t, marketplace, 1)
		assert.Equal(t, kept, marketplace[0].ID)
	})

	t.Run("repairs stale archived balances", func(t *testing.T) {
		t.Parallel()

		_, _, reader, writer := setupArchive(t)
		load := loader.FromIndex(mocks.NoopLogger, reader, writer)
		l, err := load.Ledger(chain.WithDifficulty(1))
		require.NoError(t, err)

		stale := ledger.Account{ID: mocks.GenericIssuer, Role: ledger.RoleIssuer, Balance: 42}
		err = writer.Account(stale)
		require.NoError(t, err)
		trader := ledger.Account{ID: mocks.GenericTrader, Role: ledger.RoleTrader}
		err = writer.Account(trader)
		require.NoError(t, err)

		s := settlement.New(mocks.NoopLogger, l, mocks.BaselineGate(t), mocks.BaselinePublisher(t))
		err = load.Settle(l, s)
		require.NoError(t, err)

		accounts, err := reader.Accounts()
		require.NoError(t, err)
		assert.Equal(t, s.Accounts(), accounts)
		assert.Zero(t, accounts[0].Balance)
	})

	t.Run("handles account read failure", func(t *testing.T) {
		t.Parallel()

		l, err := chain.New(mocks.NoopLogger, chain.WithDifficulty(1))
		require.NoError(t, err)

		reader := mocks.BaselineReader(t)
		reader.AccountFunc = func(string) (ledger.Account, error) {
			return ledger.Account{}, mocks.GenericError
		}
		s := settlement.New(mocks.NoopLogger, l, mocks.BaselineGate(t), mocks.BaselinePublisher(t))

		err = loader.FromIndex(mocks.NoopLogger, reader, mocks.BaselineWriter(t)).Settle(l, s)
		assert.ErrorIs(t, err, mocks.GenericError)
	})

	t.Run("handles repair failure", func(t *testing.T) {
		t.Parallel()

		l, err := chain.New(mocks.NoopLogger, chain.WithDifficulty(1))
		require.NoError(t, err)

		writer := mocks.BaselineWriter(t)
		writer.AccountFunc = func(ledger.Account) error {
			return mocks.GenericError
		}
		s := settlement.New(mocks.NoopLogger, l, mocks.BaselineGate(t), mocks.BaselinePublisher(t))

		// The baseline archive holds a balance that the genesis-only chain
		// cannot account for.
		err = loader.FromIndex(mocks.NoopLogger, mocks.BaselineReader(t), writer).Settle(l, s)
		assert.ErrorIs(t, err, mocks.GenericError)
	})

	t.Run("handles accounts failure", func(t *testing.T) {
		t.Parallel()

		l, err := chain.New(mocks.NoopLogger, chain.WithDifficulty(1))
		require.NoError(t, err)

		reader := mocks.BaselineReader(t)
		reader.AccountsFunc = func() ([]ledger.Account, error) {
			return nil, mocks.GenericError
		}
		s := settlement.New(mocks.NoopLogger, l, mocks.BaselineGate(t), mocks.BaselinePublisher(t))

		err = loader.FromIndex(mocks.NoopLogger, reader, mocks.BaselineWriter(t)).Settle(l, s)
		assert.ErrorIs(t, err, mocks.GenericError)
	})

	t.Run("handles replay failure", func(t *testing.T) {
		t.Parallel()

		l, err := chain.New(mocks.NoopLogger, chain.WithDifficulty(1))
		require.NoError(t, err)

		reader := mocks.BaselineReader(t)
		reader.AccountsFunc = func() ([]ledger.Account, error) {
			return []ledger.Account{{ID: "x", Role: ledger.Role("admin")}}, nil
		}
		s := settlement.New(mocks.NoopLogger, l, mocks.BaselineGate(t), mocks.BaselinePublisher(t))

		err = loader.FromIndex(mocks.NoopLogger, reader, mocks.BaselineWriter(t)).Settle(l, s)
		assert.ErrorIs(t, err, ledger.ErrInvalidRole)
	})
}

func setupArchive(t *testing.T) (*badger.DB, *storage.Library, *index.Reader, *index.Writer) {
	t.Helper()

	db := helpers.InMemoryDB(t)
	t.Cleanup(func() {
		_ = db.Close()
	})

	codec, err := zbor.NewCodec()
	require.NoError(t, err)
	lib := storage.New(codec)

	return db, lib, index.NewReader(db, lib), index.NewWriter(db, lib)
}
