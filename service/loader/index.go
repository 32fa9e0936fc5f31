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

package loader

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/optakt/credit-ledger/models/ledger"
	"github.com/optakt/credit-ledger/service/chain"
)

// Replayer rebuilds settlement state from archived accounts and blocks.
type Replayer interface {
	Replay(accounts []ledger.Account, blocks []ledger.Block) error
	Accounts() []ledger.Account
}

// Index restores the ledger and the settlement state from an archive, and
// wires the restored ledger to keep archiving new blocks.
type Index struct {
	log   zerolog.Logger
	read  ledger.Reader
	write ledger.Writer
}

// FromIndex creates a new index loader on top of the given archive reader and
// writer.
func FromIndex(log zerolog.Logger, read ledger.Reader, write ledger.Writer) *Index {

	i := Index{
		log:   log.With().Str("component", "index_loader").Logger(),
		read:  read,
		write: write,
	}

	return &i
}

// Ledger returns a ledger that continues the archived chain. When the archive
// is empty, a new ledger is created and its genesis block is archived. An
// archived chain is only accepted if it passes verification.
func (i *Index) Ledger(options ...chain.Option) (*chain.Ledger, error) {

	options = append(options, chain.WithArchive(i.write))

	last, err := i.read.Last()
	if errors.Is(err, ledger.ErrNotFound) {
		return i.fresh(options...)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read last height: %w", err)
	}

	blocks, err := i.read.Blocks()
	if err != nil {
		return nil, fmt.Errorf("could not read blocks: %w", err)
	}
	if uint64(len(blocks)) != last+1 {
		return nil, fmt.Errorf("archived block count does not match last height (blocks: %d, last: %d): %w", len(blocks), last, ledger.ErrIntegrity)
	}

	l, err := chain.Restore(i.log, blocks, options...)
	if err != nil {
		return nil, fmt.Errorf("could not restore ledger: %w", err)
	}

	i.log.Info().Uint64("last", last).Msg("ledger loaded from archive")

	return l, nil
}

func (i *Index) fresh(options ...chain.Option) (*chain.Ledger, error) {

	l, err := chain.New(i.log, options...)
	if err != nil {
		return nil, fmt.Errorf("could not create ledger: %w", err)
	}

	err = i.write.Block(l.Last())
	if err != nil {
		return nil, fmt.Errorf("could not archive genesis block: %w", err)
	}

	i.log.Info().Msg("empty archive, ledger created from scratch")

	return l, nil
}

// Settle replays the archived accounts and the blocks of the given ledger into
// the replayer. Archived balances that differ from the replayed ones are
// rewritten.
func (i *Index) Settle(l *chain.Ledger, replay Replayer) error {

	accounts, err := i.read.Accounts()
	if err != nil {
		return fmt.Errorf("could not read accounts: %w", err)
	}

	blocks := l.Blocks()
	err = replay.Replay(accounts, blocks)
	if err != nil {
		return fmt.Errorf("could not replay archive: %w", err)
	}

	repaired := 0
	for _, account := range replay.Accounts() {
		archived, err := i.read.Account(account.ID)
		if err != nil {
			return fmt.Errorf("could not read account (id: %s): %w", account.ID, err)
		}
		if archived.Balance == account.Balance {
			continue
		}
		err = i.write.Account(account)
		if err != nil {
			return fmt.Errorf("could not repair account (id: %s): %w", account.ID, err)
		}
		i.log.Debug().
			Str("account", account.ID).
			Int64("archived", archived.Balance).
			Int64("balance", account.Balance).
			Msg("archived balance repaired")
		repaired++
	}

	i.log.Info().
		Int("accounts", len(accounts)).
		Int("blocks", len(blocks)).
		Int("repaired", repaired).
		Msg("settlement loaded from archive")

	return nil
}
