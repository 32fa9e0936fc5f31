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

package chain

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"

	"github.com/optakt/credit-ledger/models/ledger"
)

// ErrNonceExhausted is returned when no nonce satisfies the difficulty.
var ErrNonceExhausted = errors.New("nonce space exhausted")

// Ledger is an append-only, hash-chained block store with a single writer.
// Every block hash must satisfy the configured difficulty.
type Ledger struct {
	log     zerolog.Logger
	cfg     Config
	encoder cbor.EncMode
	mutex   *sync.RWMutex
	blocks  []ledger.Block
}

// New creates a new ledger that only contains the genesis block.
func New(log zerolog.Logger, options ...Option) (*Ledger, error) {

	l, err := build(log, options...)
	if err != nil {
		return nil, err
	}

	genesis, err := l.genesis()
	if err != nil {
		return nil, fmt.Errorf("could not mine genesis block: %w", err)
	}
	l.blocks = append(l.blocks, genesis)

	l.log.Info().
		Uint("difficulty", l.cfg.Difficulty).
		Str("genesis", genesis.Hash.String()).
		Msg("ledger initialized")

	return l, nil
}

// Restore creates a ledger from previously archived blocks. The blocks must
// start with the genesis block of the configured difficulty and must pass
// verification.
func Restore(log zerolog.Logger, blocks []ledger.Block, options ...Option) (*Ledger, error) {

	l, err := build(log, options...)
	if err != nil {
		return nil, err
	}

	if len(blocks) == 0 {
		return nil, fmt.Errorf("could not restore empty chain: %w", ledger.ErrIntegrity)
	}
	genesis, err := l.genesis()
	if err != nil {
		return nil, fmt.Errorf("could not mine genesis block: %w", err)
	}
	if blocks[0].Hash != genesis.Hash {
		return nil, fmt.Errorf("genesis mismatch (have: %s, want: %s): %w", blocks[0].Hash, genesis.Hash, ledger.ErrIntegrity)
	}

	l.blocks = make([]ledger.Block, len(blocks))
	copy(l.blocks, blocks)

	height, err := l.Verify()
	if err != nil {
		return nil, fmt.Errorf("could not verify restored chain (height: %d): %w", height, err)
	}

	l.log.Info().
		Int("blocks", len(l.blocks)).
		Str("tip", l.blocks[len(l.blocks)-1].Hash.String()).
		Msg("ledger restored")

	return l, nil
}

func build(log zerolog.Logger, options ...Option) (*Ledger, error) {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	if cfg.Difficulty > MaxDifficulty {
		return nil, fmt.Errorf("difficulty above maximum (have: %d, max: %d): %w", cfg.Difficulty, MaxDifficulty, ledger.ErrInvalidConfig)
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("missing clock: %w", ledger.ErrInvalidConfig)
	}

	encoder, err := ledger.Encoding().EncMode()
	if err != nil {
		return nil, fmt.Errorf("could not initialize payload encoder: %w", err)
	}

	l := Ledger{
		log:     log.With().Str("component", "ledger").Logger(),
		cfg:     cfg,
		encoder: encoder,
		mutex:   &sync.RWMutex{},
		blocks:  make([]ledger.Block, 0, 1),
	}

	return &l, nil
}

// Append mines a block for the payload on top of the current tip and appends
// it. When an archive is configured, the block is persisted before it becomes
// part of the chain. If any step fails, the chain is left untouched.
func (l *Ledger) Append(payload ledger.Payload) (ledger.Block, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	tip := l.blocks[len(l.blocks)-1]
	block, err := l.mine(tip.Height+1, tip.Hash, l.cfg.Clock().UTC(), payload)
	if err != nil {
		return ledger.Block{}, fmt.Errorf("could not mine block (height: %d): %w", tip.Height+1, err)
	}

	if l.cfg.Archive != nil {
		err = l.cfg.Archive.Block(block)
		if err != nil {
			return ledger.Block{}, fmt.Errorf("could not archive block (height: %d): %w", block.Height, err)
		}
	}

	l.blocks = append(l.blocks, block)

	l.log.Debug().
		Uint64("height", block.Height).
		Str("kind", string(payload.Kind)).
		Uint64("nonce", block.Nonce).
		Str("hash", block.Hash.String()).
		Msg("block appended")

	return block, nil
}

// Blocks returns a copy of the chain, oldest block first.
func (l *Ledger) Blocks() []ledger.Block {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	blocks := make([]ledger.Block, len(l.blocks))
	copy(blocks, l.blocks)
	return blocks
}

// Block returns the block at the given height.
func (l *Ledger) Block(height uint64) (ledger.Block, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if height >= uint64(len(l.blocks)) {
		return ledger.Block{}, fmt.Errorf("no block at height %d: %w", height, ledger.ErrNotFound)
	}
	return l.blocks[height], nil
}

// Last returns the tip of the chain.
func (l *Ledger) Last() ledger.Block {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.blocks[len(l.blocks)-1]
}

// Verify recomputes every block hash and link. If the chain is intact, it
// returns nil; otherwise, it returns the height of the first broken block
// together with an error wrapping ErrIntegrity.
func (l *Ledger) Verify() (uint64, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	for i, block := range l.blocks {
		height := uint64(i)

		if block.Height != height {
			return height, fmt.Errorf("invalid position (have: %d, want: %d): %w", block.Height, height, ledger.ErrIntegrity)
		}

		previous := ledger.ZeroHash
		if i > 0 {
			previous = l.blocks[i-1].Hash
		}
		if block.PreviousHash != previous {
			return height, fmt.Errorf("invalid previous hash (have: %s, want: %s): %w", block.PreviousHash, previous, ledger.ErrIntegrity)
		}

		data, err := l.encoder.Marshal(block.Payload)
		if err != nil {
			return height, fmt.Errorf("could not encode payload: %w", err)
		}
		hash := digest(block.PreviousHash, block.Timestamp, data, block.Nonce)
		if block.Hash != hash {
			return height, fmt.Errorf("invalid hash (have: %s, want: %s): %w", block.Hash, hash, ledger.ErrIntegrity)
		}

		if LeadingZeros(hash) < l.cfg.Difficulty {
			return height, fmt.Errorf("insufficient difficulty (have: %d, want: %d): %w", LeadingZeros(hash), l.cfg.Difficulty, ledger.ErrIntegrity)
		}
	}

	return 0, nil
}

func (l *Ledger) genesis() (ledger.Block, error) {
	payload := ledger.Payload{Kind: ledger.KindGenesis}
	return l.mine(0, ledger.ZeroHash, time.Unix(0, 0).UTC(), payload)
}

func (l *Ledger) mine(height uint64, previous ledger.Hash, timestamp time.Time, payload ledger.Payload) (ledger.Block, error) {

	data, err := l.encoder.Marshal(payload)
	if err != nil {
		return ledger.Block{}, fmt.Errorf("could not encode payload: %w", err)
	}

	for nonce := uint64(0); ; nonce++ {
		hash := digest(previous, timestamp, data, nonce)
		if LeadingZeros(hash) >= l.cfg.Difficulty {
			block := ledger.Block{
				Height:       height,
				Timestamp:    timestamp,
				Payload:      payload,
				PreviousHash: previous,
				Hash:         hash,
				Nonce:        nonce,
			}
			return block, nil
		}
		if nonce == math.MaxUint64 {
			return ledger.Block{}, ErrNonceExhausted
		}
	}
}
