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
	"time"

	"github.com/optakt/credit-ledger/models/ledger"
)

// MaxDifficulty is the highest number of leading zero bits a block hash can be
// required to have.
const MaxDifficulty = 64

// DefaultConfig is the default configuration for the ledger.
var DefaultConfig = Config{
	Difficulty: 8,
	Clock:      time.Now,
	Archive:    nil,
}

// Config contains optional parameters for the ledger.
type Config struct {
	Difficulty uint
	Clock      func() time.Time
	Archive    ledger.Writer
}

// Option is a function that modifies the ledger configuration.
type Option func(*Config)

// WithDifficulty sets the number of leading zero bits each block hash must
// have.
func WithDifficulty(bits uint) Option {
	return func(cfg *Config) {
		cfg.Difficulty = bits
	}
}

// WithClock sets the function used to timestamp new blocks.
func WithClock(clock func() time.Time) Option {
	return func(cfg *Config) {
		cfg.Clock = clock
	}
}

// WithArchive makes the ledger persist each block to the given writer before
// it is appended.
func WithArchive(archive ledger.Writer) Option {
	return func(cfg *Config) {
		cfg.Archive = archive
	}
}
