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

package settlement

import (
	"time"

	"github.com/optakt/credit-ledger/models/ledger"
)

// DefaultConfig is the default configuration for the settlement.
var DefaultConfig = Config{
	Clock:   time.Now,
	Archive: nil,
}

// Config contains optional parameters for the settlement.
type Config struct {
	Clock   func() time.Time
	Archive ledger.Writer
}

// Option is a function that modifies the settlement configuration.
type Option func(*Config)

// WithClock sets the function used to timestamp new listings.
func WithClock(clock func() time.Time) Option {
	return func(cfg *Config) {
		cfg.Clock = clock
	}
}

// WithArchive makes the settlement persist registered accounts and their
// balances to the given writer.
func WithArchive(archive ledger.Writer) Option {
	return func(cfg *Config) {
		cfg.Archive = archive
	}
}
