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

package rest

import (
	"time"

	"github.com/optakt/credit-ledger/models/ledger"
)

// DefaultConfig is the default configuration for the REST controller.
var DefaultConfig = Config{
	WriteTimeout: 5 * time.Second,
	Wrap:         func(observer ledger.Observer) ledger.Observer { return observer },
}

// Config contains optional parameters for the REST controller.
type Config struct {
	WriteTimeout time.Duration
	Wrap         func(ledger.Observer) ledger.Observer
}

// Option is a function that modifies the controller configuration.
type Option func(*Config)

// WithWriteTimeout sets how long a single websocket write may take before the
// subscriber is considered unreachable.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(cfg *Config) {
		cfg.WriteTimeout = timeout
	}
}

// WithObserverWrapper sets a function applied to every websocket observer
// before it is subscribed, for example to instrument deliveries.
func WithObserverWrapper(wrap func(ledger.Observer) ledger.Observer) Option {
	return func(cfg *Config) {
		cfg.Wrap = wrap
	}
}
