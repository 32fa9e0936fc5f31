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

package quorum

// DefaultConfig is the default configuration for the quorum gate.
var DefaultConfig = Config{
	Validators:  4,
	Probability: 0.8,
	Vote:        nil,
}

// Config contains optional parameters for the quorum gate. When no vote
// function is set, validators vote through Random with the configured
// probability.
type Config struct {
	Validators  uint
	Probability float64
	Vote        VoteFunc
}

// Option is a function that modifies the gate configuration.
type Option func(*Config)

// WithValidators sets the size of the validator set.
func WithValidators(n uint) Option {
	return func(cfg *Config) {
		cfg.Validators = n
	}
}

// WithProbability sets the probability of a YES vote for the default random
// vote function.
func WithProbability(p float64) Option {
	return func(cfg *Config) {
		cfg.Probability = p
	}
}

// WithVote injects the function used to cast every vote.
func WithVote(vote VoteFunc) Option {
	return func(cfg *Config) {
		cfg.Vote = vote
	}
}
