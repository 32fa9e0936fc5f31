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

package mocks

import (
	"testing"

	"github.com/optakt/credit-ledger/models/ledger"
)

type Reader struct {
	LastFunc     func() (uint64, error)
	BlockFunc    func(height uint64) (ledger.Block, error)
	BlocksFunc   func() ([]ledger.Block, error)
	AccountFunc  func(id string) (ledger.Account, error)
	AccountsFunc func() ([]ledger.Account, error)
}

func BaselineReader(t *testing.T) *Reader {
	t.Helper()

	r := Reader{
		LastFunc: func() (uint64, error) {
			return GenericBlock.Height, nil
		},
		BlockFunc: func(height uint64) (ledger.Block, error) {
			return GenericBlock, nil
		},
		BlocksFunc: func() ([]ledger.Block, error) {
			return []ledger.Block{GenericBlock}, nil
		},
		AccountFunc: func(string) (ledger.Account, error) {
			return GenericAccount, nil
		},
		AccountsFunc: func() ([]ledger.Account, error) {
			return []ledger.Account{GenericAccount}, nil
		},
	}

	return &r
}

func (r *Reader) Last() (uint64, error) {
	return r.LastFunc()
}

func (r *Reader) Block(height uint64) (ledger.Block, error) {
	return r.BlockFunc(height)
}

func (r *Reader) Blocks() ([]ledger.Block, error) {
	return r.BlocksFunc()
}

func (r *Reader) Account(id string) (ledger.Account, error) {
	return r.AccountFunc(id)
}

func (r *Reader) Accounts() ([]ledger.Account, error) {
	return r.AccountsFunc()
}
