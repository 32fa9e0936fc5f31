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

type Chain struct {
	AppendFunc func(payload ledger.Payload) (ledger.Block, error)
	BlocksFunc func() []ledger.Block
}

func BaselineChain(t *testing.T) *Chain {
	t.Helper()

	c := Chain{
		AppendFunc: func(payload ledger.Payload) (ledger.Block, error) {
			block := GenericBlock
			block.Payload = payload
			return block, nil
		},
		BlocksFunc: func() []ledger.Block {
			return []ledger.Block{GenericBlock}
		},
	}

	return &c
}

func (c *Chain) Append(payload ledger.Payload) (ledger.Block, error) {
	return c.AppendFunc(payload)
}

func (c *Chain) Blocks() []ledger.Block {
	return c.BlocksFunc()
}
