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
	"github.com/optakt/credit-ledger/models/ledger"
)

// Chain is the hash-chained ledger that committed transactions are appended to.
type Chain interface {
	Append(payload ledger.Payload) (ledger.Block, error)
	Blocks() []ledger.Block
}

// Gate decides whether a proposal may be chained.
type Gate interface {
	Decide(proposal ledger.Proposal) ledger.Decision
}

// Publisher fans messages out to attached observers.
type Publisher interface {
	Publish(messages ...ledger.Message)
	Attach(observer ledger.Observer, snapshot ...ledger.Message) error
	Detach(id string) error
}
