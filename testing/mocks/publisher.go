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

type Publisher struct {
	PublishFunc func(messages ...ledger.Message)
	AttachFunc  func(observer ledger.Observer, snapshot ...ledger.Message) error
	DetachFunc  func(id string) error
}

func BaselinePublisher(t *testing.T) *Publisher {
	t.Helper()

	p := Publisher{
		PublishFunc: func(...ledger.Message) {},
		AttachFunc: func(ledger.Observer, ...ledger.Message) error {
			return nil
		},
		DetachFunc: func(string) error {
			return nil
		},
	}

	return &p
}

func (p *Publisher) Publish(messages ...ledger.Message) {
	p.PublishFunc(messages...)
}

func (p *Publisher) Attach(observer ledger.Observer, snapshot ...ledger.Message) error {
	return p.AttachFunc(observer, snapshot...)
}

func (p *Publisher) Detach(id string) error {
	return p.DetachFunc(id)
}
