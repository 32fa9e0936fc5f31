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
	"sync"
	"testing"

	"github.com/optakt/credit-ledger/models/ledger"
)

type Observer struct {
	IDFunc    func() string
	SendFunc  func(message ledger.Message) error
	CloseFunc func() error
}

func BaselineObserver(t *testing.T) *Observer {
	t.Helper()

	o := Observer{
		IDFunc: func() string {
			return "observer"
		},
		SendFunc: func(ledger.Message) error {
			return nil
		},
		CloseFunc: func() error {
			return nil
		},
	}

	return &o
}

func (o *Observer) ID() string {
	return o.IDFunc()
}

func (o *Observer) Send(message ledger.Message) error {
	return o.SendFunc(message)
}

func (o *Observer) Close() error {
	return o.CloseFunc()
}

// Recorder is an observer that keeps every message it receives.
type Recorder struct {
	id       string
	mutex    *sync.Mutex
	messages []ledger.Message
}

func NewRecorder(id string) *Recorder {
	r := Recorder{
		id:    id,
		mutex: &sync.Mutex{},
	}
	return &r
}

func (r *Recorder) ID() string {
	return r.id
}

func (r *Recorder) Send(message ledger.Message) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func (r *Recorder) Close() error {
	return nil
}

// Messages returns a copy of the messages received so far.
func (r *Recorder) Messages() []ledger.Message {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	messages := make([]ledger.Message, len(r.messages))
	copy(messages, r.messages)
	return messages
}
