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

package synchronizer

import (
	"sync"

	"github.com/gammazero/deque"

	"github.com/optakt/credit-ledger/models/ledger"
)

// queue is a FIFO of messages waiting for delivery to one observer. Pushing
// never blocks; the signal channel wakes up the delivery loop.
type queue struct {
	mutex  *sync.Mutex
	deque  *deque.Deque
	signal chan struct{}
}

func newQueue() *queue {
	q := queue{
		mutex:  &sync.Mutex{},
		deque:  deque.New(),
		signal: make(chan struct{}, 1),
	}
	return &q
}

func (q *queue) push(messages ...ledger.Message) {
	q.mutex.Lock()
	for _, message := range messages {
		q.deque.PushBack(message)
	}
	q.mutex.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *queue) pop() (ledger.Message, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.deque.Len() == 0 {
		return ledger.Message{}, false
	}
	return q.deque.PopFront().(ledger.Message), true
}

func (q *queue) len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.deque.Len()
}
