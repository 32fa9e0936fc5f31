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
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/optakt/credit-ledger/models/ledger"
)

// ErrDuplicateObserver is returned when attaching an observer whose identifier
// is already attached.
var ErrDuplicateObserver = errors.New("observer already attached")

// ErrUnknownObserver is returned when detaching an observer that is not
// attached.
var ErrUnknownObserver = errors.New("observer not attached")

// ErrClosed is returned when attaching an observer after the synchronizer was
// closed.
var ErrClosed = errors.New("synchronizer closed")

type subscription struct {
	observer ledger.Observer
	queue    *queue
	done     chan struct{}
}

// Synchronizer pushes published messages to every attached observer. Each
// observer has its own queue and delivery goroutine, so a slow or failing
// observer never holds up publishers or other observers. Messages reach a
// given observer in the order they were published.
type Synchronizer struct {
	log           zerolog.Logger
	mutex         *sync.Mutex
	subscriptions map[string]*subscription
	wg            *sync.WaitGroup
	closed        bool
}

// New creates a new synchronizer without observers.
func New(log zerolog.Logger) *Synchronizer {

	s := Synchronizer{
		log:           log.With().Str("component", "synchronizer").Logger(),
		mutex:         &sync.Mutex{},
		subscriptions: make(map[string]*subscription),
		wg:            &sync.WaitGroup{},
	}

	return &s
}

// Attach registers the observer and queues the snapshot messages as its first
// deliveries, ahead of anything published afterwards.
func (s *Synchronizer) Attach(observer ledger.Observer, snapshot ...ledger.Message) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := observer.ID()
	if s.closed {
		return fmt.Errorf("could not attach observer (id: %s): %w", id, ErrClosed)
	}
	_, ok := s.subscriptions[id]
	if ok {
		return fmt.Errorf("could not attach observer (id: %s): %w", id, ErrDuplicateObserver)
	}

	sub := subscription{
		observer: observer,
		queue:    newQueue(),
		done:     make(chan struct{}),
	}
	sub.queue.push(snapshot...)
	s.subscriptions[id] = &sub

	s.wg.Add(1)
	go s.deliver(&sub)

	s.log.Info().Str("observer", id).Int("snapshot", len(snapshot)).Msg("observer attached")

	return nil
}

// Detach stops delivery to the observer. Messages still queued for it are
// dropped. The observer itself is not closed.
func (s *Synchronizer) Detach(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sub, ok := s.subscriptions[id]
	if !ok {
		return fmt.Errorf("could not detach observer (id: %s): %w", id, ErrUnknownObserver)
	}
	delete(s.subscriptions, id)
	close(sub.done)

	s.log.Info().Str("observer", id).Int("dropped", sub.queue.len()).Msg("observer detached")

	return nil
}

// Observers returns the identifiers of all attached observers.
func (s *Synchronizer) Observers() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ids := make([]string, 0, len(s.subscriptions))
	for id := range s.subscriptions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Publish queues the messages for every attached observer. It does not wait
// for delivery.
func (s *Synchronizer) Publish(messages ...ledger.Message) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, sub := range s.subscriptions {
		sub.queue.push(messages...)
	}
}

// Close detaches all observers, waits for their delivery loops to end and
// closes them. No observer can be attached afterwards.
func (s *Synchronizer) Close() error {
	s.mutex.Lock()
	s.closed = true
	subs := s.subscriptions
	s.subscriptions = make(map[string]*subscription)
	for _, sub := range subs {
		close(sub.done)
	}
	s.mutex.Unlock()

	s.wg.Wait()

	var merr *multierror.Error
	for id, sub := range subs {
		err := sub.observer.Close()
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("could not close observer (id: %s): %w", id, err))
		}
	}

	return merr.ErrorOrNil()
}

func (s *Synchronizer) deliver(sub *subscription) {
	defer s.wg.Done()

	log := s.log.With().Str("observer", sub.observer.ID()).Logger()

	for {
		select {
		case <-sub.done:
			return
		case <-sub.queue.signal:
		}

		for {
			select {
			case <-sub.done:
				return
			default:
			}

			message, ok := sub.queue.pop()
			if !ok {
				break
			}

			err := sub.observer.Send(message)
			if err != nil {
				log.Warn().Err(err).Str("topic", string(message.Topic)).Msg("could not deliver message")
			}
		}
	}
}
