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
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/optakt/credit-ledger/models/ledger"
)

// Socket is an observer that pushes messages as JSON text frames over a
// websocket connection.
type Socket struct {
	id      string
	conn    *websocket.Conn
	timeout time.Duration
	mutex   *sync.Mutex
	closed  bool
}

func NewSocket(conn *websocket.Conn, timeout time.Duration) *Socket {

	s := Socket{
		id:      uuid.New().String(),
		conn:    conn,
		timeout: timeout,
		mutex:   &sync.Mutex{},
		closed:  false,
	}

	return &s
}

func (s *Socket) ID() string {
	return s.id
}

func (s *Socket) Send(message ledger.Message) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return websocket.ErrCloseSent
	}

	err := s.conn.SetWriteDeadline(time.Now().Add(s.timeout))
	if err != nil {
		return err
	}
	return s.conn.WriteJSON(message)
}

// Wait consumes incoming frames until the peer goes away. Clients are not
// expected to send anything, but reading is needed to process control frames.
func (s *Socket) Wait() {
	for {
		_, _, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
	}
}

// Close sends a close frame to the peer and closes the connection. It is safe
// to call more than once.
func (s *Socket) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	deadline := time.Now().Add(s.timeout)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, deadline)

	return s.conn.Close()
}
