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

package rest_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/credit-ledger/api/rest"
	"github.com/optakt/credit-ledger/models/ledger"
	"github.com/optakt/credit-ledger/testing/mocks"
)

func TestController_Subscribe(t *testing.T) {
	subscribed := make(chan string, 1)
	unsubscribed := make(chan string, 1)
	wrapped := make(chan struct{}, 1)

	settle := mocks.BaselineSettlement(t)
	settle.SubscribeFunc = func(observer ledger.Observer) error {
		subscribed <- observer.ID()
		msg := ledger.Message{
			Topic: ledger.TopicBalance,
			Payload: ledger.BalanceDelta{
				Account: mocks.GenericIssuer,
				Balance: 10,
				Delta:   0,
			},
		}
		return observer.Send(msg)
	}
	settle.UnsubscribeFunc = func(id string) error {
		unsubscribed <- id
		return nil
	}

	wrap := func(observer ledger.Observer) ledger.Observer {
		wrapped <- struct{}{}
		return observer
	}

	server := echo.New()
	ctrl := rest.NewController(mocks.NoopLogger, settle, mocks.BaselineVerifier(t),
		rest.WithWriteTimeout(time.Second),
		rest.WithObserverWrapper(wrap),
	)
	rest.Routes(server, ctrl)

	ts := httptest.NewServer(server)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscribe"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	var got map[string]interface{}
	err = conn.ReadJSON(&got)
	require.NoError(t, err)

	assert.Equal(t, "balance", got["kind"])
	payload, ok := got["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, mocks.GenericIssuer, payload["account"])
	assert.Equal(t, float64(10), payload["balance"])

	var id string
	select {
	case id = <-subscribed:
	case <-time.After(time.Second):
		t.Fatal("observer was not subscribed")
	}
	assert.NotEmpty(t, id)
	assert.Len(t, wrapped, 1)

	err = conn.Close()
	require.NoError(t, err)

	select {
	case gone := <-unsubscribed:
		assert.Equal(t, id, gone)
	case <-time.After(time.Second):
		t.Fatal("observer was not unsubscribed")
	}
}

func TestController_Subscribe_Failure(t *testing.T) {
	settle := mocks.BaselineSettlement(t)
	settle.SubscribeFunc = func(ledger.Observer) error {
		return mocks.GenericError
	}

	server := echo.New()
	rest.Routes(server, rest.NewController(mocks.NoopLogger, settle, mocks.BaselineVerifier(t)))

	ts := httptest.NewServer(server)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscribe"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
}

func TestController_Subscribe_NotWebsocket(t *testing.T) {
	settle := mocks.BaselineSettlement(t)
	settle.SubscribeFunc = func(ledger.Observer) error {
		t.Error("plain request should not subscribe")
		return nil
	}

	server := echo.New()
	rest.Routes(server, rest.NewController(mocks.NoopLogger, settle, mocks.BaselineVerifier(t)))

	req := httptest.NewRequest("GET", "/subscribe", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestSocket_Close(t *testing.T) {
	done := make(chan *rest.Socket, 1)

	server := echo.New()
	server.GET("/", func(ctx echo.Context) error {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
		if err != nil {
			return err
		}
		done <- rest.NewSocket(conn, time.Second)
		return nil
	})

	ts := httptest.NewServer(server)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	socket := <-done
	assert.NotEmpty(t, socket.ID())

	err = socket.Close()
	assert.NoError(t, err)
	err = socket.Close()
	assert.NoError(t, err)

	err = socket.Send(ledger.Message{Topic: ledger.TopicChain})
	assert.Error(t, err)
}
