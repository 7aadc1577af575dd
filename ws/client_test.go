package ws

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRetryInterval = 20 * time.Millisecond

func TestClientRetryBudgetExhausted(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(wsURL(srv), 3, testRetryInterval)
	c.Connect()

	// initial attempt plus exactly three automatic retries
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&attempts) == 4
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(4 * testRetryInterval)
	assert.EqualValues(t, 4, atomic.LoadInt32(&attempts))
	assert.Equal(t, StatusDisconnected, c.Status())
	assert.Equal(t, 3, c.Retries())

	// an explicit Connect starts over
	c.Connect()
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&attempts) >= 5
	}, 2*time.Second, 5*time.Millisecond)
}

func TestClientRetryCounterResetsOnOpen(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n <= 2 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := NewClient(wsURL(srv), 5, testRetryInterval)
	c.Connect()

	require.Eventually(t, func() bool {
		return c.Status() == StatusConnected
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, c.Retries())

	c.Disconnect()
}

func TestClientReconnectsAfterAbnormalClose(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if n == 1 {
			// drop the connection without a close handshake
			conn.Close()
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	var gotCode atomic.Int32
	c := NewClient(wsURL(srv), 5, testRetryInterval)
	c.OnDisconnect = func(code int) { gotCode.Store(int32(code)) }
	c.Connect()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&attempts) == 2 && c.Status() == StatusConnected
	}, 2*time.Second, 5*time.Millisecond)
	assert.EqualValues(t, websocket.CloseAbnormalClosure, gotCode.Load())
	assert.Equal(t, 0, c.Retries())

	c.Disconnect()
}

func TestClientNormalCloseDoesNotRetry(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
	}))
	defer srv.Close()

	c := NewClient(wsURL(srv), 5, testRetryInterval)
	c.Connect()

	require.Eventually(t, func() bool {
		return c.Status() == StatusDisconnected
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(4 * testRetryInterval)
	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts))
	assert.Equal(t, 0, c.Retries())
}

func TestClientDisconnectSuppressesReconnect(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := NewClient(wsURL(srv), 5, testRetryInterval)
	c.Connect()
	require.Eventually(t, func() bool {
		return c.Status() == StatusConnected
	}, 2*time.Second, 5*time.Millisecond)

	c.Disconnect()
	assert.Equal(t, StatusDisconnected, c.Status())

	time.Sleep(4 * testRetryInterval)
	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts))
	assert.Equal(t, StatusDisconnected, c.Status())
}

func TestClientSendMessageOnlyWhileConnected(t *testing.T) {
	received := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- raw
		}
	}))
	defer srv.Close()

	c := NewClient(wsURL(srv), 0, testRetryInterval)
	assert.False(t, c.SendMessage(map[string]string{"type": "ping"}))

	c.Connect()
	require.Eventually(t, func() bool {
		return c.Status() == StatusConnected
	}, 2*time.Second, 5*time.Millisecond)

	require.True(t, c.SendMessage(map[string]string{"type": "ping"}))
	select {
	case raw := <-received:
		assert.JSONEq(t, `{"type":"ping"}`, string(raw))
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the message")
	}

	c.Disconnect()
	assert.False(t, c.SendMessage(map[string]string{"type": "ping"}))
}

func TestClientStoresLastMessage(t *testing.T) {
	h := startHub(t)
	defer h.Shutdown()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewConn(conn).Serve(h)
	}))
	defer srv.Close()

	frames := make(chan any, 4)
	c := NewClient(wsURL(srv), 0, testRetryInterval)
	c.OnMessage = func(frame any, raw []byte) { frames <- frame }
	c.Connect()
	defer c.Disconnect()

	select {
	case frame := <-frames:
		welcome, ok := frame.(ConnectionFrame)
		require.True(t, ok)
		assert.Equal(t, FrameConnection, welcome.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no welcome frame")
	}
	assert.NotEmpty(t, c.LastMessage())
}

func TestClientDeliversUnknownFrameTypes(t *testing.T) {
	payload := []byte(`{"type":"kitchen_alert","station":"grill"}`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, payload)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	frames := make(chan any, 4)
	c := NewClient(wsURL(srv), 0, testRetryInterval)
	c.OnMessage = func(frame any, raw []byte) { frames <- frame }
	c.Connect()
	defer c.Disconnect()

	select {
	case frame := <-frames:
		raw, ok := frame.(RawFrame)
		require.True(t, ok, "expected a raw frame, got %T", frame)
		assert.Equal(t, "kitchen_alert", raw.Type)
		assert.JSONEq(t, string(payload), string(raw.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("no frame delivered")
	}
	assert.Equal(t, payload, c.LastMessage())
}
