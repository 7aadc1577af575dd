package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

// Conn wraps one upgraded websocket connection and implements Session.
type Conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func NewConn(wsConn *websocket.Conn) *Conn {
	return &Conn{ws: wsConn}
}

func (c *Conn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) Close(code int) error {
	msg := websocket.FormatCloseMessage(code, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	return c.ws.Close()
}

// Serve registers the connection on the hub and runs the read loop until
// the peer goes away. It blocks; the HTTP handler's goroutine carries it.
func (c *Conn) Serve(hub *Hub) {
	hub.Register(c)
	defer func() {
		hub.Unregister(c)
		_ = c.ws.Close()
	}()

	stop := make(chan struct{})
	defer close(stop)
	go c.pingLoop(stop)

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("websocket read ended")
			}
			return
		}
		c.handleMessage(raw)
	}
}

// handleMessage implements the demonstration protocol: a valid JSON frame
// is echoed back, a malformed one gets an error frame. Either way the
// session stays open.
func (c *Conn) handleMessage(raw []byte) {
	now := Timestamp(time.Now())

	var payload json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		reply, _ := json.Marshal(ErrorFrame{
			Type:      FrameError,
			Message:   "invalid json payload",
			Timestamp: now,
		})
		if err := c.Send(reply); err != nil {
			log.WithError(err).Debug("error frame send failed")
		}
		return
	}

	reply, _ := json.Marshal(EchoFrame{
		Type:      FrameEcho,
		Data:      payload,
		Timestamp: now,
	})
	if err := c.Send(reply); err != nil {
		log.WithError(err).Debug("echo frame send failed")
	}
}

// pingLoop probes the peer on a fixed interval. A peer that stops answering
// is reaped by the read deadline, not here.
func (c *Conn) pingLoop(stop chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			if err != nil {
				return
			}
		}
	}
}
