package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// Client keeps one logical subscription alive over a droppable transport.
// An abnormal close schedules a reconnect on a fixed delay until the retry
// budget runs out; a successful open resets the budget. At most one
// underlying connection and one pending retry timer exist at a time.
type Client struct {
	url           string
	maxRetries    int
	retryInterval time.Duration

	OnConnect    func()
	OnMessage    func(frame any, raw []byte)
	OnDisconnect func(code int)
	OnError      func(err error)

	mu          sync.Mutex
	conn        *websocket.Conn
	status      Status
	retries     int
	retryTimer  *time.Timer
	manual      bool
	lastMessage []byte
}

func NewClient(url string, maxRetries int, retryInterval time.Duration) *Client {
	return &Client{
		url:           url,
		maxRetries:    maxRetries,
		retryInterval: retryInterval,
		status:        StatusDisconnected,
	}
}

// Connect dials the server. A no-op while a connection is already open or
// being opened. Calling it after the retry budget ran out starts a fresh
// attempt (the budget only gates automatic retries).
func (c *Client) Connect() {
	c.mu.Lock()
	if c.status == StatusConnected || c.status == StatusConnecting {
		c.mu.Unlock()
		return
	}
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	c.status = StatusConnecting
	c.manual = false
	c.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		c.mu.Lock()
		c.status = StatusError
		c.mu.Unlock()
		if c.OnError != nil {
			c.OnError(errors.Wrap(err, "dial"))
		}
		// no close event follows a failed dial, so the retry decision
		// happens here
		c.handleClose(websocket.CloseAbnormalClosure)
		return
	}

	c.mu.Lock()
	c.conn = conn
	c.status = StatusConnected
	c.retries = 0
	c.mu.Unlock()

	if c.OnConnect != nil {
		c.OnConnect()
	}
	go c.readLoop(conn)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			code := websocket.CloseAbnormalClosure
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				code = ce.Code
			}
			c.handleClose(code)
			return
		}
		c.handleMessage(raw)
	}
}

// handleMessage parses the frame; a malformed one is logged and dropped
// while the channel stays open.
func (c *Client) handleMessage(raw []byte) {
	frame, err := Decode(raw)
	if err != nil {
		log.WithError(err).Debug("dropping undecodable frame")
		return
	}
	c.mu.Lock()
	c.lastMessage = append([]byte(nil), raw...)
	c.mu.Unlock()
	if c.OnMessage != nil {
		c.OnMessage(frame, raw)
	}
}

func (c *Client) handleClose(code int) {
	c.mu.Lock()
	c.conn = nil
	c.status = StatusDisconnected
	retry := !c.manual &&
		code != websocket.CloseNormalClosure &&
		c.retries < c.maxRetries
	if retry {
		c.retries++
		c.retryTimer = time.AfterFunc(c.retryInterval, c.Connect)
	}
	c.mu.Unlock()

	if c.OnDisconnect != nil {
		c.OnDisconnect(code)
	}
}

// SendMessage serializes the payload and writes it if currently connected.
// Nothing is queued: a send while disconnected just reports false.
func (c *Client) SendMessage(payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("marshal outbound message")
		return false
	}

	c.mu.Lock()
	conn := c.conn
	connected := c.status == StatusConnected
	c.mu.Unlock()
	if !connected || conn == nil {
		return false
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.WithError(err).Warn("outbound message failed")
		return false
	}
	return true
}

// Disconnect cancels any pending retry, closes the connection with the
// normal-closure code and suppresses automatic reconnection until Connect
// is called again.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.manual = true
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	conn := c.conn
	c.conn = nil
	c.status = StatusDisconnected
	c.mu.Unlock()

	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = conn.Close()
	}
}

func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Client) Retries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retries
}

// LastMessage returns the raw bytes of the most recently received frame,
// or nil if none arrived yet.
func (c *Client) LastMessage() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastMessage == nil {
		return nil
	}
	return append([]byte(nil), c.lastMessage...)
}
