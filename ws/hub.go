package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "ws")

// Session is one live bidirectional connection. The hub only needs to write
// to it and close it; reading stays with the transport wrapper.
type Session interface {
	Send(data []byte) error
	Close(code int) error
}

type broadcastReq struct {
	data []byte
	sent chan int
}

// Hub tracks the set of open sessions and fans events out to them. The
// session set is owned by the Run goroutine alone; every mutation travels
// through a channel, so no lock guards the map.
type Hub struct {
	register   chan Session
	unregister chan Session
	broadcast  chan broadcastReq
	count      chan chan int
	done       chan struct{}
	stopped    chan struct{}
	sessions   map[Session]struct{}
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan Session),
		unregister: make(chan Session),
		broadcast:  make(chan broadcastReq),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		sessions:   make(map[Session]struct{}),
	}
}

// Run is the hub's event loop. It returns after Shutdown, once every
// session has been closed with a normal-closure code.
func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case s := <-h.register:
			h.sessions[s] = struct{}{}
			welcome, _ := json.Marshal(ConnectionFrame{
				Type:      FrameConnection,
				Message:   "connected to order events",
				Timestamp: Timestamp(time.Now()),
			})
			if err := s.Send(welcome); err != nil {
				log.WithError(err).Warn("welcome frame failed, dropping session")
				h.drop(s)
			}
		case s := <-h.unregister:
			delete(h.sessions, s)
		case req := <-h.broadcast:
			sent := 0
			for s := range h.sessions {
				if err := s.Send(req.data); err != nil {
					log.WithError(err).Warn("broadcast send failed, dropping session")
					h.drop(s)
					continue
				}
				sent++
			}
			req.sent <- sent
		case reply := <-h.count:
			reply <- len(h.sessions)
		case <-h.done:
			for s := range h.sessions {
				_ = s.Close(websocket.CloseNormalClosure)
				delete(h.sessions, s)
			}
			return
		}
	}
}

// drop removes a failed session; the set must never hold a closed session.
func (h *Hub) drop(s Session) {
	delete(h.sessions, s)
	_ = s.Close(websocket.CloseGoingAway)
}

// Register adds a session and sends it the welcome frame.
func (h *Hub) Register(s Session) {
	select {
	case h.register <- s:
	case <-h.stopped:
	}
}

func (h *Hub) Unregister(s Session) {
	select {
	case h.unregister <- s:
	case <-h.stopped:
	}
}

// Broadcast writes the event to every open session, best effort: one
// session's failure removes that session only. Returns how many sessions
// the frame was successfully written to.
func (h *Hub) Broadcast(ev Event) int {
	data, err := EncodeEvent(ev, time.Now())
	if err != nil {
		log.WithError(err).Error("encode broadcast event")
		return 0
	}
	req := broadcastReq{data: data, sent: make(chan int, 1)}
	select {
	case h.broadcast <- req:
	case <-h.stopped:
		return 0
	}
	select {
	case n := <-req.sent:
		return n
	case <-h.stopped:
		return 0
	}
}

// Count reports the number of tracked sessions.
func (h *Hub) Count() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
	case <-h.stopped:
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-h.stopped:
		return 0
	}
}

// Shutdown force-closes every session and stops the loop. Safe to call once.
func (h *Hub) Shutdown() {
	close(h.done)
	<-h.stopped
}
