package ws

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// frame type tags on the wire
const (
	FrameConnection         = "connection"
	FrameEcho               = "echo"
	FrameError              = "error"
	FrameOrderCreated       = "order_created"
	FrameOrderStatusChanged = "order_status_changed"
)

// Event is a broadcastable payload. Its fields are merged with the type tag
// and a server-generated timestamp when encoded.
type Event interface {
	EventType() string
}

type OrderCreatedEvent struct {
	OrderId int     `json:"order_id"`
	Status  string  `json:"status"`
	Total   float64 `json:"total"`
}

func (OrderCreatedEvent) EventType() string { return FrameOrderCreated }

type OrderStatusEvent struct {
	OrderId int    `json:"order_id"`
	Status  string `json:"status"`
}

func (OrderStatusEvent) EventType() string { return FrameOrderStatusChanged }

type ConnectionFrame struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type EchoFrame struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

type ErrorFrame struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type OrderCreatedFrame struct {
	Type string `json:"type"`
	OrderCreatedEvent
	Timestamp string `json:"timestamp"`
}

type OrderStatusFrame struct {
	Type string `json:"type"`
	OrderStatusEvent
	Timestamp string `json:"timestamp"`
}

func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// EncodeEvent flattens the event fields next to the type tag and timestamp,
// so consumers see {type, ...eventFields, timestamp}.
func EncodeEvent(ev Event, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return nil, errors.Wrap(err, "marshal event")
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Wrap(err, "flatten event")
	}
	fields["type"] = ev.EventType()
	fields["timestamp"] = Timestamp(now)
	return json.Marshal(fields)
}

type frameHeader struct {
	Type string `json:"type"`
}

// RawFrame carries a well-formed frame whose type tag this package does
// not know. Collaborators may introduce new tags; they still get delivered.
type RawFrame struct {
	Type string
	Data json.RawMessage
}

// Decode dispatches on the frame's type tag and returns the matching
// concrete frame struct, or a RawFrame for tags it does not know.
func Decode(raw []byte) (any, error) {
	var h frameHeader
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, errors.Wrap(err, "decode frame header")
	}
	switch h.Type {
	case FrameConnection:
		var f ConnectionFrame
		return f, json.Unmarshal(raw, &f)
	case FrameEcho:
		var f EchoFrame
		return f, json.Unmarshal(raw, &f)
	case FrameError:
		var f ErrorFrame
		return f, json.Unmarshal(raw, &f)
	case FrameOrderCreated:
		var f OrderCreatedFrame
		return f, json.Unmarshal(raw, &f)
	case FrameOrderStatusChanged:
		var f OrderStatusFrame
		return f, json.Unmarshal(raw, &f)
	default:
		return RawFrame{Type: h.Type, Data: append(json.RawMessage(nil), raw...)}, nil
	}
}
