package board

import (
	"sync"
	"time"
)

// Notice is one transient user-facing message, the API-side equivalent of the
// dashboard's toasts.
type Notice struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

const maxNotices = 50

// Notices is a bounded buffer of pending messages. The SPA polls and drains
// it; messages are never blocking and never fatal.
type Notices struct {
	mu  sync.Mutex
	buf []Notice
}

func NewNotices() *Notices { return &Notices{} }

func (n *Notices) push(level, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.buf = append(n.buf, Notice{Level: level, Message: msg, At: time.Now().UTC()})
	if len(n.buf) > maxNotices {
		n.buf = n.buf[len(n.buf)-maxNotices:]
	}
}

func (n *Notices) Success(msg string) { n.push("success", msg) }
func (n *Notices) Warning(msg string) { n.push("warning", msg) }
func (n *Notices) Error(msg string)   { n.push("error", msg) }

// Drain returns pending notices and clears the buffer.
func (n *Notices) Drain() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.buf
	n.buf = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}
