package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxNotices = 20

// Notice is a transient user-facing message, typically a swallowed remote
// or persistence failure the UI should mention without blocking anything.
type Notice struct {
	ID      string    `json:"id"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notices is a bounded list; when full the oldest entry is dropped.
type Notices struct {
	mu      sync.Mutex
	pending []Notice
}

func NewNotices() *Notices {
	return &Notices{}
}

func (n *Notices) Push(level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.pending) >= maxNotices {
		n.pending = n.pending[1:]
	}
	n.pending = append(n.pending, Notice{
		ID:      uuid.New().String(),
		Level:   level,
		Message: message,
		At:      time.Now(),
	})
}

// Drain returns all pending notices and clears the list.
func (n *Notices) Drain() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	drained := n.pending
	n.pending = nil
	return drained
}
