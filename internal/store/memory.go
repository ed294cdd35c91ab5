// internal/store/memory.go
//
// In-memory session store: one game.Engine per player session.
//
// Characteristics:
//   - Sessions are keyed by an opaque ID (the HTTP host uses a UUID).
//   - The map is guarded by an RWMutex; each session has its own mutex so
//     Update never runs two callbacks on the same engine at once.
//   - Idle sessions can be dropped with Prune. Nothing survives a restart.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/salt-detective/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Store defines the session persistence interface.
type Store interface {
	// Create registers a new session with a fresh engine from the factory.
	// Creating an existing ID replaces it.
	Create(ctx context.Context, id string) (*game.Engine, error)

	// Update runs fn with exclusive access to the session's engine.
	// Returns ErrNotFound if the session does not exist.
	Update(ctx context.Context, id string, fn func(*game.Engine) error) error

	// Delete removes a session. Missing IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Prune removes sessions not touched since cutoff and reports how many.
	Prune(ctx context.Context, cutoff time.Time) (int, error)

	// Len reports the number of live sessions.
	Len() int
}

// Factory builds the engine for a new session.
type Factory func() *game.Engine

type session struct {
	mu       sync.Mutex // serializes engine access
	engine   *game.Engine
	lastSeen time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex        // guards sessions map
	sessions map[string]*session // keyed by session ID
	factory  Factory
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore(factory Factory) Store {
	return newMemory(factory, time.Now)
}

func newMemory(factory Factory, now func() time.Time) *memory {
	return &memory{sessions: make(map[string]*session), factory: factory, now: now}
}

func (m *memory) Create(ctx context.Context, id string) (*game.Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &session{engine: m.factory(), lastSeen: m.now()}
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s.engine, nil
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Engine) error) error {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.lastSeen = m.now()
	return fn(s.engine)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *memory) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		// TryLock: a session in use right now is not idle.
		if !s.mu.TryLock() {
			continue
		}
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
