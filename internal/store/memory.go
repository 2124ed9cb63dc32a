// internal/store/memory.go
//
// In-memory session store for dice grid games.
// Each session owns one game.State and the Roller that feeds it.
//
// Characteristics:
//   - Sessions are keyed by a random UUID and carry a friendly petname.
//   - Concurrency-safe via RWMutex; Update runs its callback under the write
//     lock so read-modify-write on a session is atomic.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"

	"github.com/robalobadob/crisscross/internal/game"
)

// ErrNotFound is returned for an unknown session id.
var ErrNotFound = errors.New("not found")

// Mode says how a session's dice are seeded.
type Mode string

const (
	ModeNormal Mode = "normal" // fresh crypto seed
	ModeDaily  Mode = "daily"  // shared seed for the UTC date
)

// Session is one player's game.
type Session struct {
	ID        string
	Name      string
	Mode      Mode
	State     game.State
	Roller    game.Roller
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store defines the persistence interface for game sessions.
type Store interface {
	// Create registers a new session for st, fed by roller.
	Create(ctx context.Context, mode Mode, st game.State, roller game.Roller) (Session, error)

	// Get returns a copy of the session.
	Get(ctx context.Context, id string) (Session, error)

	// Update runs fn on the stored session under the store lock and keeps
	// whatever fn leaves in it. If fn fails the session is left untouched.
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex        // guards sessions
	sessions map[string]*Session // keyed by Session.ID
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session), now: time.Now}
}

func (m *memory) Create(ctx context.Context, mode Mode, st game.State, roller game.Roller) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	now := m.now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		Name:      petname.Generate(2, "-"),
		Mode:      mode,
		State:     st,
		Roller:    roller,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return *s, nil
}

func (m *memory) Get(ctx context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return *s, nil
	}
	return Session{}, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	work := *s
	if err := fn(&work); err != nil {
		return *s, err
	}
	work.ID = s.ID
	work.UpdatedAt = m.now().UTC()
	*s = work
	return work, nil
}
