package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNotFound is returned by Get when the session does not exist.
var ErrNotFound = errors.New("session not found")

// Store is the persistence contract for session state. Get and
// GetOrCreate return snapshots; all mutation goes through Update, which
// serializes writers per session ID so concurrent requests for the same
// conversation cannot interleave read-modify-write cycles.
type Store interface {
	// Get retrieves a session snapshot. Returns ErrNotFound if absent.
	Get(ctx context.Context, sessionID string) (*State, error)

	// Create initializes and persists a fresh session.
	Create(ctx context.Context, sessionID string, meta Metadata) (*State, error)

	// GetOrCreate returns the existing session or creates it.
	GetOrCreate(ctx context.Context, sessionID string, meta Metadata) (*State, error)

	// Save persists the full session state.
	Save(ctx context.Context, state *State) error

	// Update loads the session, applies fn under the session's write
	// lock, and persists the result. Returns ErrNotFound if absent; any
	// error from fn aborts the write. The returned state is a snapshot
	// reflecting fn's changes.
	Update(ctx context.Context, sessionID string, fn func(*State) error) (*State, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Close releases store resources.
	Close() error
}

// writerLocks hands out one mutex per session ID so each conversation
// has a single writer at a time.
type writerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newWriterLocks() *writerLocks {
	return &writerLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the session's mutex and returns its unlock func.
func (w *writerLocks) acquire(sessionID string) func() {
	w.mu.Lock()
	m, ok := w.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		w.locks[sessionID] = m
	}
	w.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// forget drops the lock entry for a session that no longer exists.
func (w *writerLocks) forget(sessionID string) {
	w.mu.Lock()
	delete(w.locks, sessionID)
	w.mu.Unlock()
}

// ============================================================================
// IN-MEMORY SESSION STORE
// ============================================================================
// Thread-safe in-memory session storage with TTL-based cleanup. Reads
// hand out deep copies, so stored state only changes through Save or
// Update. Suitable for single-node deployments; use RedisStore when
// sessions must survive restarts or be shared across instances.

// InMemoryStore implements Store with in-memory storage.
type InMemoryStore struct {
	sessions map[string]*State
	mu       sync.RWMutex
	writers  *writerLocks

	maxAge     time.Duration // Session TTL (default: 24 hours)
	cleanupTTL time.Duration // Cleanup interval (default: 5 minutes)

	stopCleanup chan struct{}
	cleanupOnce sync.Once
}

// StoreOption is a functional option for configuring InMemoryStore.
type StoreOption func(*InMemoryStore)

// WithMaxAge sets the maximum idle age for sessions before cleanup.
func WithMaxAge(d time.Duration) StoreOption {
	return func(s *InMemoryStore) {
		s.maxAge = d
	}
}

// WithCleanupInterval sets how often the cleanup routine runs.
func WithCleanupInterval(d time.Duration) StoreOption {
	return func(s *InMemoryStore) {
		s.cleanupTTL = d
	}
}

// NewInMemoryStore creates a new in-memory session store.
func NewInMemoryStore(opts ...StoreOption) *InMemoryStore {
	s := &InMemoryStore{
		sessions:    make(map[string]*State),
		writers:     newWriterLocks(),
		maxAge:      24 * time.Hour,
		cleanupTTL:  5 * time.Minute,
		stopCleanup: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.cleanupLoop()

	return s
}

// Get retrieves a snapshot of a session by ID.
func (s *InMemoryStore) Get(ctx context.Context, sessionID string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}

	// Stale sessions are treated as gone; actual removal happens in
	// cleanupLoop.
	if time.Since(session.LastUpdated) > s.maxAge {
		return nil, ErrNotFound
	}

	return session.Clone(), nil
}

// Create initializes and stores a fresh session.
func (s *InMemoryStore) Create(ctx context.Context, sessionID string, meta Metadata) (*State, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := NewState(sessionID, meta)
	s.sessions[sessionID] = state
	return state.Clone(), nil
}

// GetOrCreate returns the existing session or creates it atomically.
func (s *InMemoryStore) GetOrCreate(ctx context.Context, sessionID string, meta Metadata) (*State, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok && time.Since(session.LastUpdated) <= s.maxAge {
		return session.Clone(), nil
	}

	state := NewState(sessionID, meta)
	s.sessions[sessionID] = state
	return state.Clone(), nil
}

// Save persists the session state.
func (s *InMemoryStore) Save(ctx context.Context, state *State) error {
	if state == nil {
		return fmt.Errorf("session state is nil")
	}
	if state.SessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if state.CreatedAt.IsZero() {
		state.CreatedAt = time.Now().UTC()
	}
	state.LastUpdated = time.Now().UTC()

	s.sessions[state.SessionID] = state.Clone()
	return nil
}

// Update applies fn to the session under its per-session write lock and
// persists the result. Concurrent Updates for the same session ID run
// one at a time, so counters and the message log stay consistent.
func (s *InMemoryStore) Update(ctx context.Context, sessionID string, fn func(*State) error) (*State, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	unlock := s.writers.acquire(sessionID)
	defer unlock()

	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Delete removes a session.
func (s *InMemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	s.writers.forget(sessionID)
	return nil
}

// Close stops the cleanup goroutine.
func (s *InMemoryStore) Close() error {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}

// cleanupLoop periodically removes expired sessions.
func (s *InMemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *InMemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, session := range s.sessions {
		if now.Sub(session.LastUpdated) > s.maxAge {
			delete(s.sessions, id)
			s.writers.forget(id)
		}
	}
}

// Stats returns current session store statistics.
func (s *InMemoryStore) Stats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := StoreStats{
		SessionCount: len(s.sessions),
	}
	for _, session := range s.sessions {
		stats.TotalMessages += session.TotalMessages
		if session.ScamDetected {
			stats.ScamsDetected++
		}
	}
	return stats
}

// StoreStats contains session store statistics.
type StoreStats struct {
	SessionCount  int `json:"session_count"`
	TotalMessages int `json:"total_messages"`
	ScamsDetected int `json:"scams_detected"`
}

// Ensure InMemoryStore implements Store
var _ Store = (*InMemoryStore)(nil)
