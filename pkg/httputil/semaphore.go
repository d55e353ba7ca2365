package httputil

import (
	"context"
	"sync/atomic"
)

// DefaultConcurrency caps in-flight outbound requests when the caller
// does not size the semaphore itself. Callback delivery bursts track
// detection bursts, so the cap keeps a wave of scam confirmations from
// piling up goroutines against a slow reporting endpoint.
const DefaultConcurrency = 64

// Semaphore bounds concurrent outbound deliveries. Slots are a buffered
// channel; acquisitions that cannot get a slot are counted so the stats
// endpoint can surface sustained backpressure.
type Semaphore struct {
	sem     chan struct{}
	dropped atomic.Int64
}

// NewSemaphore creates a semaphore with the given capacity. Non-positive
// capacities fall back to DefaultConcurrency.
func NewSemaphore(capacity int) *Semaphore {
	if capacity <= 0 {
		capacity = DefaultConcurrency
	}
	return &Semaphore{
		sem: make(chan struct{}, capacity),
	}
}

// TryAcquire takes a slot without blocking. A false return means the
// delivery was shed at capacity and counted as dropped.
func (s *Semaphore) TryAcquire() bool {
	select {
	case s.sem <- struct{}{}:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// Acquire blocks until a slot frees up or ctx is done. Use this on the
// request path where a callback must not be silently shed.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot after a successful TryAcquire or Acquire.
// Releasing an empty semaphore is a no-op.
func (s *Semaphore) Release() {
	select {
	case <-s.sem:
	default:
	}
}

// DroppedCount returns how many deliveries were shed at capacity.
func (s *Semaphore) DroppedCount() int64 {
	return s.dropped.Load()
}

// InUse returns the number of slots currently held.
func (s *Semaphore) InUse() int {
	return len(s.sem)
}

// Available returns the number of free slots.
func (s *Semaphore) Available() int {
	return cap(s.sem) - len(s.sem)
}

// Stats snapshots the semaphore for the stats endpoint.
func (s *Semaphore) Stats() SemaphoreStats {
	return SemaphoreStats{
		Capacity:  cap(s.sem),
		InUse:     s.InUse(),
		Available: s.Available(),
		Dropped:   s.DroppedCount(),
	}
}

// SemaphoreStats is the wire shape of a semaphore snapshot.
type SemaphoreStats struct {
	Capacity  int   `json:"capacity"`
	InUse     int   `json:"in_use"`
	Available int   `json:"available"`
	Dropped   int64 `json:"dropped"`
}
