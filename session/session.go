// Package session provides per-session turn serialization. The backend keeps
// no durable session data; the only per-session resource is a mutex ensuring
// that concurrent requests for the same session are processed one at a time,
// so a turn never observes a half-applied state from a sibling request.
package session

import "sync"

// Registry hands out one lock per session ID. Entries are created lazily and
// reference counted; releasing the last holder removes the entry, so the
// footprint tracks sessions with in-flight turns rather than every session
// ever seen.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewRegistry creates an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{locks: make(map[string]*entry)}
}

// Acquire blocks until the session's lock is held and returns the release
// function. Release must be called exactly once.
func (r *Registry) Acquire(sessionID string) func() {
	r.mu.Lock()
	e, ok := r.locks[sessionID]
	if !ok {
		e = &entry{}
		r.locks[sessionID] = e
	}
	e.refs++
	r.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		r.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(r.locks, sessionID)
		}
		r.mu.Unlock()
	}
}

// Len returns the number of sessions currently holding or waiting on a lock.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.locks)
}
