// Package session holds the process's single authenticated identity.
package session

import "sync"

// Session is the in-memory record of who is signed in. It never outlives
// the process.
type Session struct {
	UserID string
	Email  string
}

// Holder stores at most one session and serializes replacement.
//
// Writes are tagged with an attempt token so a slow authentication attempt
// cannot clobber the session installed by a later one. Callers take a token
// with StartAttempt before doing work, then Complete with it; only the
// latest token wins.
type Holder struct {
	mu      sync.Mutex
	attempt uint64
	session Session
	active  bool
}

// NewHolder returns an empty holder.
func NewHolder() *Holder {
	return &Holder{}
}

// StartAttempt registers a new authentication attempt and returns its
// token. Starting an attempt invalidates all earlier outstanding tokens.
func (h *Holder) StartAttempt() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attempt++
	return h.attempt
}

// Complete installs the session if token is still the latest attempt.
// It reports whether the session was installed.
func (h *Holder) Complete(token uint64, s Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if token != h.attempt {
		return false
	}
	h.session = s
	h.active = true
	return true
}

// Current returns the active session, if any.
func (h *Holder) Current() (Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session, h.active
}

// Clear drops the active session and invalidates outstanding attempt
// tokens. Clearing an empty holder is a no-op.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = Session{}
	h.active = false
	h.attempt++
}
