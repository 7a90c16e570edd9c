package services

import "sync"

// userGuard serializes lifecycle mutations per user. Two concurrent starts
// for the same user contend on one mutex, so the conflict check and the
// insert execute as a unit; the storage layer's uniqueness constraint is
// the backstop for deployments with more than one process.
//
// The registry grows by one mutex per user seen and is never pruned; an
// entry is a few dozen bytes and pruning would reintroduce the
// check-then-act race it exists to close.
type userGuard struct {
	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func newUserGuard() *userGuard {
	return &userGuard{users: make(map[string]*sync.Mutex)}
}

// acquire locks the user's serialization point and returns the release
// function. Read-only queries do not call acquire.
func (g *userGuard) acquire(userID string) func() {
	g.mu.Lock()
	m, ok := g.users[userID]
	if !ok {
		m = &sync.Mutex{}
		g.users[userID] = m
	}
	g.mu.Unlock()

	m.Lock()
	return m.Unlock
}
