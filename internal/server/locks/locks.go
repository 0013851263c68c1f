// Package locks provides the per-user mutual-exclusion scope that serializes
// mutating vault operations. Metadata slot rotation and the entry quota
// check-then-insert both need "one writer per user at a time"; operations for
// different users never contend.
package locks

import "sync"

// PerUser hands out one mutex per key. Entries are created on first use and
// kept for the life of the process; the per-key footprint is a single mutex.
type PerUser struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewPerUser() *PerUser {
	return &PerUser{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns the corresponding unlock
// function. Callers should defer the returned function immediately.
func (p *PerUser) Lock(key string) func() {
	p.mu.Lock()
	m, ok := p.locks[key]
	if !ok {
		m = &sync.Mutex{}
		p.locks[key] = m
	}
	p.mu.Unlock()

	m.Lock()
	return m.Unlock
}
