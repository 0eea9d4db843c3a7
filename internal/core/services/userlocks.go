package services

import "sync"

// UserLocks is a registry of per-user read/write locks.
// Entries are reference counted and dropped once no caller holds them.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sync.RWMutex
	refs int
}

// NewUserLocks creates an empty lock registry.
func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[string]*userLock)}
}

// Lock acquires the user's write lock and returns its release function.
func (l *UserLocks) Lock(userID string) func() {
	ul := l.acquire(userID)
	ul.Lock()
	return func() {
		ul.Unlock()
		l.release(userID)
	}
}

// RLock acquires the user's read lock and returns its release function.
func (l *UserLocks) RLock(userID string) func() {
	ul := l.acquire(userID)
	ul.RLock()
	return func() {
		ul.RUnlock()
		l.release(userID)
	}
}

// Len returns the number of users with a live lock entry.
func (l *UserLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *UserLocks) acquire(userID string) *userLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	return ul
}

func (l *UserLocks) release(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ul, ok := l.locks[userID]
	if !ok {
		return
	}
	ul.refs--
	if ul.refs == 0 {
		delete(l.locks, userID)
	}
}
