package registration

import "sync"

// userLocks serializes protocol events per platform ID. The state machine
// does not tolerate two transitions racing on one user's session, so every
// operation takes that user's lock first. Events for different users never
// contend.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// lock acquires the per-user lock and returns its release func. Entries are
// reference-counted and removed when the last holder releases, so the table
// only ever holds users with in-flight events.
func (l *userLocks) lock(platformID string) (unlock func()) {
	l.mu.Lock()
	lk, ok := l.locks[platformID]
	if !ok {
		lk = &userLock{}
		l.locks[platformID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()
	return func() {
		lk.mu.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, platformID)
		}
		l.mu.Unlock()
	}
}
