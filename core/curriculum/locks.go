package curriculum

import "sync"

// scopeLocks lets one reconciliation run per scope at a time, within this process.
type scopeLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newScopeLocks() *scopeLocks {
	return &scopeLocks{held: make(map[string]struct{})}
}

// tryLock returns false when scopeID is already held.
func (l *scopeLocks) tryLock(scopeID string) (unlock func(), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[scopeID]; busy {
		return nil, false
	}
	l.held[scopeID] = struct{}{}
	return func() {
		l.mu.Lock()
		delete(l.held, scopeID)
		l.mu.Unlock()
	}, true
}
