package app

import "sync"

// refLock serializes reconciler operations per transaction_ref. A webhook
// delivery and a status poll for the same ref both read-then-write the same
// payment/order pair; without mutual exclusion one writer can clobber the
// other using stale data. Entries are reference-counted so the table does
// not grow with the payment history.
type refLock struct {
	mu      sync.Mutex
	entries map[string]*refEntry
}

type refEntry struct {
	mu   sync.Mutex
	refs int
}

func newRefLock() *refLock {
	return &refLock{entries: make(map[string]*refEntry)}
}

// lock acquires the mutex for ref and returns the matching unlock func.
func (l *refLock) lock(ref string) func() {
	l.mu.Lock()
	entry, ok := l.entries[ref]
	if !ok {
		entry = &refEntry{}
		l.entries[ref] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, ref)
		}
		l.mu.Unlock()
	}
}
