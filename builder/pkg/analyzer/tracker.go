package analyzer

import "sync"

// Ticket identifies one analysis started for a key.
type Ticket struct {
	Key string
	Seq uint64
}

// Tracker surfaces only the latest analysis per key. Tickets are numbered from
// one counter shared by all keys; completing any ticket other than the most
// recent one for its key is discarded.
type Tracker struct {
	mu     sync.Mutex
	next   uint64
	seq    map[string]uint64
	latest map[string]Result
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		seq:    make(map[string]uint64),
		latest: make(map[string]Result),
	}
}

// Begin supersedes every outstanding ticket for key.
func (t *Tracker) Begin(key string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.seq[key] = t.next
	return Ticket{Key: key, Seq: t.next}
}

// Complete records r if tk is still the newest ticket for its key and
// reports whether it was kept.
func (t *Tracker) Complete(tk Ticket, r Result) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seq[tk.Key] != tk.Seq {
		return false
	}
	t.latest[tk.Key] = r
	return true
}

// Latest returns the last kept result for key.
func (t *Tracker) Latest(key string) (Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.latest[key]
	return r, ok
}

// Release drops key's state once tk's result has been handed out, unless a
// newer ticket for key is still outstanding. It reports whether state was
// dropped.
func (t *Tracker) Release(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seq[tk.Key] != tk.Seq {
		return false
	}
	delete(t.seq, tk.Key)
	delete(t.latest, tk.Key)
	return true
}

// Len returns the number of keys with outstanding or retained state.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seq)
}

// Forget drops all state for key.
func (t *Tracker) Forget(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.seq, key)
	delete(t.latest, key)
}
