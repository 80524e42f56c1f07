package dashboard

import "sync"

// requestSequencer hands out per-key request tokens so only the latest request
// for a key may apply its response.
type requestSequencer struct {
	mu   sync.Mutex
	next uint64
	live map[string]uint64
}

func newRequestSequencer() *requestSequencer {
	return &requestSequencer{live: make(map[string]uint64)}
}

// Begin supersedes any in-flight request for key.
func (r *requestSequencer) Begin(key string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.live[key] = r.next
	return r.next
}

// Current reports whether token is still the latest request for key.
func (r *requestSequencer) Current(key string, token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return token != 0 && r.live[key] == token
}

// Invalidate drops the in-flight request for key, if any.
func (r *requestSequencer) Invalidate(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, key)
}

// Finish releases key when token is still current.
func (r *requestSequencer) Finish(key string, token uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live[key] == token {
		delete(r.live, key)
	}
}
