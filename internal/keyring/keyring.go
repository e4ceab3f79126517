// Package keyring distributes outbound API calls over a pool of credentials.
package keyring

import (
	"errors"
	"sync"
)

// ErrEmpty is returned by New when no credentials are supplied.
var ErrEmpty = errors.New("keyring: no credentials")

// Ring hands out credentials round-robin. The cursor is advanced and read
// under a mutex held only for the increment, never across network calls, so
// concurrent requests stay fair without serializing the slow path.
type Ring struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

// New creates a Ring over the given credentials. The first call to Next on a
// fresh ring returns the credential at index 1 (index 0 for a pool of one):
// the cursor starts at 0 and every caller advances it before reading.
func New(keys []string) (*Ring, error) {
	if len(keys) == 0 {
		return nil, ErrEmpty
	}
	return &Ring{keys: keys}, nil
}

// Size returns the number of credentials in the pool.
func (r *Ring) Size() int {
	return len(r.keys)
}

// Next advances the cursor by one modulo the pool size and returns the
// credential at the new position.
func (r *Ring) Next() string {
	r.mu.Lock()
	r.cursor = (r.cursor + 1) % len(r.keys)
	key := r.keys[r.cursor]
	r.mu.Unlock()
	return key
}
