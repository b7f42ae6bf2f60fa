// Package session tracks per-connection login state: the mapping from a
// peer address to its negotiated session key, scoped to the lifetime of one
// TCP connection. It is grounded on the teacher's auth.SRPStore map+mutex
// shape, minus the TTL sweep -- this gateway's Session lifecycle runs
// accept-to-disconnect, not on a timer.
package session

import "sync"

// Store is a peer-address-keyed table of optional session keys. The zero
// value is not usable; construct with NewStore.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string][]byte)}
}

// Create registers peerAddr with no session key, to be filled in later by
// SetKey once the handshake completes.
func (s *Store) Create(peerAddr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[peerAddr] = nil
}

// SetKey installs the session key for an already-created peerAddr entry.
func (s *Store) SetKey(peerAddr string, key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[peerAddr] = key
}

// Key returns the session key for peerAddr, and whether an entry exists at
// all (ok is false if the connection was never registered or has since been
// deleted; the key itself may be nil if the handshake never completed).
func (s *Store) Key(peerAddr string) (key []byte, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok = s.entries[peerAddr]
	return key, ok
}

// Delete removes peerAddr's entry, called when the connection closes.
func (s *Store) Delete(peerAddr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, peerAddr)
}
