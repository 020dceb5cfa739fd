// Package session keeps the per-conversation pending selection: the most
// recently submitted magnet link that is still waiting for the user to pick
// a destination.
package session

import "sync"

// Store is an in-memory map from chat ID to the pending magnet link.
// One slot per conversation: a new link overwrites the previous one
// (last write wins), and resolving a selection clears the slot.
//
// Entries are never expired. A user who sends a link and never picks a
// destination leaves the slot occupied until the next link or process
// restart; growth is bounded by chat-id cardinality.
type Store struct {
	mu      sync.RWMutex
	pending map[int64]string
	locks   map[int64]*sync.Mutex
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		pending: make(map[int64]string),
		locks:   make(map[int64]*sync.Mutex),
	}
}

// Put records the pending magnet link for a chat, unconditionally
// overwriting any previous one.
func (s *Store) Put(chatID int64, magnetLink string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[chatID] = magnetLink
}

// Take returns the pending magnet link for a chat and clears it
// atomically. The second return value is false when no link is pending.
func (s *Store) Take(chatID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.pending[chatID]
	if ok {
		delete(s.pending, chatID)
	}
	return link, ok
}

// Len returns the number of conversations with a pending link.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.pending)
}

// Lock acquires the per-conversation mutex and returns its release
// function. The controller wraps each update's read-modify-write in it so
// concurrent webhook deliveries for the same chat cannot interleave
// between Put and Take. Distinct chats never contend.
func (s *Store) Lock(chatID int64) func() {
	s.mu.Lock()
	m, ok := s.locks[chatID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[chatID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
