package settings

import "sync"

// Store loads and saves the theme preference. Load returns ModeAuto when
// nothing was saved yet.
type Store interface {
	Load() (Mode, error)
	Save(Mode) error
}

// MemoryStore keeps the preference in memory.
type MemoryStore struct {
	mu   sync.Mutex
	mode Mode
}

// NewMemoryStore returns a store holding mode.
func NewMemoryStore(mode Mode) *MemoryStore {
	return &MemoryStore{mode: Normalize(string(mode))}
}

// Load implements Store.
func (s *MemoryStore) Load() (Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Normalize(string(s.mode)), nil
}

// Save implements Store.
func (s *MemoryStore) Save(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)
