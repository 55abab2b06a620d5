package ledger

import (
	"sync"

	"divesurf/internal/model"
)

// Store persists the stock levels wholesale under the two keys
// "surfboards" and "divingSuits". Load reports ok=false when no state has
// been persisted yet.
type Store interface {
	Load() (levels model.StockLevels, ok bool, err error)
	Save(levels model.StockLevels) error
}

// MemoryStore keeps the levels in memory only. Used for tests and for
// running the inventory service without durability.
type MemoryStore struct {
	mu     sync.Mutex
	levels model.StockLevels
	saved  bool

	// FailSave, when set, makes every Save return that error. Test hook.
	FailSave error
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load() (model.StockLevels, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels, s.saved, nil
}

func (s *MemoryStore) Save(levels model.StockLevels) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return s.FailSave
	}
	s.levels = levels
	s.saved = true
	return nil
}
