package ledger

import (
	"errors"
	"fmt"
	"sync"

	"divesurf/internal/model"
)

// Default stock seeded when the store holds no persisted state yet.
const (
	DefaultSurfboards  = 100
	DefaultDivingSuits = 50
)

// ErrPersist marks a failed durable write. The reservation that triggered
// it is not applied.
var ErrPersist = errors.New("stock persistence failed")

// Ledger is the authoritative record of remaining stock. All reads go
// through it and TryReserve is the only mutation path; the
// read-check-decrement-persist sequence runs under one mutex, so two orders
// can never be granted the same units.
type Ledger struct {
	mu     sync.Mutex
	levels model.StockLevels
	store  Store
}

// Open loads the persisted levels, seeding and persisting the defaults on
// first run.
func Open(store Store) (*Ledger, error) {
	levels, ok, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load stock: %w", err)
	}
	if !ok {
		levels = model.StockLevels{Surfboards: DefaultSurfboards, DivingSuits: DefaultDivingSuits}
		if err := store.Save(levels); err != nil {
			return nil, fmt.Errorf("seed stock: %w", err)
		}
	}
	if levels.Surfboards < 0 || levels.DivingSuits < 0 {
		return nil, fmt.Errorf("persisted stock is negative: %+v", levels)
	}
	return &Ledger{levels: levels, store: store}, nil
}

// Levels returns the current stock counts.
func (l *Ledger) Levels() model.StockLevels {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.levels
}

// TryReserve atomically checks and decrements stock for one order.
// granted reports whether the reservation was applied; after is the ledger
// state the order observed either way. The new levels are persisted before
// the in-memory state advances, so a failed write (returned wrapping
// ErrPersist) leaves the ledger unchanged and the reservation denied.
func (l *Ledger) TryReserve(surfboards, divingSuits uint) (granted bool, after model.StockLevels, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur := l.levels
	if int(surfboards) > cur.Surfboards || int(divingSuits) > cur.DivingSuits {
		return false, cur, nil
	}
	next := model.StockLevels{
		Surfboards:  cur.Surfboards - int(surfboards),
		DivingSuits: cur.DivingSuits - int(divingSuits),
	}
	if err := l.store.Save(next); err != nil {
		return false, cur, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	l.levels = next
	return true, next, nil
}
