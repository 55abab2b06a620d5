package ledger

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/pebble"

	"divesurf/internal/model"
)

const (
	keySurfboards  = "surfboards"
	keyDivingSuits = "divingSuits"
)

// PebbleStore persists the stock levels in PebbleDB. Writes are synced:
// Save does not return before the batch is durable.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(dir string) (*PebbleStore, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: d}, nil
}

func (p *PebbleStore) Close() error { return p.db.Close() }

func (p *PebbleStore) Load() (model.StockLevels, bool, error) {
	boards, ok1, err := p.getCount(keySurfboards)
	if err != nil {
		return model.StockLevels{}, false, err
	}
	suits, ok2, err := p.getCount(keyDivingSuits)
	if err != nil {
		return model.StockLevels{}, false, err
	}
	if !ok1 || !ok2 {
		return model.StockLevels{}, false, nil
	}
	return model.StockLevels{Surfboards: boards, DivingSuits: suits}, true, nil
}

func (p *PebbleStore) getCount(key string) (int, bool, error) {
	v, closer, err := p.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("pebble get %s: %w", key, err)
	}
	defer closer.Close()
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return 0, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return n, true, nil
}

func (p *PebbleStore) Save(levels model.StockLevels) error {
	wb := p.db.NewBatch()
	defer wb.Close()
	if err := wb.Set([]byte(keySurfboards), []byte(strconv.Itoa(levels.Surfboards)), nil); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	if err := wb.Set([]byte(keyDivingSuits), []byte(strconv.Itoa(levels.DivingSuits)), nil); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	if err := wb.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("pebble commit: %w", err)
	}
	return nil
}
