package ledger

import (
	"fmt"
	"path/filepath"
	"strconv"

	badger "github.com/dgraph-io/badger/v4"

	"divesurf/internal/model"
)

// BadgerStore persists the stock levels in BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(dir string) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(filepath.Clean(dir)))
	if err != nil {
		return nil, fmt.Errorf("badger open: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Close() error { return b.db.Close() }

func (b *BadgerStore) Load() (model.StockLevels, bool, error) {
	var levels model.StockLevels
	found := true
	err := b.db.View(func(txn *badger.Txn) error {
		boards, ok, err := getCount(txn, keySurfboards)
		if err != nil {
			return err
		}
		suits, ok2, err := getCount(txn, keyDivingSuits)
		if err != nil {
			return err
		}
		if !ok || !ok2 {
			found = false
			return nil
		}
		levels = model.StockLevels{Surfboards: boards, DivingSuits: suits}
		return nil
	})
	if err != nil {
		return model.StockLevels{}, false, err
	}
	return levels, found, nil
}

func getCount(txn *badger.Txn, key string) (int, bool, error) {
	item, err := txn.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("badger get %s: %w", key, err)
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return 0, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return n, true, nil
}

func (b *BadgerStore) Save(levels model.StockLevels) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(keySurfboards), []byte(strconv.Itoa(levels.Surfboards))); err != nil {
			return err
		}
		return txn.Set([]byte(keyDivingSuits), []byte(strconv.Itoa(levels.DivingSuits)))
	})
	if err != nil {
		return fmt.Errorf("badger save: %w", err)
	}
	return nil
}
