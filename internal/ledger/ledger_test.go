package ledger

import (
	"errors"
	"sync"
	"testing"

	"divesurf/internal/model"
)

func openWith(t *testing.T, levels model.StockLevels) (*Ledger, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	if err := store.Save(levels); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	lg, err := Open(store)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	return lg, store
}

func TestOpen_SeedsDefaultsOnFirstRun(t *testing.T) {
	store := NewMemoryStore()
	lg, err := Open(store)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got := lg.Levels()
	if got.Surfboards != DefaultSurfboards || got.DivingSuits != DefaultDivingSuits {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	// Defaults must be persisted immediately.
	persisted, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("defaults not persisted: ok=%v err=%v", ok, err)
	}
	if persisted != got {
		t.Fatalf("persisted mismatch: %+v vs %+v", persisted, got)
	}
}

func TestTryReserve_GrantAndDeny(t *testing.T) {
	lg, store := openWith(t, model.StockLevels{Surfboards: 100, DivingSuits: 50})

	granted, after, err := lg.TryReserve(3, 2)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if !granted {
		t.Fatalf("reservation should be granted")
	}
	if after.Surfboards != 97 || after.DivingSuits != 48 {
		t.Fatalf("unexpected levels after grant: %+v", after)
	}
	persisted, _, _ := store.Load()
	if persisted != after {
		t.Fatalf("grant not persisted: %+v vs %+v", persisted, after)
	}

	// Denied reservation leaves the ledger untouched.
	granted, after, err = lg.TryReserve(98, 0)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if granted {
		t.Fatalf("reservation beyond stock should be denied")
	}
	if after.Surfboards != 97 || after.DivingSuits != 48 {
		t.Fatalf("denied reservation must not change levels: %+v", after)
	}
}

func TestTryReserve_InsufficientLeavesLedgerUnchanged(t *testing.T) {
	lg, _ := openWith(t, model.StockLevels{Surfboards: 2, DivingSuits: 0})

	granted, after, err := lg.TryReserve(3, 0)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if granted {
		t.Fatalf("3 surfboards from a stock of 2 must be denied")
	}
	if after.Surfboards != 2 || after.DivingSuits != 0 {
		t.Fatalf("levels must be unchanged: %+v", after)
	}
}

func TestTryReserve_PersistFailureRollsBack(t *testing.T) {
	lg, store := openWith(t, model.StockLevels{Surfboards: 10, DivingSuits: 10})
	store.FailSave = errors.New("disk gone")

	granted, after, err := lg.TryReserve(1, 1)
	if err == nil {
		t.Fatalf("expected persist error")
	}
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("want ErrPersist, got %v", err)
	}
	if granted {
		t.Fatalf("failed persist must deny the reservation")
	}
	if after.Surfboards != 10 || after.DivingSuits != 10 {
		t.Fatalf("in-memory levels must not advance: %+v", after)
	}

	// The ledger still works once the store recovers.
	store.FailSave = nil
	granted, after, err = lg.TryReserve(1, 1)
	if err != nil || !granted {
		t.Fatalf("reserve after recovery: granted=%v err=%v", granted, err)
	}
	if after.Surfboards != 9 || after.DivingSuits != 9 {
		t.Fatalf("unexpected levels: %+v", after)
	}
}

func TestTryReserve_NeverGoesNegativeUnderConcurrency(t *testing.T) {
	lg, _ := openWith(t, model.StockLevels{Surfboards: 50, DivingSuits: 25})

	var wg sync.WaitGroup
	var grantedCount sync.Map
	const workers = 20
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				granted, after, err := lg.TryReserve(3, 2)
				if err != nil {
					t.Errorf("reserve: %v", err)
					return
				}
				if after.Surfboards < 0 || after.DivingSuits < 0 {
					t.Errorf("stock went negative: %+v", after)
					return
				}
				if granted {
					v, _ := grantedCount.LoadOrStore(w, 0)
					grantedCount.Store(w, v.(int)+1)
				}
			}
		}()
	}
	wg.Wait()

	total := 0
	grantedCount.Range(func(_, v any) bool {
		total += v.(int)
		return true
	})
	// 25 diving suits / 2 per order bounds the grants at 12.
	if total > 12 {
		t.Fatalf("too many grants: %d", total)
	}
	final := lg.Levels()
	if final.Surfboards != 50-3*total || final.DivingSuits != 25-2*total {
		t.Fatalf("levels inconsistent with %d grants: %+v", total, final)
	}
}

func TestTryReserve_ContendersForScarceStock(t *testing.T) {
	// Two orders race for 3 surfboards when only 4 exist: at most one wins.
	lg, _ := openWith(t, model.StockLevels{Surfboards: 4, DivingSuits: 0})

	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			granted, _, err := lg.TryReserve(3, 0)
			if err != nil {
				t.Errorf("reserve: %v", err)
				return
			}
			results[i] = granted
		}()
	}
	wg.Wait()

	if results[0] && results[1] {
		t.Fatalf("both contenders granted with combined demand over supply")
	}
	if !results[0] && !results[1] {
		t.Fatalf("one contender should have been granted")
	}
	if got := lg.Levels(); got.Surfboards != 1 {
		t.Fatalf("one grant of 3 from 4 should leave 1, got %+v", got)
	}
}
