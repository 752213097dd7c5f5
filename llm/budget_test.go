package llm

import (
	"errors"
	"sync"
	"testing"
)

func TestLedgerReserveCommit(t *testing.T) {
	ledger := NewLedger(1.00)

	res, err := ledger.Reserve(0.40)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	sum := ledger.Summary()
	if sum.ReservedUSD != 0.40 {
		t.Errorf("reserved = %v, want 0.40", sum.ReservedUSD)
	}

	// Actual cost came in lower than the estimate
	res.Commit(0.25)

	sum = ledger.Summary()
	if sum.SpentUSD != 0.25 {
		t.Errorf("spent = %v, want 0.25", sum.SpentUSD)
	}
	if sum.ReservedUSD != 0 {
		t.Errorf("reserved = %v, want 0", sum.ReservedUSD)
	}
	if sum.RemainingUSD != 0.75 {
		t.Errorf("remaining = %v, want 0.75", sum.RemainingUSD)
	}
}

func TestLedgerReserveRelease(t *testing.T) {
	ledger := NewLedger(0.50)

	res, err := ledger.Reserve(0.50)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	// A second reservation cannot fit while the first is outstanding
	if _, err := ledger.Reserve(0.01); !errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("expected ErrBudgetExceeded, got %v", err)
	}

	res.Release()

	if _, err := ledger.Reserve(0.50); err != nil {
		t.Errorf("reserve after release failed: %v", err)
	}
}

func TestLedgerExceeded(t *testing.T) {
	ledger := NewLedger(0.10)

	res, err := ledger.Reserve(0.08)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	res.Commit(0.08)

	_, err = ledger.Reserve(0.05)
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("expected ErrBudgetExceeded, got %v", err)
	}
}

func TestLedgerUnlimited(t *testing.T) {
	ledger := NewLedger(0)

	res, err := ledger.Reserve(1000)
	if err != nil {
		t.Fatalf("unlimited ledger rejected reservation: %v", err)
	}
	res.Commit(1000)

	sum := ledger.Summary()
	if sum.SpentUSD != 1000 {
		t.Errorf("spent = %v, want 1000", sum.SpentUSD)
	}
	if sum.RemainingUSD != 0 {
		t.Errorf("remaining = %v, want 0 for unlimited ledger", sum.RemainingUSD)
	}
}

func TestLedgerDoubleSettleIsNoop(t *testing.T) {
	ledger := NewLedger(1.00)

	res, err := ledger.Reserve(0.30)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	res.Commit(0.30)
	res.Commit(0.30)
	res.Release()

	sum := ledger.Summary()
	if sum.SpentUSD != 0.30 {
		t.Errorf("spent = %v, want 0.30 after double settle", sum.SpentUSD)
	}
}

func TestLedgerConcurrentReservations(t *testing.T) {
	// 100 goroutines each try to reserve 2.00 against a 100.00 limit.
	// Exactly 50 should succeed.
	ledger := NewLedger(100)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := ledger.Reserve(2)
			if err != nil {
				return
			}
			res.Commit(2)
			mu.Lock()
			succeeded++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if succeeded != 50 {
		t.Errorf("succeeded = %d, want 50", succeeded)
	}

	sum := ledger.Summary()
	if sum.SpentUSD > 100 {
		t.Errorf("spent %v exceeds limit", sum.SpentUSD)
	}
}

func TestNopReservationSafe(t *testing.T) {
	res := nopReservation()
	res.Commit(1.0)
	res.Release()
}
