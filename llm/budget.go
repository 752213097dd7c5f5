package llm

import (
	"fmt"
	"sync"
)

// Ledger enforces a shared USD budget across all LLM calls in a run.
// Callers reserve a worst-case estimate before dispatching a request and
// settle the reservation with the actual cost afterwards, so concurrent
// calls cannot collectively overshoot the limit between check and spend.
type Ledger struct {
	mu       sync.Mutex
	limitUSD float64
	spentUSD float64
	reserved float64
}

// NewLedger creates a budget ledger with the given USD limit.
// A non-positive limit disables enforcement: reservations always succeed
// but spending is still tracked.
func NewLedger(limitUSD float64) *Ledger {
	return &Ledger{limitUSD: limitUSD}
}

// Reservation holds budget set aside for an in-flight LLM call.
// Exactly one of Commit or Release must be called; both are safe to
// call on a no-op reservation.
type Reservation struct {
	ledger  *Ledger
	amount  float64
	settled bool
}

// Reserve sets aside estimate USD for an upcoming call. It fails with an
// error wrapping ErrBudgetExceeded when committed spend plus outstanding
// reservations plus the estimate would exceed the limit.
func (l *Ledger) Reserve(estimate float64) (*Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limitUSD > 0 && l.spentUSD+l.reserved+estimate > l.limitUSD {
		return nil, fmt.Errorf("%w: spent $%.4f + reserved $%.4f + estimate $%.4f exceeds limit $%.2f",
			ErrBudgetExceeded, l.spentUSD, l.reserved, estimate, l.limitUSD)
	}

	l.reserved += estimate
	return &Reservation{ledger: l, amount: estimate}, nil
}

// Commit settles the reservation with the actual cost of the call.
// The actual cost is charged even if it exceeds the original estimate.
func (r *Reservation) Commit(actualUSD float64) {
	if r.ledger == nil || r.settled {
		return
	}
	r.settled = true

	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	r.ledger.reserved -= r.amount
	r.ledger.spentUSD += actualUSD
}

// Release frees the reservation without charging anything, used when the
// call failed before producing a billable response.
func (r *Reservation) Release() {
	if r.ledger == nil || r.settled {
		return
	}
	r.settled = true

	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	r.ledger.reserved -= r.amount
}

// nopReservation returns a reservation not backed by any ledger.
func nopReservation() *Reservation {
	return &Reservation{}
}

// BudgetSummary is a point-in-time snapshot of ledger state.
type BudgetSummary struct {
	LimitUSD     float64 `json:"limit_usd"`
	SpentUSD     float64 `json:"spent_usd"`
	ReservedUSD  float64 `json:"reserved_usd"`
	RemainingUSD float64 `json:"remaining_usd"`
}

// Summary reports current spend against the limit. Remaining is zero when
// enforcement is disabled or the budget is exhausted.
func (l *Ledger) Summary() BudgetSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := l.limitUSD - l.spentUSD - l.reserved
	if l.limitUSD <= 0 || remaining < 0 {
		remaining = 0
	}

	return BudgetSummary{
		LimitUSD:     l.limitUSD,
		SpentUSD:     l.spentUSD,
		ReservedUSD:  l.reserved,
		RemainingUSD: remaining,
	}
}
