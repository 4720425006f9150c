package application

import (
	"sort"
	"sync"
	"time"

	"github.com/aikawam/vcwatch/internal/domain"
)

// Aggregator accumulates per-member voice time for the current accounting
// day and remembers which members showed up since the last reset. All
// methods are safe for concurrent use; Reset clears totals and the active
// set in one critical section so a concurrent Snapshot never observes a
// partial reset.
type Aggregator struct {
	mu     sync.Mutex
	totals domain.DailyTotals
	active map[domain.MemberID]struct{}
}

func NewAggregator(initial domain.DailyTotals) *Aggregator {
	totals := domain.DailyTotals{}
	for member, total := range initial {
		if total < 0 {
			continue
		}
		totals[member] = total
	}

	return &Aggregator{
		totals: totals,
		active: map[domain.MemberID]struct{}{},
	}
}

// Add credits a completed session to the member, creating the entry at zero
// if absent, and returns the member's running total for the day.
func (a *Aggregator) Add(member domain.MemberID, d time.Duration) time.Duration {
	if d < 0 {
		d = 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.totals[member] += d
	a.active[member] = struct{}{}
	return a.totals[member]
}

// MarkActive records the member in the active set without crediting time.
// Used on enter so members with a still-open session at the cutoff appear
// in the summary.
func (a *Aggregator) MarkActive(member domain.MemberID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.active[member] = struct{}{}
}

// Snapshot returns a copy of the totals and the active members sorted by
// member id.
func (a *Aggregator) Snapshot() (domain.DailyTotals, []domain.MemberID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	active := make([]domain.MemberID, 0, len(a.active))
	for member := range a.active {
		active = append(active, member)
	}
	sort.Slice(active, func(i, j int) bool { return active[i] < active[j] })

	return a.totals.Clone(), active
}

func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totals = domain.DailyTotals{}
	a.active = map[domain.MemberID]struct{}{}
}
