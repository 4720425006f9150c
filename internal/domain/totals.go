package domain

import "time"

// DailyTotals maps a member to the accumulated voice-channel time for the
// current accounting day. Totals only grow until the daily reset clears the
// whole mapping.
type DailyTotals map[MemberID]time.Duration

func (t DailyTotals) Clone() DailyTotals {
	clone := make(DailyTotals, len(t))
	for member, total := range t {
		clone[member] = total
	}
	return clone
}
