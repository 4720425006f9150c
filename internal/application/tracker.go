package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aikawam/vcwatch/internal/domain"
	"github.com/aikawam/vcwatch/internal/ports"
)

// Tracker correlates enter/leave events on the target voice channel into
// sessions. At most one session is open per member; a duplicate enter
// restarts the session and a leave without a matching enter (for example
// after a process restart) is dropped silently.
type Tracker struct {
	target   domain.ChannelID
	agg      *Aggregator
	totals   ports.TotalsRepository
	notifier *Notifier
	clock    ports.Clock
	log      *zap.Logger

	mu       sync.Mutex
	sessions map[domain.MemberID]time.Time
}

func NewTracker(target domain.ChannelID, agg *Aggregator, totals ports.TotalsRepository, notifier *Notifier, clock ports.Clock, log *zap.Logger) *Tracker {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Tracker{
		target:   target,
		agg:      agg,
		totals:   totals,
		notifier: notifier,
		clock:    clock,
		log:      log,
		sessions: map[domain.MemberID]time.Time{},
	}
}

// HandleTransition processes one voice-state change. Bot accounts and
// transitions that touch neither side of the target channel are ignored.
func (t *Tracker) HandleTransition(ctx context.Context, ev domain.TransitionEvent) {
	if ev.Bot {
		return
	}

	entered := ev.After == t.target && ev.Before != t.target
	left := ev.Before == t.target && ev.After != t.target

	switch {
	case entered:
		t.mu.Lock()
		t.sessions[ev.Member] = t.clock.Now()
		t.mu.Unlock()

		t.agg.MarkActive(ev.Member)
		t.notifier.Notify(ctx, fmt.Sprintf("**%s** が **%s** に参加しました", ev.DisplayName, ev.AfterName))

	case left:
		t.mu.Lock()
		start, ok := t.sessions[ev.Member]
		if ok {
			delete(t.sessions, ev.Member)
		}
		t.mu.Unlock()

		if !ok {
			t.log.Debug("leave without open session", zap.String("member", string(ev.Member)))
			return
		}

		stay := t.clock.Now().Sub(start)
		if stay < 0 {
			stay = 0
		}

		total := t.agg.Add(ev.Member, stay)
		t.persistTotals(ctx)
		t.notifier.Notify(ctx, fmt.Sprintf(
			"**%s** が **%s** から退出しました（滞在 %s／累計 %s）",
			ev.DisplayName, ev.BeforeName, domain.FormatDuration(stay), domain.FormatDuration(total),
		))
	}
}

// OpenSessions reports how many sessions are currently open. Exposed for
// observability and tests.
func (t *Tracker) OpenSessions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

func (t *Tracker) persistTotals(ctx context.Context) {
	totals, _ := t.agg.Snapshot()
	if err := t.totals.SaveTotals(ctx, totals); err != nil {
		t.log.Error("save daily totals", zap.Error(err))
	}
}
