package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aikawam/vcwatch/internal/domain"
)

func TestRolloverFiresAtCutoffWithActiveMembers(t *testing.T) {
	t.Parallel()

	fx := newRolloverFixture(t, time.Date(2026, 8, 30, 23, 59, 10, 0, JST))
	fx.agg.Add("10", 125*time.Second)
	fx.agg.Add("20", 3725*time.Second)

	fx.rollover.Tick(context.Background())

	msgs := fx.messenger.sent()
	require.Len(t, msgs, 1, "exactly one summary message")
	assert.Contains(t, msgs[0].text, "📊 **本日の勉強時間まとめ**")
	assert.Contains(t, msgs[0].text, "・**Alice**：2分5秒")
	assert.Contains(t, msgs[0].text, "・**Bob**：1時間2分5秒")
	assert.Contains(t, msgs[0].text, "🌙今日もお疲れさまでした！")

	totals, active := fx.agg.Snapshot()
	assert.Empty(t, totals)
	assert.Empty(t, active)

	require.NotEmpty(t, fx.store.savedTotals)
	assert.Empty(t, fx.store.savedTotals[len(fx.store.savedTotals)-1])
}

func TestRolloverDoesNotFireOutsideCutoffMinute(t *testing.T) {
	t.Parallel()

	fx := newRolloverFixture(t, time.Date(2026, 8, 30, 23, 58, 59, 0, JST))
	fx.agg.Add("10", time.Minute)

	fx.rollover.Tick(context.Background())

	assert.Empty(t, fx.messenger.sent())
	totals, _ := fx.agg.Snapshot()
	assert.Equal(t, time.Minute, totals["10"])
}

func TestRolloverDoesNotFireWithEmptyActiveSet(t *testing.T) {
	t.Parallel()

	fx := newRolloverFixture(t, time.Date(2026, 8, 30, 23, 59, 0, 0, JST))

	fx.rollover.Tick(context.Background())

	assert.Empty(t, fx.messenger.sent())
	assert.Empty(t, fx.store.savedTotals)
}

func TestRolloverSecondTickInSameMinuteDoesNotRefire(t *testing.T) {
	t.Parallel()

	fx := newRolloverFixture(t, time.Date(2026, 8, 30, 23, 59, 0, 0, JST))
	fx.agg.Add("10", time.Minute)

	fx.rollover.Tick(context.Background())
	fx.rollover.Tick(context.Background())

	assert.Len(t, fx.messenger.sent(), 1)
}

func TestRolloverEvaluatesCutoffInJST(t *testing.T) {
	t.Parallel()

	// 14:59 UTC is 23:59 JST.
	fx := newRolloverFixture(t, time.Date(2026, 8, 30, 14, 59, 0, 0, time.UTC))
	fx.agg.Add("10", time.Minute)

	fx.rollover.Tick(context.Background())

	assert.Len(t, fx.messenger.sent(), 1)
}

func TestRolloverSummaryUsesPlaceholderForUnresolvedMembers(t *testing.T) {
	t.Parallel()

	fx := newRolloverFixture(t, time.Date(2026, 8, 30, 23, 59, 0, 0, JST))
	fx.agg.Add("10", time.Minute)
	fx.agg.Add("999", time.Minute)

	fx.rollover.Tick(context.Background())

	msgs := fx.messenger.sent()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].text, "**Alice**")
	assert.Contains(t, msgs[0].text, "**<@999>**")
}

func TestRolloverSummaryLinesSortedByMemberID(t *testing.T) {
	t.Parallel()

	fx := newRolloverFixture(t, time.Date(2026, 8, 30, 23, 59, 0, 0, JST))
	fx.agg.Add("20", time.Minute)
	fx.agg.Add("10", time.Minute)

	fx.rollover.Tick(context.Background())

	msgs := fx.messenger.sent()
	require.Len(t, msgs, 1)
	assert.Less(t, strings.Index(msgs[0].text, "Alice"), strings.Index(msgs[0].text, "Bob"))
}

func TestRolloverMemberWithOnlyOpenSessionAppearsInSummary(t *testing.T) {
	t.Parallel()

	fx := newRolloverFixture(t, time.Date(2026, 8, 30, 23, 59, 0, 0, JST))
	// Entered earlier, never left: active but no accumulated time.
	fx.agg.MarkActive("10")

	fx.rollover.Tick(context.Background())

	msgs := fx.messenger.sent()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].text, "・**Alice**：0秒")
}

func TestRolloverCustomCutoff(t *testing.T) {
	t.Parallel()

	clock := fixedClock{now: time.Date(2026, 8, 30, 6, 30, 0, 0, JST)}
	messenger := &recordingMessenger{}
	store := &memoryStore{dest: "555", destSet: true}
	agg := NewAggregator(nil)
	notifier := NewNotifier(messenger, store, nil)
	notifier.RestoreDestination(context.Background())

	r := NewRollover(agg, store, notifier, staticResolver{}, clock, nil, WithCutoff(6, 30))
	agg.Add("10", time.Minute)

	r.Tick(context.Background())

	assert.Len(t, messenger.sent(), 1)
}

func TestRolloverRunStopsWhenCancelledBeforeReady(t *testing.T) {
	t.Parallel()

	fx := newRolloverFixture(t, time.Now())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		fx.rollover.Run(ctx, make(chan struct{}))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}

func TestRolloverRunTicksAfterReady(t *testing.T) {
	t.Parallel()

	clock := fixedClock{now: time.Date(2026, 8, 30, 23, 59, 0, 0, JST)}
	messenger := &recordingMessenger{}
	store := &memoryStore{dest: "555", destSet: true}
	agg := NewAggregator(nil)
	notifier := NewNotifier(messenger, store, nil)
	notifier.RestoreDestination(context.Background())

	r := NewRollover(agg, store, notifier, staticResolver{}, clock, nil, WithTickInterval(time.Millisecond))
	agg.Add("10", time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan struct{})
	done := make(chan struct{})
	go func() {
		r.Run(ctx, ready)
		close(done)
	}()
	close(ready)

	require.Eventually(t, func() bool {
		return len(messenger.sent()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

// ---- fixtures ----

type rolloverFixture struct {
	rollover  *Rollover
	agg       *Aggregator
	messenger *recordingMessenger
	store     *memoryStore
}

func newRolloverFixture(t *testing.T, now time.Time) *rolloverFixture {
	t.Helper()

	messenger := &recordingMessenger{}
	store := &memoryStore{dest: "555", destSet: true}
	agg := NewAggregator(nil)

	notifier := NewNotifier(messenger, store, nil)
	notifier.RestoreDestination(context.Background())

	return &rolloverFixture{
		rollover:  NewRollover(agg, store, notifier, staticResolver{}, fixedClock{now: now}, nil),
		agg:       agg,
		messenger: messenger,
		store:     store,
	}
}

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

type staticResolver struct{}

func (staticResolver) DisplayName(member domain.MemberID) (string, bool) {
	switch member {
	case "10":
		return "Alice", true
	case "20":
		return "Bob", true
	default:
		return "", false
	}
}
