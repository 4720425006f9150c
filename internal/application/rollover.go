package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aikawam/vcwatch/internal/domain"
	"github.com/aikawam/vcwatch/internal/ports"
)

// JST is the fixed summary timezone. The cutoff is evaluated there
// regardless of the host zone.
var JST = time.FixedZone("JST", 9*60*60)

const (
	defaultCutoffHour   = 23
	defaultCutoffMinute = 59
	defaultTickInterval = time.Minute
)

// Rollover runs a minute tick for the lifetime of the process and fires the
// daily summary when the clock in the configured zone reaches the cutoff
// while the active set is non-empty. Firing resets the Aggregator, which
// empties the active set and makes a second check within the same minute a
// no-op.
type Rollover struct {
	agg      *Aggregator
	totals   ports.TotalsRepository
	notifier *Notifier
	resolver ports.NameResolver
	clock    ports.Clock
	log      *zap.Logger

	cutoffHour   int
	cutoffMinute int
	location     *time.Location
	interval     time.Duration
}

type RolloverOption func(*Rollover)

func WithCutoff(hour, minute int) RolloverOption {
	return func(r *Rollover) {
		r.cutoffHour = hour
		r.cutoffMinute = minute
	}
}

func WithLocation(loc *time.Location) RolloverOption {
	return func(r *Rollover) {
		r.location = loc
	}
}

func WithTickInterval(interval time.Duration) RolloverOption {
	return func(r *Rollover) {
		r.interval = interval
	}
}

func NewRollover(agg *Aggregator, totals ports.TotalsRepository, notifier *Notifier, resolver ports.NameResolver, clock ports.Clock, log *zap.Logger, opts ...RolloverOption) *Rollover {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	r := &Rollover{
		agg:          agg,
		totals:       totals,
		notifier:     notifier,
		resolver:     resolver,
		clock:        clock,
		log:          log,
		cutoffHour:   defaultCutoffHour,
		cutoffMinute: defaultCutoffMinute,
		location:     JST,
		interval:     defaultTickInterval,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run blocks until ctx is cancelled. Ticking starts only after the ready
// signal fires, so nothing is emitted before the gateway connection is up.
func (r *Rollover) Run(ctx context.Context, ready <-chan struct{}) {
	select {
	case <-ctx.Done():
		return
	case <-ready:
	}

	r.log.Info("rollover scheduler started",
		zap.String("cutoff", fmt.Sprintf("%02d:%02d", r.cutoffHour, r.cutoffMinute)),
		zap.String("zone", r.location.String()),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick checks the cutoff once and fires the rollover when due. The current
// tick always runs to completion even if ctx is cancelled mid-flight.
func (r *Rollover) Tick(ctx context.Context) {
	now := r.clock.Now().In(r.location)
	if now.Hour() != r.cutoffHour || now.Minute() != r.cutoffMinute {
		return
	}

	totals, active := r.agg.Snapshot()
	if len(active) == 0 {
		return
	}

	r.notifier.Notify(ctx, r.summary(totals, active))

	r.agg.Reset()
	if err := r.totals.SaveTotals(ctx, domain.DailyTotals{}); err != nil {
		r.log.Error("persist reset totals", zap.Error(err))
	}
	r.log.Info("daily rollover complete", zap.Int("members", len(active)))
}

func (r *Rollover) summary(totals domain.DailyTotals, active []domain.MemberID) string {
	lines := []string{"📊 **本日の勉強時間まとめ**", ""}
	for _, member := range active {
		name, ok := r.resolver.DisplayName(member)
		if !ok {
			name = fmt.Sprintf("<@%s>", member)
		}
		lines = append(lines, fmt.Sprintf("・**%s**：%s", name, domain.FormatDuration(totals[member])))
	}
	lines = append(lines, "", "🌙今日もお疲れさまでした！")

	return strings.Join(lines, "\n")
}
