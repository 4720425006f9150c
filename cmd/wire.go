package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/aikawam/vcwatch/internal/adapters/discord"
	"github.com/aikawam/vcwatch/internal/adapters/health"
	"github.com/aikawam/vcwatch/internal/adapters/repo/jsonfile"
	"github.com/aikawam/vcwatch/internal/application"
	"github.com/aikawam/vcwatch/internal/config"
	"github.com/aikawam/vcwatch/internal/ports"
)

type app struct {
	log      *zap.Logger
	gateway  *discord.Gateway
	rollover *application.Rollover
	health   *health.Server
}

func wireApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	store, err := jsonfile.NewStore(cfg.DataDir, log.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("wire state store: %w", err)
	}

	initial, err := store.LoadTotals(ctx)
	if err != nil {
		log.Warn("load persisted totals", zap.Error(err))
	}
	agg := application.NewAggregator(initial)

	gateway, err := discord.NewGateway(cfg.Token, cfg.GuildID, log.Named("gateway"))
	if err != nil {
		return nil, fmt.Errorf("wire gateway: %w", err)
	}

	notifier := application.NewNotifier(gateway, store, log.Named("notify"))
	notifier.RestoreDestination(ctx)

	tracker := application.NewTracker(cfg.TargetChannel, agg, store, notifier, ports.SystemClock{}, log.Named("tracker"))
	gateway.Bind(tracker, notifier)

	rollover := application.NewRollover(agg, store, notifier, gateway, ports.SystemClock{}, log.Named("rollover"),
		application.WithCutoff(cfg.CutoffHour, cfg.CutoffMinute),
	)

	return &app{
		log:      log,
		gateway:  gateway,
		rollover: rollover,
		health:   health.NewServer(cfg.HealthPort, log.Named("health")),
	}, nil
}

// run serves until SIGINT/SIGTERM, then lets the scheduler tick and the
// health server finish their current unit of work.
func (a *app) run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.gateway.Open(); err != nil {
		return err
	}
	defer func() {
		if err := a.gateway.Close(); err != nil {
			a.log.Error("close gateway", zap.Error(err))
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.health.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		a.rollover.Run(ctx, a.gateway.Ready())
	}()

	<-ctx.Done()
	a.log.Info("shutting down")
	wg.Wait()

	return nil
}
