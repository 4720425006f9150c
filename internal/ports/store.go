package ports

import (
	"context"

	"github.com/aikawam/vcwatch/internal/domain"
)

type ConfigRepository interface {
	LoadDestination(ctx context.Context) (domain.ChannelID, bool, error)
	SaveDestination(ctx context.Context, channel domain.ChannelID) error
}

type TotalsRepository interface {
	LoadTotals(ctx context.Context) (domain.DailyTotals, error)
	SaveTotals(ctx context.Context, totals domain.DailyTotals) error
}
