package ports

import (
	"context"
	"errors"

	"github.com/aikawam/vcwatch/internal/domain"
)

// ErrSilentUnsupported is reported by a Messenger whose transport cannot
// suppress notification sounds and badges for a message. The caller retries
// with a plain send; the delivered text is identical either way.
var ErrSilentUnsupported = errors.New("silent delivery not supported")

type Messenger interface {
	Send(ctx context.Context, channel domain.ChannelID, text string, silent bool) error
}
