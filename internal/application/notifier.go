package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/aikawam/vcwatch/internal/domain"
	"github.com/aikawam/vcwatch/internal/ports"
)

const testMessage = "🔔 テスト通知：このチャンネルに届きます。"

// Notifier delivers human-readable messages to the configured destination
// channel. Delivery is at-most-once: a missing destination or a transport
// failure is logged and the message is dropped, never surfaced to the
// event path.
type Notifier struct {
	messenger ports.Messenger
	config    ports.ConfigRepository
	log       *zap.Logger

	mu   sync.RWMutex
	dest domain.ChannelID
}

func NewNotifier(messenger ports.Messenger, config ports.ConfigRepository, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}

	return &Notifier{messenger: messenger, config: config, log: log}
}

// RestoreDestination loads the persisted destination at boot. Absent or
// unreadable state leaves the destination unset.
func (n *Notifier) RestoreDestination(ctx context.Context) {
	dest, ok, err := n.config.LoadDestination(ctx)
	if err != nil {
		n.log.Warn("load destination", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	n.mu.Lock()
	n.dest = dest
	n.mu.Unlock()
	n.log.Info("destination restored", zap.String("channel", string(dest)))
}

func (n *Notifier) Destination() domain.ChannelID {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.dest
}

// SetDestination overwrites the destination and persists it.
func (n *Notifier) SetDestination(ctx context.Context, channel domain.ChannelID) error {
	n.mu.Lock()
	n.dest = channel
	n.mu.Unlock()

	if err := n.config.SaveDestination(ctx, channel); err != nil {
		return fmt.Errorf("save destination: %w", err)
	}

	n.log.Info("destination saved", zap.String("channel", string(channel)))
	return nil
}

// Notify sends the text to the destination, requesting suppressed
// notification semantics and falling back to a plain send when the
// transport cannot suppress. All failures are swallowed after logging.
func (n *Notifier) Notify(ctx context.Context, text string) {
	dest := n.Destination()
	if dest == "" {
		n.log.Warn("destination not set; run /admin setchannel")
		return
	}

	err := n.messenger.Send(ctx, dest, text, true)
	if errors.Is(err, ports.ErrSilentUnsupported) {
		err = n.messenger.Send(ctx, dest, text, false)
	}
	if err != nil {
		n.log.Error("send notification", zap.String("channel", string(dest)), zap.Error(err))
	}
}

// SendTest posts the fixed test line. Unlike Notify it reports a missing
// destination so the admin command can tell the caller.
func (n *Notifier) SendTest(ctx context.Context) error {
	if n.Destination() == "" {
		return domain.ErrNoDestination
	}

	n.Notify(ctx, testMessage)
	return nil
}
