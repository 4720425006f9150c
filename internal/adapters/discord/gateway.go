package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/aikawam/vcwatch/internal/application"
	"github.com/aikawam/vcwatch/internal/domain"
	"github.com/aikawam/vcwatch/internal/ports"
)

// Gateway wraps the discordgo session: it turns voice-state updates into
// transition events for the tracker, carries outgoing notifications, and
// resolves display names for the daily summary. Tracker and notifier are
// bound after construction because the notifier sends through the gateway.
type Gateway struct {
	session  *discordgo.Session
	guildID  string
	log      *zap.Logger
	tracker  *application.Tracker
	notifier *application.Notifier

	ready     chan struct{}
	readyOnce sync.Once
}

var (
	_ ports.Messenger    = (*Gateway)(nil)
	_ ports.NameResolver = (*Gateway)(nil)
)

func NewGateway(token, guildID string, log *zap.Logger) (*Gateway, error) {
	if log == nil {
		log = zap.NewNop()
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates

	g := &Gateway{
		session: session,
		guildID: guildID,
		log:     log,
		ready:   make(chan struct{}),
	}
	session.AddHandler(g.onReady)
	session.AddHandler(g.onVoiceStateUpdate)
	session.AddHandler(g.onInteraction)

	return g, nil
}

// Bind attaches the core services. Must be called before Open.
func (g *Gateway) Bind(tracker *application.Tracker, notifier *application.Notifier) {
	g.tracker = tracker
	g.notifier = notifier
}

func (g *Gateway) Open() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open gateway connection: %w", err)
	}
	return nil
}

func (g *Gateway) Close() error {
	return g.session.Close()
}

// Ready is closed once the gateway connection is confirmed; the rollover
// scheduler suspends until then.
func (g *Gateway) Ready() <-chan struct{} {
	return g.ready
}

func (g *Gateway) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	g.log.Info("gateway ready",
		zap.String("user", s.State.User.Username),
		zap.String("id", s.State.User.ID),
	)

	if err := g.registerCommands(); err != nil {
		g.log.Error("register admin commands", zap.Error(err))
	}

	g.readyOnce.Do(func() { close(g.ready) })
}

func (g *Gateway) onVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	ev := domain.TransitionEvent{
		Member:    domain.MemberID(vs.UserID),
		After:     domain.ChannelID(vs.ChannelID),
		AfterName: g.channelName(s, vs.ChannelID),
	}
	if vs.BeforeUpdate != nil {
		ev.Before = domain.ChannelID(vs.BeforeUpdate.ChannelID)
		ev.BeforeName = g.channelName(s, vs.BeforeUpdate.ChannelID)
	}
	if vs.Member != nil {
		ev.Bot = vs.Member.User != nil && vs.Member.User.Bot
		ev.DisplayName = memberDisplayName(vs.Member)
	}
	if ev.DisplayName == "" {
		ev.DisplayName = fmt.Sprintf("<@%s>", vs.UserID)
	}

	g.tracker.HandleTransition(context.Background(), ev)
}

// Send implements ports.Messenger. discordgo can suppress notification
// sounds via a message flag, so the silent path never reports
// ErrSilentUnsupported here.
func (g *Gateway) Send(_ context.Context, channel domain.ChannelID, text string, silent bool) error {
	if !silent {
		if _, err := g.session.ChannelMessageSend(string(channel), text); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
		return nil
	}

	_, err := g.session.ChannelMessageSendComplex(string(channel), &discordgo.MessageSend{
		Content: text,
		Flags:   discordgo.MessageFlagsSuppressNotifications,
	})
	if err != nil {
		return fmt.Errorf("send silent message: %w", err)
	}
	return nil
}

// DisplayName implements ports.NameResolver.
func (g *Gateway) DisplayName(member domain.MemberID) (string, bool) {
	if g.guildID != "" {
		if m, err := g.session.State.Member(g.guildID, string(member)); err == nil {
			if name := memberDisplayName(m); name != "" {
				return name, true
			}
		}
	}

	if u, err := g.session.User(string(member)); err == nil {
		if u.GlobalName != "" {
			return u.GlobalName, true
		}
		if u.Username != "" {
			return u.Username, true
		}
	}

	return "", false
}

func (g *Gateway) channelName(s *discordgo.Session, channelID string) string {
	if channelID == "" {
		return ""
	}

	ch, err := s.State.Channel(channelID)
	if err != nil {
		ch, err = s.Channel(channelID)
	}
	if err != nil {
		g.log.Debug("resolve channel name", zap.String("channel", channelID), zap.Error(err))
		return ""
	}

	return ch.Name
}

func memberDisplayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User != nil {
		if m.User.GlobalName != "" {
			return m.User.GlobalName
		}
		return m.User.Username
	}
	return ""
}
