package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/aikawam/vcwatch/internal/domain"
)

var adminCommand = &discordgo.ApplicationCommand{
	Name:        "admin",
	Description: "管理用コマンド",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "setchannel",
			Description: "通知チャンネルを設定",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "test",
			Description: "通知テスト",
		},
	},
}

func (g *Gateway) registerCommands() error {
	_, err := g.session.ApplicationCommandCreate(g.session.State.User.ID, g.guildID, adminCommand)
	if err != nil {
		return fmt.Errorf("create admin command: %w", err)
	}
	return nil
}

func (g *Gateway) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	if data.Name != adminCommand.Name || len(data.Options) == 0 {
		return
	}

	ctx := context.Background()
	switch data.Options[0].Name {
	case "setchannel":
		if err := g.notifier.SetDestination(ctx, domain.ChannelID(i.ChannelID)); err != nil {
			g.log.Error("set destination", zap.Error(err))
			g.respond(s, i, "⚠️ 通知先の保存に失敗しました")
			return
		}
		g.respond(s, i, "✅ 通知先を設定しました（保存済み）")

	case "test":
		g.respond(s, i, "送信テスト中…")
		if err := g.notifier.SendTest(ctx); errors.Is(err, domain.ErrNoDestination) {
			g.log.Warn("test notification without destination")
		}
	}
}

func (g *Gateway) respond(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		g.log.Error("respond to interaction", zap.Error(err))
	}
}
