package bot

import (
	"context"
	"fmt"

	"gabers-bot/internal/command"
	"gabers-bot/internal/modules/audit"
	"gabers-bot/internal/permissions"
	"gabers-bot/internal/purge"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// channelMessages adapts a text channel to purge.Channel.
type channelMessages struct {
	session   *discordgo.Session
	channelID string
}

func (c channelMessages) Recent(ctx context.Context, limit int) ([]purge.Message, error) {
	msgs, err := c.session.ChannelMessages(c.channelID, limit, "", "", "")
	if err != nil {
		return nil, err
	}
	out := make([]purge.Message, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, purge.Message{ID: msg.ID, CreatedAt: msg.Timestamp})
	}
	return out, nil
}

func (c channelMessages) Delete(ctx context.Context, ids []string) error {
	// Bulk delete needs at least two IDs.
	if len(ids) == 1 {
		return c.session.ChannelMessageDelete(c.channelID, ids[0])
	}
	return c.session.ChannelMessagesBulkDelete(c.channelID, ids)
}

func (b *Bot) cmdPurge(ctx context.Context, req *request, inv command.Invocation) error {
	if err := b.require(req, permissions.OwnerOrAllowed, "To komando lahko uporabi samo **lastnik strežnika ali whitelisted user**."); err != nil {
		return err
	}
	channelName := b.channelName(req.channelID())
	danger := b.cfg.EmbedColors.Error

	return b.runConfirmation(ctx, req, confirmation{
		embed:    b.embed("⚠️ Potrditev brisanja vseh sporočil", "Ali si prepričan, da želiš **izbrisati vsa sporočila** v tem kanalu? To dejanje ne bo razveljavljeno!", danger),
		yesLabel: "Da",
		noLabel:  "Ne",
		confirmed: func(ctx context.Context) {
			_, _ = b.session.ChannelMessageSend(req.channelID(), "Brisanje sporočil se začne...")
			deleted, err := purge.DeleteAll(ctx, channelMessages{session: b.session, channelID: req.channelID()}, nil)
			if err != nil {
				b.logger.Error("purge failed", zap.String("channel_id", req.channelID()), zap.Int("deleted", deleted), zap.Error(err))
				b.reply(req, "❌ Napaka", fmt.Sprintf("Prišlo je do napake pri brisanju sporočil. Izbrisanih: **%d**.", deleted), danger)
				b.logAction(ctx, req, audit.LevelWarn, "❌ Napaka pri brisanju sporočil",
					fmt.Sprintf("Uporabnik **%s** je poskušal izbrisati sporočila v kanalu **#%s**, vendar je prišlo do napake: %v (izbrisanih: %d)", req.authorTag(), channelName, err, deleted), danger)
				return
			}
			b.reply(req, "✅ Opravljeno", fmt.Sprintf("Izbrisanih **%d** sporočil.", deleted), b.cfg.EmbedColors.Success)
			b.logAction(ctx, req, audit.LevelCrit, "🗑️ Zbrisana sporočila",
				fmt.Sprintf("Uporabnik **%s** je izbrisal **%d** sporočil v kanalu **#%s**.", req.authorTag(), deleted, channelName), danger)
		},
		cancelled: func(ctx context.Context) {
			_, _ = b.session.ChannelMessageSend(req.channelID(), "Brisanje preklicano.")
			b.logAction(ctx, req, audit.LevelInfo, "⚠️ Brisanje preklicano",
				fmt.Sprintf("Uporabnik **%s** je preklical brisanje sporočil v kanalu **#%s**.", req.authorTag(), channelName), danger)
		},
		timedOut: func(ctx context.Context, prompt *discordgo.Message) {
			_, _ = b.session.ChannelMessageSend(req.channelID(), "Brisanje preklicano (čas potečen).")
			b.logAction(ctx, req, audit.LevelInfo, "⌛ Brisanje preklicano",
				fmt.Sprintf("Uporabnik **%s** ni potrdil brisanja sporočil v kanalu **#%s** v roku %d sekund.", req.authorTag(), channelName, b.cfg.ConfirmTimeoutSeconds), danger)
		},
	})
}

func (b *Bot) channelName(channelID string) string {
	if b.session.State != nil {
		if channel, err := b.session.State.Channel(channelID); err == nil {
			return channel.Name
		}
	}
	if channel, err := b.session.Channel(channelID); err == nil {
		return channel.Name
	}
	return channelID
}
