package bot

import (
	"context"
	"fmt"
	"time"

	"gabers-bot/internal/command"
	"gabers-bot/internal/modules/audit"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const hackColor = 0xFFAA00

type hackStep struct {
	wait    time.Duration
	percent int
}

var hackSteps = []hackStep{
	{wait: 1500 * time.Millisecond, percent: 10},
	{wait: 1500 * time.Millisecond, percent: 50},
	{wait: 1500 * time.Millisecond, percent: 100},
}

func (b *Bot) cmdHack(ctx context.Context, req *request, inv command.Invocation) error {
	if inv.Args.Lower(0) == "stop" {
		return b.hackStop(req)
	}

	target := b.hackTarget(inv.Args, req.msg.Author)
	tag := target.String()
	b.hack.Stop(target.ID)
	epoch := b.hack.Epoch()

	progress, err := b.send(req.channelID(), b.hackProgress(tag, 0))
	if err != nil {
		return platform("Hacka ni bilo mogoče začeti", err)
	}
	for _, step := range hackSteps {
		if !sleep(ctx, step.wait) {
			return nil
		}
		if _, err := b.session.ChannelMessageEditEmbed(progress.ChannelID, progress.ID, b.hackProgress(tag, step.percent)); err != nil {
			b.logger.Warn("hack progress edit failed", zap.Error(err))
		}
	}
	if !sleep(ctx, time.Second) {
		return nil
	}
	finished := b.embed("✅ Hack končan", fmt.Sprintf("Hack na **%s** je bil uspešen.\nPreveri DM.", tag), b.cfg.EmbedColors.Success)
	if _, err := b.session.ChannelMessageEditEmbed(progress.ChannelID, progress.ID, finished); err != nil {
		b.logger.Warn("hack progress edit failed", zap.Error(err))
	}

	body := fmt.Sprintf("Uporabnik **%s** je hackal **%s**.", req.authorTag(), tag)
	if target.ID == req.authorID() {
		body = fmt.Sprintf("Uporabnik **%s** je hackal **samega sebe**.", req.authorTag())
	}
	b.logAction(ctx, req, audit.LevelInfo, "💻 Hack ukaz", body, hackColor)

	dm, err := b.session.UserChannelCreate(target.ID)
	if err != nil {
		_, _ = b.session.ChannelMessageSend(req.channelID(), fmt.Sprintf("❌ Ne morem poslati DM-ja uporabniku **%s** (zaprti DM-ji).", tag))
		return nil
	}
	b.hack.StartIfCurrent(epoch, target.ID, b.hackSender(dm.ID))
	return nil
}

func (b *Bot) hackStop(req *request) error {
	if b.hack.StopAll() == 0 {
		b.reply(req, "ℹ️ Hack stop", "Trenutno ni aktivnih hack spamov.", 0xFAA61A)
		return nil
	}
	b.reply(req, "🛑 Hack ustavljen", "Vsi aktivni hack spam-i so bili ustavljeni.", b.cfg.EmbedColors.Success)
	return nil
}

// hackTarget picks the mentioned user, then a raw user ID, then the author.
func (b *Bot) hackTarget(args command.Args, author *discordgo.User) *discordgo.User {
	if userID, ok := args.UserAt(0); ok {
		if user, err := b.session.User(userID); err == nil {
			return user
		}
	}
	return author
}

func (b *Bot) hackProgress(tag string, percent int) *discordgo.MessageEmbed {
	return b.embed("💻 Hack", fmt.Sprintf("Inicializiram hack na **%s**...\n\nNapredek: **%d%%**", tag, percent), hackColor)
}

func (b *Bot) hackSender(dmChannelID string) func(targetID string) {
	return func(targetID string) {
		send := &discordgo.MessageSend{Content: fmt.Sprintf("💥 Bumbar si <@%s>", targetID)}
		if b.cfg.Hack.ImageURL != "" {
			send.Embeds = []*discordgo.MessageEmbed{{Image: &discordgo.MessageEmbedImage{URL: b.cfg.Hack.ImageURL}}}
		}
		if _, err := b.session.ChannelMessageSendComplex(dmChannelID, send); err != nil {
			b.logger.Debug("hack dm failed", zap.String("target_id", targetID), zap.Error(err))
		}
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
