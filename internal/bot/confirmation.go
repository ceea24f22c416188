package bot

import (
	"context"

	"gabers-bot/internal/confirm"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// confirmation describes one destructive prompt. Exactly one of the three
// branches runs.
type confirmation struct {
	embed     *discordgo.MessageEmbed
	yesLabel  string
	noLabel   string
	confirmed func(ctx context.Context)
	cancelled func(ctx context.Context)
	timedOut  func(ctx context.Context, prompt *discordgo.Message)
}

func confirmButtons(prompt *confirm.Prompt, yesLabel, noLabel string, disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: yesLabel, Style: discordgo.DangerButton, CustomID: prompt.ConfirmID(), Disabled: disabled},
			discordgo.Button{Label: noLabel, Style: discordgo.SecondaryButton, CustomID: prompt.CancelID(), Disabled: disabled},
		}},
	}
}

// runConfirmation posts the prompt and blocks until the invoker answers or
// the configured timeout passes. A timed out prompt keeps its buttons but
// disabled.
func (b *Bot) runConfirmation(ctx context.Context, req *request, c confirmation) error {
	prompt := b.confirm.Open(req.authorID(), b.cfg.ConfirmTimeout())
	sent, err := b.session.ChannelMessageSendComplex(req.channelID(), &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{c.embed},
		Components: confirmButtons(prompt, c.yesLabel, c.noLabel, false),
	})
	if err != nil {
		b.confirm.Handle(prompt.CancelID(), req.authorID())
		return platform("Potrditve ni bilo mogoče poslati", err)
	}

	outcome := prompt.Run(ctx, confirm.Branches{
		Confirmed: func() {
			if c.confirmed != nil {
				c.confirmed(ctx)
			}
		},
		Cancelled: func() {
			if c.cancelled != nil {
				c.cancelled(ctx)
			}
		},
		TimedOut: func() {
			edit := discordgo.NewMessageEdit(sent.ChannelID, sent.ID)
			edit.Components = confirmButtons(prompt, c.yesLabel, c.noLabel, true)
			if _, err := b.session.ChannelMessageEditComplex(edit); err != nil {
				b.logger.Warn("disable prompt failed", zap.String("message_id", sent.ID), zap.Error(err))
			}
			if c.timedOut != nil {
				c.timedOut(ctx, sent)
			}
		},
	})
	b.logger.Info("confirmation resolved",
		zap.String("command", req.name),
		zap.String("guild_id", req.guildID()),
		zap.String("outcome", outcome.String()),
	)
	return nil
}

// pacer spaces out bulk platform calls.
func (b *Bot) pacer() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(b.cfg.Bulk.ActionsPerSecond), b.cfg.Bulk.Burst)
}
