package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gabers-bot/internal/command"
	"gabers-bot/internal/modules/audit"
	"gabers-bot/internal/permissions"
	"gabers-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
)

const (
	defaultWarnReason = "Ni razloga"
	warnTimeLayout    = "2. 1. 2006 15:04:05"
)

var warnRequirement = permissions.WithCapability(discordgo.PermissionKickMembers)

func (b *Bot) cmdWarn(ctx context.Context, req *request, inv command.Invocation) error {
	if inv.Args.Lower(0) == "help" {
		return b.sendHelp(req, "📖 Warn Komande", "warn", warnHelp)
	}
	if err := b.require(req, warnRequirement, "Nimaš dovoljenja za warnanje uporabnikov."); err != nil {
		return err
	}
	member, err := b.targetMember(req, inv.Args, 0, "Označi uporabnika za warn!")
	if err != nil {
		return err
	}
	reason := inv.Args.Join(1)
	if reason == "" {
		reason = defaultWarnReason
	}

	b.warnings.Add(req.guildID(), member.User.ID, storage.Warning{
		Moderator: req.authorTag(),
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
	tag := member.User.String()
	b.reply(req, "⚠️ Uporabnik warnan", fmt.Sprintf("Uporabnik **%s** je bil warnan.\nRazlog: %s", tag, reason), b.cfg.EmbedColors.Warning)
	b.logAction(ctx, req, audit.LevelWarn, "⚠️ Warn", fmt.Sprintf("Moderator **%s** je warnal **%s**.\nRazlog: %s", req.authorTag(), tag, reason), b.cfg.EmbedColors.Warning)
	return nil
}

func (b *Bot) cmdWarnings(ctx context.Context, req *request, inv command.Invocation) error {
	user := req.msg.Author
	if userID, ok := inv.Args.FirstUser(); ok {
		member, err := b.member(req.guildID(), userID)
		if err != nil || member.User == nil {
			return invalid("Uporabnika ni mogoče najti.")
		}
		user = member.User
	}
	tag := user.String()

	list := b.warnings.List(req.guildID(), user.ID)
	if len(list) == 0 {
		b.reply(req, "⚠️ Warnings", fmt.Sprintf("Uporabnik **%s** nima nobenih warnov.", tag), b.cfg.EmbedColors.Success)
	} else {
		b.reply(req, fmt.Sprintf("⚠️ Warnings za %s", tag), formatWarnings(list), b.cfg.EmbedColors.Warning)
	}
	b.logAction(ctx, req, audit.LevelInfo, "⚠️ Pregled warningov", fmt.Sprintf("Uporabnik **%s** je pregledal warne uporabnika **%s**.", req.authorTag(), tag), b.cfg.EmbedColors.Warning)
	return nil
}

// formatWarnings renders warnings numbered from 1.
func formatWarnings(list []storage.Warning) string {
	parts := make([]string, 0, len(list))
	for i, w := range list {
		parts = append(parts, fmt.Sprintf("**%d.** Moderator: %s\nRazlog: %s\nDatum: %s", i+1, w.Moderator, w.Reason, w.Timestamp.Local().Format(warnTimeLayout)))
	}
	return strings.Join(parts, "\n\n")
}

func (b *Bot) cmdUnwarn(ctx context.Context, req *request, inv command.Invocation) error {
	if err := b.require(req, warnRequirement, "Nimaš dovoljenja za odstranjevanje warnov."); err != nil {
		return err
	}
	member, err := b.targetMember(req, inv.Args, 0, "Označi uporabnika za odstranitev warna!")
	if err != nil {
		return err
	}
	index, err := warnIndex(inv.Args.Raw(1))
	if err != nil {
		return err
	}
	removed, err := b.warnings.Remove(req.guildID(), member.User.ID, index)
	if err != nil {
		return invalidf("Warna številka %d ne obstaja.", index+1)
	}

	tag := member.User.String()
	b.reply(req, "⚠️ Warn odstranjen", fmt.Sprintf("Odstranjen warn za uporabnika **%s**\nRazlog: %s", tag, removed.Reason), b.cfg.EmbedColors.Success)
	b.logAction(ctx, req, audit.LevelInfo, "⚠️ Warn odstranjen", fmt.Sprintf("Moderator **%s** je odstranil warn uporabniku **%s**.\nRazlog: %s", req.authorTag(), tag, removed.Reason), b.cfg.EmbedColors.Success)
	return nil
}

// warnIndex turns the 1-based number users see into a store index.
func warnIndex(raw string) (int, error) {
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		return 0, invalidf("Warna številka %s ne obstaja.", raw)
	}
	return number - 1, nil
}
