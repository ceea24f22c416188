package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gabers-bot/internal/command"
	"gabers-bot/internal/modules/audit"
	"gabers-bot/internal/permissions"
	"gabers-bot/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type removal struct {
	name string
	past string
	ban  bool
}

var (
	kickRemoval = removal{name: "kick", past: "odstranjen"}
	banRemoval  = removal{name: "ban", past: "banned", ban: true}
)

func (b *Bot) cmdKick(ctx context.Context, req *request, inv command.Invocation) error {
	return b.remove(ctx, req, inv, kickRemoval)
}

func (b *Bot) cmdBan(ctx context.Context, req *request, inv command.Invocation) error {
	return b.remove(ctx, req, inv, banRemoval)
}

func (b *Bot) remove(ctx context.Context, req *request, inv command.Invocation, action removal) error {
	if err := b.require(req, permissions.OwnerOrAllowed, "To komando lahko uporabi samo owner ali whitelisted user."); err != nil {
		return err
	}
	if inv.Args.Lower(0) == "all" {
		return b.removeAll(ctx, req, action)
	}

	member, err := b.targetMember(req, inv.Args, 0, "Moraš označiti uporabnika.")
	if err != nil {
		return err
	}
	if member.User.ID == req.guild.OwnerID || member.User.Bot {
		return invalid("Ne moreš tega uporabnika kick/ban.")
	}
	if b.botPosition(req.guild) <= permissions.HighestPosition(req.guild, member) {
		return invalid("Ne moreš kick/ban uporabnika z višjo ali enako vlogo kot ima bot.")
	}

	if err := b.removeMember(req, member.User.ID, action, "by"); err != nil {
		return platform(fmt.Sprintf("Prišlo je do napake pri %s uporabnika", action.name), err)
	}
	tag := member.User.String()
	b.reply(req, fmt.Sprintf("✅ %s uspešen", action.name), fmt.Sprintf("%s je bil %s.", tag, action.past), b.cfg.EmbedColors.Success)
	b.logAction(ctx, req, audit.LevelWarn, fmt.Sprintf("%s uspešen", strings.ToUpper(action.name)),
		fmt.Sprintf("%s je bil %s.\nNaredil: %s", tag, action.past, req.authorTag()), b.cfg.EmbedColors.Success)
	return nil
}

func (b *Bot) removeMember(req *request, userID string, action removal, mode string) error {
	label := "Kick"
	if action.ban {
		label = "Ban"
	}
	reason := fmt.Sprintf("%s %s %s", label, mode, req.authorTag())
	if action.ban {
		return b.session.GuildBanCreateWithReason(req.guildID(), userID, reason, 0)
	}
	return b.session.GuildMemberDeleteWithReason(req.guildID(), userID, reason)
}

func (b *Bot) removeAll(ctx context.Context, req *request, action removal) error {
	upper := strings.ToUpper(action.name)
	prompt := b.embed(
		fmt.Sprintf("Potrditev %s ALL", upper),
		fmt.Sprintf("Si prepričan/a, da želiš %s vse uporabnike na strežniku (razen ownerja in bota)?", action.name),
		b.cfg.EmbedColors.Warning,
	)
	return b.runConfirmation(ctx, req, confirmation{
		embed:    prompt,
		yesLabel: "✅ Potrdi",
		noLabel:  "❌ Prekliči",
		confirmed: func(ctx context.Context) {
			count, err := b.removeEveryone(ctx, req, action)
			if err != nil {
				b.logger.Warn("member listing failed", zap.String("guild_id", req.guildID()), zap.Error(err))
			}
			b.reply(req, fmt.Sprintf("✅ %s ALL", upper), fmt.Sprintf("Uspešno %s **%d** uporabnikov.", action.past, count), b.cfg.EmbedColors.Success)
			b.logAction(ctx, req, audit.LevelCrit, fmt.Sprintf("%s ALL", upper),
				fmt.Sprintf("Ukaz : %s\nŠtevilo %s: %d", req.authorTag(), action.past, count), b.cfg.EmbedColors.Success)
		},
		cancelled: func(ctx context.Context) {
			b.reply(req, "❌ Preklicano", "Ukaz je bil preklican.", b.cfg.EmbedColors.Error)
			b.logAction(ctx, req, audit.LevelInfo, fmt.Sprintf("%s ALL PREKLIC", upper),
				fmt.Sprintf("Ukaz : %s je preklical %s ALL", req.authorTag(), action.name), b.cfg.EmbedColors.Error)
		},
		timedOut: func(ctx context.Context, _ *discordgo.Message) {
			b.reply(req, "⌛ Preklicano", fmt.Sprintf("Ni bilo potrditve v %d sekundah.", b.cfg.ConfirmTimeoutSeconds), b.cfg.EmbedColors.Error)
			b.logAction(ctx, req, audit.LevelInfo, fmt.Sprintf("%s ALL POTEKEL", upper),
				fmt.Sprintf("Ukaz : %s ni potrdil %s ALL v roku %d sekund", req.authorTag(), action.name, b.cfg.ConfirmTimeoutSeconds), b.cfg.EmbedColors.Error)
		},
	})
}

// removeEveryone kicks or bans every human member except the owner and
// returns how many calls succeeded.
func (b *Bot) removeEveryone(ctx context.Context, req *request, action removal) (int, error) {
	members, err := b.allMembers(req.guildID())
	limiter := b.pacer()
	count := 0
	for _, member := range members {
		if member.User == nil || member.User.Bot || member.User.ID == req.guild.OwnerID {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return count, err
		}
		if err := b.removeMember(req, member.User.ID, action, "all by"); err != nil {
			b.logger.Debug("bulk removal skipped", zap.String("user_id", member.User.ID), zap.Error(err))
			continue
		}
		count++
	}
	return count, err
}

// allMembers pages through the guild member list. Members fetched before a
// failing page are still returned.
func (b *Bot) allMembers(guildID string) ([]*discordgo.Member, error) {
	var (
		out   []*discordgo.Member
		after string
	)
	for {
		page, err := b.session.GuildMembers(guildID, after, 1000)
		if err != nil {
			return out, err
		}
		out = append(out, page...)
		if len(page) < 1000 {
			return out, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (b *Bot) cmdTimeout(ctx context.Context, req *request, inv command.Invocation) error {
	if err := b.require(req, permissions.OwnerOrAllowed, "Nimaš dovoljenja za uporabo tega ukaza."); err != nil {
		return err
	}
	member, err := b.targetMember(req, inv.Args, 0, "Označi uporabnika!")
	if err != nil {
		return err
	}
	raw := inv.Args.Raw(1)
	if raw == "" {
		return invalid("Določi čas timeouta!")
	}
	duration, err := utils.ParseTimeout(raw)
	if err != nil {
		return invalid("Neveljaven čas!")
	}

	until := time.Now().Add(duration)
	if err := b.session.GuildMemberTimeout(req.guildID(), member.User.ID, &until); err != nil {
		return platform("Prišlo je do napake pri timeoutu", err)
	}
	text := fmt.Sprintf("%s je bil postavljen v timeout za **%s**.", member.User.String(), raw)
	b.done(req, text)
	b.logAction(ctx, req, audit.LevelWarn, "Timeout", fmt.Sprintf("%s\nNastavil: %s", text, req.authorTag()), b.cfg.EmbedColors.Success)
	return nil
}

func (b *Bot) cmdUntimeout(ctx context.Context, req *request, inv command.Invocation) error {
	if err := b.require(req, permissions.OwnerOrAllowed, "Nimaš dovoljenja za uporabo tega ukaza."); err != nil {
		return err
	}
	member, err := b.targetMember(req, inv.Args, 0, "Označi uporabnika!")
	if err != nil {
		return err
	}
	if err := b.session.GuildMemberTimeout(req.guildID(), member.User.ID, nil); err != nil {
		return platform("Prišlo je do napake pri odstranitvi timeouta", err)
	}
	text := fmt.Sprintf("%s ni več v timeoutu.", member.User.String())
	b.done(req, text)
	b.logAction(ctx, req, audit.LevelInfo, "Timeout odstranjen", fmt.Sprintf("%s\nOdstranil: %s", text, req.authorTag()), b.cfg.EmbedColors.Success)
	return nil
}
