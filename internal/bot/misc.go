package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"gabers-bot/internal/command"
	"gabers-bot/internal/modules/audit"
	"gabers-bot/internal/permissions"
	"gabers-bot/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const statusColor = 0x2F3136

func (b *Bot) cmdPing(ctx context.Context, req *request, inv command.Invocation) error {
	guilds, users := 0, 0
	if b.session.State != nil {
		for _, guild := range b.session.State.Guilds {
			guilds++
			users += guild.MemberCount
		}
	}

	recent := 0
	if b.analytics != nil {
		report, err := b.analytics.Report(ctx, req.guildID(), time.Now().Add(-24*time.Hour))
		if err != nil {
			b.logger.Warn("audit report failed", zap.Error(err))
		}
		recent = report.Total
	}

	description := fmt.Sprintf("Uptime:           `%s`\nStrežniki:        `%d`\nUporabniki:       `%d`\nPing:             `%dms`\nIzvedene komande: `%d`\nLogi (24h):       `%d`",
		utils.FormatUptime(time.Since(b.startedAt)),
		guilds,
		users,
		b.session.HeartbeatLatency().Milliseconds(),
		b.router.Executed(),
		recent,
	)
	embed := b.embed("Bot Status", description, statusColor)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: b.cfg.Footer}
	if _, err := b.send(req.channelID(), embed); err != nil {
		return platform("Statusa ni bilo mogoče poslati", err)
	}
	b.logAction(ctx, req, audit.LevelInfo, "📊 Ping ukaz", fmt.Sprintf("Uporabnik **%s** je izvedel ukaz `%sping`.", req.authorTag(), b.cfg.Prefix), statusColor)
	return nil
}

func (b *Bot) cmdHello(ctx context.Context, req *request, inv command.Invocation) error {
	b.reply(req, "Pozdrav", fmt.Sprintf("Hej %s, kako si? 👋", req.msg.Author.Username), b.cfg.EmbedColors.Info)
	return nil
}

func (b *Bot) cmdDice(ctx context.Context, req *request, inv command.Invocation) error {
	b.reply(req, "Kocka", fmt.Sprintf("Vrednost tvojega meta je **%d**! 🎲", rand.Intn(6)+1), b.cfg.EmbedColors.Info)
	return nil
}

func (b *Bot) cmdHelp(ctx context.Context, req *request, inv command.Invocation) error {
	p := b.cfg.Prefix
	embed := b.embed("🧭 Command Center", "Hiter pregled vseh razpoložljivih ukazov.\nUporabi navedene ukaze za podrobnejšo pomoč.", b.cfg.EmbedColors.Info)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "🔹 Osnovno", Value: fmt.Sprintf("• `%[1]sping` — preveri stanje bota\n• `%[1]szdravo` — pozdravi bota\n• `%[1]skocka` — met kocke (1–6)\n• `%[1]shack` — lažni hack (šala)", p)},
		{Name: "🔹 Moderacija", Value: fmt.Sprintf("• `%[1]swarn help` — opozorila uporabnikom\n• `%[1]srename help` — upravljanje nickname-ov\n• `%[1]szbrisi` — izbriše sporočila v kanalu", p)},
		{Name: "🔹 Role & Dovoljenja", Value: fmt.Sprintf("• `%srole help` — upravljanje rol", p)},
		{Name: "🔹 Kanali & Voice", Value: fmt.Sprintf("• `%[1]schannel help` — upravljanje kanalov\n• `%[1]svoice help` — voice komande", p)},
		{Name: "🔹 Administracija", Value: fmt.Sprintf("• `%[1]sadmin` — admin ukazi\n• `%[1]slog set` — nastavi log kanal\n• `%[1]sserver help` — strežnik", p)},
	}
	_, err := b.send(req.channelID(), embed)
	return err
}

func (b *Bot) cmdAdmin(ctx context.Context, req *request, inv command.Invocation) error {
	if err := b.require(req, permissions.OwnerOrAllowed, "Ta ukaz je na voljo samo adminom."); err != nil {
		return err
	}
	p := b.cfg.Prefix
	embed := b.embed("🛡️ Admin Komande", "Seznam vseh admin/moderation ukazov:", 0xED4245)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "👢 Kick", Value: fmt.Sprintf("`%skick @user`\nOdstrani uporabnika iz strežnika.", p)},
		{Name: "⛔ Ban", Value: fmt.Sprintf("`%sban @user`\nTrajno bana uporabnika.", p)},
		{Name: "⏳ Timeout", Value: fmt.Sprintf("`%stimeout @user <čas>`\nPrimeri: `10m`, `1h`, `1d`, `1M`", p)},
		{Name: "⏱️ Untimeout", Value: fmt.Sprintf("`%suntimeout @user`\nOdstrani timeout uporabniku.", p)},
		{Name: "⚠️ Kick All", Value: fmt.Sprintf("`%skick all`\nKicka vse uporabnike (zahteva potrditev).", p)},
		{Name: "🚫 Ban All", Value: fmt.Sprintf("`%sban all`\nBana vse uporabnike (zahteva potrditev).", p)},
		{Name: "🗑️ Zbriši", Value: fmt.Sprintf("`%szbrisi`\nIzbriše sporočila v kanalu (zahteva potrditev).", p)},
		{Name: "👁️ Reveal", Value: fmt.Sprintf("`%srevealchannels`\nRazkrije skrite kanale.", p)},
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Opened by " + req.authorTag()}
	if _, err := b.send(req.channelID(), embed); err != nil {
		return platform("Pomoči ni bilo mogoče poslati", err)
	}
	b.logAction(ctx, req, audit.LevelInfo, "🛡️ Admin help odprt", fmt.Sprintf("Uporabnik **%s** je odprl `%sadmin` pomoč.", req.authorTag(), p), 0xED4245)
	return nil
}

func (b *Bot) cmdLog(ctx context.Context, req *request, inv command.Invocation) error {
	if inv.Args.Lower(0) != "set" {
		return nil
	}
	if err := b.require(req, permissions.OwnerOrAllowed, "Samo owner ali whitelisted user lahko nastavi log kanal."); err != nil {
		return err
	}
	channelID, ok := inv.Args.FirstChannel()
	if !ok {
		return invalid("Označi kanal!")
	}
	b.logChannels.Set(req.guildID(), channelID)
	b.reply(req, "✅ Log kanal nastavljen", fmt.Sprintf("Vsi logi bodo sedaj poslani v kanal <#%s>", channelID), b.cfg.EmbedColors.Success)
	return nil
}

const revealAllow = discordgo.PermissionViewChannel |
	discordgo.PermissionReadMessageHistory |
	discordgo.PermissionSendMessages |
	discordgo.PermissionVoiceConnect |
	discordgo.PermissionVoiceSpeak

func (b *Bot) cmdRevealChannels(ctx context.Context, req *request, inv command.Invocation) error {
	if err := b.require(req, permissions.OwnerOrAllowed, "Ta ukaz je dovoljen samo ownerju."); err != nil {
		return err
	}
	b.reply(req, "🔍 Razkrivam kanale...", "Dodeljujem ti dostop do vseh skritih kanalov.", 0xFAA61A)

	channels, err := b.session.GuildChannels(req.guildID())
	if err != nil {
		return platform("Kanalov ni bilo mogoče pridobiti", err)
	}
	limiter := b.pacer()
	changed := 0
	for _, channel := range channels {
		if hasViewOverwrite(channel, req.authorID()) {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		if err := b.session.ChannelPermissionSet(channel.ID, req.authorID(), discordgo.PermissionOverwriteTypeMember, revealAllow, 0); err != nil {
			b.logger.Warn("reveal channel failed", zap.String("channel_id", channel.ID), zap.Error(err))
			continue
		}
		changed++
	}

	b.reply(req, "✅ Končano", fmt.Sprintf("Razkritih kanalov: **%d**", changed), b.cfg.EmbedColors.Success)
	b.logAction(ctx, req, audit.LevelWarn, "👁️ Reveal Channels", fmt.Sprintf("Uporabnik **%s** je razkril **%d** kanalov samo sebi.", req.authorTag(), changed), 0xFAA61A)
	return nil
}

func hasViewOverwrite(channel *discordgo.Channel, userID string) bool {
	for _, overwrite := range channel.PermissionOverwrites {
		if overwrite.Type == discordgo.PermissionOverwriteTypeMember && overwrite.ID == userID {
			return overwrite.Allow&discordgo.PermissionViewChannel != 0
		}
	}
	return false
}

func (b *Bot) cmdRename(ctx context.Context, req *request, inv command.Invocation) error {
	if inv.Args.Lower(0) == "help" {
		return b.sendHelp(req, "📖 Rename Komande", "rename", renameHelp)
	}
	if err := b.require(req, permissions.WithCapability(discordgo.PermissionManageNicknames), "Nimaš dovoljenja za spreminjanje imen."); err != nil {
		return err
	}
	member, err := b.targetMember(req, inv.Args, 0, "Označi uporabnika!")
	if err != nil {
		return err
	}
	newName := strings.ReplaceAll(inv.Args.Join(1), `"`, "")
	if newName == "" {
		return invalid("Daj novo ime ali 'reset'!")
	}
	if b.botPermissions(req.guild)&(discordgo.PermissionManageNicknames|discordgo.PermissionAdministrator) == 0 {
		return invalid("Botu manjka pravica za spreminjanje imen!")
	}

	tag := member.User.String()
	if strings.EqualFold(newName, "reset") {
		if err := b.session.GuildMemberNickname(req.guildID(), member.User.ID, ""); err != nil {
			return platform("Nisem mogel spremeniti imena. Preveri role in pravice", err)
		}
		b.reply(req, "✅ Ime resetirano", fmt.Sprintf("%s je sedaj brez nicknamea.", tag), b.cfg.EmbedColors.Success)
	} else {
		if err := b.session.GuildMemberNickname(req.guildID(), member.User.ID, newName); err != nil {
			return platform("Nisem mogel spremeniti imena. Preveri role in pravice", err)
		}
		b.reply(req, "✅ Ime spremenjeno", fmt.Sprintf("%s je sedaj \"%s\".", tag, newName), b.cfg.EmbedColors.Success)
	}
	b.logAction(ctx, req, audit.LevelInfo, "Rename", fmt.Sprintf("%s je spremenil nickname %s na \"%s\".", req.authorTag(), tag, newName), b.cfg.EmbedColors.Info)
	return nil
}

func (b *Bot) cmdServer(ctx context.Context, req *request, inv command.Invocation) error {
	sub := inv.Args.Lower(0)
	if sub == "" || sub == "help" {
		b.reply(req, "📘 Server komande", fmt.Sprintf("**%[1]sserver help** – pokaže to pomoč\n**%[1]sserver rename \"novo_ime\"** – spremeni ime strežnika", b.cfg.Prefix), b.cfg.EmbedColors.Info)
		return nil
	}
	if err := b.require(req, permissions.WithCapability(discordgo.PermissionManageServer), "Nimaš dovoljenja za urejanje strežnika."); err != nil {
		return err
	}
	if sub != "rename" {
		return invalidf("Neznan podukaz za server! Za pomoč uporabi `%sserver help`.", b.cfg.Prefix)
	}

	newName := strings.TrimSpace(strings.ReplaceAll(inv.Args.Join(1), `"`, ""))
	if newName == "" {
		return invalid("Vpiši novo ime strežnika!")
	}
	if b.botPermissions(req.guild)&(discordgo.PermissionManageServer|discordgo.PermissionAdministrator) == 0 {
		return invalid("Bot nima pravice Manage Server!")
	}
	oldName := req.guild.Name
	if _, err := b.session.GuildEdit(req.guildID(), &discordgo.GuildParams{Name: newName}); err != nil {
		return platform("Nisem mogel spremeniti imena strežnika", err)
	}
	b.reply(req, "✅ Ime spremenjeno", fmt.Sprintf("**%s** ➜ **%s**", oldName, newName), b.cfg.EmbedColors.Success)
	b.logAction(ctx, req, audit.LevelWarn, "Server Rename", fmt.Sprintf("%s je spremenil ime strežnika iz \"%s\" v \"%s\"", req.authorTag(), oldName, newName), b.cfg.EmbedColors.Info)
	return nil
}
