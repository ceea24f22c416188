package bot

import (
	"context"
	"fmt"

	"gabers-bot/internal/command"
	"gabers-bot/internal/modules/audit"
	"gabers-bot/internal/permissions"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) cmdVoice(ctx context.Context, req *request, inv command.Invocation) error {
	if err := b.require(req, permissions.AllowListOnly, "Nimaš dovoljenja!"); err != nil {
		return err
	}
	sub := inv.Args.Lower(0)
	switch sub {
	case "help":
		return b.sendHelp(req, "📖 Voice Komande", "voice", voiceHelp)
	case "kick", "move", "mute", "unmute", "deafen", "undeafen":
	default:
		return invalid("Neznan podukaz za voice!")
	}

	member, err := b.targetMember(req, inv.Args, 1, "Uporabnik ni v voice kanalu.")
	if err != nil {
		return err
	}
	if voiceChannel(req.guild, member.User.ID) == "" {
		return invalid("Uporabnik ni v voice kanalu.")
	}
	guildID, userID, tag := req.guildID(), member.User.ID, member.User.String()

	var title, body string
	switch sub {
	case "kick":
		err = b.session.GuildMemberMove(guildID, userID, nil)
		title, body = "Voice Kick", fmt.Sprintf("%s je bil odstranjen iz voice kanala.", tag)
	case "move":
		channelID, ok := inv.Args.ChannelAt(2)
		if !ok {
			channelID, ok = inv.Args.FirstChannel()
		}
		target := findChannel(req.guild, channelID)
		if !ok || target == nil || target.Type != discordgo.ChannelTypeGuildVoice {
			return invalid("Označiti moraš veljaven voice kanal.")
		}
		err = b.session.GuildMemberMove(guildID, userID, &target.ID)
		title, body = "Voice Move", fmt.Sprintf("%s je bil premaknjen v **%s**.", tag, target.Name)
	case "mute":
		err = b.session.GuildMemberMute(guildID, userID, true)
		title, body = "Voice Mute", fmt.Sprintf("%s je bil utišan.", tag)
	case "unmute":
		err = b.session.GuildMemberMute(guildID, userID, false)
		title, body = "Voice Unmute", fmt.Sprintf("%s ni več utišan.", tag)
	case "deafen":
		err = b.session.GuildMemberDeafen(guildID, userID, true)
		title, body = "Voice Deafen", fmt.Sprintf("%s je bil deafenan.", tag)
	case "undeafen":
		err = b.session.GuildMemberDeafen(guildID, userID, false)
		title, body = "Voice Undeafen", fmt.Sprintf("%s ni več deafenan.", tag)
	}
	if err != nil {
		return platform("Prišlo je do napake pri voice ukazu", err)
	}
	b.logAction(ctx, req, audit.LevelInfo, title, fmt.Sprintf("%s\nIzvedel: %s", body, req.authorTag()), roleColor)
	b.done(req, "")
	return nil
}

// voiceChannel returns the voice channel userID sits in, or "".
func voiceChannel(guild *discordgo.Guild, userID string) string {
	for _, state := range guild.VoiceStates {
		if state.UserID == userID {
			return state.ChannelID
		}
	}
	return ""
}
