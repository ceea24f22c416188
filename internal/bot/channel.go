package bot

import (
	"context"
	"fmt"
	"strings"

	"gabers-bot/internal/command"
	"gabers-bot/internal/modules/audit"
	"gabers-bot/internal/permissions"

	"github.com/bwmarrin/discordgo"
)

const (
	channelCreatedColor = 0x00FF99
	channelMovedColor   = 0x00FFFF
)

func (b *Bot) cmdChannel(ctx context.Context, req *request, inv command.Invocation) error {
	if err := b.require(req, permissions.WithCapability(discordgo.PermissionManageChannels), "Nimaš dovoljenja za upravljanje kanalov."); err != nil {
		return err
	}
	switch inv.Args.Lower(0) {
	case "help":
		return b.sendHelp(req, "📖 Channel Komande", "channel", channelHelp)
	case "create":
		return b.channelCreate(ctx, req, inv.Args)
	case "delete":
		return b.channelDelete(ctx, req, inv.Args)
	case "move":
		return b.channelMove(ctx, req, inv.Args)
	default:
		return invalidf("Neznan podukaz za `channel`. Za pomoč uporabi `%schannel help`.", b.cfg.Prefix)
	}
}

// channelTypes maps the create keyword to a platform channel type.
var channelTypes = map[string]discordgo.ChannelType{
	"text":     discordgo.ChannelTypeGuildText,
	"voice":    discordgo.ChannelTypeGuildVoice,
	"category": discordgo.ChannelTypeGuildCategory,
}

func (b *Bot) channelCreate(ctx context.Context, req *request, args command.Args) error {
	kind := args.Lower(1)
	channelType, ok := channelTypes[kind]
	if !ok {
		return invalid("Določi tip kanala: `text`, `voice` ali `category`.")
	}
	name := strings.TrimSpace(strings.ReplaceAll(args.Join(2), `"`, ""))
	if name == "" {
		if kind == "category" {
			return invalid("Vpiši ime kategorije!")
		}
		return invalid("Vpiši ime kanala!")
	}

	created, err := b.session.GuildChannelCreate(req.guildID(), name, channelType)
	if err != nil {
		return platform("Prišlo je do napake", err)
	}
	if kind == "category" {
		b.logAction(ctx, req, audit.LevelInfo, "🗂️ Kategorija ustvarjena",
			fmt.Sprintf("Ustvarjena kategorija **%s**\nUstvaril: %s", created.Name, req.authorTag()), channelCreatedColor)
	} else {
		b.logAction(ctx, req, audit.LevelInfo, "✅ Kanal ustvarjen",
			fmt.Sprintf("Ustvarjen kanal **%s**\nUstvaril: %s", created.Name, req.authorTag()), channelCreatedColor)
	}
	b.done(req, "")
	return nil
}

func (b *Bot) channelDelete(ctx context.Context, req *request, args command.Args) error {
	channelID, ok := args.ChannelAt(1)
	if !ok {
		channelID, ok = args.FirstChannel()
	}
	if !ok {
		return invalid("Označi kanal!")
	}
	channel := findChannel(req.guild, channelID)
	if channel == nil {
		return invalid("Kanal ni bil najden!")
	}
	if _, err := b.session.ChannelDelete(channel.ID); err != nil {
		return platform("Prišlo je do napake", err)
	}
	b.logAction(ctx, req, audit.LevelWarn, "✅ Kanal izbrisan",
		fmt.Sprintf("Kanal **%s** je bil izbrisan.\nIzbrisal: %s", channel.Name, req.authorTag()), b.cfg.EmbedColors.Error)
	b.done(req, "")
	return nil
}

func (b *Bot) channelMove(ctx context.Context, req *request, args command.Args) error {
	channelArg := args.Raw(1)
	categoryArg := strings.TrimSpace(strings.ReplaceAll(args.Join(2), `"`, ""))
	if channelArg == "" || categoryArg == "" {
		return invalidf("Uporabi: `%schannel move <#kanal|ime> <#kategorija|ime>`", b.cfg.Prefix)
	}

	channel := resolveChannel(req.guild, args, 1, channelArg, nil)
	if channel == nil {
		return invalid("Kanal ni bil najden!")
	}
	isCategory := func(c *discordgo.Channel) bool { return c.Type == discordgo.ChannelTypeGuildCategory }
	category := resolveChannel(req.guild, args, 2, categoryArg, isCategory)
	if category == nil || !isCategory(category) {
		return invalid("Kategorija ni bila najdena!")
	}

	if _, err := b.session.ChannelEdit(channel.ID, &discordgo.ChannelEdit{ParentID: category.ID}); err != nil {
		return platform("Prišlo je do napake", err)
	}
	b.logAction(ctx, req, audit.LevelInfo, "📂 Kanal premaknjen",
		fmt.Sprintf("Kanal **%s** je bil premaknjen pod kategorijo **%s**\nPremaknil: %s", channel.Name, category.Name, req.authorTag()), channelMovedColor)
	b.done(req, "")
	return nil
}

func findChannel(guild *discordgo.Guild, channelID string) *discordgo.Channel {
	for _, channel := range guild.Channels {
		if channel.ID == channelID {
			return channel
		}
	}
	return nil
}

// resolveChannel accepts a mention or ID at position i, or falls back to an
// exact name match filtered by keep.
func resolveChannel(guild *discordgo.Guild, args command.Args, i int, name string, keep func(*discordgo.Channel) bool) *discordgo.Channel {
	if id, ok := args.ChannelAt(i); ok {
		return findChannel(guild, id)
	}
	for _, channel := range guild.Channels {
		if channel.Name != name {
			continue
		}
		if keep == nil || keep(channel) {
			return channel
		}
	}
	return nil
}
