package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gabers-bot/internal/analytics"
	"gabers-bot/internal/command"
	"gabers-bot/internal/config"
	"gabers-bot/internal/confirm"
	"gabers-bot/internal/hack"
	"gabers-bot/internal/modules/audit"
	"gabers-bot/internal/permissions"
	"gabers-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg         config.Config
	logger      *zap.Logger
	session     *discordgo.Session
	warnings    *storage.Warnings
	logChannels *storage.LogChannels
	audit       *audit.Logger
	analytics   *analytics.Service
	gate        *permissions.Gate
	confirm     *confirm.Engine
	hack        *hack.Manager
	router      *command.Router[*request]
	startedAt   time.Time
}

// request is one inbound guild command with the state the gate needs.
type request struct {
	msg    *discordgo.MessageCreate
	guild  *discordgo.Guild
	member *discordgo.Member
	name   string
}

func (r *request) authorID() string  { return r.msg.Author.ID }
func (r *request) authorTag() string { return r.msg.Author.String() }
func (r *request) channelID() string { return r.msg.ChannelID }
func (r *request) guildID() string   { return r.msg.GuildID }

func (r *request) invoker() permissions.Invoker {
	return permissions.Invoker{
		UserID:      r.msg.Author.ID,
		OwnerID:     r.guild.OwnerID,
		Permissions: permissions.GuildPermissions(r.guild, r.member),
	}
}

func New(cfg config.Config, logger *zap.Logger, warnings *storage.Warnings, logChannels *storage.LogChannels, auditLogger *audit.Logger, analyticsSvc *analytics.Service, gate *permissions.Gate, confirmEngine *confirm.Engine, hackManager *hack.Manager) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsDirectMessages

	b := &Bot{
		cfg:         cfg,
		logger:      logger,
		session:     session,
		warnings:    warnings,
		logChannels: logChannels,
		audit:       auditLogger,
		analytics:   analyticsSvc,
		gate:        gate,
		confirm:     confirmEngine,
		hack:        hackManager,
		router:      command.NewRouter[*request](),
		startedAt:   time.Now(),
	}
	if b.audit != nil {
		b.audit.SetDeliverer(b.deliverAudit)
	}
	b.registerCommands()
	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)
	return b.session.Open()
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if stopped := b.hack.StopAll(); stopped > 0 {
		b.logger.Info("hack tasks stopped on shutdown", zap.Int("count", stopped))
	}
	if b.session != nil {
		_ = b.session.Close()
	}
}

// Forward posts an externally submitted message into the forward channel.
func (b *Bot) Forward(ctx context.Context, message string) error {
	_ = ctx
	if b.cfg.HTTP.ForwardChannelID == "" {
		return errors.New("forward channel not configured")
	}
	_, err := b.session.ChannelMessageSend(b.cfg.HTTP.ForwardChannelID, message)
	return err
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", event.User.String()), zap.Int("guilds", len(event.Guilds)))
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	if msg.GuildID == "" {
		b.onDirectMessage(msg)
		return
	}

	inv, ok := command.Parse(b.cfg.Prefix, msg.Content)
	if !ok {
		return
	}
	guild, err := b.guild(msg.GuildID)
	if err != nil {
		b.logger.Warn("guild lookup failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
		return
	}
	req := &request{msg: msg, guild: guild, member: msg.Member, name: inv.Name}
	if req.member == nil {
		req.member, _ = b.member(msg.GuildID, msg.Author.ID)
	}

	ctx := context.Background()
	handled, err := b.router.Dispatch(ctx, req, inv)
	if !handled || err == nil {
		return
	}
	b.replyError(ctx, req, err)
}

// onDirectMessage ends a running hack for the author, if any.
func (b *Bot) onDirectMessage(msg *discordgo.MessageCreate) {
	handled, matched := b.hack.Reply(msg.Author.ID, msg.Content)
	if !handled {
		return
	}
	text := "😅 OK, ustavljam."
	if matched {
		text = "😎 Sprejeto. Gaber je kul."
	}
	if _, err := b.session.ChannelMessageSend(msg.ChannelID, text); err != nil {
		b.logger.Warn("hack reply ack failed", zap.String("user_id", msg.Author.ID), zap.Error(err))
	}
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := interaction.MessageComponentData().CustomID
	if !confirm.IsConfirmID(customID) {
		return
	}

	switch b.confirm.Handle(customID, interactionUserID(interaction)) {
	case confirm.Accepted:
		err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Embeds:     interaction.Message.Embeds,
				Components: []discordgo.MessageComponent{},
			},
		})
		if err != nil {
			b.logger.Warn("confirm ack failed", zap.Error(err))
		}
	case confirm.NotOwner:
		b.ephemeral(interaction, "To ni tvoja potrditev!")
	default:
		b.ephemeral(interaction, "Ta potrditev ni več veljavna.")
	}
}

func (b *Bot) ephemeral(interaction *discordgo.InteractionCreate, content string) {
	err := b.session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Warn("ephemeral reply failed", zap.Error(err))
	}
}

func interactionUserID(interaction *discordgo.InteractionCreate) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}

func (b *Bot) deliverAudit(ctx context.Context, channelID string, entry audit.Entry) error {
	_ = ctx
	color := entry.Color
	if color == 0 {
		color = b.cfg.EmbedColors.Info
	}
	_, err := b.session.ChannelMessageSendEmbed(channelID, b.embed(entry.Title, entry.Body, color))
	return err
}

// logAction records an audit entry for the request's guild.
func (b *Bot) logAction(ctx context.Context, req *request, level, title, body string, color int) {
	if b.audit == nil {
		return
	}
	b.audit.Log(ctx, audit.Entry{
		GuildID: req.guildID(),
		ActorID: req.authorID(),
		Level:   level,
		Title:   title,
		Body:    body,
		Color:   color,
	})
}

func (b *Bot) guild(guildID string) (*discordgo.Guild, error) {
	if b.session.State != nil {
		if guild, err := b.session.State.Guild(guildID); err == nil {
			return guild, nil
		}
	}
	return b.session.Guild(guildID)
}

func (b *Bot) member(guildID, userID string) (*discordgo.Member, error) {
	if b.session.State != nil {
		if member, err := b.session.State.Member(guildID, userID); err == nil && member.User != nil {
			return member, nil
		}
	}
	return b.session.GuildMember(guildID, userID)
}

// targetMember resolves the user at position i (mention or raw ID) to a live
// member of the request's guild.
func (b *Bot) targetMember(req *request, args command.Args, i int, missing string) (*discordgo.Member, error) {
	userID, ok := args.UserAt(i)
	if !ok {
		userID, ok = args.FirstUser()
	}
	if !ok {
		return nil, invalid(missing)
	}
	member, err := b.member(req.guildID(), userID)
	if err != nil || member.User == nil {
		return nil, invalid("Uporabnika ni mogoče najti.")
	}
	return member, nil
}

func (b *Bot) botUserID() string {
	if b.session.State != nil && b.session.State.User != nil {
		return b.session.State.User.ID
	}
	return ""
}

// botPosition is the position of the bot's highest role in guild.
func (b *Bot) botPosition(guild *discordgo.Guild) int {
	me, err := b.member(guild.ID, b.botUserID())
	if err != nil {
		return 0
	}
	return permissions.HighestPosition(guild, me)
}

func (b *Bot) botPermissions(guild *discordgo.Guild) int64 {
	me, err := b.member(guild.ID, b.botUserID())
	if err != nil {
		return 0
	}
	if guild.OwnerID == b.botUserID() {
		return discordgo.PermissionAll
	}
	return permissions.GuildPermissions(guild, me)
}

func (b *Bot) embed(title, description string, color int) *discordgo.MessageEmbed {
	if description == "" {
		description = " "
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func (b *Bot) send(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	msg, err := b.session.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		b.logger.Warn("send embed failed", zap.String("channel_id", channelID), zap.Error(err))
	}
	return msg, err
}

func (b *Bot) reply(req *request, title, description string, color int) {
	_, _ = b.send(req.channelID(), b.embed(title, description, color))
}

func (b *Bot) done(req *request, description string) {
	b.reply(req, "✅ Opravljeno", description, b.cfg.EmbedColors.Success)
}

func (b *Bot) requestedBy(req *request) *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Requested by %s", req.authorTag())}
}

// require runs the permission gate and returns an accessDenied error with
// message when it fails.
func (b *Bot) require(req *request, requirement permissions.Requirement, message string) error {
	if b.gate.Allow(req.invoker(), requirement) {
		return nil
	}
	return denied(message)
}
