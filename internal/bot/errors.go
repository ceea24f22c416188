package bot

import (
	"context"
	"errors"
	"fmt"

	"gabers-bot/internal/modules/audit"

	"go.uber.org/zap"
)

// accessDenied is shown to the invoker and never audit-logged.
type accessDenied struct {
	message string
}

func (e *accessDenied) Error() string { return e.message }

// validationError covers missing or malformed arguments and unknown targets.
type validationError struct {
	message string
}

func (e *validationError) Error() string { return e.message }

// platformError wraps a failed call to the chat platform.
type platformError struct {
	message string
	err     error
}

func (e *platformError) Error() string {
	if e.err == nil {
		return e.message
	}
	return e.message + ": " + e.err.Error()
}

func (e *platformError) Unwrap() error { return e.err }

func denied(message string) error { return &accessDenied{message: message} }

func invalid(message string) error { return &validationError{message: message} }

func invalidf(format string, args ...any) error {
	return &validationError{message: fmt.Sprintf(format, args...)}
}

func platform(message string, err error) error {
	return &platformError{message: message, err: err}
}

// replyError turns a handler error into the single response the invoker
// sees. Platform failures are also audit-logged.
func (b *Bot) replyError(ctx context.Context, req *request, err error) {
	var (
		deniedErr   *accessDenied
		invalidErr  *validationError
		platformErr *platformError
	)
	switch {
	case errors.As(err, &deniedErr):
		b.reply(req, "Dostop zavrnjen", deniedErr.message, b.cfg.EmbedColors.Error)
	case errors.As(err, &invalidErr):
		b.reply(req, "❌ Napaka", invalidErr.message, b.cfg.EmbedColors.Error)
	case errors.As(err, &platformErr):
		b.logger.Warn("command failed",
			zap.String("command", req.name),
			zap.String("guild_id", req.guildID()),
			zap.String("user_id", req.authorID()),
			zap.Error(err),
		)
		b.reply(req, "❌ Napaka", platformErr.Error(), b.cfg.EmbedColors.Error)
		b.logAction(ctx, req, audit.LevelWarn, "❌ Napaka pri ukazu",
			fmt.Sprintf("Ukaz `%s%s` uporabnika **%s** ni uspel: %v", b.cfg.Prefix, req.name, req.authorTag(), platformErr.err),
			b.cfg.EmbedColors.Error)
	default:
		b.logger.Error("command failed", zap.String("command", req.name), zap.Error(err))
		b.reply(req, "❌ Napaka", fmt.Sprintf("Prišlo je do napake: %v", err), b.cfg.EmbedColors.Error)
	}
}
