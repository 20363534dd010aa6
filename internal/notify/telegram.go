package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	logx "remindd/pkg/logx"
)

// TelegramBackend pushes notifications into a single chat. Send-only:
// no poller is attached, the bot never consumes updates.
type TelegramBackend struct {
	bot    *tele.Bot
	chatID int64
	log    logx.Logger
}

func NewTelegram(cfg TelegramConfig, log logx.Logger) (*TelegramBackend, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram backend: token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram backend: chat_id is required")
	}
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, fmt.Errorf("telegram backend: %w", err)
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &TelegramBackend{bot: b, chatID: cfg.ChatID, log: log}, nil
}

func (b *TelegramBackend) Name() string { return "telegram" }

func (b *TelegramBackend) Send(ctx context.Context, n Notification) error {
	if ctx != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	text := "*" + escapeMarkdown(n.Title) + "*"
	if n.Body != "" {
		text += "\n" + escapeMarkdown(n.Body)
	}
	_, err := b.bot.Send(tele.ChatID(b.chatID), text, &tele.SendOptions{ParseMode: tele.ModeMarkdownV2})
	if err != nil {
		return err
	}
	b.log.Debug("telegram notification delivered",
		logx.Int64("chat_id", b.chatID),
		logx.Int64("id", n.ID),
		logx.Time("at", time.Now()))
	return nil
}

// escapeMarkdown escapes MarkdownV2 special characters in user-provided text.
func escapeMarkdown(s string) string {
	const specials = `_*[]()~` + "`" + `>#+-=|{}.!`
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(specials, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
