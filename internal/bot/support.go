package bot

import (
	"fmt"
	"html"
	"strings"

	"github.com/glebk/retro-bot/internal/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// isSupportQuestion reports whether message is a new top-level question in
// the support chat
func (b *Bot) isSupportQuestion(message *tgbotapi.Message) bool {
	if b.config.SupportChatID == 0 || message.Chat == nil || message.Chat.ID != b.config.SupportChatID {
		return false
	}
	if message.IsCommand() || message.ReplyToMessage != nil {
		return false
	}
	if f := b.activeForm(message.From.ID); f != nil && f.chatID == message.Chat.ID {
		return false
	}
	return message.Text != "" || message.Caption != ""
}

// relaySupportQuestion notifies the admin chat about a support question
func (b *Bot) relaySupportQuestion(message *tgbotapi.Message) {
	if b.config.AdminChatID == 0 {
		logger.Warn("support question not relayed, no admin chat", "user", message.From.ID)
		return
	}

	body := message.Text
	if body == "" {
		body = message.Caption
	}

	name := message.From.FirstName
	if message.From.UserName != "" {
		name = "@" + message.From.UserName
	}

	text := fmt.Sprintf("👋 %s left a question in the support chat 👀\n\n<i>%s</i>",
		mention(message.From.ID, name), html.EscapeString(body))

	if len(b.config.AdminIDs) > 0 {
		admins := make([]string, 0, len(b.config.AdminIDs))
		for _, id := range b.config.AdminIDs {
			admins = append(admins, mention(id, "admin"))
		}
		text += "\n\n" + strings.Join(admins, " ")
	}

	b.sendHTML(b.config.AdminChatID, text)
	logger.Info("support question relayed", "user", message.From.ID)
}
