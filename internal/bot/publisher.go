package bot

import (
	"fmt"

	"github.com/glebk/retro-bot/internal/domain"
	"github.com/glebk/retro-bot/internal/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Publish posts a retrospective to retro.ChatID and returns the message id
func (b *Bot) Publish(retro *domain.Retrospective) (int, error) {
	msg := tgbotapi.NewMessage(retro.ChatID, b.render(retro))
	msg.ParseMode = tgbotapi.ModeHTML

	sent, err := b.sender.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to post retrospective: %w", err)
	}
	return sent.MessageID, nil
}

// Retract deletes a posted message
func (b *Bot) Retract(chatID int64, messageID int) error {
	if _, err := b.sender.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// republish re-renders a posted retrospective after an edit
func (b *Bot) republish(retro *domain.Retrospective) error {
	if retro.MessageID == 0 {
		return nil
	}

	edit := tgbotapi.NewEditMessageText(retro.ChatID, retro.MessageID, b.render(retro))
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.sender.Send(edit); err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return nil
}

func (b *Bot) render(retro *domain.Retrospective) string {
	name := fmt.Sprintf("user %d", retro.UserID)
	names, err := b.service.MemberNames([]int64{retro.UserID})
	if err != nil {
		logger.Warn("failed to load member name", "user", retro.UserID, "error", err)
	} else {
		name = names[retro.UserID]
	}

	return renderRetrospective(retro, name, b.config.SupportChatID != 0)
}
