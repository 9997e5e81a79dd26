package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/glebk/retro-bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const viewAction = "view"

// handleMy lists the user's retrospectives with a button per record
func (b *Bot) handleMy(message *tgbotapi.Message) {
	retros, err := b.service.UserRetrospectives(message.From.ID)
	if err != nil {
		b.reportError(message.Chat.ID, message.From.ID, "my", err)
		return
	}

	if len(retros) == 0 {
		b.sendMessage(message.Chat.ID, "📭 You have not submitted any retrospectives yet. Use /retro to write one.")
		return
	}

	loc := b.service.Schedule().Location()

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, r := range retros {
		label := fmt.Sprintf("%s · %s", r.SessionLabel, r.CreatedAt.In(loc).Format("01-02"))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s:%d", viewAction, r.ID)),
		))
	}

	text := fmt.Sprintf("📚 You have submitted <b>%d</b> retrospectives.", len(retros))
	if usage, err := b.service.PassUsage(message.From.ID); err == nil && len(usage.Missed) > 0 {
		text += fmt.Sprintf("\n🎟 Missed sessions: %s (%d/%d passes)",
			html.EscapeString(strings.Join(usage.Missed, ", ")), len(usage.Missed), usage.Max)
	}
	text += "\n\nTap a session to read it."

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.sender.Send(msg); err != nil {
		b.reportError(message.Chat.ID, message.From.ID, "my", err)
	}
}

// handleCallbackQuery handles button callbacks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	if query.From == nil {
		return
	}

	b.registerMember(query.From)

	action, rawID, ok := strings.Cut(query.Data, ":")
	if !ok || action != viewAction {
		b.answerCallback(query.ID, "Unknown action")
		return
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		b.answerCallback(query.ID, "Invalid retrospective")
		return
	}

	chatID := query.From.ID
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	}

	retro, err := b.service.ViewRetrospective(query.From.ID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			b.answerCallback(query.ID, "⛔️ You can only read your own retrospectives")
		case errors.Is(err, service.ErrNotFound):
			b.answerCallback(query.ID, "This retrospective no longer exists")
		default:
			b.answerCallback(query.ID, "")
			b.reportError(chatID, query.From.ID, "view", err)
		}
		return
	}

	b.answerCallback(query.ID, "")
	b.sendHTML(chatID, renderDetail(retro, b.service.Schedule().Location()))
}
