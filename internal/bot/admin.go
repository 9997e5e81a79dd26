package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode"

	"github.com/glebk/retro-bot/internal/domain"
	"github.com/glebk/retro-bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const adminUsage = `<b>Admin commands</b>
/edit &lt;id&gt; &lt;field&gt; &lt;text&gt; - Change one answer
/delete &lt;id&gt; - Remove a retrospective and its post
/invite [chat id] - One-time invite link, the support chat by default

Fields: good, improve, learn, action, score, reason.
Send - as the text to clear score or reason.`

// handleAdmin lists the latest retrospectives
func (b *Bot) handleAdmin(message *tgbotapi.Message) {
	retros, err := b.service.LatestRetrospectives(message.From.ID, service.LatestLimit)
	if err != nil {
		b.adminFailure(message, "admin", err)
		return
	}

	ids := make([]int64, 0, len(retros))
	for _, r := range retros {
		ids = append(ids, r.UserID)
	}
	names, err := b.service.MemberNames(ids)
	if err != nil {
		b.reportError(message.Chat.ID, message.From.ID, "admin", err)
		return
	}

	text := renderLatest(retros, names, b.service.Schedule().Location()) + "\n\n" + adminUsage
	b.sendHTML(message.Chat.ID, text)
}

// handleEdit changes one answer and re-renders the posted message
func (b *Bot) handleEdit(message *tgbotapi.Message) {
	if !b.service.IsAdmin(message.From.ID) {
		b.adminFailure(message, "edit", service.ErrForbidden)
		return
	}

	id, field, value, err := parseEditArgs(message.CommandArguments())
	if err != nil {
		b.sendHTML(message.Chat.ID, "⚠️ "+html.EscapeString(err.Error())+"\n\n"+adminUsage)
		return
	}

	retro, err := b.service.EditRetrospective(message.From.ID, id, field, value)
	if err != nil {
		b.adminFailure(message, "edit", err)
		return
	}

	text := fmt.Sprintf("✅ Retrospective #%d updated.", retro.ID)
	if err := b.republish(retro); err != nil {
		text += "\n⚠️ The posted message could not be updated: " + err.Error()
	}
	b.sendMessage(message.Chat.ID, text)
}

// handleDelete removes a retrospective and its posted message
func (b *Bot) handleDelete(message *tgbotapi.Message) {
	if !b.service.IsAdmin(message.From.ID) {
		b.adminFailure(message, "delete", service.ErrForbidden)
		return
	}

	id, err := parseID(message.CommandArguments())
	if err != nil {
		b.sendHTML(message.Chat.ID, "⚠️ "+html.EscapeString(err.Error())+"\n\n"+adminUsage)
		return
	}

	retro, err := b.service.DeleteRetrospective(message.From.ID, id)
	if err != nil {
		b.adminFailure(message, "delete", err)
		return
	}

	text := fmt.Sprintf("🗑 Retrospective #%d (%s) deleted.", retro.ID, retro.SessionLabel)
	if err := b.retractPost(retro); err != nil {
		text += "\n⚠️ The posted message could not be deleted: " + err.Error()
	}
	b.sendMessage(message.Chat.ID, text)
}

func (b *Bot) retractPost(retro *domain.Retrospective) error {
	if retro.MessageID == 0 {
		return nil
	}
	return b.Retract(retro.ChatID, retro.MessageID)
}

func (b *Bot) adminFailure(message *tgbotapi.Message, action string, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		b.sendMessage(message.Chat.ID, "⛔️ This command is for admins only.")
	case errors.Is(err, service.ErrNotFound):
		b.sendMessage(message.Chat.ID, "🔍 "+err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		b.sendMessage(message.Chat.ID, userMessage(err))
	default:
		b.reportError(message.Chat.ID, message.From.ID, action, err)
	}
}

// parseEditArgs splits "<id> <field> <text>". The text keeps its inner
// whitespace and newlines.
func parseEditArgs(args string) (int64, service.Field, string, error) {
	rawID, rest := cutWord(args)
	rawField, value := cutWord(rest)

	id, err := parseID(rawID)
	if err != nil {
		return 0, "", "", err
	}

	if rawField == "" {
		return 0, "", "", errors.New("missing field")
	}
	field, err := service.ParseField(rawField)
	if err != nil {
		return 0, "", "", fmt.Errorf("unknown field %q", rawField)
	}

	if value == "" {
		return 0, "", "", errors.New("missing text")
	}

	return id, field, value, nil
}

func parseID(raw string) (int64, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if raw == "" {
		return 0, errors.New("missing retrospective id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid retrospective id %q", raw)
	}
	return id, nil
}

func cutWord(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
