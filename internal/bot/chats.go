package bot

import (
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/glebk/retro-bot/internal/logger"
	"github.com/glebk/retro-bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// inviteLinkTTL is how long an invite link from /invite stays valid
const inviteLinkTTL = 24 * time.Hour

func isPresent(status string) bool {
	switch status {
	case "creator", "administrator", "member", "restricted":
		return true
	}
	return false
}

// handleMyChatMember tells the admin chat when the bot joins or leaves a group
func (b *Bot) handleMyChatMember(update *tgbotapi.ChatMemberUpdated) {
	if update.Chat.IsPrivate() {
		return
	}

	was := isPresent(update.OldChatMember.Status)
	now := isPresent(update.NewChatMember.Status)
	if was == now {
		return
	}

	title := update.Chat.Title
	if title == "" {
		title = strconv.FormatInt(update.Chat.ID, 10)
	}

	var text string
	if now {
		logger.Info("joined chat", "chat", update.Chat.ID, "by", update.From.ID)
		text = fmt.Sprintf("🤖 I joined <b>%s</b> (<code>%d</code>), added by %s.",
			html.EscapeString(title), update.Chat.ID, mention(update.From.ID, update.From.FirstName))
	} else {
		logger.Info("left chat", "chat", update.Chat.ID, "by", update.From.ID)
		text = fmt.Sprintf("👋 I was removed from <b>%s</b> (<code>%d</code>) by %s.",
			html.EscapeString(title), update.Chat.ID, mention(update.From.ID, update.From.FirstName))
	}

	if b.config.AdminChatID == 0 || b.config.AdminChatID == update.Chat.ID {
		return
	}
	b.sendHTML(b.config.AdminChatID, text)
}

// handleInvite creates a single-use invite link for a chat the bot administers
func (b *Bot) handleInvite(message *tgbotapi.Message) {
	if !b.service.IsAdmin(message.From.ID) {
		b.adminFailure(message, "invite", service.ErrForbidden)
		return
	}

	chatID := b.config.SupportChatID
	if arg := strings.TrimSpace(message.CommandArguments()); arg != "" {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id == 0 {
			b.sendHTML(message.Chat.ID, "⚠️ Invalid chat id "+html.EscapeString(strconv.Quote(arg))+"\n\n"+adminUsage)
			return
		}
		chatID = id
	}
	if chatID == 0 {
		b.sendMessage(message.Chat.ID, "⚠️ No support chat is configured. Use /invite <chat id>.")
		return
	}

	link, err := b.createInviteLink(chatID)
	if err != nil {
		b.reportError(message.Chat.ID, message.From.ID, "invite", err)
		return
	}

	b.sendHTML(message.Chat.ID, fmt.Sprintf(
		"🔗 One-time invite link for <code>%d</code>, valid for %d hours:\n%s",
		chatID, int(inviteLinkTTL.Hours()), html.EscapeString(link)))
}

func (b *Bot) createInviteLink(chatID int64) (string, error) {
	cfg := tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: chatID},
		ExpireDate:  int(b.service.Now().Add(inviteLinkTTL).Unix()),
		MemberLimit: 1,
	}

	resp, err := b.sender.Request(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to create invite link: %w", err)
	}

	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("failed to decode invite link: %w", err)
	}
	if link.InviteLink == "" {
		return "", fmt.Errorf("failed to create invite link: empty link for chat %d", chatID)
	}
	return link.InviteLink, nil
}
