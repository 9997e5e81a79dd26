package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/glebk/retro-bot/internal/config"
	"github.com/glebk/retro-bot/internal/logger"
	"github.com/glebk/retro-bot/internal/schedule"
	"github.com/glebk/retro-bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// DefaultFollowUpDelay is how long the bot waits before replying under a
// freshly posted retrospective
const DefaultFollowUpDelay = 3 * time.Second

// Sender is the part of the Telegram API the bot talks to.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot represents the Telegram bot
type Bot struct {
	api     *tgbotapi.BotAPI
	sender  Sender
	service *service.RetroService
	config  *config.Config

	followUpDelay time.Duration

	mu    sync.Mutex
	forms map[int64]*form

	pending sync.WaitGroup
}

// New creates a new Bot instance
func New(token string, svc *service.RetroService, cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("authorized on account", "username", api.Self.UserName)

	b := newBot(api, svc, cfg)
	b.api = api
	return b, nil
}

func newBot(sender Sender, svc *service.RetroService, cfg *config.Config) *Bot {
	return &Bot{
		sender:        sender,
		service:       svc,
		config:        cfg,
		followUpDelay: DefaultFollowUpDelay,
		forms:         make(map[int64]*form),
	}
}

// Start receives updates until ctx is cancelled, then waits for pending
// follow-up replies
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot has no telegram connection")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.pending.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				b.pending.Wait()
				return nil
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		logger.Debug("message received", "update", update.UpdateID, "chat", update.Message.Chat.ID)
		b.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		logger.Debug("callback received", "update", update.UpdateID, "data", update.CallbackQuery.Data)
		b.handleCallbackQuery(update.CallbackQuery)
	case update.MyChatMember != nil:
		b.handleMyChatMember(update.MyChatMember)
	}
}

// handleMessage handles incoming messages
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.From == nil {
		return
	}

	b.registerMember(message.From)

	if b.isSupportQuestion(message) {
		b.relaySupportQuestion(message)
		return
	}

	if message.IsCommand() {
		if b.handleFormCommand(message) {
			return
		}
		b.handleCommand(message)
		return
	}

	b.handleFormAnswer(message)
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "status":
		b.handleStatus(message)
	case "retro":
		b.handleRetro(message)
	case "my":
		b.handleMy(message)
	case "admin":
		b.handleAdmin(message)
	case "edit":
		b.handleEdit(message)
	case "delete":
		b.handleDelete(message)
	case "invite":
		b.handleInvite(message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
}

// handleStart handles the /start command
func (b *Bot) handleStart(message *tgbotapi.Message) {
	text := fmt.Sprintf(
		"👋 Welcome, %s!\n\n"+
			"I collect weekly retrospectives for the program.\n\n"+
			"Use /retro to write the retrospective for the current session\n"+
			"Use /status to see the current session and its deadline\n"+
			"Use /help to see all commands",
		html.EscapeString(message.From.FirstName),
	)

	b.sendHTML(message.Chat.ID, text)
}

// handleHelp shows help information
func (b *Bot) handleHelp(message *tgbotapi.Message) {
	text := `<b>Retrospective bot</b>

<b>Commands:</b>
/retro - Write the retrospective for the current session
/status - Current session, time left and passes used
/my - Your retrospectives
/help - Show this message

<b>While writing:</b>
/skip - Skip an optional question
/keep - Keep the saved answer from your draft
/cancel - Stop writing

<b>Admins:</b>
/admin - Latest retrospectives
/edit &lt;id&gt; &lt;field&gt; &lt;text&gt; - Change one answer
/delete &lt;id&gt; - Remove a retrospective and its post
/invite [chat id] - One-time invite link to a chat`

	b.sendHTML(message.Chat.ID, text)
}

// handleStatus shows the current session and pass usage
func (b *Bot) handleStatus(message *tgbotapi.Message) {
	status, err := b.service.CurrentSession()
	if err != nil {
		b.reportError(message.Chat.ID, message.From.ID, "status", err)
		return
	}

	if !status.Open {
		b.sendMessage(message.Chat.ID, "🏁 The program has concluded. Thank you for all your retrospectives!")
		return
	}

	text := fmt.Sprintf(
		"📅 Current session: <b>%s</b>\n⏰ Deadline: %s\n⌛ Time left: %s",
		html.EscapeString(status.Label),
		status.Deadline.In(b.service.Schedule().Location()).Format("2006-01-02 15:04 MST"),
		schedule.FormatRemaining(status.Remaining),
	)

	usage, err := b.service.PassUsage(message.From.ID)
	if err != nil {
		logger.Error("failed to count passes", "user", message.From.ID, "error", err)
	} else {
		text += fmt.Sprintf("\n🎟 Passes used: %d/%d", len(usage.Missed), usage.Max)
		if usage.Exceeded() {
			text += " (over the limit)"
		}
	}

	b.sendHTML(message.Chat.ID, text)
}

// registerMember registers or updates the sender
func (b *Bot) registerMember(user *tgbotapi.User) {
	if err := b.service.RegisterMember(user.ID, user.UserName, user.FirstName, user.LastName); err != nil {
		logger.Error("failed to register member", "user", user.ID, "error", err)
	}
}

// sendMessage sends a plain text message
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		logger.Error("failed to send message", "chat", chatID, "error", err)
	}
}

// sendHTML sends a message with HTML formatting
func (b *Bot) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.sender.Send(msg); err != nil {
		logger.Error("failed to send message", "chat", chatID, "error", err)
	}
}

// answerCallback answers a callback query
func (b *Bot) answerCallback(callbackID string, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.sender.Request(callback); err != nil {
		logger.Error("failed to answer callback", "error", err)
	}
}

// reportError tells the user something went wrong and sends the details to
// the admin chat under a shared incident id
func (b *Bot) reportError(chatID, userID int64, action string, err error) {
	incident := uuid.NewString()

	kind := "unexpected error"
	if errors.Is(err, schedule.ErrInvariantViolation) {
		kind = "schedule invariant violated"
	}

	logger.Error(kind, "incident", incident, "action", action, "user", userID, "error", err)

	text := fmt.Sprintf("❌ Something went wrong. Please try again later.\nReference: <code>%s</code>", incident)
	if b.config.SupportChatID != 0 {
		text += "\nIf it keeps happening, ask in the support chat."
	}
	b.sendHTML(chatID, text)

	if b.config.AdminChatID == 0 {
		return
	}
	b.sendHTML(b.config.AdminChatID, fmt.Sprintf(
		"🚨 <b>%s</b> in <code>%s</code>\nUser: <code>%d</code>\nReference: <code>%s</code>\n<pre>%s</pre>",
		kind, html.EscapeString(action), userID, incident, html.EscapeString(err.Error()),
	))
}
