package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/glebk/retro-bot/internal/logger"
	"github.com/glebk/retro-bot/internal/schedule"
	"github.com/glebk/retro-bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type step int

const (
	stepGoodPoints step = iota
	stepImprovements
	stepLearnings
	stepActionItem
	stepEmotionScore
	stepEmotionReason
	stepDone
)

type question struct {
	name     string
	prompt   string
	optional bool
}

var questions = map[step]question{
	stepGoodPoints:    {name: "good points", prompt: "🌟 What went well and what are you proud of?"},
	stepImprovements:  {name: "improvements", prompt: "🔧 What fell short and what would you like to improve?"},
	stepLearnings:     {name: "learnings", prompt: "💡 What did you learn?"},
	stepActionItem:    {name: "action item", prompt: "🚀 Which action item will you try next?"},
	stepEmotionScore:  {name: "emotion score", prompt: "📊 How was your week, from 1 to 10?", optional: true},
	stepEmotionReason: {name: "emotion reason", prompt: "💬 Why that score?", optional: true},
}

const followUpText = "Thanks for sharing a great retrospective! How about posting your time tracker screenshot in a reply too? 🖼️"

// form is one user's retrospective in progress
type form struct {
	chatID  int64
	private bool
	label   string
	step    step
	answers service.Answers
	saved   *service.Answers
}

func (f *form) savedValue() string {
	if f.saved == nil {
		return ""
	}
	switch f.step {
	case stepGoodPoints:
		return f.saved.GoodPoints
	case stepImprovements:
		return f.saved.Improvements
	case stepLearnings:
		return f.saved.Learnings
	case stepActionItem:
		return f.saved.ActionItem
	case stepEmotionScore:
		if f.saved.EmotionScore != nil {
			return strconv.Itoa(*f.saved.EmotionScore)
		}
	case stepEmotionReason:
		return f.saved.EmotionReason
	}
	return ""
}

// answer validates text for the current step and stores it
func (f *form) answer(text string) error {
	text = strings.TrimSpace(text)
	q := questions[f.step]

	if f.step == stepEmotionScore {
		score, err := service.ParseEmotionScore(text)
		if err != nil {
			return err
		}
		f.answers.EmotionScore = &score
		return nil
	}

	if err := service.ValidateText(q.name, text); err != nil {
		return err
	}

	switch f.step {
	case stepGoodPoints:
		f.answers.GoodPoints = text
	case stepImprovements:
		f.answers.Improvements = text
	case stepLearnings:
		f.answers.Learnings = text
	case stepActionItem:
		f.answers.ActionItem = text
	case stepEmotionReason:
		f.answers.EmotionReason = text
	}
	return nil
}

// advance moves to the next question. The reason is only asked for a score.
func (f *form) advance() {
	f.step++
	if f.step == stepEmotionReason && f.answers.EmotionScore == nil {
		f.step = stepDone
	}
}

func (f *form) prompt() string {
	q := questions[f.step]
	text := fmt.Sprintf("<b>%d/%d</b> %s", int(f.step)+1, len(questions), q.prompt)

	if saved := f.savedValue(); saved != "" {
		text += fmt.Sprintf("\n\nSaved answer:\n<i>%s</i>\nSend /keep to use it.", html.EscapeString(saved))
	}
	if q.optional {
		text += "\nSend /skip to leave it empty."
	}
	// Group chats only deliver commands and replies to the bot.
	if !f.private {
		text += "\n↩️ Reply to this message with your answer."
	}
	return text
}

func (b *Bot) activeForm(userID int64) *form {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.forms[userID]
}

func (b *Bot) setForm(userID int64, f *form) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f == nil {
		delete(b.forms, userID)
		return
	}
	b.forms[userID] = f
}

// handleRetro checks eligibility and opens the form
func (b *Bot) handleRetro(message *tgbotapi.Message) {
	userID := message.From.ID

	if b.activeForm(userID) != nil {
		b.sendMessage(message.Chat.ID, "✍️ You are already writing a retrospective. Answer the question above or send /cancel.")
		return
	}

	status, err := b.service.CheckEligibility(userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgramClosed):
			b.sendMessage(message.Chat.ID, "🏁 The program has concluded. Retrospectives are no longer collected.")
		case errors.Is(err, service.ErrAlreadySubmitted):
			b.sendHTML(message.Chat.ID, fmt.Sprintf(
				"✅ You already submitted the retrospective for session <b>%s</b>. Use /my to read it.",
				html.EscapeString(status.Label)))
		default:
			b.reportError(message.Chat.ID, userID, "retro", err)
		}
		return
	}

	f := &form{chatID: message.Chat.ID, private: message.Chat.IsPrivate(), label: status.Label}

	intro := fmt.Sprintf("✍️ Retrospective for session <b>%s</b>\n⌛ Time left: %s\nSend /cancel to stop at any time.",
		html.EscapeString(status.Label), schedule.FormatRemaining(status.Remaining))

	draft, err := b.service.Draft(userID)
	if err != nil {
		logger.Error("failed to load draft", "user", userID, "error", err)
	} else if draft != nil {
		saved := service.AnswersFromDraft(draft)
		f.saved = &saved
		intro += "\n\n💾 I restored the answers you could not submit last time."
	}

	b.setForm(userID, f)
	b.sendHTML(message.Chat.ID, intro)
	b.sendHTML(message.Chat.ID, f.prompt())
}

// handleFormCommand handles /skip, /keep and /cancel. It reports whether the
// command belonged to the form.
func (b *Bot) handleFormCommand(message *tgbotapi.Message) bool {
	cmd := message.Command()
	if cmd != "skip" && cmd != "keep" && cmd != "cancel" {
		return false
	}

	userID := message.From.ID
	f := b.activeForm(userID)
	if f == nil || f.chatID != message.Chat.ID {
		b.sendMessage(message.Chat.ID, "You are not writing a retrospective here. Use /retro to start.")
		return true
	}

	switch cmd {
	case "cancel":
		b.setForm(userID, nil)
		b.sendMessage(message.Chat.ID, "👌 Retrospective cancelled.")
		return true

	case "skip":
		if !questions[f.step].optional {
			b.sendMessage(message.Chat.ID, "This question is required.")
			return true
		}
		if f.step == stepEmotionScore {
			f.answers.EmotionScore = nil
		} else {
			f.answers.EmotionReason = ""
		}

	case "keep":
		saved := f.savedValue()
		if saved == "" {
			b.sendMessage(message.Chat.ID, "There is no saved answer for this question.")
			return true
		}
		if err := f.answer(saved); err != nil {
			b.sendMessage(message.Chat.ID, userMessage(err))
			return true
		}
	}

	b.next(message, f)
	return true
}

// handleFormAnswer stores a plain message as the answer to the current question
func (b *Bot) handleFormAnswer(message *tgbotapi.Message) {
	f := b.activeForm(message.From.ID)
	if f == nil || f.chatID != message.Chat.ID {
		return
	}

	if err := f.answer(message.Text); err != nil {
		b.sendMessage(message.Chat.ID, userMessage(err))
		return
	}

	b.next(message, f)
}

func (b *Bot) next(message *tgbotapi.Message, f *form) {
	f.advance()
	if f.step != stepDone {
		b.sendHTML(message.Chat.ID, f.prompt())
		return
	}

	b.setForm(message.From.ID, nil)
	b.submit(message, f)
}

func (b *Bot) submit(message *tgbotapi.Message, f *form) {
	userID := message.From.ID

	retro, err := b.service.Submit(userID, f.chatID, f.answers, b)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgramClosed):
			b.sendMessage(message.Chat.ID, "🏁 The program concluded while you were writing. Your retrospective was not submitted.")
		case errors.Is(err, service.ErrAlreadySubmitted):
			b.sendMessage(message.Chat.ID, "✅ You already submitted the retrospective for this session.")
		case errors.Is(err, service.ErrInvalidInput):
			b.sendMessage(message.Chat.ID, userMessage(err)+"\nUse /retro to try again.")
		default:
			if draft, derr := b.service.Draft(userID); derr == nil && draft != nil {
				b.sendMessage(message.Chat.ID, "💾 Your answers were saved. Use /retro to restore them.")
			}
			b.reportError(message.Chat.ID, userID, "submit", err)
		}
		return
	}

	if retro.SessionLabel != f.label {
		logger.Info("session changed while writing", "user", userID, "opened", f.label, "stored", retro.SessionLabel)
	}

	b.followUp(retro.ChatID, retro.MessageID)
}

// followUp replies under the posted retrospective after followUpDelay
func (b *Bot) followUp(chatID int64, messageID int) {
	b.pending.Add(1)
	go func() {
		defer b.pending.Done()

		if b.followUpDelay > 0 {
			<-time.After(b.followUpDelay)
		}

		msg := tgbotapi.NewMessage(chatID, followUpText)
		msg.ReplyToMessageID = messageID
		if _, err := b.sender.Send(msg); err != nil {
			logger.Warn("failed to send follow-up", "chat", chatID, "message", messageID, "error", err)
		}
	}()
}

// userMessage strips the validation sentinel prefix for display
func userMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
	if msg == "" {
		return "⚠️ Invalid answer."
	}
	return "⚠️ " + strings.ToUpper(msg[:1]) + msg[1:]
}
