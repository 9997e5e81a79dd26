package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/glebk/retro-bot/internal/domain"
)

const timeLayout = "2006-01-02 15:04"

// mention links to a Telegram user by id
func mention(userID int64, name string) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, userID, html.EscapeString(name))
}

// renderAnswers renders the answer sections shared by the post and the
// detail view
func renderAnswers(retro *domain.Retrospective) string {
	var sb strings.Builder

	section := func(title, body string) {
		sb.WriteString("\n\n<b>")
		sb.WriteString(title)
		sb.WriteString("</b>\n")
		sb.WriteString(html.EscapeString(body))
	}

	section("🌟 What went well", retro.GoodPoints)
	section("🔧 What to improve", retro.Improvements)
	section("💡 What I learned", retro.Learnings)
	section("🚀 Action item", retro.ActionItem)

	if retro.EmotionScore != nil {
		sb.WriteString(fmt.Sprintf("\n\n<b>📊 Emotion score</b> %d/10", *retro.EmotionScore))
		if retro.EmotionReason != "" {
			sb.WriteString("\n")
			sb.WriteString(html.EscapeString(retro.EmotionReason))
		}
	}

	return sb.String()
}

// renderRetrospective renders the message posted to the chat
func renderRetrospective(retro *domain.Retrospective, name string, withSupport bool) string {
	text := fmt.Sprintf("<b>%s shared the retrospective for session <code>%s</code>! 🤗</b>",
		mention(retro.UserID, name), html.EscapeString(retro.SessionLabel))
	text += renderAnswers(retro)

	if withSupport {
		text += "\n\n<i>If something is wrong with this retrospective, let us know in the support chat.</i>"
	}
	return text
}

// renderDetail renders one of the user's own retrospectives
func renderDetail(retro *domain.Retrospective, loc *time.Location) string {
	text := fmt.Sprintf("📝 <b>Session %s</b> · %s",
		html.EscapeString(retro.SessionLabel), retro.CreatedAt.In(loc).Format(timeLayout))
	return text + renderAnswers(retro)
}

// renderLatest renders the admin listing
func renderLatest(retros []*domain.Retrospective, names map[int64]string, loc *time.Location) string {
	if len(retros) == 0 {
		return "📭 No retrospectives yet."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>Latest %d retrospectives</b>\n", len(retros)))
	for _, r := range retros {
		sb.WriteString(fmt.Sprintf("\n<code>#%d</code> · %s · %s · %s",
			r.ID,
			html.EscapeString(r.SessionLabel),
			html.EscapeString(names[r.UserID]),
			r.CreatedAt.In(loc).Format(timeLayout),
		))
	}
	return sb.String()
}
