package bot

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"flashcards-bot/internal/quiz"
	"flashcards-bot/internal/words"
)

const maxFieldRunes = 300
const maxButtonRunes = 60

// Telegram rejects messages over 4096 characters; keep headroom for markup.
const maxMessageRunes = 4000

func formatWordCard(r words.Record) string {
	lines := []string{
		"🇩🇪 German: <b>" + escapeField(r.Source) + "</b>",
		"🇺🇦 Ukrainian: " + escapeField(r.Target),
		"🇬🇧 English: " + escapeField(r.Gloss),
	}
	if strings.TrimSpace(r.Example) != "" {
		lines = append(lines, "📚 Example: <i>"+escapeField(r.Example)+"</i>")
	}
	if strings.TrimSpace(r.Mnemonic) != "" {
		lines = append(lines, "💡 Mnemonic: "+escapeField(r.Mnemonic))
	}
	return strings.Join(lines, "\n")
}

// formatDigest splits the digest into messages of at most maxMessageRunes.
// A card is never split across messages.
func formatDigest(records []words.Record) []string {
	const sep = "\n\n"

	var parts []string
	current := fmt.Sprintf("<b>📅 Your daily words (%d)</b>", len(records))
	for i, r := range records {
		card := fmt.Sprintf("<b>%d.</b> %s", i+1, formatWordCard(r))
		if utf8.RuneCountInString(current)+utf8.RuneCountInString(sep)+utf8.RuneCountInString(card) > maxMessageRunes {
			parts = append(parts, current)
			current = card
			continue
		}
		current += sep + card
	}
	return append(parts, current)
}

func formatQuizQuestion(q quiz.Question) string {
	return fmt.Sprintf("🇩🇪➡️🇺🇦 What's the Ukrainian translation of '<b>%s</b>'?", escapeField(q.Prompt.Source))
}

func formatQuizVerdict(q quiz.Question, chosen int, correct bool) string {
	lines := []string{formatQuizQuestion(q), ""}
	if correct {
		lines = append(lines, "✅ "+escapeField(q.CorrectAnswer()))
	} else {
		if chosen >= 0 && chosen < len(q.Options) {
			lines = append(lines, "❌ <s>"+escapeField(q.Options[chosen])+"</s>")
		}
		lines = append(lines, "✅ "+escapeField(q.CorrectAnswer()))
	}
	if gloss := strings.TrimSpace(q.Prompt.Gloss); gloss != "" {
		lines = append(lines, "🇬🇧 "+escapeField(gloss))
	}
	return strings.Join(lines, "\n")
}

func buttonLabel(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= maxButtonRunes {
		return text
	}
	return string([]rune(text)[:maxButtonRunes-1]) + "…"
}

func escapeField(text string) string {
	return escapeHTML(truncateRunes(strings.TrimSpace(text), maxFieldRunes))
}

func escapeHTML(text string) string {
	return html.EscapeString(text)
}

func truncateRunes(in string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(in) <= max {
		return in
	}

	out := make([]rune, 0, max+1)
	for _, r := range in {
		if len(out) >= max {
			break
		}
		out = append(out, r)
	}
	return strings.TrimSpace(string(out)) + " [truncated]"
}
