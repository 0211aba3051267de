package bot

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashcards-bot/internal/quiz"
	"flashcards-bot/internal/words"
)

func TestFormatWordCardOmitsEmptyOptionalLinesAndEscapes(t *testing.T) {
	msg := formatWordCard(words.Record{Source: "Hund", Target: "пес", Gloss: "dog <pet>"})

	assert.Contains(t, msg, "🇩🇪 German: <b>Hund</b>")
	assert.Contains(t, msg, "🇬🇧 English: dog &lt;pet&gt;")
	assert.NotContains(t, msg, "Example")
	assert.NotContains(t, msg, "Mnemonic")

	full := formatWordCard(words.Record{Source: "Hund", Target: "пес", Gloss: "dog", Example: "Der Hund & ich.", Mnemonic: "Hound"})
	assert.Contains(t, full, "📚 Example: <i>Der Hund &amp; ich.</i>")
	assert.Contains(t, full, "💡 Mnemonic: Hound")
}

func TestFormatDigestNumbersCards(t *testing.T) {
	parts := formatDigest([]words.Record{
		{Source: "Hund", Target: "пес", Gloss: "dog"},
		{Source: "Katze", Target: "кіт", Gloss: "cat"},
	})
	require.Len(t, parts, 1)
	msg := parts[0]

	assert.True(t, strings.HasPrefix(msg, "<b>📅 Your daily words (2)</b>"))
	assert.Contains(t, msg, "<b>1.</b> 🇩🇪 German: <b>Hund</b>")
	assert.Contains(t, msg, "<b>2.</b> 🇩🇪 German: <b>Katze</b>")
}

func TestFormatDigestSplitsLongCardsUnderMessageLimit(t *testing.T) {
	long := strings.Repeat("x", 400)
	records := make([]words.Record, 5)
	for i := range records {
		records[i] = words.Record{Source: long, Target: long, Gloss: long, Example: long, Mnemonic: long}
	}

	parts := formatDigest(records)
	require.Greater(t, len(parts), 1)

	joined := strings.Join(parts, "\n\n")
	for i := 1; i <= 5; i++ {
		assert.Contains(t, joined, fmt.Sprintf("<b>%d.</b> ", i))
	}
	for _, part := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(part), 4096)
	}
	assert.True(t, strings.HasPrefix(parts[0], "<b>📅 Your daily words (5)</b>"))
}

func TestFormatQuizVerdict(t *testing.T) {
	q := quiz.Question{
		Prompt:       words.Record{Source: "Hund", Target: "пес", Gloss: "dog"},
		Options:      []string{"кіт", "пес"},
		CorrectIndex: 1,
	}

	right := formatQuizVerdict(q, 1, true)
	assert.Contains(t, right, "✅ пес")
	assert.NotContains(t, right, "❌")

	wrong := formatQuizVerdict(q, 0, false)
	assert.Contains(t, wrong, "❌ <s>кіт</s>")
	assert.Contains(t, wrong, "✅ пес")
	assert.Contains(t, wrong, "🇬🇧 dog")
}

func TestButtonLabelAndTruncate(t *testing.T) {
	long := strings.Repeat("я", maxButtonRunes+10)
	label := buttonLabel(long)
	assert.Equal(t, maxButtonRunes, len([]rune(label)))
	assert.True(t, strings.HasSuffix(label, "…"))

	assert.Equal(t, "short", buttonLabel("  short "))

	out := truncateRunes("abcdef", 3)
	require.Equal(t, "abc [truncated]", out)
	assert.Equal(t, "", truncateRunes("abc", 0))
}
