package bot

import (
	"strconv"

	"flashcards-bot/internal/quiz"
	"flashcards-bot/internal/telegram"
)

func mainKeyboard() *telegram.InlineKeyboardMarkup {
	return telegram.Keyboard(
		[]telegram.InlineKeyboardButton{telegram.Button("🎲 Get a random word", actionRandom)},
		[]telegram.InlineKeyboardButton{telegram.Button("📝 Test me", actionTest)},
		[]telegram.InlineKeyboardButton{telegram.Button("⏰ Set daily time", actionSetTime)},
		[]telegram.InlineKeyboardButton{
			telegram.Button("▶️ Start daily", actionStartDaily),
			telegram.Button("⏹ Stop daily", actionStopDaily),
		},
		[]telegram.InlineKeyboardButton{telegram.Button("🔄 Refresh words", actionRefresh)},
	)
}

// quizKeyboard puts one option per row; the callback carries the option index.
func quizKeyboard(q quiz.Question) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(q.Options))
	for i, opt := range q.Options {
		rows = append(rows, []telegram.InlineKeyboardButton{
			telegram.Button(buttonLabel(opt), actionAnswer+strconv.Itoa(i)),
		})
	}
	return telegram.Keyboard(rows...)
}
