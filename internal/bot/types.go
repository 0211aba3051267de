package bot

import (
	"context"
	"time"

	"flashcards-bot/internal/telegram"
	"flashcards-bot/internal/words"
)

type TelegramClient interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error
	SendRichMessage(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) (int, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, keyboard *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

type WordStore interface {
	Load(ctx context.Context) (int, error)
	Len() int
	All() []words.Record
	SampleOne() (words.Record, bool)
	SampleMany(n int) []words.Record
}

type Scheduler interface {
	Register(chatID int64, hour, minute int) (time.Time, error)
	Cancel(chatID int64) bool
	LookupNextFire(chatID int64) (time.Time, bool)
	TimeOf(chatID int64) (int, int, bool)
	Location() *time.Location
}

type Settings struct {
	WebhookSecret    string
	DefaultDailyTime string
	DailyWordCount   int
	AllowedUsernames []string
}
