package commands

import (
	"context"
	"time"
)

type Dependencies interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMenu(ctx context.Context, chatID int64, text string) error

	ReloadWords(ctx context.Context) (int, error)
	WordCount() int

	StartPicker(ctx context.Context, chatID, userID int64) error
	CancelPicker(userID int64) bool

	NextDailyFire(chatID int64) (time.Time, bool)
	DailyTime(chatID int64) (hour, minute int, ok bool)
	Location() *time.Location

	Logf(format string, args ...any)
}
