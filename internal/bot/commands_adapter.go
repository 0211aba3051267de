package bot

import (
	"context"
	"time"

	"flashcards-bot/internal/bot/commands"
)

type commandDeps struct {
	service *Service
}

func newCommandHandler(service *Service) *commands.Handler {
	return commands.NewHandler(&commandDeps{service: service})
}

func (d *commandDeps) SendMessage(ctx context.Context, chatID int64, text string) error {
	return d.service.tgClient.SendMessage(ctx, chatID, text, nil)
}

func (d *commandDeps) SendMenu(ctx context.Context, chatID int64, text string) error {
	return d.service.sendMenu(ctx, chatID, text)
}

func (d *commandDeps) ReloadWords(ctx context.Context) (int, error) {
	return d.service.Reload(ctx)
}

func (d *commandDeps) WordCount() int {
	return d.service.words.Len()
}

func (d *commandDeps) StartPicker(ctx context.Context, chatID, userID int64) error {
	return d.service.startPicker(ctx, chatID, userID)
}

func (d *commandDeps) CancelPicker(userID int64) bool {
	return d.service.picker.Cancel(userID)
}

func (d *commandDeps) NextDailyFire(chatID int64) (time.Time, bool) {
	return d.service.scheduler.LookupNextFire(chatID)
}

func (d *commandDeps) DailyTime(chatID int64) (int, int, bool) {
	return d.service.scheduler.TimeOf(chatID)
}

func (d *commandDeps) Location() *time.Location {
	return d.service.scheduler.Location()
}

func (d *commandDeps) Logf(format string, args ...any) {
	d.service.logger.Printf(format, args...)
}
