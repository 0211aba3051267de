package bot

import (
	"context"
	"errors"
	"fmt"

	"flashcards-bot/internal/picker"
	"flashcards-bot/internal/telegram"
)

func (s *Service) startPicker(ctx context.Context, chatID, userID int64) error {
	s.picker.Start(userID)
	return s.tgClient.SendMessage(ctx, chatID, "What hour should your daily words arrive? Send a number from 0 to 23, or cancel.", nil)
}

func (s *Service) feedPicker(ctx context.Context, chatID, userID int64, text string) error {
	step, err := s.picker.Feed(userID, text)

	var verr *picker.ValidationError
	switch {
	case errors.As(err, &verr):
		if verr.Stage == picker.AwaitingHour {
			return s.tgClient.SendMessage(ctx, chatID, "Please send a whole hour from 0 to 23, or cancel.", nil)
		}
		return s.tgClient.SendMessage(ctx, chatID, "Please send minutes from 0 to 59, or cancel.", nil)
	case errors.Is(err, picker.ErrNoSession):
		return s.sendMenu(ctx, chatID, "Use the buttons below to learn new words or test yourself.")
	case err != nil:
		return err
	}

	switch step.State {
	case picker.AwaitingMinute:
		return s.tgClient.SendMessage(ctx, chatID, fmt.Sprintf("Hour set to %02d. Now send the minutes from 0 to 59.", step.Hour), nil)
	case picker.Cancelled:
		return s.sendMenu(ctx, chatID, "Time selection cancelled.")
	case picker.Completed:
		return s.registerDaily(ctx, chatID, step.Hour, step.Minute)
	default:
		return nil
	}
}

// registerDaily schedules the chat and, on success, delivers a digest right away.
func (s *Service) registerDaily(ctx context.Context, chatID int64, hour, minute int) error {
	next, err := s.scheduler.Register(chatID, hour, minute)
	if err != nil {
		s.logger.Printf("register daily chat=%d at %s failed: %v", chatID, formatClock(hour, minute), err)
		return s.sendMenu(ctx, chatID, "Could not schedule daily words. Please try again.")
	}

	s.rememberTime(chatID, hour, minute)

	loc := s.scheduler.Location()
	confirm := fmt.Sprintf("Daily words scheduled at %s (%s). Next delivery: %s.",
		formatClock(hour, minute), loc.String(), next.In(loc).Format("Mon 2 Jan 15:04"))
	if err := s.tgClient.SendMessage(ctx, chatID, confirm, nil); err != nil {
		return err
	}

	if err := s.DeliverDigest(ctx, chatID); err != nil {
		s.logger.Printf("immediate digest for chat=%d failed: %v", chatID, err)
	}
	return nil
}

// startDaily registers the chat at its last chosen time, surviving a stop, or the default time.
func (s *Service) startDaily(ctx context.Context, chatID int64) error {
	hour, minute := s.defaultHour, s.defaultMinute
	if c, ok := s.chosenTime(chatID); ok {
		hour, minute = c.hour, c.minute
	}
	return s.registerDaily(ctx, chatID, hour, minute)
}

func (s *Service) rememberTime(chatID int64, hour, minute int) {
	s.timesMu.Lock()
	defer s.timesMu.Unlock()
	s.chosenTimes[chatID] = clock{hour: hour, minute: minute}
}

func (s *Service) chosenTime(chatID int64) (clock, bool) {
	s.timesMu.Lock()
	defer s.timesMu.Unlock()
	c, ok := s.chosenTimes[chatID]
	return c, ok
}

func (s *Service) stopDaily(ctx context.Context, chatID int64) error {
	if !s.scheduler.Cancel(chatID) {
		return s.sendMenu(ctx, chatID, "Daily words are not scheduled.")
	}
	return s.sendMenu(ctx, chatID, "Daily words stopped.")
}

// DeliverDigest reloads the word list and sends a sample to the chat.
// A failed reload falls back to the words already in memory.
func (s *Service) DeliverDigest(ctx context.Context, chatID int64) error {
	_, _ = s.Reload(ctx)

	records := s.words.SampleMany(s.dailyCount)
	if len(records) == 0 {
		return s.sendMenu(ctx, chatID, "Sorry, no words are available for today.")
	}
	parts := formatDigest(records)
	for i, part := range parts {
		var keyboard *telegram.InlineKeyboardMarkup
		if i == len(parts)-1 {
			keyboard = mainKeyboard()
		}
		if _, err := s.tgClient.SendRichMessage(ctx, chatID, part, keyboard); err != nil {
			return err
		}
	}
	return nil
}
