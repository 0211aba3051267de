package commands

import (
	"context"
	"fmt"
)

func (h *Handler) cmdDailyStatus(ctx context.Context, chatID int64) error {
	loc := h.deps.Location()
	next, ok := h.deps.NextDailyFire(chatID)
	if !ok {
		return h.deps.SendMessage(ctx, chatID, fmt.Sprintf("Daily status: OFF\nTimezone: %s\nUse /set_time to schedule daily words.", loc.String()))
	}

	hour, minute, _ := h.deps.DailyTime(chatID)
	msg := fmt.Sprintf("Daily status: ON\nTime: %02d:%02d\nTimezone: %s\nNext delivery: %s",
		hour, minute, loc.String(), next.In(loc).Format("Mon 2 Jan 15:04"))
	return h.deps.SendMessage(ctx, chatID, msg)
}
