package commands

import (
	"context"
	"strings"
)

type Handler struct {
	deps Dependencies
}

func NewHandler(deps Dependencies) *Handler {
	return &Handler{deps: deps}
}

func (h *Handler) Handle(ctx context.Context, chatID, userID int64, text string) error {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return nil
	}

	switch normalizeCommand(parts[0]) {
	case "/start", "/help":
		return h.cmdHelp(ctx, chatID)
	case "/menu":
		return h.cmdMenu(ctx, chatID)
	case "/refresh":
		return h.cmdRefresh(ctx, chatID)
	case "/set_time":
		return h.cmdSetTime(ctx, chatID, userID)
	case "/cancel":
		return h.cmdCancel(ctx, chatID, userID)
	case "/daily_status":
		return h.cmdDailyStatus(ctx, chatID)
	default:
		return h.deps.SendMessage(ctx, chatID, "Unknown command. Use /help to see available commands.")
	}
}
