package commands

import "context"

func (h *Handler) cmdSetTime(ctx context.Context, chatID, userID int64) error {
	return h.deps.StartPicker(ctx, chatID, userID)
}

func (h *Handler) cmdCancel(ctx context.Context, chatID, userID int64) error {
	if !h.deps.CancelPicker(userID) {
		return h.deps.SendMenu(ctx, chatID, "Nothing to cancel.")
	}
	return h.deps.SendMenu(ctx, chatID, "Time selection cancelled.")
}
