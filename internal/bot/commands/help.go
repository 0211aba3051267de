package commands

import "context"

func (h *Handler) cmdHelp(ctx context.Context, chatID int64) error {
	return h.deps.SendMenu(ctx, chatID, helpText())
}

func (h *Handler) cmdMenu(ctx context.Context, chatID int64) error {
	return h.deps.SendMenu(ctx, chatID, "Choose what to do next:")
}

func helpText() string {
	return `Welcome to the German Learning Bot! 🇩🇪🤖
Use the buttons below to learn new words or test yourself.

Commands:
/menu - Show the main menu
/refresh - Reload the word list
/set_time - Choose the time for daily words
/cancel - Cancel choosing a time
/daily_status - Show your daily schedule`
}
