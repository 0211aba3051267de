package commands

import (
	"context"
	"fmt"
)

func (h *Handler) cmdRefresh(ctx context.Context, chatID int64) error {
	n, err := h.deps.ReloadWords(ctx)
	if err != nil {
		h.deps.Logf("refresh for chat=%d failed: %v", chatID, err)
		return h.deps.SendMenu(ctx, chatID, fmt.Sprintf("Could not reload the word list. Still using %d words loaded earlier.", h.deps.WordCount()))
	}
	return h.deps.SendMenu(ctx, chatID, fmt.Sprintf("Word list reloaded: %d words available.", n))
}
