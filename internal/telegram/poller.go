package telegram

import (
	"context"
	"log"
	"time"
)

const maxPollBackoff = 30 * time.Second

type UpdateFetcher interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
}

type UpdateHandler func(ctx context.Context, update Update)

// Poller drives getUpdates long polling and hands each update to the handler in order.
type Poller struct {
	logger  *log.Logger
	fetcher UpdateFetcher
	handle  UpdateHandler
	timeout time.Duration
	backoff time.Duration
}

func NewPoller(logger *log.Logger, fetcher UpdateFetcher, timeout time.Duration, handle UpdateHandler) *Poller {
	return &Poller{
		logger:  logger,
		fetcher: fetcher,
		handle:  handle,
		timeout: timeout,
		backoff: time.Second,
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	backoff := p.backoff

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		updates, err := p.fetcher.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Printf("get updates failed (retry in %s): %v", backoff, err)
			if !sleepContext(ctx, backoff) {
				return nil
			}
			backoff = min(backoff*2, maxPollBackoff)
			continue
		}
		backoff = p.backoff

		for _, update := range updates {
			p.handle(ctx, update)
			offset = update.UpdateID + 1
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
