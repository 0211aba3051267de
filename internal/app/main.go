package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"flashcards-bot/internal/adapters"
	"flashcards-bot/internal/bot"
	"flashcards-bot/internal/config"
	"flashcards-bot/internal/schedule"
	"flashcards-bot/internal/sheets"
	"flashcards-bot/internal/storage"
	"flashcards-bot/internal/telegram"
	"flashcards-bot/internal/words"
)

const shutdownTimeout = 20 * time.Second

func Main() {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("load .env: %v", err)
	}
	if err := run(logger); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(logger *log.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := newWordSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSource(); err != nil {
			logger.Printf("close word source: %v", err)
		}
	}()

	store := words.NewStore(logger, source, words.RetryPolicy{
		MaxAttempts: cfg.LoadMaxAttempts,
		BaseDelay:   cfg.LoadBackoff,
	})
	if n, err := store.Load(ctx); err != nil {
		logger.Printf("initial word load failed, starting with no words: %v", err)
	} else {
		logger.Printf("word source %s ready with %d words", cfg.WordSourceKind, n)
	}

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	tgClient := telegram.NewClient(cfg.TelegramBotToken)

	var service *bot.Service
	scheduler := schedule.New(logger, loc, cfg.MisfireGrace, func(ctx context.Context, chatID int64) error {
		return service.DeliverDigest(ctx, chatID)
	})
	service = bot.NewService(logger, tgClient, store, scheduler, bot.Settings{
		WebhookSecret:    cfg.WebhookSecret,
		DefaultDailyTime: cfg.DefaultDailyTime,
		DailyWordCount:   cfg.DailyWordCount,
		AllowedUsernames: cfg.AllowedUsernames,
	})

	webhookMode := cfg.TransportMode == config.TransportWebhook
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           service.Routes(webhookMode),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("bot server listening on %s (transport=%s)", httpServer.Addr, cfg.TransportMode)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
		close(serverErr)
	}()

	pollDone := make(chan struct{})
	if webhookMode {
		close(pollDone)
		if cfg.AutoSetWebhook {
			autoSetWebhook(ctx, logger, tgClient, cfg.BotBaseURL, cfg.WebhookSecret)
		}
	} else {
		if err := tgClient.DeleteWebhook(ctx); err != nil {
			logger.Printf("delete webhook failed: %v", err)
		}
		poller := telegram.NewPoller(logger, tgClient, cfg.PollTimeout, service.HandleUpdate)
		go func() {
			defer close(pollDone)
			if err := poller.Run(ctx); err != nil {
				logger.Printf("poller stopped: %v", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err, ok := <-serverErr:
		if ok {
			runErr = err
		}
		stop()
	}

	shutdown(logger, httpServer, pollDone, scheduler, tgClient)
	return runErr
}

// shutdown runs every step even if an earlier one fails.
func shutdown(logger *log.Logger, httpServer *http.Server, pollDone <-chan struct{}, scheduler *schedule.Scheduler, tgClient *telegram.Client) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	select {
	case <-pollDone:
	case <-shutdownCtx.Done():
		logger.Printf("poller did not stop before deadline")
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown error: %v", err)
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Printf("scheduler stop error: %v", err)
	}
	tgClient.Close()
	logger.Printf("shutdown complete")
}

func newWordSource(ctx context.Context, cfg config.Config) (words.Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.WordSourceKind {
	case config.SourceCSV:
		return adapters.NewCSVSource(cfg.WordSourceID), noop, nil
	case config.SourceFirestore:
		fireClient, err := firestore.NewClient(ctx, cfg.WordSourceID, googleOptions(cfg)...)
		if err != nil {
			return nil, nil, fmt.Errorf("create firestore client: %w", err)
		}
		store := storage.NewStore(fireClient, cfg.FirestoreCollection)
		return adapters.NewFirestoreSource(store), store.Close, nil
	default:
		client, err := sheets.NewClient(ctx, cfg.WordSourceID, cfg.SheetsRange, googleOptions(cfg)...)
		if err != nil {
			return nil, nil, err
		}
		return adapters.NewSheetsSource(client), noop, nil
	}
}

func googleOptions(cfg config.Config) []option.ClientOption {
	switch {
	case cfg.GoogleCredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(cfg.GoogleCredentialsFile)}
	case cfg.SheetsAPIKey != "" && cfg.WordSourceKind == config.SourceSheets:
		return []option.ClientOption{option.WithAPIKey(cfg.SheetsAPIKey)}
	default:
		return nil
	}
}

func autoSetWebhook(ctx context.Context, logger *log.Logger, client *telegram.Client, baseURL, secret string) {
	if baseURL == "" {
		logger.Printf("AUTO_SET_WEBHOOK=true but BOT_BASE_URL is empty; skipping")
		return
	}

	webhookURL, err := telegram.BuildWebhookURL(baseURL, secret)
	if err != nil {
		logger.Printf("build webhook URL failed: %v", err)
		return
	}

	setCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if err := client.SetWebhook(setCtx, webhookURL); err != nil {
		logger.Printf("set webhook failed: %v", err)
		return
	}
	logger.Printf("webhook set to %s/webhook/<secret>", baseURL)
}
