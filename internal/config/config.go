package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	SourceSheets    = "sheets"
	SourceFirestore = "firestore"
	SourceCSV       = "csv"

	TransportPolling = "polling"
	TransportWebhook = "webhook"
)

type Config struct {
	Port             string
	TelegramBotToken string
	AllowedUsernames []string

	WordSourceKind        string
	WordSourceID          string
	SheetsRange           string
	GoogleCredentialsFile string
	SheetsAPIKey          string
	FirestoreCollection   string
	LoadMaxAttempts       int
	LoadBackoff           time.Duration

	TransportMode  string
	WebhookSecret  string
	BotBaseURL     string
	AutoSetWebhook bool
	PollTimeout    time.Duration

	DefaultDailyTime string
	DefaultTimezone  string
	DailyWordCount   int
	MisfireGrace     time.Duration
}

func Load() (Config, error) {
	autoSetWebhook, err := parseBoolEnv("AUTO_SET_WEBHOOK", false)
	if err != nil {
		return Config{}, err
	}
	pollTimeoutSec, err := parseIntEnv("POLL_TIMEOUT_SEC", 30)
	if err != nil {
		return Config{}, err
	}
	wordCount, err := parseIntEnv("DAILY_WORD_COUNT", 5)
	if err != nil {
		return Config{}, err
	}
	graceSec, err := parseNonNegativeIntEnv("MISFIRE_GRACE_SEC", 900)
	if err != nil {
		return Config{}, err
	}
	maxAttempts, err := parseIntEnv("LOAD_MAX_ATTEMPTS", 3)
	if err != nil {
		return Config{}, err
	}
	backoffMS, err := parseIntEnv("LOAD_BACKOFF_MS", 1000)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		AllowedUsernames: parseAllowedUsernamesEnv("ALLOWED_TELEGRAM_USERNAMES"),

		WordSourceKind:        strings.ToLower(getEnv("WORD_SOURCE_KIND", SourceSheets)),
		WordSourceID:          strings.TrimSpace(os.Getenv("WORD_SOURCE_ID")),
		SheetsRange:           getEnv("SHEETS_RANGE", "A2:E"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		SheetsAPIKey:          getEnv("SHEETS_API_KEY", ""),
		FirestoreCollection:   getEnv("FIRESTORE_COLLECTION", "words"),
		LoadMaxAttempts:       maxAttempts,
		LoadBackoff:           time.Duration(backoffMS) * time.Millisecond,

		TransportMode:  strings.ToLower(getEnv("TRANSPORT_MODE", TransportPolling)),
		WebhookSecret:  getEnv("WEBHOOK_SECRET", ""),
		BotBaseURL:     getEnv("BOT_BASE_URL", ""),
		AutoSetWebhook: autoSetWebhook,
		PollTimeout:    time.Duration(pollTimeoutSec) * time.Second,

		DefaultDailyTime: getEnv("DAILY_DEFAULT_TIME", "09:00"),
		DefaultTimezone:  getEnv("DAILY_TIMEZONE", "Europe/Kyiv"),
		DailyWordCount:   wordCount,
		MisfireGrace:     time.Duration(graceSec) * time.Second,
	}

	if cfg.TelegramBotToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.WordSourceID == "" {
		return Config{}, fmt.Errorf("WORD_SOURCE_ID is required")
	}
	switch cfg.WordSourceKind {
	case SourceSheets, SourceFirestore, SourceCSV:
	default:
		return Config{}, fmt.Errorf("invalid WORD_SOURCE_KIND %q: expected sheets, firestore or csv", cfg.WordSourceKind)
	}
	switch cfg.TransportMode {
	case TransportPolling:
	case TransportWebhook:
		if cfg.WebhookSecret == "" {
			return Config{}, fmt.Errorf("WEBHOOK_SECRET is required when TRANSPORT_MODE=webhook")
		}
	default:
		return Config{}, fmt.Errorf("invalid TRANSPORT_MODE %q: expected polling or webhook", cfg.TransportMode)
	}
	if _, err := time.Parse("15:04", cfg.DefaultDailyTime); err != nil {
		return Config{}, fmt.Errorf("invalid DAILY_DEFAULT_TIME %q: expected HH:MM", cfg.DefaultDailyTime)
	}
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return Config{}, fmt.Errorf("invalid DAILY_TIMEZONE %q: %w", cfg.DefaultTimezone, err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func parseBoolEnv(key string, fallback bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

func parseIntEnv(key string, fallback int) (int, error) {
	return parseIntEnvMin(key, fallback, 1)
}

func parseNonNegativeIntEnv(key string, fallback int) (int, error) {
	return parseIntEnvMin(key, fallback, 0)
}

func parseIntEnvMin(key string, fallback, min int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < min {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

func parseAllowedUsernamesEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}

	dedup := make(map[string]struct{})
	out := make([]string, 0)
	for _, token := range strings.Split(raw, ",") {
		username := normalizeUsername(token)
		if username == "" {
			continue
		}
		if _, exists := dedup[username]; exists {
			continue
		}
		dedup[username] = struct{}{}
		out = append(out, username)
	}

	return out
}

func normalizeUsername(raw string) string {
	username := strings.TrimSpace(strings.ToLower(raw))
	username = strings.TrimPrefix(username, "@")
	return username
}
