package bot

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"flashcards-bot/internal/bot/commands"
	"flashcards-bot/internal/picker"
	"flashcards-bot/internal/quiz"
	"flashcards-bot/internal/telegram"
)

const genericFailureText = "Sorry, something went wrong. Please try again."

type Service struct {
	logger         *log.Logger
	tgClient       TelegramClient
	words          WordStore
	scheduler      Scheduler
	quiz           *quiz.Engine
	pending        *quiz.Sessions
	picker         *picker.FSM
	commandHandler *commands.Handler
	allowedUsers   map[string]struct{}
	webhookSecret  string
	defaultHour    int
	defaultMinute  int
	dailyCount     int

	timesMu     sync.Mutex
	chosenTimes map[int64]clock
}

type clock struct {
	hour   int
	minute int
}

func NewService(
	logger *log.Logger,
	tgClient TelegramClient,
	store WordStore,
	scheduler Scheduler,
	settings Settings,
) *Service {
	hour, minute := 9, 0
	if t, err := time.Parse("15:04", settings.DefaultDailyTime); err == nil {
		hour, minute = t.Hour(), t.Minute()
	}
	count := settings.DailyWordCount
	if count <= 0 {
		count = 5
	}

	svc := &Service{
		logger:        logger,
		tgClient:      tgClient,
		words:         store,
		scheduler:     scheduler,
		quiz:          quiz.NewEngine(store),
		pending:       quiz.NewSessions(),
		picker:        picker.New(),
		allowedUsers:  buildAllowedUserSet(settings.AllowedUsernames),
		webhookSecret: settings.WebhookSecret,
		defaultHour:   hour,
		defaultMinute: minute,
		dailyCount:    count,
		chosenTimes:   make(map[int64]clock),
	}
	svc.commandHandler = newCommandHandler(svc)
	return svc
}

// HandleUpdate processes one inbound update. Panics and errors end here and become a fixed apology.
func (s *Service) HandleUpdate(ctx context.Context, update telegram.Update) {
	chatID, userID := updateOrigin(update)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("panic handling update=%d chat=%d user=%d: %v\n%s", update.UpdateID, chatID, userID, r, debug.Stack())
			s.apologize(ctx, chatID)
		}
	}()

	var err error
	switch {
	case update.CallbackQuery != nil:
		err = s.handleCallback(ctx, *update.CallbackQuery)
	case update.Message != nil:
		err = s.handleMessage(ctx, *update.Message)
	default:
		return
	}

	if err != nil {
		s.logger.Printf("handle update=%d chat=%d user=%d failed: %v", update.UpdateID, chatID, userID, err)
		s.apologize(ctx, chatID)
	}
}

func (s *Service) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	secret := chi.URLParam(r, "secret")
	if s.webhookSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.webhookSecret)) != 1 {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	defer r.Body.Close()

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	s.HandleUpdate(r.Context(), update)
	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleMessage(ctx context.Context, msg telegram.Message) error {
	if !s.isAllowedUsername(msg.From.Username) {
		s.logger.Printf("blocked message from unauthorized username=%q chat=%d", msg.From.Username, msg.Chat.ID)
		return s.tgClient.SendMessage(ctx, msg.Chat.ID, "You are not allowed to use this bot.", nil)
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "/") {
		return s.commandHandler.Handle(ctx, msg.Chat.ID, msg.From.ID, text)
	}

	if s.picker.Active(msg.From.ID) {
		return s.feedPicker(ctx, msg.Chat.ID, msg.From.ID, text)
	}

	return s.sendMenu(ctx, msg.Chat.ID, "Use the buttons below to learn new words or test yourself.")
}

func (s *Service) sendMenu(ctx context.Context, chatID int64, text string) error {
	return s.tgClient.SendMessage(ctx, chatID, text, mainKeyboard())
}

func (s *Service) apologize(ctx context.Context, chatID int64) {
	if chatID == 0 {
		return
	}
	if err := s.tgClient.SendMessage(ctx, chatID, genericFailureText, nil); err != nil {
		s.logger.Printf("send apology to chat=%d failed: %v", chatID, err)
	}
}

// Reload refreshes the word collection and logs the outcome.
func (s *Service) Reload(ctx context.Context) (int, error) {
	n, err := s.words.Load(ctx)
	if err != nil {
		s.logger.Printf("word reload failed, keeping %d words: %v", s.words.Len(), err)
		return 0, err
	}
	return n, nil
}

func updateOrigin(update telegram.Update) (int64, int64) {
	switch {
	case update.CallbackQuery != nil:
		chatID := update.CallbackQuery.From.ID
		if update.CallbackQuery.Message != nil {
			chatID = update.CallbackQuery.Message.Chat.ID
		}
		return chatID, update.CallbackQuery.From.ID
	case update.Message != nil:
		return update.Message.Chat.ID, update.Message.From.ID
	default:
		return 0, 0
	}
}

func buildAllowedUserSet(usernames []string) map[string]struct{} {
	if len(usernames) == 0 {
		return nil
	}

	out := make(map[string]struct{}, len(usernames))
	for _, username := range usernames {
		normalized := normalizeTelegramUsername(username)
		if normalized == "" {
			continue
		}
		out[normalized] = struct{}{}
	}
	return out
}

func (s *Service) isAllowedUsername(username string) bool {
	if len(s.allowedUsers) == 0 {
		return true
	}
	normalized := normalizeTelegramUsername(username)
	if normalized == "" {
		return false
	}
	_, ok := s.allowedUsers[normalized]
	return ok
}

func normalizeTelegramUsername(raw string) string {
	out := strings.TrimSpace(strings.ToLower(raw))
	return strings.TrimPrefix(out, "@")
}

func formatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
