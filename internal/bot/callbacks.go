package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"flashcards-bot/internal/quiz"
	"flashcards-bot/internal/telegram"
)

const (
	actionRandom     = "random"
	actionTest       = "test"
	actionAnswer     = "answer_"
	actionSetTime    = "set_time"
	actionStartDaily = "start_daily"
	actionStopDaily  = "stop_daily"
	actionRefresh    = "refresh"
)

func (s *Service) handleCallback(ctx context.Context, cq telegram.CallbackQuery) error {
	if err := s.tgClient.AnswerCallbackQuery(ctx, cq.ID); err != nil {
		s.logger.Printf("answer callback %s failed: %v", cq.ID, err)
	}

	chatID := cq.From.ID
	if cq.Message != nil {
		chatID = cq.Message.Chat.ID
	}
	userID := cq.From.ID

	if !s.isAllowedUsername(cq.From.Username) {
		s.logger.Printf("blocked button from unauthorized username=%q chat=%d", cq.From.Username, chatID)
		return s.tgClient.SendMessage(ctx, chatID, "You are not allowed to use this bot.", nil)
	}

	switch data := strings.TrimSpace(cq.Data); {
	case data == actionRandom:
		return s.sendRandomWord(ctx, chatID)
	case data == actionTest:
		return s.sendQuiz(ctx, chatID, userID)
	case strings.HasPrefix(data, actionAnswer):
		return s.handleAnswer(ctx, cq, chatID, userID, strings.TrimPrefix(data, actionAnswer))
	case data == actionSetTime:
		return s.commandHandler.Handle(ctx, chatID, userID, "/set_time")
	case data == actionStartDaily:
		return s.startDaily(ctx, chatID)
	case data == actionStopDaily:
		return s.stopDaily(ctx, chatID)
	case data == actionRefresh:
		return s.commandHandler.Handle(ctx, chatID, userID, "/refresh")
	default:
		s.logger.Printf("unknown button data=%q chat=%d", data, chatID)
		return s.sendMenu(ctx, chatID, "That button is no longer available.")
	}
}

func (s *Service) sendRandomWord(ctx context.Context, chatID int64) error {
	record, ok := s.words.SampleOne()
	if !ok {
		return s.sendMenu(ctx, chatID, "Sorry, no words are available. Use /refresh to reload the word list.")
	}
	_, err := s.tgClient.SendRichMessage(ctx, chatID, formatWordCard(record), mainKeyboard())
	return err
}

func (s *Service) sendQuiz(ctx context.Context, chatID, userID int64) error {
	q, ok := s.quiz.MakeQuestion()
	if !ok {
		return s.sendMenu(ctx, chatID, "Sorry, no words are available for testing. Use /refresh to reload the word list.")
	}
	messageID, err := s.tgClient.SendRichMessage(ctx, chatID, formatQuizQuestion(q), quizKeyboard(q))
	if err != nil {
		return err
	}
	s.pending.Put(userID, messageID, q)
	return nil
}

func (s *Service) handleAnswer(ctx context.Context, cq telegram.CallbackQuery, chatID, userID int64, rawIndex string) error {
	messageID := 0
	if cq.Message != nil {
		messageID = cq.Message.MessageID
	}

	q, err := s.pending.Take(userID, messageID)
	if errors.Is(err, quiz.ErrNoPendingQuestion) || errors.Is(err, quiz.ErrStaleQuestion) {
		return s.sendMenu(ctx, chatID, "Please start a new test.")
	}
	if err != nil {
		return err
	}

	chosen, err := strconv.Atoi(rawIndex)
	if err != nil {
		chosen = -1
	}
	correct := quiz.CheckAnswer(q, chosen)

	verdict := formatQuizVerdict(q, chosen, correct)
	if messageID != 0 {
		if err := s.tgClient.EditMessageText(ctx, chatID, messageID, verdict, nil); err != nil {
			s.logger.Printf("edit quiz message chat=%d message=%d failed: %v", chatID, messageID, err)
		}
	}

	next := "✅ Correct! Well done!"
	if !correct {
		next = "❌ Sorry, that's incorrect. The correct answer is '" + q.CorrectAnswer() + "'."
	}
	return s.sendMenu(ctx, chatID, next)
}
