package quiz

import (
	"errors"
	"math/rand/v2"
	"sync"

	"flashcards-bot/internal/words"
)

const maxDistractors = 3

var (
	ErrNoPendingQuestion = errors.New("no pending question")
	// ErrStaleQuestion means the answer came from an older quiz message than the pending one.
	ErrStaleQuestion = errors.New("answer for a replaced question")
)

// Question asks for Prompt.Target among Options. Options[CorrectIndex] == Prompt.Target.
type Question struct {
	Prompt       words.Record
	Options      []string
	CorrectIndex int
}

func (q Question) CorrectAnswer() string {
	return q.Prompt.Target
}

type WordSource interface {
	All() []words.Record
}

type Engine struct {
	words WordSource
}

func NewEngine(source WordSource) *Engine {
	return &Engine{words: source}
}

// MakeQuestion returns false when there are no words.
func (e *Engine) MakeQuestion() (Question, bool) {
	all := e.words.All()
	if len(all) == 0 {
		return Question{}, false
	}

	correct := all[rand.IntN(len(all))]

	pool := make([]string, 0, len(all))
	seen := map[string]struct{}{correct.Target: {}}
	for _, rec := range all {
		if _, dup := seen[rec.Target]; dup {
			continue
		}
		seen[rec.Target] = struct{}{}
		pool = append(pool, rec.Target)
	}

	n := min(maxDistractors, len(pool))
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	options := make([]string, 0, n+1)
	options = append(options, pool[:n]...)
	options = append(options, correct.Target)
	rand.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	correctIndex := 0
	for i, opt := range options {
		if opt == correct.Target {
			correctIndex = i
			break
		}
	}

	return Question{
		Prompt:       correct,
		Options:      options,
		CorrectIndex: correctIndex,
	}, true
}

// CheckAnswer reports whether the option at chosen is the correct one.
func CheckAnswer(q Question, chosen int) bool {
	return chosen == q.CorrectIndex && chosen >= 0 && chosen < len(q.Options)
}

// Sessions holds the pending question per user and the message it was sent in.
// Writes replace; last write wins.
type Sessions struct {
	mu      sync.Mutex
	pending map[int64]pendingQuestion
}

type pendingQuestion struct {
	question  Question
	messageID int
}

func NewSessions() *Sessions {
	return &Sessions{pending: make(map[int64]pendingQuestion)}
}

func (s *Sessions) Put(userID int64, messageID int, q Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[userID] = pendingQuestion{question: q, messageID: messageID}
}

// Take removes and returns the user's pending question if it was sent in messageID.
// A mismatch returns ErrStaleQuestion and leaves the pending question in place.
// messageID 0 matches any message.
func (s *Sessions) Take(userID int64, messageID int) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[userID]
	if !ok {
		return Question{}, ErrNoPendingQuestion
	}
	if messageID != 0 && p.messageID != messageID {
		return Question{}, ErrStaleQuestion
	}
	delete(s.pending, userID)
	return p.question, nil
}
