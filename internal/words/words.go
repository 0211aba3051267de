package words

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
)

var ErrEmptySource = errors.New("word source returned no usable rows")
var ErrMalformedSource = errors.New("word source is malformed")

// Record is one vocabulary entry. Source, Target and Gloss are always non-empty.
type Record struct {
	Source   string
	Target   string
	Gloss    string
	Example  string
	Mnemonic string
}

// Source yields raw positional rows: source, target, gloss, example, mnemonic.
type Source interface {
	FetchAll(ctx context.Context) ([][]string, error)
}

type LoadError struct {
	Attempts int
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load words (attempts=%d): %v", e.Attempts, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type Store struct {
	logger *log.Logger
	source Source
	retry  RetryPolicy

	mu      sync.RWMutex
	records []Record
}

func NewStore(logger *log.Logger, source Source, retry RetryPolicy) *Store {
	return &Store{
		logger: logger,
		source: source,
		retry:  retry,
	}
}

// Load fetches every row from the source and swaps the collection in one step.
// On failure the previous collection stays untouched.
func (s *Store) Load(ctx context.Context) (int, error) {
	var rows [][]string
	attempts, err := s.retry.Do(ctx, func(ctx context.Context, attempt int) error {
		fetched, err := s.source.FetchAll(ctx)
		if err != nil {
			s.logger.Printf("word source fetch attempt %d failed: %v", attempt, err)
			return err
		}
		rows = fetched
		return nil
	})
	if err != nil {
		return 0, &LoadError{Attempts: attempts, Err: err}
	}

	records, dropped := parseRows(rows)
	if len(records) == 0 {
		if len(rows) > 0 {
			return 0, &LoadError{Attempts: attempts, Err: fmt.Errorf("%w: %d rows, none usable", ErrMalformedSource, len(rows))}
		}
		return 0, &LoadError{Attempts: attempts, Err: ErrEmptySource}
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	if dropped > 0 {
		s.logger.Printf("loaded %d words, dropped %d incomplete rows", len(records), dropped)
	} else {
		s.logger.Printf("loaded %d words", len(records))
	}
	return len(records), nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns a copy of the current collection.
func (s *Store) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) SampleOne() (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return Record{}, false
	}
	return s.records[rand.IntN(len(s.records))], true
}

// SampleMany returns min(n, Len()) distinct records in random order.
func (s *Store) SampleMany(n int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || len(s.records) == 0 {
		return nil
	}
	if n > len(s.records) {
		n = len(s.records)
	}

	idx := rand.Perm(len(s.records))[:n]
	out := make([]Record, 0, n)
	for _, i := range idx {
		out = append(out, s.records[i])
	}
	return out
}

func parseRows(rows [][]string) ([]Record, int) {
	out := make([]Record, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		rec, ok := parseRow(row)
		if !ok {
			dropped++
			continue
		}
		out = append(out, rec)
	}
	return out, dropped
}

func parseRow(row []string) (Record, bool) {
	if len(row) < 3 {
		return Record{}, false
	}
	rec := Record{
		Source: strings.TrimSpace(row[0]),
		Target: strings.TrimSpace(row[1]),
		Gloss:  strings.TrimSpace(row[2]),
	}
	if len(row) > 3 {
		rec.Example = strings.TrimSpace(row[3])
	}
	if len(row) > 4 {
		rec.Mnemonic = strings.TrimSpace(row[4])
	}
	if rec.Source == "" || rec.Target == "" || rec.Gloss == "" {
		return Record{}, false
	}
	return rec, true
}
