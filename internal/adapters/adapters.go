package adapters

import (
	"context"

	"flashcards-bot/internal/sheets"
	"flashcards-bot/internal/storage"
	"flashcards-bot/internal/words"
)

type rowReader interface {
	Rows(ctx context.Context) ([][]string, error)
}

func NewSheetsSource(client *sheets.Client) words.Source {
	return &sheetsSource{client: client}
}

type sheetsSource struct {
	client rowReader
}

func (s *sheetsSource) FetchAll(ctx context.Context) ([][]string, error) {
	return s.client.Rows(ctx)
}

type wordLister interface {
	ListWords(ctx context.Context) ([]storage.WordDoc, error)
}

func NewFirestoreSource(store *storage.Store) words.Source {
	return &firestoreSource{store: store}
}

type firestoreSource struct {
	store wordLister
}

func (s *firestoreSource) FetchAll(ctx context.Context) ([][]string, error) {
	docs, err := s.store.ListWords(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, doc.Row())
	}
	return rows, nil
}
