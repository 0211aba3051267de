package storage

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultWordsCollection = "words"

var ErrCollectionUnavailable = errors.New("word collection unavailable")

// Store reads vocabulary documents from one Firestore collection.
type Store struct {
	client     *firestore.Client
	collection string
}

func NewStore(client *firestore.Client, collection string) *Store {
	if collection == "" {
		collection = defaultWordsCollection
	}
	return &Store{
		client:     client,
		collection: collection,
	}
}

type WordDoc struct {
	Source   string `firestore:"source"`
	Target   string `firestore:"target"`
	Gloss    string `firestore:"gloss"`
	Example  string `firestore:"example,omitempty"`
	Mnemonic string `firestore:"mnemonic,omitempty"`
}

// ListWords returns every document in the collection, ordered by document id.
func (s *Store) ListWords(ctx context.Context) ([]WordDoc, error) {
	iter := s.client.Collection(s.collection).Documents(ctx)
	defer iter.Stop()

	out := make([]WordDoc, 0, 256)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, mapError(s.collection, err)
		}

		var item WordDoc
		if err := doc.DataTo(&item); err != nil {
			return nil, fmt.Errorf("decode word %s: %w", doc.Ref.ID, err)
		}
		out = append(out, item)
	}

	return out, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func mapError(collection string, err error) error {
	switch status.Code(err) {
	case codes.NotFound, codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %s: %v", ErrCollectionUnavailable, collection, err)
	default:
		return fmt.Errorf("query words: %w", err)
	}
}

// Row flattens the document into the positional word row layout.
func (d WordDoc) Row() []string {
	return []string{d.Source, d.Target, d.Gloss, d.Example, d.Mnemonic}
}
