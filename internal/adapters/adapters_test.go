package adapters

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashcards-bot/internal/storage"
)

type fakeRows struct {
	rows [][]string
	err  error
}

func (f fakeRows) Rows(context.Context) ([][]string, error) {
	return f.rows, f.err
}

type fakeLister struct {
	docs []storage.WordDoc
	err  error
}

func (f fakeLister) ListWords(context.Context) ([]storage.WordDoc, error) {
	return f.docs, f.err
}

func TestSheetsSourcePassesRowsThrough(t *testing.T) {
	src := &sheetsSource{client: fakeRows{rows: [][]string{{"Hund", "пес", "dog"}}}}
	rows, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Hund", "пес", "dog"}}, rows)

	boom := errors.New("quota")
	_, err = (&sheetsSource{client: fakeRows{err: boom}}).FetchAll(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestFirestoreSourceFlattensDocs(t *testing.T) {
	src := &firestoreSource{store: fakeLister{docs: []storage.WordDoc{
		{Source: "Hund", Target: "пес", Gloss: "dog", Example: "Der Hund bellt."},
		{Source: "Katze", Target: "кіт", Gloss: "cat"},
	}}}

	rows, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Hund", "пес", "dog", "Der Hund bellt.", ""}, rows[0])
	assert.Len(t, rows[1], 5)
}

func TestReadCSVSkipsHeaderAndAllowsRaggedRows(t *testing.T) {
	input := "Німецькою,Українською,Англійською,Приклад,Мнемотехніка\n" +
		"Hund,пес,dog,\"Der Hund bellt, laut.\",Hound\n" +
		"Katze,кіт\n"

	rows, err := readCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Der Hund bellt, laut.", rows[0][3])
	assert.Equal(t, []string{"Katze", "кіт"}, rows[1])
}

func TestReadCSVEmptyFile(t *testing.T) {
	rows, err := readCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCSVSourceReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.csv")
	require.NoError(t, os.WriteFile(path, []byte("de,uk,en,ex,mn\nHund,пес,dog,,\n"), 0o600))

	rows, err := NewCSVSource(path).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Hund", "пес", "dog", "", ""}}, rows)

	_, err = NewCSVSource(filepath.Join(t.TempDir(), "missing.csv")).FetchAll(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}
