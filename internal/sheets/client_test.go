package sheets

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "sheet-id", "A2:E",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestRowsStringifiesCells(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"range": "Sheet1!A2:E4",
			"majorDimension": "ROWS",
			"values": [
				["Hund", "пес", "dog", "Der Hund bellt.", "Hound"],
				["Katze", "кіт", "cat"],
				["Zahl", 42, "number"]
			]
		}`))
	})

	rows, err := c.Rows(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.Contains(gotPath, "sheet-id/values/A2:E"), gotPath)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Hund", "пес", "dog", "Der Hund bellt.", "Hound"}, rows[0])
	assert.Equal(t, []string{"Katze", "кіт", "cat"}, rows[1])
	assert.Equal(t, "42", rows[2][1])
}

func TestRowsMapsHTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "not found", status: http.StatusNotFound, want: ErrSpreadsheetNotFound},
		{name: "forbidden", status: http.StatusForbidden, want: ErrAccessDenied},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"nope"}}`, tc.status)
			})

			_, err := c.Rows(context.Background())
			require.ErrorIs(t, err, tc.want)
		})
	}
}
