package words

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	rows  [][]string
	errs  []error
	calls int
}

func (f *fakeSource) FetchAll(_ context.Context) ([][]string, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.rows, nil
}

func noSleepPolicy(attempts int, slept *[]time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		BaseDelay:   100 * time.Millisecond,
		sleep: func(_ context.Context, d time.Duration) error {
			if slept != nil {
				*slept = append(*slept, d)
			}
			return nil
		},
	}
}

func newTestStore(src Source, policy RetryPolicy) *Store {
	return NewStore(log.New(bytes.NewBuffer(nil), "", 0), src, policy)
}

func sampleRows(n int) [][]string {
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("Wort%d", i),
			fmt.Sprintf("слово%d", i),
			fmt.Sprintf("word%d", i),
			"Beispiel",
			"",
		})
	}
	return rows
}

func TestLoadReplacesCollectionAndDropsIncompleteRows(t *testing.T) {
	rows := append(sampleRows(3),
		[]string{"Haus", "", "house", "", ""},
		[]string{"only", "two"},
		[]string{"  Baum ", " дерево", "tree "},
	)
	store := newTestStore(&fakeSource{rows: rows}, noSleepPolicy(3, nil))

	count, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, 4, store.Len())

	all := store.All()
	last := all[len(all)-1]
	assert.Equal(t, Record{Source: "Baum", Target: "дерево", Gloss: "tree"}, last)
}

func TestLoadFailureKeepsPreviousCollection(t *testing.T) {
	src := &fakeSource{rows: sampleRows(5)}
	store := newTestStore(src, noSleepPolicy(3, nil))

	_, err := store.Load(context.Background())
	require.NoError(t, err)

	src.errs = []error{errors.New("auth"), errors.New("auth"), errors.New("auth")}
	_, err = store.Load(context.Background())

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 3, loadErr.Attempts)
	assert.Equal(t, 5, store.Len())
}

func TestLoadRetriesWithExponentialBackoff(t *testing.T) {
	var slept []time.Duration
	src := &fakeSource{
		rows: sampleRows(2),
		errs: []error{errors.New("timeout"), errors.New("timeout")},
	}
	store := newTestStore(src, noSleepPolicy(3, &slept))

	count, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 3, src.calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, slept)
}

func TestLoadEmptyAndMalformedSources(t *testing.T) {
	store := newTestStore(&fakeSource{rows: nil}, noSleepPolicy(3, nil))
	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, ErrEmptySource)

	store = newTestStore(&fakeSource{rows: [][]string{{"a"}, {"", "b", "c"}}}, noSleepPolicy(3, nil))
	_, err = store.Load(context.Background())
	require.ErrorIs(t, err, ErrMalformedSource)
	assert.Equal(t, 0, store.Len())
}

func TestSampleOneOnEmptyStore(t *testing.T) {
	store := newTestStore(&fakeSource{}, noSleepPolicy(1, nil))
	_, ok := store.SampleOne()
	assert.False(t, ok)
	assert.Empty(t, store.SampleMany(3))
}

func TestSampleManyReturnsDistinctRecords(t *testing.T) {
	store := newTestStore(&fakeSource{rows: sampleRows(7)}, noSleepPolicy(1, nil))
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	for _, n := range []int{1, 3, 7, 10} {
		for i := 0; i < 50; i++ {
			got := store.SampleMany(n)
			want := n
			if want > 7 {
				want = 7
			}
			require.Len(t, got, want)

			seen := make(map[string]struct{}, len(got))
			for _, rec := range got {
				_, dup := seen[rec.Source]
				require.False(t, dup, "duplicate record %q", rec.Source)
				seen[rec.Source] = struct{}{}
			}
		}
	}
}

func TestRetryPolicyStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour}
	calls := 0
	attempts, err := policy.Do(ctx, func(context.Context, int) error {
		calls++
		return errors.New("down")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}
