package watch

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrependNewestFirst(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var log []ChangeRecord
	for i := 0; i < 5; i++ {
		rec := ChangeRecord{
			TS:    base.Add(time.Duration(i) * time.Minute),
			Title: fmt.Sprintf("rec-%d", i),
		}
		log = Prepend(log, rec, 200)
		assert.Equal(t, rec.Title, log[0].Title, "new record must land at index 0")
	}

	require.Len(t, log, 5)
	for i := 1; i < len(log); i++ {
		assert.True(t, log[i].TS.Before(log[i-1].TS), "log must stay newest first")
	}
}

func TestPrependTruncatesOldest(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var log []ChangeRecord
	for i := 0; i < 200; i++ {
		log = Prepend(log, ChangeRecord{
			TS:    base.Add(time.Duration(i) * time.Second),
			Title: fmt.Sprintf("rec-%d", i),
		}, 200)
	}
	require.Len(t, log, 200)
	oldest := log[len(log)-1]

	log = Prepend(log, ChangeRecord{TS: base.Add(200 * time.Second), Title: "rec-200"}, 200)
	require.Len(t, log, 200, "log length must never exceed the cap")
	assert.Equal(t, "rec-200", log[0].Title)
	assert.NotContains(t, titles(log), oldest.Title, "the previously oldest record must be dropped")
	assert.Equal(t, "rec-1", log[len(log)-1].Title)
}

func TestPrependZeroCapKeepsAll(t *testing.T) {
	t.Parallel()

	var log []ChangeRecord
	for i := 0; i < 3; i++ {
		log = Prepend(log, ChangeRecord{Title: fmt.Sprintf("rec-%d", i)}, 0)
	}
	assert.Len(t, log, 3)
}

func titles(log []ChangeRecord) []string {
	out := make([]string, len(log))
	for i, rec := range log {
		out[i] = rec.Title
	}
	return out
}
