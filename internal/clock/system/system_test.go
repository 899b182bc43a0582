package system

import (
	"testing"
	"time"
)

// TestClockNowUTC ensures timestamps come back in UTC. Snapshot day names
// and change record timestamps both derive from this clock, so a local-zone
// time would split one change across two archive days.
func TestClockNowUTC(t *testing.T) {
	t.Parallel()

	got := New().Now()
	if got.Location() != time.UTC {
		t.Fatalf("Now() location = %v, want UTC", got.Location())
	}
	if d := time.Since(got); d < -time.Second || d > time.Minute {
		t.Fatalf("Now() = %v, too far from wall clock", got)
	}
}

func TestClockNowAdvances(t *testing.T) {
	t.Parallel()

	clk := New()
	first := clk.Now()
	second := clk.Now()
	if second.Before(first) {
		t.Fatalf("Now() went backwards: %v then %v", first, second)
	}
}
