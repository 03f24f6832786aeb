package perf

import (
	"testing"
	"time"
)

func TestRecordAndSnapshot(t *testing.T) {
	restore := EnableForTest()
	defer restore()

	Record("b", 50*time.Millisecond)
	Record("a", 10*time.Millisecond)
	Record("b", 150*time.Millisecond)
	Count("z", 2)
	Count("y", 0)

	stats, counters := Snapshot()
	if len(stats) != 2 {
		t.Fatalf("expected 2 stats, got %d", len(stats))
	}
	if stats[0].Name != "a" || stats[1].Name != "b" {
		t.Fatalf("expected sorted names, got %q %q", stats[0].Name, stats[1].Name)
	}
	b := stats[1]
	if b.Count != 2 || b.Avg != 100*time.Millisecond {
		t.Fatalf("unexpected b stats: %+v", b)
	}
	if b.Min != 50*time.Millisecond || b.Max != 150*time.Millisecond || b.P95 != 150*time.Millisecond {
		t.Fatalf("unexpected b bounds: %+v", b)
	}
	if len(counters) != 1 || counters[0].Name != "z" || counters[0].Value != 2 {
		t.Fatalf("unexpected counters: %+v", counters)
	}

	stats, counters = Snapshot()
	if len(stats) != 0 || len(counters) != 0 {
		t.Fatalf("expected reset after snapshot, got %d stats %d counters", len(stats), len(counters))
	}
}

func TestDisabledIsNoop(t *testing.T) {
	restore := EnableForTest()
	enabled.Store(false)
	defer restore()

	Time("render")()
	Count("lines", 5)
	stats, counters := Snapshot()
	if len(stats) != 0 || len(counters) != 0 {
		t.Fatalf("expected nothing recorded while disabled")
	}
}

func TestP95WrapsSampleWindow(t *testing.T) {
	restore := EnableForTest()
	defer restore()

	for i := 1; i <= sampleWindow*2; i++ {
		Record("wrap", time.Duration(i)*time.Microsecond)
	}
	stats, _ := Snapshot()
	if len(stats) != 1 {
		t.Fatalf("expected one stat, got %d", len(stats))
	}
	if stats[0].Count != int64(sampleWindow*2) {
		t.Fatalf("expected count %d, got %d", sampleWindow*2, stats[0].Count)
	}
	if stats[0].P95 <= time.Duration(sampleWindow)*time.Microsecond {
		t.Fatalf("expected p95 from the most recent window, got %s", stats[0].P95)
	}
}

func TestEnvParsing(t *testing.T) {
	cases := map[string]bool{"": false, "0": false, "no": false, "FALSE": false, "1": true, "yes": true}
	for raw, want := range cases {
		if got := envEnabled(raw); got != want {
			t.Errorf("envEnabled(%q) = %v, want %v", raw, got, want)
		}
	}
	if got := envInterval("250"); got != 250*time.Millisecond {
		t.Fatalf("envInterval(250) = %s", got)
	}
	if got := envInterval("bogus"); got != defaultIntervalMs*time.Millisecond {
		t.Fatalf("envInterval(bogus) = %s", got)
	}
}
