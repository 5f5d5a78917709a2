package diagnostics

import (
	"strings"
	"sync"
	"testing"
)

type captureLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureLogger) Warn(msg string, _ ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func TestLogRecordAndEntries(t *testing.T) {
	l := New(4, nil)

	l.Record("first")
	l.Record("second %d", 2)
	l.Record("third")

	entries := l.Entries()
	if len(entries) != 3 {
		t.Fatalf("Entries() returned %d entries, want 3", len(entries))
	}

	want := []string{"first", "second 2", "third"}
	for i, e := range entries {
		if e.Message != want[i] {
			t.Errorf("entry %d message = %q, want %q", i, e.Message, want[i])
		}
		if e.Time.IsZero() {
			t.Errorf("entry %d has zero timestamp", i)
		}
	}

	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
	if l.Capacity() != 4 {
		t.Errorf("Capacity() = %d, want 4", l.Capacity())
	}
}

func TestLogEvictsOldestWhenFull(t *testing.T) {
	l := New(3, nil)

	for i := 1; i <= 5; i++ {
		l.Record("event %d", i)
	}

	entries := l.Entries()
	if len(entries) != 3 {
		t.Fatalf("Entries() returned %d entries, want 3", len(entries))
	}

	want := []string{"event 3", "event 4", "event 5"}
	for i, e := range entries {
		if e.Message != want[i] {
			t.Errorf("entry %d message = %q, want %q", i, e.Message, want[i])
		}
	}
}

func TestLogMirrorsToLogger(t *testing.T) {
	logger := &captureLogger{}
	l := New(2, logger)

	l.Record("zone %d lost", 1)
	l.Record("zone %d recovered", 1)
	l.Record("reload requested")

	// Every record is mirrored, including ones later evicted from the ring.
	if len(logger.msgs) != 3 {
		t.Fatalf("logger received %d messages, want 3", len(logger.msgs))
	}
	if logger.msgs[0] != "zone 1 lost" {
		t.Errorf("first mirrored message = %q, want %q", logger.msgs[0], "zone 1 lost")
	}
}

func TestLogDefaultCapacity(t *testing.T) {
	for _, capacity := range []int{0, -5} {
		l := New(capacity, nil)
		if l.Capacity() != DefaultCapacity {
			t.Errorf("New(%d) capacity = %d, want %d", capacity, l.Capacity(), DefaultCapacity)
		}
	}
}

func TestLogDump(t *testing.T) {
	l := New(4, nil)
	l.Record("load started")
	l.Record("load complete")

	dump := l.Dump()
	lines := strings.Split(strings.TrimRight(dump, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Dump() produced %d lines, want 2:\n%s", len(lines), dump)
	}
	if !strings.HasSuffix(lines[0], "load started") {
		t.Errorf("first dump line = %q, want suffix %q", lines[0], "load started")
	}
	if !strings.HasSuffix(lines[1], "load complete") {
		t.Errorf("second dump line = %q, want suffix %q", lines[1], "load complete")
	}
}

func TestLogConcurrentRecord(t *testing.T) {
	l := New(16, nil)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.Record("goroutine %d event %d", g, i)
			}
		}(g)
	}
	wg.Wait()

	if l.Len() != 16 {
		t.Errorf("Len() = %d after concurrent records, want 16", l.Len())
	}
	if got := len(l.Entries()); got != 16 {
		t.Errorf("Entries() returned %d entries, want 16", got)
	}
}
