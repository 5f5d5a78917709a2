package diagnostics

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultCapacity is the number of entries kept when no explicit
// capacity is configured.
const DefaultCapacity = 64

// Entry is a single recorded diagnostic event.
type Entry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Logger receives a mirror of every recorded entry. It matches the
// subset of the service logger the diagnostics log needs, so callers
// can pass any logger without this package importing one.
type Logger interface {
	Warn(msg string, args ...any)
}

// Log is a fixed-capacity ring of diagnostic entries. Once full, each
// new entry evicts the oldest one.
type Log struct {
	logger Logger

	mu   sync.Mutex
	buf  []Entry
	next int // index of the oldest entry once the ring is full
}

// New creates a diagnostic log holding at most capacity entries.
// A capacity of zero or less falls back to DefaultCapacity. The logger
// may be nil, in which case entries are only kept in memory.
func New(capacity int, logger Logger) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		logger: logger,
		buf:    make([]Entry, 0, capacity),
	}
}

// Record formats and stores a diagnostic entry, evicting the oldest
// entry when the ring is full. The message is mirrored to the logger.
func (l *Log) Record(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e := Entry{Time: time.Now().UTC(), Message: msg}

	l.mu.Lock()
	if len(l.buf) < cap(l.buf) {
		l.buf = append(l.buf, e)
	} else {
		l.buf[l.next] = e
		l.next = (l.next + 1) % len(l.buf)
	}
	l.mu.Unlock()

	if l.logger != nil {
		l.logger.Warn(msg)
	}
}

// Entries returns a copy of the recorded entries, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, len(l.buf))
	out = append(out, l.buf[l.next:]...)
	out = append(out, l.buf[:l.next]...)
	return out
}

// Len returns the number of entries currently held.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buf)
}

// Capacity returns the maximum number of entries the log retains.
func (l *Log) Capacity() int {
	return cap(l.buf)
}

// Dump renders the recorded entries as one timestamped line each,
// oldest first. Intended for text diagnostics output.
func (l *Log) Dump() string {
	entries := l.Entries()

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Time.Format(time.RFC3339Nano))
		b.WriteString(" ")
		b.WriteString(e.Message)
		b.WriteString("\n")
	}
	return b.String()
}
