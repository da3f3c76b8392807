// Package eventlog provides the operator notification feed: an
// append-only, newest-first list of entries with optional per-entry
// auto-expiry and optional attached media references.
package eventlog

import (
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/acesco/vigia/internal/logging"
)

var feedLogger *slog.Logger
var feedLevelVar = new(slog.LevelVar)

func init() {
	var err error
	feedLogger, _, err = logging.NewFileLogger("logs/events.log", "eventlog", feedLevelVar)
	if err != nil {
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: feedLevelVar})
		feedLogger = slog.New(fbHandler).With("service", "eventlog")
	}
}

// Entry is a single feed entry. Entries with no expiry are persistent and
// stay until an explicit Clear.
type Entry struct {
	// ID is the unique identifier for the entry
	ID string `json:"id"`
	// Timestamp indicates when the entry was created
	Timestamp time.Time `json:"timestamp"`
	// Message is the operator-facing text
	Message string `json:"message"`
	// MediaRef is an optional playable reference (recorded video address)
	MediaRef string `json:"media_ref,omitempty"`
	// Persistent entries are never auto-removed
	Persistent bool `json:"persistent"`
}

// Log is the newest-first notification feed. Expiry is per-entry: each
// finite-duration entry gets its own removal timer, other entries are
// unaffected. Thread-safe.
type Log struct {
	mu      sync.RWMutex
	entries []*Entry
	timers  map[string]*time.Timer
	subs    map[string]chan Entry
	closed  bool
}

// NewLog creates an empty feed.
func NewLog() *Log {
	return &Log{
		timers: make(map[string]*time.Timer),
		subs:   make(map[string]chan Entry),
	}
}

// Subscribe returns a channel that receives every new entry, plus an
// unsubscribe function. A slow receiver drops entries rather than
// blocking the feed.
func (l *Log) Subscribe() (<-chan Entry, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Entry, 16)
	id := uuid.New().String()
	if l.closed {
		close(ch)
		return ch, func() {}
	}
	l.subs[id] = ch

	return ch, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if c, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(c)
		}
	}
}

func (l *Log) notifyLocked(e Entry) {
	for _, ch := range l.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Add prepends a new entry. A positive ttl schedules removal of exactly
// this entry after ttl elapses; ttl <= 0 makes the entry persistent.
func (l *Log) Add(message string, ttl time.Duration) *Entry {
	entry := &Entry{
		ID:         uuid.New().String(),
		Timestamp:  time.Now(),
		Message:    message,
		Persistent: ttl <= 0,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return entry
	}

	l.entries = append([]*Entry{entry}, l.entries...)
	if ttl > 0 {
		l.timers[entry.ID] = time.AfterFunc(ttl, func() {
			l.remove(entry.ID)
		})
	}

	l.notifyLocked(*entry)
	feedLogger.Info("event added", "message", message, "persistent", entry.Persistent)
	return entry
}

// AddVideo prepends a persistent entry carrying a playable media reference
// for a newly discovered recording.
func (l *Log) AddVideo(message, mediaRef string) *Entry {
	entry := &Entry{
		ID:         uuid.New().String(),
		Timestamp:  time.Now(),
		Message:    message,
		MediaRef:   mediaRef,
		Persistent: true,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return entry
	}

	l.entries = append([]*Entry{entry}, l.entries...)
	l.notifyLocked(*entry)
	feedLogger.Info("video event added", "media_ref", mediaRef)
	return entry
}

// remove deletes one entry by id, leaving the rest untouched.
func (l *Log) remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = slices.DeleteFunc(l.entries, func(e *Entry) bool {
		return e.ID == id
	})
	delete(l.timers, id)
}

// List returns a snapshot of the feed, newest first.
func (l *Log) List() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = *e
	}
	return out
}

// Len returns the number of entries currently in the feed.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear wipes the entire feed unconditionally and stops all pending
// expiry timers. Authorization for clearing is the caller's concern.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, timer := range l.timers {
		timer.Stop()
		delete(l.timers, id)
	}
	l.entries = nil
	feedLogger.Info("event feed cleared")
}

// Close stops all timers, closes all subscriber channels and rejects
// further additions.
func (l *Log) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}

	for id, timer := range l.timers {
		timer.Stop()
		delete(l.timers, id)
	}
	for id, ch := range l.subs {
		close(ch)
		delete(l.subs, id)
	}
	l.closed = true
}
