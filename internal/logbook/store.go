package logbook

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// DefaultPlaceholderTopic seeds the TOPIC header of freshly created entries
// until the user supplies a real one.
const DefaultPlaceholderTopic = "Insert topic here"

// Options tune how a Store is opened. Zero values pick the OS scanner, a
// discarding logger, and the default placeholder topic.
type Options struct {
	Scanner          DirScanner
	Logger           *slog.Logger
	PlaceholderTopic string
}

// Store owns one date-partitioned directory tree of log entries. The whole
// tree is scanned once at construction and held in memory; exactly one Store
// instance may mutate a given root at a time. External mutation (a git pull,
// another process) is only observed by opening a fresh Store.
type Store struct {
	root    string
	scanner DirScanner
	logger  *slog.Logger
	topic   string
	entries []*Entry
}

// Open scans root and loads every parsable entry. A record that fails to
// parse is logged and skipped so one corrupt file cannot take down the whole
// collection.
func Open(root string, opts Options) (*Store, error) {
	scanner := opts.Scanner
	if scanner == nil {
		scanner = OSScanner{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	topic := opts.PlaceholderTopic
	if topic == "" {
		topic = DefaultPlaceholderTopic
	}

	s := &Store{
		root:    root,
		scanner: scanner,
		logger:  logger,
		topic:   topic,
	}

	paths, err := scanner.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	for _, rel := range paths {
		date, seq, err := splitRecordPath(rel)
		if err != nil {
			s.logger.Warn("skipping entry with malformed path", "path", rel, "error", err)
			continue
		}

		raw, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			s.logger.Warn("skipping unreadable entry", "path", rel, "error", err)
			continue
		}

		doc, err := parseDocument(string(raw))
		if err != nil {
			s.logger.Warn("skipping unparsable entry", "path", rel, "error", err)
			continue
		}

		s.entries = append(s.entries, &Entry{
			doc:        doc,
			store:      s,
			seq:        seq,
			sourcePath: rel,
			sourceDate: date,
			state:      statePersisted,
		})
	}

	// Newest first, stable within a day by sequence index. Presentation
	// order only; identity never depends on it.
	sort.SliceStable(s.entries, func(i, j int) bool {
		a, b := s.entries[i], s.entries[j]
		if !a.doc.begin.Equal(b.doc.begin) {
			return a.doc.begin.After(b.doc.begin)
		}
		return a.seq < b.seq
	})

	return s, nil
}

// Root returns the directory the store was opened on.
func (s *Store) Root() string {
	return s.root
}

// Entries returns a read-only view of the collection, sorted newest first.
// Entries created after Open appear at the end.
func (s *Store) Entries() []*Entry {
	entries := make([]*Entry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

// ByDate returns all entries whose begin date falls on the given day.
func (s *Store) ByDate(date time.Time) []*Entry {
	day := dateOnly(date)
	var entries []*Entry
	for _, e := range s.entries {
		if e.doc.begin.Equal(day) {
			entries = append(entries, e)
		}
	}
	return entries
}

// ByOrdinal returns the entry at position i in the collection.
func (s *Store) ByOrdinal(i int) (*Entry, error) {
	if i < 0 || i >= len(s.entries) {
		return nil, ErrNotFound
	}
	return s.entries[i], nil
}

// NewEntry appends a blank entry for the given date to the in-memory
// collection. Nothing touches the disk until the entry is reloaded with real
// content and committed.
func (s *Store) NewEntry(date time.Time) *Entry {
	e := &Entry{
		doc: document{
			begin: dateOnly(date),
			topic: s.topic,
		},
		store: s,
		state: stateNew,
	}
	s.entries = append(s.entries, e)
	return e
}

// Template returns human-editable starter text for a new entry at the given
// date, using the store's placeholder topic.
func (s *Store) Template(date time.Time) string {
	return Template(dateOnly(date), s.topic)
}

// Commit saves every dirty entry. One entry's failure never prevents
// attempting the rest; the joined error names each entry that failed.
func (s *Store) Commit() error {
	var failures []error
	for _, e := range s.entries {
		if !e.IsDirty() {
			continue
		}
		if err := e.save(); err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", e.SummaryLine(), err))
		}
	}
	return errors.Join(failures...)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
