package logbook

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeRecord(t *testing.T, root, rel, text string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func recordText(begin, topic, body string, media ...string) string {
	var b strings.Builder
	b.WriteString("BEGIN: " + begin + "\nEND: None\nTOPIC: " + topic + "\nAPPENDIX: None\n")
	for _, m := range media {
		b.WriteString("MEDIA: " + m + "\n")
	}
	b.WriteString("\n" + body + "\n")
	return b.String()
}

func fileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	t.Fatalf("Stat %s: %v", path, err)
	return false
}

func TestOpenSkipsCorruptEntry(t *testing.T) {
	root := t.TempDir()
	writeRecord(t, root, "2024/01/05-0.txt", recordText("2024-01-05", "Valid", "Hello"))
	writeRecord(t, root, "2024/01/06-0.txt", "END: None\nTOPIC: Truncated\n\nNo begin\n")

	var logBuf bytes.Buffer
	store, err := Open(root, Options{Logger: slog.New(slog.NewTextHandler(&logBuf, nil))})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if got := len(store.Entries()); got != 1 {
		t.Fatalf("entries = %d, want 1", got)
	}
	if store.Entries()[0].Topic() != "Valid" {
		t.Fatalf("topic = %q, want %q", store.Entries()[0].Topic(), "Valid")
	}
	if !strings.Contains(logBuf.String(), "skipping unparsable entry") {
		t.Fatalf("missing skip warning in log output: %q", logBuf.String())
	}
}

func TestOpenSortsNewestFirst(t *testing.T) {
	root := t.TempDir()
	writeRecord(t, root, "2023/06/10-0.txt", recordText("2023-06-10", "Older", "x"))
	writeRecord(t, root, "2024/01/05-1.txt", recordText("2024-01-05", "Second", "x"))
	writeRecord(t, root, "2024/01/05-0.txt", recordText("2024-01-05", "First", "x"))

	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var topics []string
	for _, e := range store.Entries() {
		topics = append(topics, e.Topic())
	}
	want := []string{"First", "Second", "Older"}
	for i := range want {
		if topics[i] != want[i] {
			t.Fatalf("topics = %v, want %v", topics, want)
		}
	}
}

func TestByDateAndByOrdinal(t *testing.T) {
	root := t.TempDir()
	writeRecord(t, root, "2024/01/05-0.txt", recordText("2024-01-05", "A", "x"))
	writeRecord(t, root, "2024/01/05-1.txt", recordText("2024-01-05", "B", "x"))
	writeRecord(t, root, "2024/02/01-0.txt", recordText("2024-02-01", "C", "x"))

	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	day := time.Date(2024, 1, 5, 15, 30, 0, 0, time.Local)
	if got := len(store.ByDate(day)); got != 2 {
		t.Fatalf("ByDate = %d entries, want 2", got)
	}

	entry, err := store.ByOrdinal(0)
	if err != nil {
		t.Fatalf("ByOrdinal(0): %v", err)
	}
	if entry.Topic() != "C" {
		t.Fatalf("ByOrdinal(0).Topic = %q, want %q", entry.Topic(), "C")
	}
	if _, err := store.ByOrdinal(3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ByOrdinal(3) error = %v, want ErrNotFound", err)
	}
	if _, err := store.ByOrdinal(-1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ByOrdinal(-1) error = %v, want ErrNotFound", err)
	}
}

func TestNewEntryStaysOffDiskUntilReload(t *testing.T) {
	root := t.TempDir()
	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entry := store.NewEntry(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if entry.Topic() != DefaultPlaceholderTopic {
		t.Fatalf("topic = %q, want placeholder", entry.Topic())
	}
	if entry.IsDirty() {
		t.Fatal("fresh entry reported dirty before any mutation")
	}

	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if fileExists(t, filepath.Join(root, "2024", "01", "05-0.txt")) {
		t.Fatal("commit of a pristine new entry wrote a file")
	}
}

func TestCommitAllocatesDistinctIndices(t *testing.T) {
	root := t.TempDir()
	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	first := store.NewEntry(day)
	second := store.NewEntry(day)
	if err := first.Reload(recordText("2024-01-05", "First", "a")); err != nil {
		t.Fatalf("Reload first: %v", err)
	}
	if err := second.Reload(recordText("2024-01-05", "Second", "b")); err != nil {
		t.Fatalf("Reload second: %v", err)
	}

	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if !fileExists(t, filepath.Join(root, "2024", "01", "05-0.txt")) {
		t.Fatal("missing 05-0.txt")
	}
	if !fileExists(t, filepath.Join(root, "2024", "01", "05-1.txt")) {
		t.Fatal("missing 05-1.txt")
	}
	if first.SequenceIndex() != 0 || second.SequenceIndex() != 1 {
		t.Fatalf("indices = %d, %d, want 0, 1", first.SequenceIndex(), second.SequenceIndex())
	}
}

func TestIndexAllocationFillsGaps(t *testing.T) {
	root := t.TempDir()
	writeRecord(t, root, "2024/01/05-0.txt", recordText("2024-01-05", "Existing", "x"))
	writeRecord(t, root, "2024/01/05-2.txt", recordText("2024-01-05", "Gap", "x"))

	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	entry := store.NewEntry(day)
	if err := entry.Reload(recordText("2024-01-05", "Filler", "x")); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if entry.SequenceIndex() != 1 {
		t.Fatalf("index = %d, want 1", entry.SequenceIndex())
	}

	next := store.NewEntry(day)
	if err := next.Reload(recordText("2024-01-05", "After gap", "x")); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if next.SequenceIndex() != 3 {
		t.Fatalf("index = %d, want 3", next.SequenceIndex())
	}
}

func TestSaveKeepsPathInvariant(t *testing.T) {
	root := t.TempDir()
	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entry := store.NewEntry(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err := entry.Reload(recordText("2024-01-05", "Check", "x")); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	date, index, err := splitRecordPath(entry.SourcePath())
	if err != nil {
		t.Fatalf("splitRecordPath(%q): %v", entry.SourcePath(), err)
	}
	if !date.Equal(entry.Begin()) || index != entry.SequenceIndex() {
		t.Fatalf("path decodes to (%s, %d), want (%s, %d)",
			date, index, entry.Begin(), entry.SequenceIndex())
	}
	if entry.IsDirty() {
		t.Fatal("entry still dirty after successful save")
	}
}

func TestAttachAndCommitWritesMedia(t *testing.T) {
	root := t.TempDir()
	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entry := store.NewEntry(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err := entry.Reload(recordText("2024-01-05", "Media", "x")); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := entry.Attach("photo.jpg", []byte("jpegbytes")); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := entry.Attach("photo.jpg", nil); err == nil {
		t.Fatal("duplicate Attach succeeded")
	}

	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	mediaPath := filepath.Join(root, "media", "2024", "01", "05", "0", "photo.jpg")
	data, err := os.ReadFile(mediaPath)
	if err != nil {
		t.Fatalf("ReadFile media: %v", err)
	}
	if string(data) != "jpegbytes" {
		t.Fatalf("media contents = %q, want %q", data, "jpegbytes")
	}

	raw, err := os.ReadFile(filepath.Join(root, "2024", "01", "05-0.txt"))
	if err != nil {
		t.Fatalf("ReadFile record: %v", err)
	}
	if !strings.Contains(string(raw), "MEDIA: photo.jpg") {
		t.Fatalf("record misses media header: %q", raw)
	}
}

func TestDetachPendingAttachmentWritesNothing(t *testing.T) {
	root := t.TempDir()
	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entry := store.NewEntry(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err := entry.Reload(recordText("2024-01-05", "Media", "x")); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := entry.Attach("photo.jpg", []byte("bytes")); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := entry.DetachByOrdinal(0); err != nil {
		t.Fatalf("DetachByOrdinal: %v", err)
	}
	if err := entry.DetachByOrdinal(0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DetachByOrdinal on empty list = %v, want ErrNotFound", err)
	}

	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if fileExists(t, filepath.Join(root, "media", "2024", "01", "05", "0", "photo.jpg")) {
		t.Fatal("detached pending attachment was written anyway")
	}
}

func TestReloadRejectsDirectMediaAddition(t *testing.T) {
	root := t.TempDir()
	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entry := store.NewEntry(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err := entry.Reload(recordText("2024-01-05", "Before", "x")); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	err = entry.Reload(recordText("2024-01-05", "After", "x", "sneaky.jpg"))
	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("error = %v, want FormatError", err)
	}
	if ferr.Reason != "direct adding of media is not supported" {
		t.Fatalf("reason = %q", ferr.Reason)
	}
	if entry.Topic() != "Before" {
		t.Fatalf("rejected reload mutated entry: topic = %q", entry.Topic())
	}
}

func TestReloadRemovingMediaLineDeletesFileOnSave(t *testing.T) {
	root := t.TempDir()
	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entry := store.NewEntry(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err := entry.Reload(recordText("2024-01-05", "Media", "x")); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := entry.Attach("photo.jpg", []byte("bytes")); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	mediaPath := filepath.Join(root, "media", "2024", "01", "05", "0", "photo.jpg")
	if !fileExists(t, mediaPath) {
		t.Fatal("attachment missing after first commit")
	}

	if err := entry.Reload(recordText("2024-01-05", "Media", "x")); err != nil {
		t.Fatalf("Reload without media line: %v", err)
	}
	if !fileExists(t, mediaPath) {
		t.Fatal("attachment deleted before commit")
	}

	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if fileExists(t, mediaPath) {
		t.Fatal("attachment survived the commit")
	}
	if fileExists(t, filepath.Join(root, "media", "2024", "01", "05", "0")) {
		t.Fatal("empty media directory not pruned")
	}
}

func TestRelocationMovesRecordAndMedia(t *testing.T) {
	root := t.TempDir()
	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entry := store.NewEntry(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err := entry.Reload(recordText("2024-01-05", "Move me", "x")); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := entry.Attach("photo.jpg", []byte("bytes")); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := entry.Reload(recordText("2024-02-10", "Move me", "x", "photo.jpg")); err != nil {
		t.Fatalf("Reload with new date: %v", err)
	}
	if !entry.IsDirty() {
		t.Fatal("date-edited entry not dirty")
	}
	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if fileExists(t, filepath.Join(root, "2024", "01", "05-0.txt")) {
		t.Fatal("old record file still present")
	}
	if fileExists(t, filepath.Join(root, "media", "2024", "01", "05", "0")) {
		t.Fatal("old media directory still present")
	}
	if !fileExists(t, filepath.Join(root, "2024", "02", "10-0.txt")) {
		t.Fatal("relocated record file missing")
	}
	data, err := os.ReadFile(filepath.Join(root, "media", "2024", "02", "10", "0", "photo.jpg"))
	if err != nil {
		t.Fatalf("ReadFile relocated media: %v", err)
	}
	if string(data) != "bytes" {
		t.Fatalf("relocated media = %q, want %q", data, "bytes")
	}
}

func TestDirtyImpliedByDateMismatch(t *testing.T) {
	root := t.TempDir()
	// On-disk location says January 5th, content says January 6th.
	writeRecord(t, root, "2024/01/05-0.txt", recordText("2024-01-06", "Drifted", "x"))

	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	entry, err := store.ByOrdinal(0)
	if err != nil {
		t.Fatalf("ByOrdinal: %v", err)
	}
	if !entry.IsDirty() {
		t.Fatal("date mismatch against source path did not imply dirty")
	}

	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if fileExists(t, filepath.Join(root, "2024", "01", "05-0.txt")) {
		t.Fatal("stale record left behind")
	}
	if !fileExists(t, filepath.Join(root, "2024", "01", "06-0.txt")) {
		t.Fatal("record not relocated to its begin date")
	}
}

func TestRemoveEntryDeletesRecordAndMedia(t *testing.T) {
	root := t.TempDir()
	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entry := store.NewEntry(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err := entry.Reload(recordText("2024-01-05", "Doomed", "x")); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := entry.Attach("photo.jpg", []byte("bytes")); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	entry.MarkForRemoval()
	if !entry.IsDirty() {
		t.Fatal("removal-flagged entry not dirty")
	}
	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if fileExists(t, filepath.Join(root, "2024", "01", "05-0.txt")) {
		t.Fatal("record file still present")
	}
	if fileExists(t, filepath.Join(root, "media", "2024", "01", "05", "0")) {
		t.Fatal("media directory still present")
	}
	if entry.IsDirty() {
		t.Fatal("removed entry still dirty")
	}
}

func TestRemoveNeverPersistedEntryIsNoop(t *testing.T) {
	root := t.TempDir()
	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entry := store.NewEntry(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	entry.MarkForRemoval()
	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if fileExists(t, filepath.Join(root, "2024")) {
		t.Fatal("removal of an unsaved entry touched the disk")
	}
}

func TestCommitContinuesAfterEntryFailure(t *testing.T) {
	root := t.TempDir()
	store, err := Open(root, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	broken := store.NewEntry(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err := broken.Reload(recordText("2024-01-05", "Broken", "x")); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := broken.Attach("photo.jpg", []byte("bytes")); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := store.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// Sabotage the upcoming relocation: the attachment it must move is gone.
	if err := os.Remove(filepath.Join(root, "media", "2024", "01", "05", "0", "photo.jpg")); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := broken.Reload(recordText("2024-03-01", "Broken", "x", "photo.jpg")); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	healthy := store.NewEntry(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC))
	if err := healthy.Reload(recordText("2024-01-09", "Healthy", "x")); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	err = store.Commit()
	if err == nil {
		t.Fatal("Commit succeeded despite missing attachment")
	}
	if !strings.Contains(err.Error(), "2024-03-01 Broken") {
		t.Fatalf("commit error does not name the failed entry: %v", err)
	}
	var ioErr *IOFailure
	if !errors.As(err, &ioErr) {
		t.Fatalf("commit error = %v, want wrapped IOFailure", err)
	}

	if !fileExists(t, filepath.Join(root, "2024", "01", "09-0.txt")) {
		t.Fatal("healthy entry was not saved")
	}
	if !broken.IsDirty() {
		t.Fatal("failed entry lost its dirty flag")
	}
}

type fakeScanner struct {
	paths []string
}

func (f fakeScanner) Scan(string) ([]string, error) {
	return f.paths, nil
}

func TestOpenUsesInjectedScanner(t *testing.T) {
	root := t.TempDir()
	writeRecord(t, root, "2024/01/05-0.txt", recordText("2024-01-05", "Seen", "x"))
	writeRecord(t, root, "2024/01/06-0.txt", recordText("2024-01-06", "Hidden", "x"))

	store, err := Open(root, Options{Scanner: fakeScanner{paths: []string{"2024/01/05-0.txt"}}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := len(store.Entries()); got != 1 {
		t.Fatalf("entries = %d, want 1", got)
	}
	if store.Entries()[0].Topic() != "Seen" {
		t.Fatalf("topic = %q, want %q", store.Entries()[0].Topic(), "Seen")
	}
}
