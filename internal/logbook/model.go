package logbook

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// entryState tracks where an entry sits in its save lifecycle:
// New -> Persisted -> {Relocating -> Persisted | Removed}. Relocation is
// resolved inside save by dropping back to New after the old files are gone.
type entryState uint8

const (
	stateNew       entryState = iota // never written to disk
	statePersisted                   // record file exists at sourcePath
	stateRemoved                     // record and media deleted, terminal
)

type pendingMedium struct {
	filename string
	data     []byte
}

// Entry is one dated log record held by a Store. Its durable identity is the
// pair (begin date, sequence index), which determines the file path.
type Entry struct {
	doc document

	store *Store

	seq        int
	sourcePath string    // relative to the store root, empty while unsaved
	sourceDate time.Time // date encoded in sourcePath
	state      entryState

	modified bool // explicit mutation flag, set by Reload/Attach/Detach
	removal  bool

	addQueue    []pendingMedium
	removeQueue []string
}

func (e *Entry) Begin() time.Time   { return e.doc.begin }
func (e *Entry) End() time.Time     { return e.doc.end }
func (e *Entry) Topic() string      { return e.doc.topic }
func (e *Entry) Appendix() string   { return e.doc.appendix }
func (e *Entry) Body() string       { return e.doc.body }
func (e *Entry) SequenceIndex() int { return e.seq }
func (e *Entry) SourcePath() string { return e.sourcePath }

// IsRemoved reports whether the entry's files have been deleted by a save.
// Removed entries stay in the collection until the store is reopened.
func (e *Entry) IsRemoved() bool {
	return e.state == stateRemoved
}

// Media returns the attachment list in insertion order.
func (e *Entry) Media() []Medium {
	media := make([]Medium, len(e.doc.media))
	copy(media, e.doc.media)
	return media
}

// AttachmentPath resolves the absolute path of a persisted attachment.
func (e *Entry) AttachmentPath(filename string) (string, error) {
	if e.state != statePersisted || !hasFilename(e.doc.media, filename) {
		return "", ErrNotFound
	}
	return filepath.Join(e.store.root, mediaDir(e.sourceDate, e.seq), filename), nil
}

// CurrentText renders the entry in its on-disk text form.
func (e *Entry) CurrentText() string {
	return serializeDocument(e.doc)
}

// SummaryLine gives the one-line date-plus-topic form used in listings and
// commit messages.
func (e *Entry) SummaryLine() string {
	return formatDate(e.doc.begin) + " " + e.doc.topic
}

// IsDirty reports whether the entry has unsaved changes. A begin date that
// differs from the date encoded in the on-disk path counts as dirty even
// without an explicit mutation flag.
func (e *Entry) IsDirty() bool {
	switch {
	case e.state == stateRemoved:
		return false
	case e.removal || e.modified:
		return true
	case e.state == statePersisted && !e.doc.begin.Equal(e.sourceDate):
		return true
	}
	return false
}

// Reload re-parses replacement text and swaps in all logical fields. The
// attachment list may only shrink this way: a MEDIA line that is not already
// part of the entry has no binary payload and must go through Attach instead.
// Removed lines queue the corresponding file for deletion at the next save.
func (e *Entry) Reload(text string) error {
	doc, err := parseDocument(text)
	if err != nil {
		return err
	}

	added, removed := diffMedia(e.doc.media, doc.media)
	if len(added) > 0 {
		return formatErr("direct adding of media is not supported")
	}
	for _, name := range removed {
		e.queueRemoval(name)
	}

	e.doc = doc
	e.modified = true
	return nil
}

// Attach introduces a new attachment with its payload. The file is written
// at the next save.
func (e *Entry) Attach(filename string, data []byte) error {
	if hasFilename(e.doc.media, filename) {
		return formatErr("duplicate media filename")
	}
	e.doc.media = append(e.doc.media, Medium{Filename: filename})
	e.addQueue = append(e.addQueue, pendingMedium{filename: filename, data: data})
	e.modified = true
	return nil
}

// DetachByOrdinal drops the i-th attachment and queues its file for deletion.
func (e *Entry) DetachByOrdinal(i int) error {
	if i < 0 || i >= len(e.doc.media) {
		return ErrNotFound
	}
	name := e.doc.media[i].Filename
	e.doc.media = append(e.doc.media[:i], e.doc.media[i+1:]...)
	e.queueRemoval(name)
	e.modified = true
	return nil
}

// MarkForRemoval flags the entry so the next save deletes its record file and
// all attachments. The caller should discard the entry afterwards.
func (e *Entry) MarkForRemoval() {
	e.removal = true
}

// queueRemoval schedules a filename for physical deletion. An attachment that
// was never saved only needs its pending payload dropped.
func (e *Entry) queueRemoval(name string) {
	for i, pending := range e.addQueue {
		if pending.filename == name {
			e.addQueue = append(e.addQueue[:i], e.addQueue[i+1:]...)
			return
		}
	}
	e.removeQueue = append(e.removeQueue, name)
}

func (e *Entry) pendingAdd(name string) bool {
	for _, pending := range e.addQueue {
		if pending.filename == name {
			return true
		}
	}
	return false
}

// save applies the entry's pending changes to disk. A date edit is resolved
// as delete-old/allocate-new before the regular write path runs, otherwise
// stale files under the previous date would accumulate. On failure the dirty
// flags stay set so a retried commit picks the entry up again.
func (e *Entry) save() error {
	if e.removal {
		return e.saveRemoval()
	}

	if e.state == statePersisted && !e.doc.begin.Equal(e.sourceDate) {
		if err := e.relocate(); err != nil {
			return err
		}
	}

	if e.state == stateNew {
		if err := e.allocatePath(); err != nil {
			return err
		}
	}

	path := filepath.Join(e.store.root, e.sourcePath)
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return ioFailure(path, err)
	}
	if err := os.WriteFile(path, []byte(serializeDocument(e.doc)), filePermissions); err != nil {
		return ioFailure(path, err)
	}

	if err := e.applyMediaQueues(); err != nil {
		return err
	}

	e.modified = false
	e.sourceDate = e.doc.begin
	e.state = statePersisted
	return nil
}

func (e *Entry) saveRemoval() error {
	if e.state != statePersisted {
		// Never written, or already gone.
		e.state = stateRemoved
		return nil
	}

	dir := filepath.Join(e.store.root, mediaDir(e.sourceDate, e.seq))
	names := append(mediaFilenames(e.doc.media), e.removeQueue...)
	for _, name := range names {
		if err := removeIfPresent(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	pruneDir(dir)

	path := filepath.Join(e.store.root, e.sourcePath)
	if err := removeIfPresent(path); err != nil {
		return err
	}

	e.removeQueue = nil
	e.addQueue = nil
	e.state = stateRemoved
	return nil
}

// relocate moves a date-edited entry out of its old location: attachment
// bytes are pulled into the add queue, the old files are deleted, and the
// entry drops back to the unsaved state so a fresh path gets allocated.
func (e *Entry) relocate() error {
	oldDir := filepath.Join(e.store.root, mediaDir(e.sourceDate, e.seq))

	var moved []pendingMedium
	for _, m := range e.doc.media {
		if e.pendingAdd(m.Filename) {
			// Attached after the last save, nothing on disk yet.
			continue
		}
		path := filepath.Join(oldDir, m.Filename)
		data, err := os.ReadFile(path)
		if err != nil {
			return ioFailure(path, err)
		}
		moved = append(moved, pendingMedium{filename: m.Filename, data: data})
	}

	for _, pending := range moved {
		if err := removeIfPresent(filepath.Join(oldDir, pending.filename)); err != nil {
			return err
		}
	}
	for _, name := range e.removeQueue {
		if err := removeIfPresent(filepath.Join(oldDir, name)); err != nil {
			return err
		}
	}
	e.removeQueue = nil
	pruneDir(oldDir)

	if err := removeIfPresent(filepath.Join(e.store.root, e.sourcePath)); err != nil {
		return err
	}

	e.addQueue = append(moved, e.addQueue...)
	e.sourcePath = ""
	e.state = stateNew
	return nil
}

// allocatePath probes for the lowest sequence index whose record path is
// still free on disk.
func (e *Entry) allocatePath() error {
	for i := 0; ; i++ {
		rel := recordPath(e.doc.begin, i)
		_, err := os.Stat(filepath.Join(e.store.root, rel))
		if errors.Is(err, fs.ErrNotExist) {
			e.seq = i
			e.sourcePath = rel
			return nil
		}
		if err != nil {
			return ioFailure(rel, err)
		}
	}
}

func (e *Entry) applyMediaQueues() error {
	dir := filepath.Join(e.store.root, mediaDir(e.doc.begin, e.seq))

	for _, name := range e.removeQueue {
		if err := removeIfPresent(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	if len(e.removeQueue) > 0 && len(e.addQueue) == 0 {
		pruneDir(dir)
	}
	e.removeQueue = nil

	for _, pending := range e.addQueue {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return ioFailure(dir, err)
		}
		path := filepath.Join(dir, pending.filename)
		if err := os.WriteFile(path, pending.data, filePermissions); err != nil {
			return ioFailure(path, err)
		}
	}
	e.addQueue = nil

	return nil
}

func removeIfPresent(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ioFailure(path, err)
	}
	return nil
}

// pruneDir drops a media directory once it holds nothing. Best effort: a
// non-empty or already missing directory is left alone.
func pruneDir(dir string) {
	_ = os.Remove(dir)
}
