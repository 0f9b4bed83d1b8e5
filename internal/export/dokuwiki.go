// Package export renders the entry collection as dokuwiki pages, one page
// per calendar month, with attachments copied into the wiki media tree.
// Human-readable date formatting lives here, not in the store; the store only
// ever speaks the machine date format.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mfaerber/kitchenlog/internal/logbook"
)

// Localization supplies the weekday and month names used on the wiki pages.
type Localization struct {
	Weekdays [7]string  // indexed by time.Weekday
	Months   [13]string // indexed by time.Month, slot 0 unused
}

// German is the historical default of the kitchen wiki.
var German = Localization{
	Weekdays: [7]string{
		"Sonntag", "Montag", "Dienstag", "Mittwoch",
		"Donnerstag", "Freitag", "Samstag",
	},
	Months: [13]string{
		"", "Januar", "Februar", "März", "April", "Mai", "Juni", "Juli",
		"August", "September", "Oktober", "November", "Dezember",
	},
}

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// Exporter writes dokuwiki pages for a collection of entries.
type Exporter struct {
	Target string
	Loc    Localization
}

// Export renders every entry into <target>/<YYYY-MM>.txt, oldest first within
// each page, and copies the attachments under <target>/media/.
func (x *Exporter) Export(entries []*logbook.Entry) error {
	pages := make(map[string][]*logbook.Entry)
	for _, e := range entries {
		key := e.Begin().Format("2006-01")
		pages[key] = append(pages[key], e)
	}

	keys := make([]string, 0, len(pages))
	for key := range pages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if err := os.MkdirAll(x.Target, dirPermissions); err != nil {
		return fmt.Errorf("create export target: %w", err)
	}

	for _, key := range keys {
		page := pages[key]
		sort.SliceStable(page, func(i, j int) bool {
			if !page[i].Begin().Equal(page[j].Begin()) {
				return page[i].Begin().Before(page[j].Begin())
			}
			return page[i].SequenceIndex() < page[j].SequenceIndex()
		})

		var b strings.Builder
		for _, e := range page {
			if err := x.renderEntry(&b, e); err != nil {
				return err
			}
		}

		path := filepath.Join(x.Target, key+".txt")
		if err := os.WriteFile(path, []byte(b.String()), filePermissions); err != nil {
			return fmt.Errorf("write page %s: %w", path, err)
		}
	}

	return nil
}

func (x *Exporter) renderEntry(b *strings.Builder, e *logbook.Entry) error {
	fmt.Fprintf(b, "===== %s: %s =====\n\n", e.Topic(), x.dateLine(e))

	for _, m := range e.Media() {
		if err := x.copyAttachment(e, m.Filename); err != nil {
			return err
		}
		fmt.Fprintf(b, "{{%s}}\n", mediaLink(e, m))
	}
	if len(e.Media()) > 0 {
		b.WriteByte('\n')
	}

	b.WriteString(e.Body())
	b.WriteString("\n\n")
	return nil
}

// dateLine renders the heading date the way the wiki always spelled it:
// "Samstag, 5. Januar 2024", with "bis" joining a range and the appendix
// appended after a comma.
func (x *Exporter) dateLine(e *logbook.Entry) string {
	begin := e.Begin()
	line := fmt.Sprintf("%s, %d. %s",
		x.Loc.Weekdays[begin.Weekday()], begin.Day(), x.Loc.Months[begin.Month()])

	if end := e.End(); !end.IsZero() {
		line += fmt.Sprintf(" bis %s, %d. %s",
			x.Loc.Weekdays[end.Weekday()], end.Day(), x.Loc.Months[end.Month()])
	}
	line += fmt.Sprintf(" %d", begin.Year())

	if e.Appendix() != "" {
		line += ", " + e.Appendix()
	}
	return line
}

func mediaLink(e *logbook.Entry, m logbook.Medium) string {
	begin := e.Begin()
	link := fmt.Sprintf("kitchenlog:%04d:%02d:%02d:%d:%s",
		begin.Year(), begin.Month(), begin.Day(), e.SequenceIndex(), m.Filename)
	if m.Options != "" {
		link += "?" + m.Options
	}
	return link
}

func (x *Exporter) copyAttachment(e *logbook.Entry, filename string) error {
	src, err := e.AttachmentPath(filename)
	if err != nil {
		return fmt.Errorf("attachment %s of %s: %w", filename, e.SummaryLine(), err)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read attachment: %w", err)
	}

	begin := e.Begin()
	dir := filepath.Join(x.Target, "media",
		fmt.Sprintf("%04d", begin.Year()),
		fmt.Sprintf("%02d", begin.Month()),
		fmt.Sprintf("%02d", begin.Day()),
		fmt.Sprintf("%d", e.SequenceIndex()),
	)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, filePermissions); err != nil {
		return fmt.Errorf("copy attachment: %w", err)
	}
	return nil
}

// PageName returns the wiki page a date's entries land on.
func PageName(date time.Time) string {
	return date.Format("2006-01") + ".txt"
}
