package logbook

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// The on-disk layout is shared with external tooling and must not drift:
//
//	<root>/YYYY/MM/DD-<index>.txt
//	<root>/media/YYYY/MM/DD/<index>/<filename>

const dateFormat = "2006-01-02"

// recordPath maps a begin date and sequence index to the entry's record file,
// relative to the store root.
func recordPath(date time.Time, index int) string {
	return filepath.Join(
		fmt.Sprintf("%04d", date.Year()),
		fmt.Sprintf("%02d", date.Month()),
		fmt.Sprintf("%02d-%d.txt", date.Day(), index),
	)
}

// mediaDir maps a begin date and sequence index to the directory holding the
// entry's attachments, relative to the store root.
func mediaDir(date time.Time, index int) string {
	return filepath.Join(
		"media",
		fmt.Sprintf("%04d", date.Year()),
		fmt.Sprintf("%02d", date.Month()),
		fmt.Sprintf("%02d", date.Day()),
		strconv.Itoa(index),
	)
}

var recordPattern = regexp.MustCompile(`^(\d{4})/(\d{2})/(\d{2})-(\d+)\.txt$`)

// splitRecordPath is the inverse of recordPath. Paths that do not match the
// layout only ever come from a broken scan, never from user input.
func splitRecordPath(rel string) (time.Time, int, error) {
	m := recordPattern.FindStringSubmatch(filepath.ToSlash(rel))
	if m == nil {
		return time.Time{}, 0, fmt.Errorf("not a record path: %s", rel)
	}

	date, err := time.Parse(dateFormat, m[1]+"-"+m[2]+"-"+m[3])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("record path %s: %w", rel, err)
	}
	index, err := strconv.Atoi(m[4])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("record path %s: %w", rel, err)
	}
	return date, index, nil
}
