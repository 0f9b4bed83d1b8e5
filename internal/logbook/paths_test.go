package logbook

import (
	"path/filepath"
	"testing"
	"time"
)

func TestRecordPath(t *testing.T) {
	date := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)

	if got, want := recordPath(date, 0), filepath.FromSlash("2024/01/05-0.txt"); got != want {
		t.Fatalf("recordPath = %q, want %q", got, want)
	}
	if got, want := recordPath(date, 12), filepath.FromSlash("2024/01/05-12.txt"); got != want {
		t.Fatalf("recordPath = %q, want %q", got, want)
	}
}

func TestMediaDir(t *testing.T) {
	date := time.Date(2024, time.November, 30, 0, 0, 0, 0, time.UTC)

	if got, want := mediaDir(date, 1), filepath.FromSlash("media/2024/11/30/1"); got != want {
		t.Fatalf("mediaDir = %q, want %q", got, want)
	}
}

func TestSplitRecordPathInverse(t *testing.T) {
	dates := []time.Time{
		time.Date(2018, time.March, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	for _, date := range dates {
		for _, index := range []int{0, 1, 7, 23} {
			gotDate, gotIndex, err := splitRecordPath(recordPath(date, index))
			if err != nil {
				t.Fatalf("splitRecordPath(%s, %d): %v", date, index, err)
			}
			if !gotDate.Equal(date) || gotIndex != index {
				t.Fatalf("splitRecordPath = (%s, %d), want (%s, %d)", gotDate, gotIndex, date, index)
			}
		}
	}
}

func TestSplitRecordPathRejectsMalformed(t *testing.T) {
	paths := []string{
		"",
		"2024/01/05.txt",
		"2024/1/05-0.txt",
		"media/2024/01/05/0",
		"2024/01/05-x.txt",
		"notes/2024/01/05-0.txt",
	}
	for _, path := range paths {
		if _, _, err := splitRecordPath(path); err == nil {
			t.Fatalf("splitRecordPath(%q) succeeded, want error", path)
		}
	}
}
