package logbook

import (
	"fmt"
	"time"
)

// Template renders human-editable starter text for a new entry. The comment
// lines survive a parse but are never written back by a save.
func Template(date time.Time, topic string) string {
	return fmt.Sprintf(`# Fill in the fields below. Lines starting with '# ' are ignored.
# END stays None unless the entry covers a date range.
BEGIN: %s
END: None
TOPIC: %s
APPENDIX: None

Describe what happened.
`, formatDate(date), topic)
}
