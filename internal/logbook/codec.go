package logbook

import (
	"strings"
	"time"
)

// document carries the logical fields of a single record, decoupled from any
// on-disk location. It is what the codec produces and consumes.
type document struct {
	begin    time.Time
	end      time.Time // zero when the entry covers a single day
	topic    string
	appendix string
	body     string
	media    []Medium
	extra    []Header
}

// noneLiteral spells an absent optional value in the text format.
const noneLiteral = "None"

// NormalizeText makes record text tolerant of editor and mail-transport
// whitespace mangling: carriage returns are stripped, every line is
// right-trimmed, and trailing blank lines collapse to one final newline.
// Applying it twice yields the same result.
func NormalizeText(text string) string {
	text = rtrimLines(text)
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return ""
	}
	return text + "\n"
}

func rtrimLines(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.Join(lines, "\n")
}

// parseDocument decodes record text into its logical fields after whitespace
// normalization. The trailing-blank-line collapse lands on the body once the
// header block is split off, so a headers-only text still reports the missing
// separator rather than losing it to normalization. All failures are
// FormatErrors naming the violated rule.
func parseDocument(text string) (document, error) {
	var doc document

	text = rtrimLines(text)
	if strings.TrimSpace(text) == "" {
		return doc, formatErr("empty entry")
	}

	sep := strings.Index(text, "\n\n")
	if sep < 0 {
		return doc, formatErr("missing header/body separator")
	}
	headerBlock, body := text[:sep], strings.TrimRight(text[sep+2:], "\n")

	if strings.TrimSpace(body) == "" {
		return doc, formatErr("empty content")
	}
	doc.body = body

	var haveBegin, haveTopic bool
	for _, line := range strings.Split(headerBlock, "\n") {
		if strings.HasPrefix(line, "# ") {
			// Comment lines are allowed in human-edited templates.
			continue
		}

		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			return doc, formatErr("malformed header line")
		}

		switch key {
		case "BEGIN":
			date, err := parseDate(value)
			if err != nil {
				return doc, err
			}
			if date.IsZero() {
				return doc, formatErr("missing BEGIN")
			}
			doc.begin = date
			haveBegin = true
		case "END":
			date, err := parseDate(value)
			if err != nil {
				return doc, err
			}
			doc.end = date
		case "TOPIC":
			doc.topic = optionalValue(value)
			haveTopic = doc.topic != ""
		case "APPENDIX":
			doc.appendix = optionalValue(value)
		case "MEDIA":
			medium, err := parseMedium(value)
			if err != nil {
				return doc, err
			}
			doc.media = append(doc.media, medium)
		default:
			// Unrecognized keys ride along untouched for forward
			// compatibility with newer tooling.
			doc.extra = append(doc.extra, Header{Key: key, Value: value})
		}
	}

	if !haveBegin {
		return doc, formatErr("missing BEGIN")
	}
	if !haveTopic {
		return doc, formatErr("missing TOPIC")
	}

	return doc, nil
}

// serializeDocument renders the fields back into record text. Header order is
// fixed; optional values absent from the document are spelled None. Comment
// lines are never emitted.
func serializeDocument(doc document) string {
	var b strings.Builder
	b.Grow(128 + len(doc.body))

	b.WriteString("BEGIN: ")
	b.WriteString(formatDate(doc.begin))
	b.WriteString("\nEND: ")
	b.WriteString(formatDate(doc.end))
	b.WriteString("\nTOPIC: ")
	b.WriteString(formatOptional(doc.topic))
	b.WriteString("\nAPPENDIX: ")
	b.WriteString(formatOptional(doc.appendix))
	b.WriteByte('\n')

	for _, h := range doc.extra {
		b.WriteString(h.Key)
		b.WriteString(": ")
		b.WriteString(h.Value)
		b.WriteByte('\n')
	}
	for _, m := range doc.media {
		b.WriteString("MEDIA: ")
		b.WriteString(m.Filename)
		if m.Options != "" {
			b.WriteString(", ")
			b.WriteString(m.Options)
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(doc.body)
	b.WriteByte('\n')

	return b.String()
}

func parseMedium(value string) (Medium, error) {
	parts := strings.Split(value, ", ")
	switch len(parts) {
	case 1:
		return Medium{Filename: parts[0]}, nil
	case 2:
		return Medium{Filename: parts[0], Options: parts[1]}, nil
	default:
		return Medium{}, formatErr("unknown media format")
	}
}

func parseDate(value string) (time.Time, error) {
	if value == "" || strings.EqualFold(value, noneLiteral) {
		return time.Time{}, nil
	}
	date, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, formatErr("invalid date")
	}
	return date, nil
}

func formatDate(date time.Time) string {
	if date.IsZero() {
		return noneLiteral
	}
	return date.Format(dateFormat)
}

func optionalValue(value string) string {
	if strings.EqualFold(value, noneLiteral) {
		return ""
	}
	return value
}

func formatOptional(value string) string {
	if value == "" {
		return noneLiteral
	}
	return value
}
