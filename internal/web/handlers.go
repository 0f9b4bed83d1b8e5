package web

import (
	"bytes"
	"errors"
	"html/template"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"

	"github.com/mfaerber/kitchenlog/internal/logbook"
)

// maxUploadBytes caps a single attachment upload.
const maxUploadBytes = 32 << 20

var markdown = goldmark.New()

type listedEntry struct {
	Ordinal int
	Summary string
}

type yearGroup struct {
	Year    int
	Entries []listedEntry
}

type listPage struct {
	Info  string
	Error string
	Years []yearGroup
}

type entryPage struct {
	Ordinal int
	Summary string
	Text    string
	Body    template.HTML
	Media   []logbook.Medium
	Info    string
	Error   string
}

type newPage struct {
	Text  string
	Error string
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.renderList(w, listPage{})
}

func (s *Server) renderList(w http.ResponseWriter, page listPage) {
	groups := make(map[int][]listedEntry)
	for i, e := range s.store.Entries() {
		if e.IsRemoved() {
			continue
		}
		year := e.Begin().Year()
		groups[year] = append(groups[year], listedEntry{Ordinal: i, Summary: e.SummaryLine()})
	}

	years := make([]int, 0, len(groups))
	for year := range groups {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	for _, year := range years {
		page.Years = append(page.Years, yearGroup{Year: year, Entries: groups[year]})
	}

	s.render(w, listTemplate, page)
}

func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, newTemplate, newPage{Text: s.store.Template(time.Now())})
}

func (s *Server) handleNewSubmit(w http.ResponseWriter, r *http.Request) {
	text := r.FormValue("text")

	entry := s.store.NewEntry(time.Now())
	if err := entry.Reload(text); err != nil {
		var ferr *logbook.FormatError
		if errors.As(err, &ferr) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			s.render(w, newTemplate, newPage{Text: text, Error: ferr.Reason})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.store.Commit(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.publish(r, "Added "+entry.SummaryLine())

	s.renderList(w, listPage{Info: "Entry successfully created"})
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	entry, ordinal, ok := s.lookupEntry(w, r)
	if !ok {
		return
	}
	s.renderEntry(w, entry, ordinal, "", "")
}

func (s *Server) renderEntry(w http.ResponseWriter, entry *logbook.Entry, ordinal int, info, errMsg string) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(entry.Body()), &body); err != nil {
		body.Reset()
		body.WriteString(template.HTMLEscapeString(entry.Body()))
	}

	s.render(w, entryTemplate, entryPage{
		Ordinal: ordinal,
		Summary: entry.SummaryLine(),
		Text:    entry.CurrentText(),
		Body:    template.HTML(body.String()),
		Media:   entry.Media(),
		Info:    info,
		Error:   errMsg,
	})
}

func (s *Server) handleEntrySubmit(w http.ResponseWriter, r *http.Request) {
	entry, ordinal, ok := s.lookupEntry(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if r.FormValue("remove") != "" {
		entry.MarkForRemoval()
		if err := s.store.Commit(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.publish(r, "Removed "+entry.SummaryLine())
		s.renderList(w, listPage{Info: "Entry successfully removed"})
		return
	}

	removals := checkedRemovals(r, len(entry.Media()))
	text := r.FormValue("text")
	upload, header, uploadErr := r.FormFile("media")

	if logbook.NormalizeText(text) == entry.CurrentText() && len(removals) == 0 && uploadErr != nil {
		s.renderEntry(w, entry, ordinal, "Nothing changed", "")
		return
	}

	// Detach from the back so earlier ordinals stay valid.
	for i := len(removals) - 1; i >= 0; i-- {
		if err := entry.DetachByOrdinal(removals[i]); err != nil {
			s.renderEntry(w, entry, ordinal, "", err.Error())
			return
		}
	}

	if err := entry.Reload(text); err != nil {
		var ferr *logbook.FormatError
		if errors.As(err, &ferr) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			s.renderEntry(w, entry, ordinal, "", ferr.Reason)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if uploadErr == nil {
		defer upload.Close()
		data, err := io.ReadAll(upload)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := entry.Attach(header.Filename, data); err != nil {
			s.renderEntry(w, entry, ordinal, "", err.Error())
			return
		}
	}

	if err := s.store.Commit(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.publish(r, "Modified "+entry.SummaryLine())

	s.renderEntry(w, entry, ordinal, "Entry saved", "")
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := s.lookupEntry(w, r)
	if !ok {
		return
	}

	path, err := entry.AttachmentPath(chi.URLParam(r, "filename"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) lookupEntry(w http.ResponseWriter, r *http.Request) (*logbook.Entry, int, bool) {
	ordinal, err := strconv.Atoi(chi.URLParam(r, "ordinal"))
	if err != nil {
		http.NotFound(w, r)
		return nil, 0, false
	}
	entry, err := s.store.ByOrdinal(ordinal)
	if err != nil {
		http.NotFound(w, r)
		return nil, 0, false
	}
	return entry, ordinal, true
}

// checkedRemovals collects the remove_<i> checkbox indexes, ascending and
// bounded by the current attachment count.
func checkedRemovals(r *http.Request, mediaCount int) []int {
	var removals []int
	for i := 0; i < mediaCount; i++ {
		if r.FormValue("remove_"+strconv.Itoa(i)) != "" {
			removals = append(removals, i)
		}
	}
	return removals
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.logger.Error("template render failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
