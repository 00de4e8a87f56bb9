package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/daonpick/internal/domain/interaction"
	"github.com/okian/daonpick/pkg/logger"
)

// ClickIDHeader makes a click request idempotent.
const ClickIDHeader = "X-Click-ID"

type lookupPayload struct {
	Found    bool          `json:"found"`
	NotFound bool          `json:"not_found"`
	Entry    *entryPayload `json:"entry,omitempty"`
	Fallback string        `json:"fallback,omitempty"`
}

// handleLookup handles GET /lookup/{code}.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	res := s.deps.Lookup(chi.URLParam(r, "code"))
	if !res.Found {
		writeJSON(w, http.StatusOK, lookupPayload{NotFound: true, Fallback: res.Fallback})
		return
	}
	p := buildEntryPayload(res.Entry, nil)
	writeJSON(w, http.StatusOK, lookupPayload{Found: true, Entry: &p})
}

type clickPayload struct {
	URL      string `json:"url"`
	NotFound bool   `json:"not_found,omitempty"`
}

func (s *Server) click(r *http.Request, op string) (string, bool, error) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		return "", false, NewKind(op, ErrInternal)
	}
	code := chi.URLParam(r, "code")
	clickID := strings.TrimSpace(r.Header.Get(ClickIDHeader))
	url, found, err := s.deps.RecordClick(r.Context(), sess, code, clickID)
	if err != nil {
		if errors.Is(err, interaction.ErrNoLink) {
			return "", true, WrapKind(op, ErrNotFound, err)
		}
		s.logger.Error(r.Context(), "click failed", logger.String("code", code), logger.Error(err))
		return "", found, WrapKind(op, ErrInternal, err)
	}
	return url, found, nil
}

// isPrefetch reports whether the browser is fetching speculatively rather
// than following a link.
func isPrefetch(r *http.Request) bool {
	for _, h := range []string{"Sec-Purpose", "Purpose", "X-Purpose", "X-Moz"} {
		if strings.Contains(strings.ToLower(r.Header.Get(h)), "prefetch") {
			return true
		}
	}
	return false
}

// handleGo handles GET /go/{code}: records the click and redirects.
// Prefetches are redirected without recording anything.
func (s *Server) handleGo(w http.ResponseWriter, r *http.Request) {
	const op = "api.go"
	w.Header().Set("Cache-Control", "no-store")
	if isPrefetch(r) {
		s.redirectOnly(w, r, op)
		return
	}
	url, _, err := s.click(r, op)
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "no_link", err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	default:
		http.Redirect(w, r, url, http.StatusFound)
	}
}

func (s *Server) redirectOnly(w http.ResponseWriter, r *http.Request, op string) {
	res := s.deps.Lookup(chi.URLParam(r, "code"))
	if !res.Found {
		http.Redirect(w, r, res.Fallback, http.StatusFound)
		return
	}
	url := interaction.NormalizeURL(res.Entry.Link)
	if url == "" {
		writeError(w, http.StatusNotFound, "no_link", WrapKind(op, ErrNotFound, interaction.ErrNoLink))
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// handleClick handles POST /click/{code}.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	const op = "api.click"
	url, found, err := s.click(r, op)
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "no_link", err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	default:
		writeJSON(w, http.StatusOK, clickPayload{URL: url, NotFound: !found})
	}
}
