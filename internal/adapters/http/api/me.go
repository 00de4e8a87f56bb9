package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/daonpick/internal/app"
	"github.com/okian/daonpick/internal/domain/model"
)

type togglePayload struct {
	Code       string `json:"code"`
	Wishlisted bool   `json:"wishlisted"`
}

func savedList(items []model.SavedItem) []model.SavedItem {
	if items == nil {
		return []model.SavedItem{}
	}
	return items
}

// handleWishlist handles GET /me/wishlist.
func (s *Server) handleWishlist(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r, "api.wishlist")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, savedList(sess.Recorder.Wishlist()))
}

// handleToggleWishlist handles POST /me/wishlist/{code}.
func (s *Server) handleToggleWishlist(w http.ResponseWriter, r *http.Request) {
	const op = "api.toggle_wishlist"
	sess, ok := session(w, r, op)
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")
	on, err := s.deps.ToggleWishlist(r.Context(), sess, code)
	if errors.Is(err, service.ErrUnknownCode) {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, togglePayload{Code: code, Wishlisted: on})
}

// handleClearWishlist handles DELETE /me/wishlist.
func (s *Server) handleClearWishlist(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r, "api.clear_wishlist")
	if !ok {
		return
	}
	sess.Recorder.ClearWishlist(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleRecent handles GET /me/recent.
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r, "api.recent")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, savedList(sess.Recorder.RecentViews()))
}

// handleClearRecent handles DELETE /me/recent.
func (s *Server) handleClearRecent(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r, "api.clear_recent")
	if !ok {
		return
	}
	sess.Recorder.ClearRecent(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
