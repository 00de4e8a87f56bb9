package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/daonpick/internal/domain/game"
)

type gamePayload struct {
	Phase      game.Phase     `json:"phase"`
	Candidates []entryPayload `json:"candidates"`
	Selected   int            `json:"selected"`
	Fortune    string         `json:"fortune,omitempty"`
}

func buildGamePayload(st game.State) gamePayload {
	out := gamePayload{
		Phase:      st.Phase,
		Candidates: make([]entryPayload, 0, len(st.Candidates)),
		Selected:   st.Selected,
		Fortune:    st.Fortune,
	}
	for _, c := range st.Candidates {
		out.Candidates = append(out.Candidates, buildEntryPayload(c, nil))
	}
	return out
}

func writeGameError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, game.ErrBadIndex):
		writeError(w, http.StatusBadRequest, "bad_index", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, game.ErrNotIdle), errors.Is(err, game.ErrNotRevealing):
		writeError(w, http.StatusConflict, "invalid_phase", WrapKind(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}

// handleGame handles GET /game.
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r, "api.game")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, buildGamePayload(s.deps.GameState(sess)))
}

// handleGamePick handles POST /game/pick/{index}.
func (s *Server) handleGamePick(w http.ResponseWriter, r *http.Request) {
	const op = "api.game_pick"
	sess, ok := session(w, r, op)
	if !ok {
		return
	}
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_index", WrapKind(op, ErrBadRequest, err))
		return
	}
	st, err := s.deps.GamePick(sess, i)
	if err != nil {
		writeGameError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, buildGamePayload(st))
}

// handleGameReveal handles POST /game/reveal.
func (s *Server) handleGameReveal(w http.ResponseWriter, r *http.Request) {
	const op = "api.game_reveal"
	sess, ok := session(w, r, op)
	if !ok {
		return
	}
	st, err := s.deps.GameReveal(sess)
	if err != nil {
		writeGameError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, buildGamePayload(st))
}

// handleGameReset handles POST /game/reset.
func (s *Server) handleGameReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r, "api.game_reset")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, buildGamePayload(s.deps.GameReset(sess)))
}
