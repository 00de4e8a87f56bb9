package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/daonpick/internal/domain/game"
	"github.com/okian/daonpick/internal/domain/interaction"
	"github.com/okian/daonpick/internal/domain/model"
	"github.com/okian/daonpick/internal/domain/paging"
	"github.com/okian/daonpick/internal/domain/ranking"
	"github.com/okian/daonpick/pkg/metrics"
)

// Session is one visitor's interaction state. The lists live in the
// state store; the game and the paging cursor are memory only.
type Session struct {
	ID       string
	Recorder *interaction.Recorder

	mu      sync.Mutex
	game    *game.Game
	gameGen uint64
	cursor  *paging.Cursor
}

// Session returns the session for id, creating it when id is unknown.
// An empty or malformed id gets a fresh one; created reports that case
// so callers can issue the new id. A session evicted from memory is
// rebuilt from the state store under the same id.
func (s *Service) Session(ctx context.Context, id string) (sess *Session, created bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
		created = true
	}

	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	if sess, ok := s.sessions.Get(id); ok {
		// re-adding restarts the idle timer
		s.sessions.Add(id, sess)
		return sess, created
	}
	sess = &Session{
		ID: id,
		Recorder: interaction.NewRecorder(ctx, s.state, id,
			interaction.WithRecentCap(s.recentCap),
			interaction.WithDispatcher(s),
			interaction.WithDeduper(s.deduper),
			interaction.WithLogger(s.logger.Named("recorder")),
		),
	}
	s.sessions.Add(id, sess)
	metrics.UpdateSessions(s.sessions.Len())
	return sess, created
}

// SessionCount returns the number of sessions held in memory.
func (s *Service) SessionCount() int {
	return s.sessions.Len()
}

// RecordClick resolves code and records the click for the session. A miss
// returns the fallback URL with found false and records nothing.
func (s *Service) RecordClick(ctx context.Context, sess *Session, code, clickID string) (url string, found bool, err error) {
	res := s.Lookup(code)
	if !res.Found {
		return res.Fallback, false, nil
	}
	url, err = sess.Recorder.RecordClick(ctx, res.Entry, clickID)
	return url, true, err
}

// ToggleWishlist flips the wishlist membership of code. A code missing from
// the catalog can still be removed but not added.
func (s *Service) ToggleWishlist(ctx context.Context, sess *Session, code string) (bool, error) {
	if e, ok := s.Catalog().Lookup(code); ok {
		return sess.Recorder.ToggleWishlist(ctx, e.ProductRecord), nil
	}
	if sess.Recorder.IsWishlisted(code) {
		return sess.Recorder.ToggleWishlist(ctx, model.ProductRecord{Code: code}), nil
	}
	return false, ErrUnknownCode
}

// gameFor returns the session's game, redrawing it when the catalog generation
// moved since it was dealt. Callers hold sess.mu.
func (s *Service) gameFor(sess *Session) *game.Game {
	snap := s.Catalog()
	if sess.game == nil {
		sess.game = game.New(snap.Entries, s.sampler, ranking.PickFortune)
		sess.gameGen = snap.Generation
	} else if sess.gameGen != snap.Generation {
		sess.game.Reset(snap.Entries)
		sess.gameGen = snap.Generation
	}
	return sess.game
}

// GameState returns the session's current game.
func (s *Service) GameState(sess *Session) game.State {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.gameFor(sess).State()
}

// GamePick selects candidate i and starts the reveal.
func (s *Service) GamePick(sess *Session, i int) (game.State, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.gameFor(sess).Pick(i)
}

// GameReveal completes the reveal of the picked candidate.
func (s *Service) GameReveal(sess *Session) (game.State, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.gameFor(sess).RevealElapsed()
}

// GameReset deals a new game from the current catalog.
func (s *Service) GameReset(sess *Session) game.State {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	g := s.gameFor(sess)
	return g.Reset(s.Catalog().Entries)
}
