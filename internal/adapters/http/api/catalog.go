package api

import (
	"errors"
	"net/http"

	service "github.com/okian/daonpick/internal/app"
	"github.com/okian/daonpick/internal/domain/category"
	"github.com/okian/daonpick/internal/domain/model"
	"github.com/okian/daonpick/internal/domain/ranking"
	"github.com/okian/daonpick/pkg/logger"
)

// entryPayload is the JSON shape of a catalog entry.
type entryPayload struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	Image           string `json:"image"`
	Link            string `json:"link"`
	Price           int64  `json:"price"`
	Discount        int64  `json:"discount"`
	DiscountedPrice int64  `json:"discounted_price"`
	Description     string `json:"description,omitempty"`
	Views           int64  `json:"views"`
	ViewsLabel      string `json:"views_label"`
	Wishlisted      bool   `json:"wishlisted"`
	Rank            int    `json:"rank,omitempty"`
}

func buildEntryPayload(e model.CatalogEntry, sess *service.Session) entryPayload {
	p := entryPayload{
		Code:            e.Code,
		Name:            e.Name,
		Category:        e.Category,
		Image:           e.Image,
		Link:            e.Link,
		Price:           e.Price,
		Discount:        e.Discount,
		DiscountedPrice: e.DiscountedPrice(),
		Description:     e.Description,
		Views:           e.Views,
		ViewsLabel:      ranking.FormatViews(e.Views, e.Code),
	}
	if sess != nil {
		p.Wishlisted = sess.Recorder.IsWishlisted(e.Code)
	}
	return p
}

type pagePayload struct {
	Category    string         `json:"category"`
	Items       []entryPayload `json:"items"`
	Visible     int            `json:"visible"`
	NextVisible int            `json:"next_visible"`
	HasMore     bool           `json:"has_more"`
	Total       int            `json:"total"`
	Generation  uint64         `json:"generation"`
}

// handleCatalog handles GET /catalog?category=&visible=. Switching category
// resets the session's window to the first page.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	const op = "api.catalog"
	visible, err := intParam(r, "visible", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("visible must be a non-negative integer")))
		return
	}
	sess, ok := session(w, r, op)
	if !ok {
		return
	}
	s.writePage(w, sess, s.deps.Browse(sess, r.URL.Query().Get("category"), visible))
}

// handleMore handles POST /catalog/more.
func (s *Server) handleMore(w http.ResponseWriter, r *http.Request) {
	const op = "api.more"
	sess, ok := session(w, r, op)
	if !ok {
		return
	}
	s.writePage(w, sess, s.deps.More(sess))
}

func (s *Server) writePage(w http.ResponseWriter, sess *service.Session, page service.Page) {
	items := make([]entryPayload, 0, len(page.Items))
	for _, e := range page.Items {
		items = append(items, buildEntryPayload(e, sess))
	}
	writeJSON(w, http.StatusOK, pagePayload{
		Category:    page.Category,
		Items:       items,
		Visible:     page.Visible,
		NextVisible: page.NextVisible,
		HasMore:     page.HasMore,
		Total:       page.Total,
		Generation:  s.deps.Catalog().Generation,
	})
}

// handleTop handles GET /catalog/top?limit=.
func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.top"
	limit, err := intParam(r, "limit", s.topN)
	if err != nil || limit > s.maxTop {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("limit out of range")))
		return
	}
	sess, _ := SessionFromContext(r.Context())
	ranked := s.deps.Top(limit)
	out := make([]entryPayload, 0, len(ranked))
	for _, e := range ranked {
		p := buildEntryPayload(e.CatalogEntry, sess)
		p.Rank = e.Rank
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCategories handles GET /catalog/categories.
func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	tabs := s.deps.Catalog().Tabs
	if tabs == nil {
		tabs = []category.Tab{{Key: category.All, Label: category.All}}
	}
	writeJSON(w, http.StatusOK, tabs)
}

type navPayload struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// handleNav handles GET /catalog/nav.
func (s *Server) handleNav(w http.ResponseWriter, _ *http.Request) {
	buttons := s.deps.Catalog().Buttons()
	out := make([]navPayload, 0, len(buttons))
	for _, b := range buttons {
		out = append(out, navPayload{Label: b.Label, URL: b.URL})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleBadges handles GET /catalog/badges?k=.
func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	const op = "api.badges"
	k, err := intParam(r, "k", ranking.DefaultBadges)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("k must be a non-negative integer")))
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Badges(k))
}

type refreshPayload struct {
	Generation uint64   `json:"generation"`
	Entries    int      `json:"entries"`
	Degraded   []string `json:"degraded"`
	Superseded bool     `json:"superseded"`
}

// handleRefresh handles POST /admin/refresh.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.refresh"
	snap, err := s.deps.Refresh(r.Context())
	if err != nil && !errors.Is(err, service.ErrSuperseded) {
		s.logger.Error(r.Context(), "refresh failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	degraded := snap.Degraded
	if degraded == nil {
		degraded = []string{}
	}
	writeJSON(w, http.StatusOK, refreshPayload{
		Generation: snap.Generation,
		Entries:    len(snap.Entries),
		Degraded:   degraded,
		Superseded: errors.Is(err, service.ErrSuperseded),
	})
}
