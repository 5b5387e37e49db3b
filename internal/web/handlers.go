package web

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/siftlabs/sift/internal/config"
	"github.com/siftlabs/sift/internal/errors"
	"github.com/siftlabs/sift/internal/ops"
)

// Handlers contains HTTP route handlers for the review UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleQueue handles GET /queue, listing captures awaiting review.
func (h *Handlers) HandleQueue(w http.ResponseWriter, r *http.Request) {
	input := ops.QueueInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultQueueLimit),
		Offset: parseIntParam(r, "offset", 0),
	}

	result, err := ops.Queue(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "queue", QueuePageData{
		PageData: PageData{
			Title:   "Review Queue",
			Version: h.renderer.version,
			Nav:     "queue",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
	})
}

// HandleDetail handles GET /captures/{id}, the full audit view of one capture.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("capture ID is required"))
		return
	}

	capture, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   "Capture " + capture.ID,
			Version: h.renderer.version,
			Nav:     "queue",
		},
		Capture:      capture,
		RenderedHTML: renderMarkdown(capture.RawText),
	})
}

// HandleSkip handles POST /captures/{id}/skip, dismissing a queued capture.
func (h *Handlers) HandleSkip(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("capture ID is required"))
		return
	}

	result, err := ops.Skip(r.Context(), h.db, ops.SkipInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/queue", http.StatusFound)
}

// HandleDiscard handles POST /captures/{id}/discard, hard-deleting a capture.
func (h *Handlers) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("capture ID is required"))
		return
	}

	result, err := ops.Discard(r.Context(), h.db, ops.DiscardInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/queue", http.StatusFound)
}

// HandleExport handles POST /export, writing the CSV audit export.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	result, err := ops.Export(r.Context(), h.db, h.cfg, ops.ExportInput{
		Path: r.FormValue("path"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
