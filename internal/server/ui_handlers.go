package server

import (
	"net/http"

	"github.com/cwbudde/bestfit/internal/ui"
)

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// Only handle exact root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	records, err := s.store.List()
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]ui.FitListItem, len(records))
	for i, rec := range records {
		items[i] = ui.FitListItem{
			ID:        rec.ID,
			Kind:      string(rec.Kind),
			Template:  rec.Template,
			Formatted: rec.Formatted,
			Score:     rec.Score,
			Points:    rec.Points,
			Trials:    rec.Trials,
			CreatedAt: rec.CreatedAt,
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ui.FitList(items).Render(r.Context(), w); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
}
