package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/cwbudde/bestfit/internal/fit"
	"github.com/cwbudde/bestfit/internal/opt"
	"github.com/cwbudde/bestfit/internal/store"
)

// handleFit handles POST /api/v1/fit
func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := FitRequest{Options: s.opts}
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := s.runFit(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// runFit fits a request and records the outcome.
func (s *Server) runFit(req FitRequest) (*store.Record, error) {
	if req.Template == "" {
		return nil, &store.ValidationError{Field: "template", Reason: "is required"}
	}
	data, err := req.Dataset()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	trace, err := s.openTrace(id)
	if err != nil {
		return nil, err
	}
	if trace != nil {
		observe := req.Observer
		req.Observer = func(step opt.Step) {
			trace.Observe(step)
			if observe != nil {
				observe(step)
			}
		}
	}

	res, err := fit.FindBestFit(data, req.Template, req.Options)
	if trace != nil {
		s.closeTrace(trace, err != nil)
	}
	if err != nil {
		return nil, err
	}

	rec := store.NewFitRecord(res, len(data), req.ReturnScore)
	rec.ID = id
	if err := s.store.Save(rec); err != nil {
		return nil, err
	}
	slog.Info("Fit recorded", "id", rec.ID, "template", rec.Template)
	return rec, nil
}

// tracer is implemented by stores that keep a search trace next to each record.
type tracer interface {
	TracePath(id string) (string, error)
}

// openTrace returns a trace writer for the record id, or nil when the store
// keeps no traces.
func (s *Server) openTrace(id string) (*store.TraceWriter, error) {
	ts, ok := s.store.(tracer)
	if !ok {
		return nil, nil
	}
	path, err := ts.TracePath(id)
	if err != nil {
		return nil, err
	}
	return store.NewTraceWriter(path, false)
}

// closeTrace closes trace and removes it when the fit failed. A trace that
// could not be written is logged and does not fail the fit.
func (s *Server) closeTrace(trace *store.TraceWriter, failed bool) {
	if err := trace.Err(); err != nil {
		slog.Warn("Trace incomplete", "path", trace.Path(), "error", err)
	}
	if err := trace.Close(); err != nil {
		slog.Warn("Failed to close trace", "path", trace.Path(), "error", err)
	}
	if failed {
		if err := store.DeleteTrace(trace.Path()); err != nil {
			slog.Warn("Failed to remove trace of a failed fit", "path", trace.Path(), "error", err)
		}
	}
}

// handleAuto handles POST /api/v1/auto
func (s *Server) handleAuto(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := AutoRequest{Options: s.opts}
	if !decodeJSON(w, r, &req) {
		return
	}
	data, err := req.Dataset()
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := fit.AutoFindBestFit(data, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}

	rec := store.NewAutoRecord(res, len(data))
	if err := s.store.Save(rec); err != nil {
		writeError(w, err)
		return
	}
	slog.Info("Auto fit recorded", "id", rec.ID, "template", rec.Template)
	writeJSON(w, http.StatusCreated, rec)
}

// handleEval handles POST /api/v1/eval
func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EvalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	f, err := fit.BuildEvalFunc(req.Template, req.Coefficients)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := EvalResponse{Y: make([]*float64, len(req.X))}
	for i, x := range req.X {
		resp.Y[i] = store.Finite(f(x))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCatalog handles GET /api/v1/catalog
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, fit.Catalog)
}

// handleFits handles GET /api/v1/fits
func (s *Server) handleFits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := s.store.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleFitsWithID handles /api/v1/fits/:id
func (s *Server) handleFitsWithID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/fits/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rec, err := s.store.Load(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	case http.MethodDelete:
		if err := s.store.Delete(id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
