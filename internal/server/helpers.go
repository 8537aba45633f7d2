package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cwbudde/bestfit/internal/equation"
	"github.com/cwbudde/bestfit/internal/fit"
	"github.com/cwbudde/bestfit/internal/store"
)

// DataInput is the dataset part of a request: either [x, y] points or
// bare y values numbered from Start (default 1).
type DataInput struct {
	Points [][]float64 `json:"points,omitempty"`
	Values []float64   `json:"values,omitempty"`
	Start  *int        `json:"start,omitempty"`
}

// Dataset converts the input. Validation is left to the fit.
func (in DataInput) Dataset() (fit.Dataset, error) {
	start := 1
	if in.Start != nil {
		start = *in.Start
	}
	return store.DatasetFromPairs(in.Points, in.Values, start)
}

// FitRequest is the body of POST /api/v1/fit.
type FitRequest struct {
	DataInput
	Template string `json:"template"`
	fit.Options
}

// AutoRequest is the body of POST /api/v1/auto.
type AutoRequest struct {
	DataInput
	fit.Options
}

// EvalRequest is the body of POST /api/v1/eval.
type EvalRequest struct {
	Template     string    `json:"template"`
	Coefficients []float64 `json:"coefficients"`
	X            []float64 `json:"x"`
}

// EvalResponse holds f(x) for every requested x; null where f(x) is not finite.
type EvalResponse struct {
	Y []*float64 `json:"y"`
}

// decodeJSON reads a request body into v, which carries the defaults.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps err onto a status code and writes its message.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	var (
		fitErr   *fit.ValidationError
		storeErr *store.ValidationError
	)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, equation.ErrParse),
		errors.Is(err, equation.ErrMacro),
		errors.Is(err, fit.ErrCoefficientCount),
		errors.As(err, &fitErr),
		errors.As(err, &storeErr):
		return http.StatusBadRequest
	case errors.Is(err, fit.ErrNoFiniteFit):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
