package store

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/bestfit/internal/fit"
)

// Kind tells which operation produced a record.
type Kind string

const (
	KindFit  Kind = "fit"
	KindAuto Kind = "auto"
)

// Record is the serialisable outcome of a fit or an auto fit.
// Scores are pointers because JSON cannot carry infinities; a nil score
// means the fit never became finite or the score was not requested.
type Record struct {
	ID           string            `json:"id"`
	Kind         Kind              `json:"kind"`
	Template     string            `json:"template"`
	Values       []float64         `json:"values"`
	Score        *float64          `json:"score,omitempty"`
	Proportional []bool            `json:"proportional,omitempty"`
	Formatted    string            `json:"formatted,omitempty"`
	Trials       int               `json:"trials,omitempty"`
	Converged    bool              `json:"converged"`
	Points       int               `json:"points"`
	Candidates   []CandidateRecord `json:"candidates,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// CandidateRecord is one catalog template tried by an auto fit.
type CandidateRecord struct {
	Template string    `json:"template"`
	Values   []float64 `json:"values"`
	Score    *float64  `json:"score,omitempty"`
}

// NewFitRecord converts a fit result. Score and proportional flags are kept
// only when withScore is set.
func NewFitRecord(res *fit.Result, points int, withScore bool) *Record {
	rec := &Record{
		ID:        uuid.NewString(),
		Kind:      KindFit,
		Template:  res.Template,
		Values:    res.Values,
		Formatted: res.Formatted,
		Trials:    res.Trials,
		Converged: res.Converged,
		Points:    points,
		CreatedAt: time.Now(),
	}
	if withScore {
		rec.Score = Finite(res.Score)
		rec.Proportional = res.Proportional
	}
	return rec
}

// NewAutoRecord converts an auto fit result including every candidate.
func NewAutoRecord(res *fit.AutoResult, points int) *Record {
	rec := &Record{
		ID:         uuid.NewString(),
		Kind:       KindAuto,
		Template:   res.Template,
		Values:     res.Values,
		Score:      Finite(res.Score),
		Formatted:  res.Formatted,
		Points:     points,
		Candidates: make([]CandidateRecord, len(res.Candidates)),
		CreatedAt:  time.Now(),
	}
	for i, c := range res.Candidates {
		rec.Trials += c.Trials
		rec.Candidates[i] = CandidateRecord{
			Template: c.Template,
			Values:   c.Values,
			Score:    Finite(c.Score),
		}
		if c.Template == res.Template {
			rec.Converged = c.Converged
		}
	}
	return rec
}

// Finite returns a pointer to v, or nil when v is NaN or infinite.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Validate checks that the record carries the fields every store relies on.
func (r *Record) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if r.Kind != KindFit && r.Kind != KindAuto {
		return &ValidationError{Field: "Kind", Reason: "must be fit or auto"}
	}
	if r.Template == "" {
		return &ValidationError{Field: "Template", Reason: "cannot be empty"}
	}
	if r.CreatedAt.IsZero() {
		return &ValidationError{Field: "CreatedAt", Reason: "cannot be zero"}
	}
	return nil
}
