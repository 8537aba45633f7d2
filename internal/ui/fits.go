package ui

import (
	"strconv"
	"time"
)

// FitListItem is one row of the fit list page.
type FitListItem struct {
	ID        string
	Kind      string
	Template  string
	Formatted string
	Score     *float64
	Points    int
	Trials    int
	CreatedAt time.Time
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return strconv.FormatFloat(*score, 'g', 6, 64)
}
