package mangawatch

import (
	"context"
	"encoding/json"
	"time"
)

// UpdatedItem summarizes an item that gained chapters during a run.
type UpdatedItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	NewChapters int    `json:"newChaptersCount"`
}

// RunResult summarizes one scheduler pass.
type RunResult struct {
	Total        int           `json:"total"`
	Checked      int           `json:"checked"`
	Updated      int           `json:"updated"`
	Skipped      int           `json:"skipped"`
	Failed       int           `json:"failed"`
	UpdatedItems []UpdatedItem `json:"updatedMangas"`
	Duration     time.Duration `json:"-"`
}

// MarshalJSON encodes the result with its duration in milliseconds.
func (r *RunResult) MarshalJSON() ([]byte, error) {
	type alias RunResult
	items := r.UpdatedItems
	if items == nil {
		items = []UpdatedItem{}
	}
	return json.Marshal(struct {
		*alias
		UpdatedItems []UpdatedItem `json:"updatedMangas"`
		DurationMS   int64         `json:"durationMs"`
	}{
		alias:        (*alias)(r),
		UpdatedItems: items,
		DurationMS:   r.Duration.Milliseconds(),
	})
}

// Runner executes one update pass over every tracked item.
type Runner interface {
	// RunOnce returns a result for every run that started, even alongside
	// an error. A run refused with ECONFLICT or ERATELIMIT has no result.
	RunOnce(ctx context.Context) (*RunResult, error)
}
