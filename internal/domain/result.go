package domain

import "time"

// Result is what one invocation reports back to its caller.
type Result struct {
	RunID    string        `json:"run_id"`
	Endpoint string        `json:"endpoint"`
	Kind     Kind          `json:"kind"`
	Duration time.Duration `json:"duration"`

	IngestedCount int64 `json:"ingested_count"`

	// relational endpoints
	ChunksProcessed int   `json:"chunks_processed"`
	StartingID      int64 `json:"starting_id"`
	LastID          int64 `json:"last_id"`

	// filesystem endpoints
	TotalNewFolders  int `json:"total_new_folders"`
	RemainingFolders int `json:"remaining_folders"`
}

// Payload returns the scheduler-facing view of the result for its kind.
func (r Result) Payload() map[string]any {
	if r.Kind.Relational() {
		return map[string]any{
			"ingested_count":   r.IngestedCount,
			"chunks_processed": r.ChunksProcessed,
			"endpoint":         r.Endpoint,
			"last_id":          r.LastID,
			"starting_id":      r.StartingID,
		}
	}
	return map[string]any{
		"ingested_count":    r.IngestedCount,
		"endpoint":          r.Endpoint,
		"total_new_folders": r.TotalNewFolders,
		"remaining_folders": r.RemainingFolders,
	}
}
