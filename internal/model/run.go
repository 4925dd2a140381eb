package model

import "time"

// RunStatus represents the current state of a linkage run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one invocation of the linkage pipeline over an input file.
type Run struct {
	ID        string    `json:"id"`
	Input     string    `json:"input"`
	Mode      Mode      `json:"mode"`
	Status    RunStatus `json:"status"`
	Total     int       `json:"total"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunStats summarizes the stored results of a run.
type RunStats struct {
	Processed int `json:"processed"`
	Matched   int `json:"matched"`
}
