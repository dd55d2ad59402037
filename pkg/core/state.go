package core

import "time"

// Store defines the interface for the run history.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	// Run operations
	CreateRun(program string, version string) (*Run, error)
	GetRun(id string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	ListRuns(limit int) ([]*Run, error)

	// Defect operations
	SaveDefects(runID string, defects []Defect) error
	GetDefects(runID string) ([]Defect, error)
}

// RunStatus represents the status of a lint run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusClean     RunStatus = "clean"
	RunStatusDefects   RunStatus = "defects"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run represents one lint run of one program.
type Run struct {
	ID          string     `json:"id"`
	Program     string     `json:"program"`
	Version     string     `json:"version"`
	Status      RunStatus  `json:"status"`
	DefectCount int        `json:"defect_count"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}
