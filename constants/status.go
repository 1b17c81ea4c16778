package constants

// RunStatus is the canonical status for rows in extraction_runs.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusQueued    RunStatus = "QUEUED"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusPartial   RunStatus = "PARTIAL" // soft deadline or output cap hit
	RunStatusFailed    RunStatus = "FAILED"
)
