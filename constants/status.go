package constants

// RunStatus is the canonical status of one document run (stored in extract_runs).
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning RunStatus = "RUNNING" // text extracted, parsing in progress
	RunStatusOK      RunStatus = "OK"      // all tables written
	RunStatusFailed  RunStatus = "FAILED"  // terminal failure, nothing written
)
