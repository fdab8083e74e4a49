package reporting

import "fmt"

// AuditWriteError reports a failure to persist the audit artifact.
// It is fatal: by the time export runs, funds may already have moved,
// so a lost trail must be surfaced loudly rather than swallowed.
type AuditWriteError struct {
	Path  string
	Cause error
}

func (e *AuditWriteError) Error() string {
	return fmt.Sprintf("write audit artifact %s: %v", e.Path, e.Cause)
}

func (e *AuditWriteError) Unwrap() error {
	return e.Cause
}
