// Package reporting renders the per-run audit artifact, the holder table,
// and the derived summary consumed by operators.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/TheCrazyGM/mining-arc/internal/domain"
)

// Timestamp layout used in the audit artifact and its file name.
const (
	auditTimeLayout = time.RFC3339
	auditFileLayout = "20060102T150405Z"
)

// RenderCSV renders attempt records as a CSV string. Every row carries the
// run-wide timestamp alongside the per-attempt timestamp so a single file is
// sufficient to reconcile the run.
func RenderCSV(records []*domain.AttemptRecord, runAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("account,balance,payment,status,transaction_id,attempted_at,run_at\n")

	runStamp := runAt.UTC().Format(auditTimeLayout)
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%s,%s,%s,%s\n",
			r.Account,
			r.Balance,
			r.Amount.StringFixed(4),
			string(r.Status),
			r.TxID,
			r.AttemptedAt.UTC().Format(auditTimeLayout),
			runStamp,
		))
	}

	return sb.String()
}

// AuditFileName builds the per-run artifact name from the token and the run
// start time.
func AuditFileName(token string, runAt time.Time) string {
	return fmt.Sprintf("payout_%s_%s.csv", strings.ToLower(token), runAt.UTC().Format(auditFileLayout))
}

// WriteAuditFile writes the audit artifact for a completed run into dir,
// creating the directory if needed. The write happens once, at the end of
// the run. Any failure is returned as *AuditWriteError.
func WriteAuditFile(dir, token string, records []*domain.AttemptRecord, runAt time.Time) (string, error) {
	path := filepath.Join(dir, AuditFileName(token, runAt))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &AuditWriteError{Path: path, Cause: err}
	}

	data := RenderCSV(records, runAt)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return "", &AuditWriteError{Path: path, Cause: err}
	}

	return path, nil
}
