package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// DryRunPrefix marks placeholder transaction ids so they can never be
// confused with real ledger signatures.
const DryRunPrefix = "DRYRUN-"

// ComputePlaceholderTxID computes a deterministic placeholder transaction id
// for a dry-run dispatch attempt.
// Formula: DRYRUN- + base58(SHA256(run_id|account|amount))
func ComputePlaceholderTxID(runID, account, amount string) string {
	data := fmt.Sprintf("%s|%s|%s", runID, account, amount)

	hash := sha256.Sum256([]byte(data))
	return DryRunPrefix + base58.Encode(hash[:])
}
