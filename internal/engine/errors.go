package engine

import "fmt"

// RetrievalError reports that the holder batch could not be obtained or
// parsed. It is recovered at the batch level: the run proceeds with an
// empty holder set instead of aborting.
type RetrievalError struct {
	Cause error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("holder retrieval failed: %v", e.Cause)
}

func (e *RetrievalError) Unwrap() error { return e.Cause }

// TransferError reports that a single holder's dispatch attempt failed.
// It is recovered at the per-holder level: the attempt is recorded as
// FAILED and the run continues with the next holder.
type TransferError struct {
	Account string
	Cause   error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer to %s failed: %v", e.Account, e.Cause)
}

func (e *TransferError) Unwrap() error { return e.Cause }
