package domain

// RawHolder is one untrusted richlist entry as returned by the ledger.
// Balance is the ledger's textual representation and may fail to parse.
type RawHolder struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

// Holder is an account admitted for payout calculation.
// Invariants: Balance >= 1 (whole units, floor-truncated) and the account
// is not blacklisted. Immutable once constructed.
type Holder struct {
	Account string
	Balance int64
}
