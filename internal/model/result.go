package model

import "fmt"

// Warning records a statement row that was skipped, and why.
type Warning struct {
	Row    string // e.g. "table 2 row 7" or "line 41"
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Row, w.Reason)
}

// ResultKind classifies a ParseResult.
type ResultKind string

const (
	ResultSuccess        ResultKind = "success"
	ResultPartialSuccess ResultKind = "partial"
	ResultFailure        ResultKind = "failure"
)

// ParseResult is what a variant parser produces for one document. It is
// consumed by the outcome classifier and never persisted.
type ParseResult struct {
	Transactions []Transaction
	Warnings     []Warning
	Err          error // set only for a Failure
}

// Kind reports whether the result is a success, a partial success, or a failure.
func (r ParseResult) Kind() ResultKind {
	switch {
	case r.Err != nil:
		return ResultFailure
	case len(r.Warnings) > 0:
		return ResultPartialSuccess
	default:
		return ResultSuccess
	}
}

// Success builds a result with no skipped rows.
func Success(txns []Transaction) ParseResult {
	return ParseResult{Transactions: txns}
}

// PartialSuccess builds a result that parsed some rows and skipped others.
func PartialSuccess(txns []Transaction, warnings []Warning) ParseResult {
	return ParseResult{Transactions: txns, Warnings: warnings}
}

// Failure builds a document-level failure.
func Failure(err error, warnings ...Warning) ParseResult {
	return ParseResult{Err: err, Warnings: warnings}
}
