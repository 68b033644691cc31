package outcome

import (
	"fmt"

	"github.com/cardledger/cardledger/internal/dedup"
	"github.com/cardledger/cardledger/internal/model"
)

// Status is the final state of one statement file.
type Status string

const (
	StatusInserted Status = "inserted"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// ReasonNoTransactions is the failure reason for a document that parsed
// cleanly but held no transactions.
const ReasonNoTransactions = "no transactions found"

// Result is the outcome of processing one file.
type Result struct {
	File       string
	Status     Status
	Inserted   int // rows written
	Duplicates int // rows already in the ledger or repeated in the batch
	Warnings   []model.Warning
	Reason     string // set when Status is StatusFailed
}

func (r Result) String() string {
	switch r.Status {
	case StatusInserted:
		return fmt.Sprintf("%s: inserted %d (%d duplicates, %d warnings)", r.File, r.Inserted, r.Duplicates, len(r.Warnings))
	case StatusSkipped:
		return fmt.Sprintf("%s: skipped, %d duplicates", r.File, r.Duplicates)
	default:
		return fmt.Sprintf("%s: failed: %s", r.File, r.Reason)
	}
}

// Input is everything known about one file once it has been processed.
// Err is a failure before parsing (filename, dispatch or extraction);
// WriteErr is a failure of the ledger write.
type Input struct {
	File      string
	Err       error
	Parse     model.ParseResult
	Partition dedup.Result
	WriteErr  error
}

// Classify maps a file's processing results to its outcome.
func Classify(in Input) Result {
	res := Result{File: in.File, Warnings: in.Parse.Warnings}
	switch {
	case in.Err != nil:
		return failed(res, in.Err.Error())
	case in.Parse.Err != nil:
		return failed(res, in.Parse.Err.Error())
	case len(in.Parse.Transactions) == 0:
		return failed(res, ReasonNoTransactions)
	case in.WriteErr != nil:
		return failed(res, in.WriteErr.Error())
	}

	res.Duplicates = len(in.Partition.Duplicates)
	if len(in.Partition.New) == 0 {
		res.Status = StatusSkipped
		return res
	}
	res.Status = StatusInserted
	res.Inserted = len(in.Partition.New)
	return res
}

func failed(res Result, reason string) Result {
	res.Status = StatusFailed
	res.Reason = reason
	return res
}

// Summary counts outcomes over a cycle.
type Summary struct {
	Files      int
	Inserted   int // files
	Skipped    int
	Failed     int
	Rows       int // rows written
	Duplicates int
	Warnings   int
}

// Summarize totals a cycle's results.
func Summarize(results []Result) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusInserted:
			s.Inserted++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
		s.Rows += r.Inserted
		s.Duplicates += r.Duplicates
		s.Warnings += len(r.Warnings)
	}
	return s
}
