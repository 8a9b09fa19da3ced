package pipeline

import (
	"time"

	"github.com/ipfeeds/listgen/src/internal/blocklist"
	"github.com/ipfeeds/listgen/src/internal/errors"
	"github.com/ipfeeds/listgen/src/internal/output"
	"github.com/ipfeeds/listgen/src/internal/parser"
)

type State string

const (
	StatePending     State = "pending"
	StateFetching    State = "fetching"
	StateParsing     State = "parsing"
	StateNormalizing State = "normalizing"
	StateMerging     State = "merging"
	StateExcluding   State = "excluding"
	StateWriting     State = "writing"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Stats are the counters reported per list at the end of a run.
type Stats struct {
	// EntriesIn is the number of entries yielded by all parsers.
	EntriesIn int
	// Coerced counts entries whose host bits were masked off.
	Coerced int
	// AfterDedup is the list size after merging sources.
	AfterDedup int
	// Covered counts ranges dropped because another range contains them.
	Covered int
	// Excluded counts ranges removed by exclusions.
	Excluded int
	// Flagged counts ranges kept despite partially overlapping an exclusion.
	Flagged int
	// Written is the number of lines in the combined output file.
	Written int
}

// ListResult is the outcome of one list.
type ListResult struct {
	Name  string
	State State
	// FailedIn is the state the list was in when it failed.
	FailedIn State
	// FailedSource is the URL of the source that failed the list, if any.
	FailedSource string
	Err          error

	Stats       Stats
	Diagnostics *parser.Diagnostics
	Flags       []blocklist.Flag
	Files       []output.FileResult
	Duration    time.Duration
}

func (r ListResult) Failed() bool {
	return r.State == StateFailed
}

// ErrorCode returns the code of the error that failed the list.
func (r ListResult) ErrorCode() errors.ErrorCode {
	return errors.CodeOf(r.Err)
}

// FailedCount returns how many results ended in the failed state.
func FailedCount(results []ListResult) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}
