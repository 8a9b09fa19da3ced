package parser

import (
	"fmt"
	"sort"
	"strings"
)

// Reason classifies a non-fatal, per-entry problem.
type Reason string

const (
	ReasonMalformedLine  Reason = "malformed_line"
	ReasonBadRecord      Reason = "bad_record"
	ReasonMissingCIDR    Reason = "missing_cidr"
	ReasonBadRow         Reason = "bad_row"
	ReasonBadRange       Reason = "bad_range"
	ReasonInvalidAddress Reason = "invalid_address"
)

// maxSamples caps how many individual issues are kept for reporting.
const maxSamples = 20

// Issue is a single skipped entry.
type Issue struct {
	Source string
	Line   int
	Value  string
	Reason Reason
	Err    error
}

func (i Issue) String() string {
	var sb strings.Builder
	sb.WriteString(string(i.Reason))
	if i.Source != "" {
		sb.WriteString(" in ")
		sb.WriteString(i.Source)
	}
	if i.Line > 0 {
		fmt.Fprintf(&sb, " line %d", i.Line)
	}
	if i.Value != "" {
		fmt.Fprintf(&sb, ": %q", i.Value)
	}
	if i.Err != nil {
		fmt.Fprintf(&sb, " (%v)", i.Err)
	}
	return sb.String()
}

// Diagnostics accumulates per-entry problems that do not abort a source.
// It is not safe for concurrent use; each source owns its own instance and the
// pipeline merges them after the join.
type Diagnostics struct {
	source  string
	counts  map[Reason]int
	samples []Issue
}

// NewDiagnostics creates an accumulator whose issues are attributed to source.
func NewDiagnostics(source string) *Diagnostics {
	return &Diagnostics{
		source: source,
		counts: make(map[Reason]int),
	}
}

// Record counts one skipped entry.
func (d *Diagnostics) Record(reason Reason, line int, value string, err error) {
	d.add(Issue{Source: d.source, Line: line, Value: value, Reason: reason, Err: err})
}

func (d *Diagnostics) add(issue Issue) {
	d.counts[issue.Reason]++
	if len(d.samples) < maxSamples {
		d.samples = append(d.samples, issue)
	}
}

// Merge adds all counts and as many samples as fit from other.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	for reason, n := range other.counts {
		d.counts[reason] += n
	}
	for _, issue := range other.samples {
		if len(d.samples) >= maxSamples {
			break
		}
		d.samples = append(d.samples, issue)
	}
}

// Count returns the number of entries skipped for reason.
func (d *Diagnostics) Count(reason Reason) int {
	return d.counts[reason]
}

// Total returns the number of skipped entries across all reasons.
func (d *Diagnostics) Total() int {
	total := 0
	for _, n := range d.counts {
		total += n
	}
	return total
}

// Counts returns a copy of the per-reason counters.
func (d *Diagnostics) Counts() map[Reason]int {
	out := make(map[Reason]int, len(d.counts))
	for reason, n := range d.counts {
		out[reason] = n
	}
	return out
}

// Samples returns the first recorded issues, in recording order.
func (d *Diagnostics) Samples() []Issue {
	return append([]Issue(nil), d.samples...)
}

// Summary renders the counters as "reason=n, reason=n" sorted by reason.
func (d *Diagnostics) Summary() string {
	if len(d.counts) == 0 {
		return "-"
	}
	reasons := make([]string, 0, len(d.counts))
	for reason := range d.counts {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)

	parts := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		parts = append(parts, fmt.Sprintf("%s=%d", reason, d.counts[Reason(reason)]))
	}
	return strings.Join(parts, ", ")
}
