package blocklist

import (
	"slices"

	"github.com/ipfeeds/listgen/src/internal/cidr"
)

// DedupeMode selects how aggressively Merge collapses ranges.
type DedupeMode string

const (
	// DedupeExact removes ranges that are equal after normalization.
	DedupeExact DedupeMode = "exact"
	// DedupeCovered additionally removes ranges contained in another range of the list.
	DedupeCovered DedupeMode = "covered"
)

// BlockList is an unordered set of normalized ranges. The zero value is not
// usable; create one with New or Merge.
type BlockList struct {
	set map[cidr.NetworkRange]struct{}
}

func New(ranges ...cidr.NetworkRange) *BlockList {
	l := &BlockList{set: make(map[cidr.NetworkRange]struct{}, len(ranges))}
	for _, r := range ranges {
		l.Add(r)
	}
	return l
}

// Add inserts r and reports whether it was not present yet.
func (l *BlockList) Add(r cidr.NetworkRange) bool {
	if _, ok := l.set[r]; ok {
		return false
	}
	l.set[r] = struct{}{}
	return true
}

func (l *BlockList) Remove(r cidr.NetworkRange) {
	delete(l.set, r)
}

func (l *BlockList) Len() int {
	return len(l.set)
}

// Ranges returns the members in no particular order.
func (l *BlockList) Ranges() []cidr.NetworkRange {
	out := make([]cidr.NetworkRange, 0, len(l.set))
	for r := range l.set {
		out = append(out, r)
	}
	return out
}

// Merge unions the ranges produced by each source. Equal ranges collapse into one.
func Merge(perSource ...[]cidr.NetworkRange) *BlockList {
	size := 0
	for _, rs := range perSource {
		size += len(rs)
	}

	l := &BlockList{set: make(map[cidr.NetworkRange]struct{}, size)}
	for _, rs := range perSource {
		for _, r := range rs {
			l.Add(r)
		}
	}
	return l
}

// RemoveCovered drops every range that lies inside another member of the list
// and returns how many were dropped. Adjacent ranges are left alone.
func (l *BlockList) RemoveCovered() int {
	sorted := l.Ranges()
	slices.SortFunc(sorted, cidr.Compare)

	removed := 0
	var (
		cur    cidr.NetworkRange
		hasCur bool
	)
	// CIDR blocks either nest or are disjoint, and in network order a parent
	// always precedes its children, so checking the last kept range is enough.
	for _, r := range sorted {
		if hasCur && cur.Contains(r) {
			l.Remove(r)
			removed++
			continue
		}
		cur, hasCur = r, true
	}
	return removed
}
