package blocklist

import (
	"fmt"

	"github.com/ipfeeds/listgen/src/internal/cidr"
)

// Flag is a range kept in the list although it partially overlaps an
// exclusion: the range is wider than the exclusion and contains it.
type Flag struct {
	Range     cidr.NetworkRange
	Exclusion cidr.NetworkRange
}

func (f Flag) String() string {
	return fmt.Sprintf("%s contains excluded %s", f.Range, f.Exclusion)
}

// FilterResult is the outcome of Filter.
type FilterResult struct {
	List    *BlockList
	Removed []cidr.NetworkRange
	Flagged []Flag
}

// Filter returns a copy of list without the ranges fully contained in any
// exclusion of the same family. Ranges that only partially overlap an
// exclusion are kept unmodified and reported in Flagged.
func Filter(list *BlockList, excludes []cidr.NetworkRange) FilterResult {
	res := FilterResult{List: New()}

	for r := range list.set {
		excluded := false
		var flagged *cidr.NetworkRange
		for i := range excludes {
			ex := excludes[i]
			if ex.Contains(r) {
				excluded = true
				break
			}
			if flagged == nil && r.Overlaps(ex) {
				flagged = &excludes[i]
			}
		}

		switch {
		case excluded:
			res.Removed = append(res.Removed, r)
		default:
			res.List.Add(r)
			if flagged != nil {
				res.Flagged = append(res.Flagged, Flag{Range: r, Exclusion: *flagged})
			}
		}
	}

	return res
}
