package parser

import (
	"fmt"
	"net/netip"
	"strings"

	"go4.org/netipx"

	"github.com/ipfeeds/listgen/src/internal/errors"
)

// parseInetIPInfoGeo reads tab-separated geo rows and keeps the ones whose
// country matches the "country" option. Two layouts are understood:
//
//	COUNTRY<TAB>CIDR
//	START<TAB>END<TAB>COUNTRY[<TAB>...]
//
// START/END pairs are split into the minimal set of covering CIDRs.
func parseInetIPInfoGeo(raw []byte, opts Options, d *Diagnostics) ([]Entry, error) {
	country := strings.TrimSpace(opts[OptionCountry])
	if country == "" {
		return nil, errors.NewParseError("format inet-ip-info-geo requires the country option", nil)
	}

	var (
		entries []Entry
		lines   int
		tabbed  int
	)
	err := forEachLine(raw, func(line int, text string) {
		lines++
		cols := strings.Split(text, "\t")
		if len(cols) < 2 {
			d.Record(ReasonBadRow, line, text, nil)
			return
		}
		tabbed++

		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}

		if len(cols) == 2 {
			if !strings.EqualFold(cols[0], country) {
				return
			}
			if cols[1] == "" {
				d.Record(ReasonBadRow, line, text, nil)
				return
			}
			entries = append(entries, Entry{Value: cols[1], Line: line})
			return
		}

		if !strings.EqualFold(cols[2], country) {
			return
		}

		prefixes, err := rangeToPrefixes(cols[0], cols[1])
		if err != nil {
			d.Record(ReasonBadRange, line, text, err)
			return
		}
		for _, p := range prefixes {
			entries = append(entries, Entry{Value: p, Line: line})
		}
	})
	if err != nil {
		return nil, err
	}

	if lines > 0 && tabbed == 0 {
		return nil, errors.NewParseError("payload is not tab-separated", nil)
	}

	return entries, nil
}

// rangeToPrefixes converts an inclusive start/end address pair into CIDR
// strings. A start that already carries a prefix length is passed through.
func rangeToPrefixes(start, end string) ([]string, error) {
	if strings.Contains(start, "/") {
		return []string{start}, nil
	}

	from, err := netip.ParseAddr(start)
	if err != nil {
		return nil, fmt.Errorf("invalid start address: %w", err)
	}
	to, err := netip.ParseAddr(end)
	if err != nil {
		return nil, fmt.Errorf("invalid end address: %w", err)
	}

	r := netipx.IPRangeFrom(from.Unmap(), to.Unmap())
	if !r.IsValid() {
		return nil, fmt.Errorf("invalid range %s-%s", start, end)
	}

	prefixes := r.Prefixes()
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, p.String())
	}
	return out, nil
}
