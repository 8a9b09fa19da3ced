package parser

import (
	"strings"
)

// parseHostlist reads one bare IP or CIDR per line. Inline "#" and ";" comments
// are stripped, so DROP-style lines such as "1.10.16.0/20 ; SBL256894" are accepted.
func parseHostlist(raw []byte, _ Options, d *Diagnostics) ([]Entry, error) {
	var entries []Entry

	err := forEachLine(raw, func(line int, text string) {
		if i := strings.IndexAny(text, "#;"); i >= 0 {
			text = strings.TrimSpace(text[:i])
			if text == "" {
				return
			}
		}

		if !looksLikeAddress(text) {
			d.Record(ReasonMalformedLine, line, text, nil)
			return
		}

		entries = append(entries, Entry{Value: text, Line: line})
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// looksLikeAddress is a shape check only: IP/CIDR characters with at least one
// separator. Syntax is validated later by the normalizer.
func looksLikeAddress(s string) bool {
	if s == "" {
		return false
	}

	hasSeparator := false
	for _, c := range s {
		switch {
		case c == '.' || c == ':':
			hasSeparator = true
		case c == '/':
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}

	return hasSeparator
}
