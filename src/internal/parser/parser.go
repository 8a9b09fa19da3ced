package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ipfeeds/listgen/src/internal/errors"
)

// Format identifies the payload layout of a source.
type Format string

const (
	FormatHostlist       Format = "hostlist"
	FormatSpamhausJSON   Format = "spamhaus-json"
	FormatInetIPInfoGeo  Format = "inet-ip-info-geo"
	FormatMaxMindCountry Format = "maxmind-country"
)

// Format option names.
const (
	OptionCountry = "country"
	OptionField   = "field"
)

// Options are format-specific settings taken from the source configuration.
type Options map[string]string

// Entry is a raw address entry as found in a feed: a bare IP or a CIDR string.
type Entry struct {
	Value  string
	Source string
	Line   int
}

// Result holds what a source yielded: entries plus non-fatal diagnostics.
type Result struct {
	Entries     []Entry
	Diagnostics *Diagnostics
}

// ParseFunc converts a raw payload into entries. It records per-entry problems
// in d and returns an error only when the payload as a whole is unusable.
type ParseFunc func(raw []byte, opts Options, d *Diagnostics) ([]Entry, error)

var registry = map[Format]ParseFunc{
	FormatHostlist:       parseHostlist,
	FormatSpamhausJSON:   parseSpamhausJSON,
	FormatInetIPInfoGeo:  parseInetIPInfoGeo,
	FormatMaxMindCountry: parseMaxMindCountry,
}

var countryFormats = map[Format]bool{
	FormatInetIPInfoGeo:  true,
	FormatMaxMindCountry: true,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Formats returns all supported formats, sorted.
func Formats() []Format {
	formats := make([]Format, 0, len(registry))
	for f := range registry {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// IsKnown reports whether format has a registered parser.
func IsKnown(format Format) bool {
	_, ok := registry[format]
	return ok
}

// RequiresCountry reports whether format needs the "country" option.
func RequiresCountry(format Format) bool {
	return countryFormats[format]
}

// Parse dispatches raw to the parser registered for format. Entries and
// diagnostics are attributed to source.
func Parse(source string, raw []byte, format Format, opts Options) (*Result, error) {
	fn, ok := registry[format]
	if !ok {
		return nil, errors.NewParseError(fmt.Sprintf("unknown format %q", format), nil)
	}

	d := NewDiagnostics(source)
	entries, err := fn(bytes.TrimPrefix(raw, utf8BOM), opts, d)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].Source = source
	}

	return &Result{Entries: entries, Diagnostics: d}, nil
}

// forEachLine calls fn for each non-blank, non-comment line with its 1-based number.
func forEachLine(raw []byte, fn func(line int, text string)) error {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fn(line, text)
	}

	if err := scanner.Err(); err != nil {
		return errors.NewParseError(fmt.Sprintf("failed to read payload at line %d", line+1), err)
	}
	return nil
}
