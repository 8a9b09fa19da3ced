package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ipfeeds/listgen/src/internal/errors"
)

const (
	defaultCIDRField = "cidr"
	metadataType     = "metadata"
)

// parseSpamhausJSON accepts either a JSON array of records or newline-delimited
// JSON records (the layout of the published DROP feeds). The address is read
// from the "cidr" field unless the "field" option names another one.
func parseSpamhausJSON(raw []byte, opts Options, d *Diagnostics) ([]Entry, error) {
	field := opts[OptionField]
	if field == "" {
		field = defaultCIDRField
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, errors.NewParseError("payload is not a valid JSON array", err)
		}

		var entries []Entry
		for i, rec := range records {
			if entry, ok := decodeSpamhausRecord(rec, field, i+1, d); ok {
				entries = append(entries, entry)
			}
		}
		return entries, nil
	}

	var (
		entries []Entry
		lines   int
		decoded int
	)
	err := forEachLine(raw, func(line int, text string) {
		lines++
		if !json.Valid([]byte(text)) {
			d.Record(ReasonBadRecord, line, text, fmt.Errorf("invalid JSON"))
			return
		}
		decoded++
		if entry, ok := decodeSpamhausRecord(json.RawMessage(text), field, line, d); ok {
			entries = append(entries, entry)
		}
	})
	if err != nil {
		return nil, err
	}

	if lines > 0 && decoded == 0 {
		return nil, errors.NewParseError("payload contains no JSON records", nil)
	}

	return entries, nil
}

// recordHeader holds the fields shared by every record of a DROP feed.
type recordHeader struct {
	Type string `json:"type"`
}

func decodeSpamhausRecord(rec json.RawMessage, field string, line int, d *Diagnostics) (Entry, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rec, &fields); err != nil {
		d.Record(ReasonBadRecord, line, string(rec), err)
		return Entry{}, false
	}

	value, ok := fields[field]
	if !ok {
		var header recordHeader
		if err := json.Unmarshal(rec, &header); err != nil {
			d.Record(ReasonBadRecord, line, string(rec), err)
			return Entry{}, false
		}
		if header.Type != metadataType {
			d.Record(ReasonMissingCIDR, line, string(rec), nil)
		}
		return Entry{}, false
	}

	var cidr string
	if err := json.Unmarshal(value, &cidr); err != nil || cidr == "" {
		d.Record(ReasonMissingCIDR, line, string(value), err)
		return Entry{}, false
	}

	return Entry{Value: cidr, Line: line}, true
}
