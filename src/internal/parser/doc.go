// Package parser turns raw feed payloads into address entries.
//
// Each format has a ParseFunc registered in this package. Parsers are strict
// about the payload as a whole and lenient about individual entries: a payload
// that cannot be understood at all yields a PARSE_ERROR, while a single bad line
// is recorded in Diagnostics and skipped.
package parser
