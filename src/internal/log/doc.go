// Package log provides simple leveled logging for listgen.
//
// The package exposes global printf-style functions backed by a single
// charmbracelet/log logger writing to stderr, so that stdout stays reserved for
// the run summary.
//
// # Log Levels
//
//   - DEBUG: per-entry diagnostics and fetch details (only shown in verbose mode)
//   - INFO: list and source progress
//   - WARN: skipped entries, partially excluded ranges
//   - ERROR: failed sources and lists
//
// # Example Usage
//
//	log.Infof("Processing list %q with %d sources", name, len(sources))
//	log.Warnf("Skipping malformed entry %q", entry)
//
// Enabling verbose mode for debug output:
//
//	log.SetVerbose(true)
//	log.Debugf("Fetched %d bytes from %s", n, url)
//
// All functions are safe for concurrent use.
package log
