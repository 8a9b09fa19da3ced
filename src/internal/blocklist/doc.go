// Package blocklist holds the per-list set of network ranges and the two
// set operations applied to it: merging sources with duplicate removal, and
// filtering out excluded ranges.
package blocklist
