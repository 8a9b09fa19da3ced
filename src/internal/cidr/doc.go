// Package cidr converts address entries into canonical network ranges.
//
// A NetworkRange holds the address family, the network address as a 128-bit
// host-order integer and the prefix length. Host bits are always masked off, so
// two ranges describing the same network compare equal with ==, which makes the
// type usable as a map key for deduplication.
//
// Bare addresses become /32 or /128 ranges. Entries with host bits set, such as
// 10.0.0.5/24, are coerced to their network (10.0.0.0/24) and the coercion is
// reported to the caller.
package cidr
