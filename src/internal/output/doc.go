// Package output renders block lists to deterministic text files.
//
// A file holds one canonical CIDR per line, newline-terminated, sorted with
// IPv4 before IPv6, then by network address, then by prefix length. The order
// depends only on the set contents. Files are replaced atomically and left
// untouched when their content would not change.
package output
