// Package hashing provides MD5 checksum calculation utilities.
//
// The proxies compute a checksum transparently while data flows through an
// io.Reader or io.Writer. The fetcher uses the reader proxy to log payload
// checksums, and the output writer compares the checksum of freshly rendered
// content against the file already on disk so unchanged lists are not rewritten.
//
// Example:
//
//	w := hashing.NewMD5WriterProxy(file)
//	fmt.Fprintln(w, "10.0.0.0/8")
//	checksum, _ := w.GetChecksum()
package hashing
