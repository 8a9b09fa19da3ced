// Package feeds retrieves raw feed payloads.
//
// A Fetcher downloads a source over HTTP(S) or reads it from a local file://
// URL, retries transient failures with exponential backoff and transparently
// gunzips payloads declared as gzip-compressed. Failures are reported as
// FETCH_ERROR or DECOMPRESSION_ERROR.
package feeds
