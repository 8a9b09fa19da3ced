// Package pipeline drives every configured list through
// fetch, parse, normalize, merge, exclude and write.
//
// Each list moves through the states
//
//	pending -> fetching -> parsing -> normalizing -> merging -> excluding -> writing -> done
//
// and ends in failed when a source cannot be fetched, decompressed or parsed
// as a whole, or when its file cannot be written. Lists are independent: one
// failed list never stops the others. Sources of a single list are fetched in
// parallel and the first fatal error cancels the rest of that list only.
package pipeline
