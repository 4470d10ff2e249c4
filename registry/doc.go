// Package registry memoizes channels by worker fingerprint so repeated
// construction calls for semantically identical worker logic return the same
// live channel instead of spawning duplicates.
//
// A Registry is an explicit, injectable object with a clear lifecycle:
// created once per process (the WorkerBox facade owns one by default) and
// cleared explicitly in tests. Entries live until Clear; there is no
// eviction.
package registry
