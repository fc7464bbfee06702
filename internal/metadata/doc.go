// Package metadata persists provenance sets and combines them.
//
// A Codec turns a provenance.Set into the compact envelope stored inside
// GhostKey documents and sidecar files:
//
//	{"ghostkey_metadata":{"version":"1.0","created":1700000000.5,"data":{"ranges":[...]}}}
//
// Decoding also accepts the legacy bare form {"ranges":[...]}. Malformed text
// never produces an error: Decode returns nil and logs the cause, and callers
// treat nil as "no metadata".
//
// Merge combines two decoded sets and ComputeStats summarizes one against a
// buffer length.
package metadata
