// Package inmemoryscene provides a map-backed implementation of the
// scene.Backend interface. It is suitable for tests and for any host that
// wants to capture placement output without a real scene store.
//
// The backend records every construction call (duplicates, links, bone
// attachments, registered agents) so tests can assert on the exact sequence
// of instructions a graph produced. A mutex guards all state; the placement
// core itself is single-threaded, but hosts may inspect results from other
// goroutines.
package inmemoryscene
