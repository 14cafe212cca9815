// Package spatial provides the read-only acceleration structures used by
// placement nodes: a balanced point k-d tree (nearest/range queries), a
// bounding-volume hierarchy over triangulated surfaces (ray casts, nearest
// surface point), and a padded sphere/box volume index backed by an R-tree
// (containment queries).
//
// Every structure is built once from a snapshot of geometry and is immutable
// after construction, which makes reads safe to share.
package spatial
