// Package artwork holds the image side of the render pipeline: art identity,
// bounded downscaling, the edge-rounding transform and the placeholder image.
//
// Identity is the cache key for derived visuals. Two identities are equal iff
// the art content is considered the same: the host-provided key plus the image
// bounds, or, when the host gives no key, the image value itself. Identity
// comparison is the only cache-hit criterion.
//
// Downscale and Sample use golang.org/x/image/draw. RoundEdge clips two
// adjacent corners of one edge with radius R and keeps the opposite corners
// square; it is deterministic and idempotent.
package artwork
