// Package palette extracts a representative background color from album art.
//
// Generate quantizes an image into a handful of swatches (5-bit histogram and
// median cut) and assigns them to six targets modeled after the classic
// Android palette: light/regular/dark variants of vibrant and muted. Select
// then walks the fixed priority DarkVibrant, Vibrant, DarkMuted, Muted and
// falls back to a default color when none qualifies.
//
// Extractor runs the computation on a single dedicated goroutine. Jobs are
// processed strictly in submission order, one at a time; results come out of
// Results and carry the art identity they were computed for, so the consumer
// can discard results that became stale while the job was running:
//
//	ex := palette.NewExtractor(palette.WithFallback(defaultColor))
//	defer ex.Close()
//
//	_ = ex.Submit(palette.Job{Identity: id, Image: art})
//	res := <-ex.Results()
//	if res.Identity == currentIdentity {
//		apply(res.Color)
//	}
//
// Close never waits for an in-flight job. It refuses new jobs, drops queued
// ones and guarantees that a result finished after Close is never delivered.
package palette
