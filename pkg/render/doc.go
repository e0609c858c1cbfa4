// Package render derives the visual fields of the active session and caches
// them between pushes.
//
// Cache holds at most one Entry: the rounded art and background color of the
// active session, keyed by artwork.Identity. Render decides between reuse and
// reprocessing:
//
//   - no session: the cache is cleared and the "No Media Playing" frame is returned;
//   - reprocess=false: the cached image and color are reused, or the
//     placeholder when nothing is cached; nothing is ever computed;
//   - reprocess=true: a matching identity reuses the entry bit-for-bit,
//     otherwise the art is downscaled, rounded, installed with the default
//     color, and a palette.Job for the new identity is returned.
//
// The entry is bound to a session token. A different token, a missing art or
// a new identity clears the entry before anything else happens.
//
// Apply installs an asynchronously computed color only when it still belongs
// to the current identity and actually differs from what is shown.
//
// Cache is meant to be driven from a single goroutine; the internal lock only
// protects readers such as Current.
package render
