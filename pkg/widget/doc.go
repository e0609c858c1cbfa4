// Package widget assembles the immutable snapshot shown on the display
// surface.
//
// Presenter.Present combines a render.Frame with the button affordances from
// the command router into a RenderState and pushes it to a Surface exactly
// once. RenderState values are never modified after construction; surfaces
// may keep and share them freely.
package widget
