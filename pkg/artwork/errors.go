package artwork

import "errors"

var (
	ErrNilImage    = errors.New("artwork: nil image")
	ErrEmptyImage  = errors.New("artwork: image has no pixels")
	ErrInvalidEdge = errors.New("artwork: invalid edge")
)
