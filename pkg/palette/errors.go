package palette

import "errors"

var (
	ErrExtractorClosed = errors.New("palette: extractor is closed")
	ErrNilImage        = errors.New("palette: job has no image")
)
