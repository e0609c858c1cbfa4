package render

import "errors"

var ErrInvalidColor = errors.New("render: invalid hex color")
