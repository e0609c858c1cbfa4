package widget

import (
	"image"
	"image/color"

	"github.com/dmitrymomot/nowplaying/pkg/artwork"
	"github.com/dmitrymomot/nowplaying/pkg/media"
)

// Icon is the variant of the play/pause button.
type Icon int

const (
	IconPlay Icon = iota
	IconPause
)

func (i Icon) String() string {
	if i == IconPause {
		return "pause"
	}
	return "play"
}

// IconFor shows pause while playing and play otherwise.
func IconFor(status media.Status) Icon {
	if status == media.StatusPlaying {
		return IconPause
	}
	return IconPlay
}

// RenderState is one immutable snapshot of the widget.
type RenderState struct {
	Seq            uint64
	HasSession     bool
	Token          media.Token
	App            string
	Title          string
	Artist         string
	Status         media.Status
	Art            image.Image
	ArtPlaceholder bool
	ArtIdentity    artwork.Identity
	Background     color.RGBA
	PlayIcon       Icon
	Controls       Controls
}

// SameContent reports whether s and o look identical on screen. Seq is
// ignored and art is compared by reference, since art images are never
// mutated once published.
func (s RenderState) SameContent(o RenderState) bool {
	s.Seq, o.Seq = 0, 0
	artSame := s.Art == o.Art
	s.Art, o.Art = nil, nil
	return artSame && s == o
}
