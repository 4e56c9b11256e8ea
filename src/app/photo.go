package app

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DefaultOffset centres a photo inside its slot.
const DefaultOffset = 50.0

// NewPhoto creates a photo with a fresh id, stamped with now.
func NewPhoto(dataURL string, offsetX, offsetY float64, now time.Time) Photo {
	return Photo{
		ID:        uuid.NewString(),
		DataURL:   dataURL,
		Timestamp: now.UnixMilli(),
		OffsetX:   ClampOffset(offsetX),
		OffsetY:   ClampOffset(offsetY),
	}
}

// WithOffset returns a copy of p moved to the given offsets.
func (p Photo) WithOffset(offsetX, offsetY float64) Photo {
	p.OffsetX = ClampOffset(offsetX)
	p.OffsetY = ClampOffset(offsetY)
	return p
}

// Replace returns the photo that takes p's place when its image changes. The
// new photo gets its own id and timestamp but keeps p's framing; the image
// payload of an existing photo never changes in place.
func (p Photo) Replace(dataURL string, now time.Time) Photo {
	return NewPhoto(dataURL, p.OffsetX, p.OffsetY, now)
}

// ClampOffset bounds v to [0, 100]. NaN becomes DefaultOffset.
func ClampOffset(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return DefaultOffset
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
