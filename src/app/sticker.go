package app

import (
	"math"

	"github.com/google/uuid"
)

// DefaultStickerScale is the natural size of a sticker.
const DefaultStickerScale = 1.0

// NewSticker places emoji at (x, y) with natural size and no rotation.
func NewSticker(emoji string, x, y float64) Sticker {
	return Sticker{
		ID:    uuid.NewString(),
		Emoji: emoji,
		X:     ClampOffset(x),
		Y:     ClampOffset(y),
		Scale: DefaultStickerScale,
	}
}

// Normalized returns s with its position on the canvas and rotation in
// [0, 360). Any positive finite scale is kept; others reset to the default.
func (s Sticker) Normalized() Sticker {
	s.X = ClampOffset(s.X)
	s.Y = ClampOffset(s.Y)
	if math.IsNaN(s.Scale) || math.IsInf(s.Scale, 0) || s.Scale <= 0 {
		s.Scale = DefaultStickerScale
	}
	s.Rotation = NormalizeRotation(s.Rotation)
	return s
}

// NormalizeRotation maps any angle in degrees into [0, 360).
func NormalizeRotation(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	// -0 and values rounding up to 360 collapse to 0
	if r == 0 || r >= 360 {
		return 0
	}
	return r
}
