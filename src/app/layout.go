package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrAspectRatio = errors.New("invalid aspect ratio")

// Ratio parses AspectRatio ("W:H") into its two positive terms.
func (l LayoutOption) Ratio() (width, height int, err error) {
	parts := strings.Split(l.AspectRatio, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrAspectRatio, l.AspectRatio)
	}
	width, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrAspectRatio, l.AspectRatio)
	}
	height, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrAspectRatio, l.AspectRatio)
	}
	return width, height, nil
}

// SessionTemplate is the starting state handed to the session view for a
// layout: no photos yet, Slots of them expected, stickers in z-order.
type SessionTemplate struct {
	Layout     LayoutOption `json:"layout"`
	Slots      int          `json:"slots"`
	Photos     []Photo      `json:"photos"`
	Stickers   []Sticker    `json:"stickers"`
	Background *ColorOption `json:"background"`
}

// NewSessionTemplate prepares an empty session for layout. background may be nil.
func NewSessionTemplate(layout LayoutOption, background *ColorOption) SessionTemplate {
	return SessionTemplate{
		Layout:     layout,
		Slots:      layout.PhotoCount,
		Photos:     make([]Photo, 0, layout.PhotoCount),
		Stickers:   []Sticker{},
		Background: background,
	}
}
