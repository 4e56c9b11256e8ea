package app

// LayoutOption is a selectable collage template.
type LayoutOption struct {
	// Unique within the set of offered layouts.
	ID string `json:"id" yaml:"id" binding:"required"`

	Name        string `json:"name" yaml:"name" binding:"required"`
	Description string `json:"description" yaml:"description"`

	// Number of photo slots a session of this layout must provide.
	PhotoCount int `json:"photoCount" yaml:"photoCount" binding:"min=0"`

	// Width to height, e.g. "4:3".
	AspectRatio string `json:"aspectRatio" yaml:"aspectRatio" binding:"required"`
}

// Photo is a captured image placed within a layout slot.
type Photo struct {
	// Unique within a session's photo collection.
	ID string `json:"id" yaml:"id" binding:"required"`

	// Encoded image payload (data: URL). Replacing the image means a new Photo.
	DataURL string `json:"dataUrl" yaml:"dataUrl" binding:"required"`

	// Creation time in milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`

	// Positional offsets inside the slot, in percent.
	OffsetX float64 `json:"offsetX" yaml:"offsetX" binding:"min=0,max=100"`
	OffsetY float64 `json:"offsetY" yaml:"offsetY" binding:"min=0,max=100"`
}

// Sticker is an emoji overlay composited above the photos. X and Y are
// percentages of the canvas, the same unit as Photo offsets.
type Sticker struct {
	ID    string  `json:"id" yaml:"id" binding:"required"`
	Emoji string  `json:"emoji" yaml:"emoji" binding:"required"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`

	// 1.0 is natural size.
	Scale float64 `json:"scale" yaml:"scale" binding:"gt=0"`

	// Degrees, normalized into [0, 360) by convention.
	Rotation float64 `json:"rotation" yaml:"rotation"`
}

// ColorOption is a background swatch. When IsPattern is set, Color names a
// pattern resource instead of a flat CSS color.
type ColorOption struct {
	ID        string `json:"id" yaml:"id" binding:"required"`
	Color     string `json:"color" yaml:"color" binding:"required"`
	IsPattern bool   `json:"isPattern,omitempty" yaml:"isPattern,omitempty"`
}
