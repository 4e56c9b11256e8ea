package app

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip[T any](t *testing.T, in T) T {
	t.Helper()
	data, err := json.Marshal(in)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestRecordsRoundTrip(t *testing.T) {
	t.Run("photo offset bounds", func(t *testing.T) {
		for _, offset := range []float64{0, 37.5, 100} {
			in := Photo{ID: "p1", DataURL: "data:image/jpeg;base64,/9j/4AAQ", Timestamp: 1712345678901, OffsetX: offset, OffsetY: 100 - offset}
			assert.Equal(t, in, roundTrip(t, in))
		}
	})

	t.Run("sticker scale and rotation bounds", func(t *testing.T) {
		for _, s := range []Sticker{
			{ID: "s1", Emoji: "🎉", X: 0, Y: 100, Scale: math.SmallestNonzeroFloat64, Rotation: 0},
			{ID: "s2", Emoji: "❤️", X: 12.25, Y: 80, Scale: 1e-9, Rotation: 359.999},
			{ID: "s3", Emoji: "👩‍👩‍👧", X: 50, Y: 50, Scale: 2.5, Rotation: 180},
		} {
			assert.Equal(t, s, roundTrip(t, s))
		}
	})

	t.Run("layout option", func(t *testing.T) {
		in := LayoutOption{ID: "strip-4", Name: "Classic Strip", Description: "Four photos", PhotoCount: 4, AspectRatio: "1:3"}
		assert.Equal(t, in, roundTrip(t, in))
	})

	t.Run("color option", func(t *testing.T) {
		flat := ColorOption{ID: "white", Color: "#ffffff"}
		pattern := ColorOption{ID: "dots", Color: "dots", IsPattern: true}
		assert.Equal(t, flat, roundTrip(t, flat))
		assert.Equal(t, pattern, roundTrip(t, pattern))
	})
}

func TestRecordsWireNames(t *testing.T) {
	data, err := json.Marshal(Photo{ID: "p", DataURL: "d", Timestamp: 1, OffsetX: 2, OffsetY: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p","dataUrl":"d","timestamp":1,"offsetX":2,"offsetY":3}`, string(data))

	data, err = json.Marshal(LayoutOption{ID: "l", Name: "n", Description: "d", PhotoCount: 2, AspectRatio: "4:3"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"l","name":"n","description":"d","photoCount":2,"aspectRatio":"4:3"}`, string(data))

	data, err = json.Marshal(ColorOption{ID: "c", Color: "#000"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c","color":"#000"}`, string(data))

	var color ColorOption
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c","color":"#000"}`), &color))
	assert.False(t, color.IsPattern)
}

func TestRecordsBinding(t *testing.T) {
	valid := Photo{ID: "p", DataURL: "d", OffsetX: 100, OffsetY: 0}
	assert.NoError(t, binding.Validator.ValidateStruct(&valid))

	outside := Photo{ID: "p", DataURL: "d", OffsetX: 100.5}
	assert.Error(t, binding.Validator.ValidateStruct(&outside))

	flat := Sticker{ID: "s", Emoji: "⭐", Scale: 0}
	assert.Error(t, binding.Validator.ValidateStruct(&flat))

	negative := LayoutOption{ID: "l", Name: "n", PhotoCount: -1, AspectRatio: "1:1"}
	assert.Error(t, binding.Validator.ValidateStruct(&negative))
}

func TestPhoto(t *testing.T) {
	now := time.UnixMilli(1712345678901)

	p := NewPhoto("data:image/png;base64,AAAA", -10, 140, now)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, int64(1712345678901), p.Timestamp)
	assert.Equal(t, 0.0, p.OffsetX)
	assert.Equal(t, 100.0, p.OffsetY)

	moved := p.WithOffset(25, math.NaN())
	assert.Equal(t, p.ID, moved.ID)
	assert.Equal(t, 25.0, moved.OffsetX)
	assert.Equal(t, DefaultOffset, moved.OffsetY)

	replaced := moved.Replace("data:image/png;base64,BBBB", now.Add(time.Second))
	assert.NotEqual(t, moved.ID, replaced.ID)
	assert.Equal(t, 25.0, replaced.OffsetX)
	assert.Equal(t, DefaultOffset, replaced.OffsetY)
	assert.Equal(t, "data:image/png;base64,AAAA", p.DataURL)
	assert.Equal(t, "data:image/png;base64,BBBB", replaced.DataURL)
	assert.Equal(t, p.Timestamp+1000, replaced.Timestamp)
}

func TestSticker(t *testing.T) {
	s := NewSticker("🌸", 120, -3)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 100.0, s.X)
	assert.Equal(t, 0.0, s.Y)
	assert.Equal(t, 1.0, s.Scale)

	n := Sticker{ID: "s", Emoji: "🌸", X: 10, Y: 20, Scale: 0, Rotation: -90}.Normalized()
	assert.Equal(t, DefaultStickerScale, n.Scale)

	for _, scale := range []float64{0.01, 1e-9, 0.049, 3} {
		assert.Equal(t, scale, Sticker{Scale: scale}.Normalized().Scale, "scale %v", scale)
	}
	assert.Equal(t, DefaultStickerScale, Sticker{Scale: math.NaN()}.Normalized().Scale)
	assert.Equal(t, DefaultStickerScale, Sticker{Scale: -2}.Normalized().Scale)
	assert.Equal(t, 270.0, n.Rotation)

	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{359.999, 359.999},
		{360, 0},
		{720.5, 0.5},
		{-360, 0},
		{-0.5, 359.5},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeRotation(tt.in), 1e-9, "rotation %v", tt.in)
	}
}

func TestLayoutOption(t *testing.T) {
	w, h, err := LayoutOption{AspectRatio: "4:3"}.Ratio()
	require.NoError(t, err)
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)

	for _, bad := range []string{"", "4", "4:0", "a:b", "1:2:3", "-1:2"} {
		_, _, err := LayoutOption{AspectRatio: bad}.Ratio()
		assert.ErrorIs(t, err, ErrAspectRatio, bad)
	}

	background := &ColorOption{ID: "white", Color: "#fff"}
	tpl := NewSessionTemplate(LayoutOption{ID: "grid-4", PhotoCount: 4}, background)
	assert.Equal(t, 4, tpl.Slots)
	assert.Empty(t, tpl.Photos)
	assert.Equal(t, 4, cap(tpl.Photos))
	assert.Same(t, background, tpl.Background)

	data, err := json.Marshal(NewSessionTemplate(LayoutOption{ID: "duo", PhotoCount: 2}, nil))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"photos":[]`)
	assert.Contains(t, string(data), `"background":null`)
}
