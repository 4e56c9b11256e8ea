package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"photolayout/src/app"
)

type (
	PostPhotoBody struct {
		DataURL string   `json:"dataUrl" binding:"required,startswith=data:image/"`
		OffsetX *float64 `json:"offsetX" binding:"omitempty,min=0,max=100"`
		OffsetY *float64 `json:"offsetY" binding:"omitempty,min=0,max=100"`
	}

	PostStickerBody struct {
		Emoji    string   `json:"emoji" binding:"required,max=32"`
		X        *float64 `json:"x" binding:"omitempty,min=0,max=100"`
		Y        *float64 `json:"y" binding:"omitempty,min=0,max=100"`
		Scale    *float64 `json:"scale" binding:"omitempty,gt=0"`
		Rotation float64  `json:"rotation"`
	}
)

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// PostPhoto creates a Photo record from a captured image.
func (a *AppHandler) PostPhoto(c *gin.Context) {
	var body PostPhotoBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: err.Error()})
		return
	}
	photo := app.NewPhoto(body.DataURL,
		valueOr(body.OffsetX, app.DefaultOffset),
		valueOr(body.OffsetY, app.DefaultOffset),
		a.now())
	c.JSON(http.StatusCreated, photo)
}

// PostSticker creates a Sticker record, normalizing its rotation.
func (a *AppHandler) PostSticker(c *gin.Context) {
	var body PostStickerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Error: err.Error()})
		return
	}
	sticker := app.NewSticker(body.Emoji, valueOr(body.X, app.DefaultOffset), valueOr(body.Y, app.DefaultOffset))
	sticker.Scale = valueOr(body.Scale, app.DefaultStickerScale)
	sticker.Rotation = body.Rotation
	c.JSON(http.StatusCreated, sticker.Normalized())
}
