package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"photolayout/src/app"
	"photolayout/src/router"
)

func (a *AppHandler) GetLayouts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"layouts": a.catalog.Layouts()})
}

func (a *AppHandler) GetLayout(c *gin.Context) {
	layout, ok := a.catalog.Layout(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ResponseError{Error: "unknown layout"})
		return
	}
	c.JSON(http.StatusOK, layout)
}

func (a *AppHandler) GetColors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"colors": a.catalog.Colors()})
}

// GetSession interprets the session route's layout parameter as a layout id
// and returns an empty session for it. ?background= selects a swatch.
func (a *AppHandler) GetSession(c *gin.Context) {
	layout, ok := a.catalog.Layout(c.Param(router.LayoutParam))
	if !ok {
		c.JSON(http.StatusNotFound, ResponseError{Error: "unknown layout"})
		return
	}

	var background *app.ColorOption
	if id := c.Query("background"); id != "" {
		color, ok := a.catalog.Color(id)
		if !ok {
			c.JSON(http.StatusBadRequest, ResponseError{Error: "unknown background"})
			return
		}
		background = &color
	}
	c.JSON(http.StatusOK, app.NewSessionTemplate(layout, background))
}
