package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"photolayout/src/views"
)

// GetView serves the bundle of a view module, fetching it on first use.
func (a *AppHandler) GetView(c *gin.Context) {
	name := c.Param("name")
	module, err := a.views.Module(c.Request.Context(), name)
	switch {
	case errors.Is(err, views.ErrUnknownView):
		c.JSON(http.StatusNotFound, ResponseError{Error: "unknown view"})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, ResponseError{Error: "view unavailable"})
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, views.ContentType, module.Body)
}
