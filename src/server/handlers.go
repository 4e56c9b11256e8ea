package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	db "photolayout/src/repository"
	"photolayout/src/router"
	"photolayout/src/views"
)

// NotFoundView is the view name reported for paths no route matches.
const NotFoundView = "not-found"

type (
	AppHandler struct {
		table   *router.Table
		views   *views.Registry
		catalog db.CatalogDB
		log     *zap.Logger
		now     func() time.Time
	}

	RouteEntry struct {
		Path string `json:"path"`
		Name string `json:"name"`
		Kind string `json:"kind"`
		Lazy bool   `json:"lazy"`
	}

	ResponseRoutes struct {
		Base   string       `json:"base"`
		Routes []RouteEntry `json:"routes"`
	}

	// ResponseView describes the view a front-end path lands on.
	ResponseView struct {
		View   string          `json:"view"`
		Path   string          `json:"path"`
		Href   string          `json:"href"`
		Params router.Params   `json:"params"`
		Module string          `json:"module"`
		Scroll router.Position `json:"scroll"`
	}

	ResponseError struct {
		Error string `json:"error"`
		View  string `json:"view,omitempty"`
		Path  string `json:"path,omitempty"`
	}
)

func NewHandler(table *router.Table, registry *views.Registry, catalog db.CatalogDB, logger *zap.Logger) *AppHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppHandler{
		table:   table,
		views:   registry,
		catalog: catalog,
		log:     logger,
		now:     time.Now,
	}
}

func (a *AppHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (a *AppHandler) GetRoutes(c *gin.Context) {
	resp := ResponseRoutes{Base: a.table.Base() + "/", Routes: make([]RouteEntry, 0)}
	for _, route := range a.table.Routes() {
		kind, _ := a.table.Kind(route.Name)
		resp.Routes = append(resp.Routes, RouteEntry{Path: route.Path, Name: route.Name, Kind: kind.String(), Lazy: route.Lazy})
	}
	c.JSON(http.StatusOK, resp)
}

// Resolve matches ?path= against the route table without loading anything.
func (a *AppHandler) Resolve(c *gin.Context) {
	path, ok := c.GetQuery("path")
	if !ok {
		c.JSON(http.StatusBadRequest, ResponseError{Error: "path query parameter is required"})
		return
	}
	match, err := a.table.Resolve(path)
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Error: err.Error(), View: NotFoundView, Path: path})
		return
	}
	c.JSON(http.StatusOK, match)
}

// Fallback serves front-end paths in history mode: the path is navigated to,
// loading its view module, and the landing view is described. Unknown paths
// get the not-found view with a 404.
func (a *AppHandler) Fallback(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, ResponseError{Error: "not found"})
		return
	}

	path := c.Request.URL.EscapedPath()
	nav := router.NewNavigator(a.table, a.views, router.WithLogger(a.log))
	loc, err := nav.Push(c.Request.Context(), path)
	switch {
	case errors.Is(err, router.ErrNotFound):
		c.JSON(http.StatusNotFound, ResponseError{Error: "not found", View: NotFoundView, Path: path})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, ResponseError{Error: "view unavailable", Path: path})
		return
	}

	c.JSON(http.StatusOK, ResponseView{
		View:   loc.Name,
		Path:   loc.Path,
		Href:   loc.Href,
		Params: loc.Params,
		Module: "/views/" + loc.Name,
		Scroll: nav.Scroll(),
	})
}
