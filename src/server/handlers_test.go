package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photolayout/src/app"
	cfg "photolayout/src/configuration"
	db "photolayout/src/repository"
	"photolayout/src/router"
	"photolayout/src/views"
)

type failingSource struct{}

func (failingSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	return nil, errors.New("bucket unreachable")
}

func newTestServer(t *testing.T, base string, source views.Source) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config := &cfg.Properties{BaseURL: base}
	table, err := router.NewTable(base, router.DefaultRoutes()...)
	require.NoError(t, err)
	catalog, err := db.NewCatalog(config)
	require.NoError(t, err)

	registry := views.NewRegistry(source, views.WithTimeout(time.Second))
	for _, route := range table.Routes() {
		registry.Declare(route.Name)
	}

	handler := NewHandler(table, registry, catalog, nil)
	handler.now = func() time.Time { return time.UnixMilli(1712345678901) }
	return NewRouter(config, handler, handler.log)
}

func placeholders() views.Source {
	return views.Placeholders(router.Home, router.About, router.Privacy, router.Layout, router.Session)
}

func do(t *testing.T, engine *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndRoutes(t *testing.T) {
	engine := newTestServer(t, "/", placeholders())

	w := do(t, engine, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success"}`, w.Body.String())

	w = do(t, engine, http.MethodGet, "/api/routes", "")
	require.Equal(t, http.StatusOK, w.Code)
	routes := decode[ResponseRoutes](t, w)
	assert.Equal(t, "/", routes.Base)
	require.Len(t, routes.Routes, 5)
	assert.Equal(t, RouteEntry{Path: "/session/:layout", Name: "session", Kind: "pattern", Lazy: true}, routes.Routes[4])
	assert.Equal(t, RouteEntry{Path: "/", Name: "home", Kind: "static"}, routes.Routes[0])

	w = do(t, engine, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResolve(t *testing.T) {
	engine := newTestServer(t, "/", placeholders())

	w := do(t, engine, http.MethodGet, "/api/resolve?path=/session/abc123", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"session","path":"/session/abc123","params":{"layout":"abc123"}}`, w.Body.String())

	w = do(t, engine, http.MethodGet, "/api/resolve?path=/privacy", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"privacy","path":"/privacy","params":{}}`, w.Body.String())

	w = do(t, engine, http.MethodGet, "/api/resolve?path=/session/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, NotFoundView, decode[ResponseError](t, w).View)

	w = do(t, engine, http.MethodGet, "/api/resolve", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFallback(t *testing.T) {
	engine := newTestServer(t, "/", placeholders())

	tests := []struct {
		path string
		view string
	}{
		{"/", router.Home},
		{"/about", router.About},
		{"/privacy/", router.Privacy},
		{"/layout?step=1", router.Layout},
		{"/%61bout", router.About},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(t, engine, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			resp := decode[ResponseView](t, w)
			assert.Equal(t, tt.view, resp.View)
			assert.Equal(t, "/views/"+tt.view, resp.Module)
			assert.Equal(t, router.Position{}, resp.Scroll)
			assert.Empty(t, resp.Params)
		})
	}

	t.Run("session", func(t *testing.T) {
		w := do(t, engine, http.MethodGet, "/session/strip%204", "")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ResponseView](t, w)
		assert.Equal(t, router.Session, resp.View)
		assert.Equal(t, "strip 4", resp.Params.Get(router.LayoutParam))
		assert.Equal(t, "/session/strip%204", resp.Href)
	})

	t.Run("not found is stable", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			w := do(t, engine, http.MethodGet, "/does-not-exist", "")
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.JSONEq(t, `{"error":"not found","view":"not-found","path":"/does-not-exist"}`, w.Body.String())
		}
	})

	t.Run("non-GET", func(t *testing.T) {
		w := do(t, engine, http.MethodPost, "/about", `{}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFallbackBase(t *testing.T) {
	engine := newTestServer(t, "/booth/", placeholders())

	w := do(t, engine, http.MethodGet, "/booth/layout", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ResponseView](t, w)
	assert.Equal(t, router.Layout, resp.View)
	assert.Equal(t, "/booth/layout", resp.Href)

	w = do(t, engine, http.MethodGet, "/layout", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFallbackViewFailure(t *testing.T) {
	engine := newTestServer(t, "/", failingSource{})

	w := do(t, engine, http.MethodGet, "/about", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = do(t, engine, http.MethodGet, "/views/about", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGetView(t *testing.T) {
	engine := newTestServer(t, "/", placeholders())

	w := do(t, engine, http.MethodGet, "/views/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, views.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"session"`)

	w = do(t, engine, http.MethodGet, "/views/gallery", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	engine := newTestServer(t, "/", placeholders())

	w := do(t, engine, http.MethodGet, "/api/layouts", "")
	require.Equal(t, http.StatusOK, w.Code)
	layouts := decode[struct {
		Layouts []app.LayoutOption `json:"layouts"`
	}](t, w)
	assert.NotEmpty(t, layouts.Layouts)

	w = do(t, engine, http.MethodGet, "/api/layouts/duo", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[app.LayoutOption](t, w).PhotoCount)

	w = do(t, engine, http.MethodGet, "/api/layouts/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, engine, http.MethodGet, "/api/colors", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isPattern":true`)
}

func TestGetSession(t *testing.T) {
	engine := newTestServer(t, "/", placeholders())

	w := do(t, engine, http.MethodGet, "/api/session/grid-4?background=dots", "")
	require.Equal(t, http.StatusOK, w.Code)
	tpl := decode[app.SessionTemplate](t, w)
	assert.Equal(t, "grid-4", tpl.Layout.ID)
	assert.Equal(t, 4, tpl.Slots)
	assert.Empty(t, tpl.Photos)
	require.NotNil(t, tpl.Background)
	assert.True(t, tpl.Background.IsPattern)

	w = do(t, engine, http.MethodGet, "/api/session/single", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[app.SessionTemplate](t, w).Background)

	w = do(t, engine, http.MethodGet, "/api/session/abc123", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, engine, http.MethodGet, "/api/session/duo?background=plaid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostPhoto(t *testing.T) {
	engine := newTestServer(t, "/", placeholders())

	w := do(t, engine, http.MethodPost, "/api/photos", `{"dataUrl":"data:image/jpeg;base64,/9j/4AAQ","offsetX":0}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	photo := decode[app.Photo](t, w)
	assert.NotEmpty(t, photo.ID)
	assert.Equal(t, int64(1712345678901), photo.Timestamp)
	assert.Equal(t, 0.0, photo.OffsetX)
	assert.Equal(t, app.DefaultOffset, photo.OffsetY)

	for name, body := range map[string]string{
		"missing image":   `{"offsetX":10}`,
		"not an image":    `{"dataUrl":"https://example.com/a.jpg"}`,
		"offset too high": `{"dataUrl":"data:image/png;base64,AA","offsetY":100.01}`,
		"negative offset": `{"dataUrl":"data:image/png;base64,AA","offsetX":-1}`,
		"malformed":       `{"dataUrl":`,
	} {
		t.Run(name, func(t *testing.T) {
			w := do(t, engine, http.MethodPost, "/api/photos", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestPostSticker(t *testing.T) {
	engine := newTestServer(t, "/", placeholders())

	w := do(t, engine, http.MethodPost, "/api/stickers", `{"emoji":"🎀","x":10,"y":90,"scale":1.5,"rotation":-90}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sticker := decode[app.Sticker](t, w)
	assert.NotEmpty(t, sticker.ID)
	assert.Equal(t, "🎀", sticker.Emoji)
	assert.Equal(t, 1.5, sticker.Scale)
	assert.Equal(t, 270.0, sticker.Rotation)

	w = do(t, engine, http.MethodPost, "/api/stickers", `{"emoji":"⭐"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	sticker = decode[app.Sticker](t, w)
	assert.Equal(t, 1.0, sticker.Scale)
	assert.Equal(t, app.DefaultOffset, sticker.X)

	w = do(t, engine, http.MethodPost, "/api/stickers", `{"emoji":"✨","scale":0.01}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 0.01, decode[app.Sticker](t, w).Scale)

	w = do(t, engine, http.MethodPost, "/api/stickers", `{"emoji":"⭐","scale":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, engine, http.MethodPost, "/api/stickers", `{"x":5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
