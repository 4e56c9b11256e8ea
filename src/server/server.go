package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	app "photolayout/src/app"
	cfg "photolayout/src/configuration"
	"photolayout/src/logging"
	db "photolayout/src/repository"
	"photolayout/src/router"
	"photolayout/src/views"
)

const shutdownTimeout = 10 * time.Second

// NewRouter registers every endpoint on a fresh gin engine.
func NewRouter(config *cfg.Properties, handler *AppHandler, logger *zap.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), logging.GinLogger(logger))
	if len(config.Server.AllowOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     config.Server.AllowOrigins,
			AllowMethods:     []string{"GET", "HEAD", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Cache-Control"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if config.Debug {
		pprof.Register(engine)
	}

	engine.GET("/health", handler.GetHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/views/:name", handler.GetView)

	api := engine.Group("/api")
	api.GET("/routes", handler.GetRoutes)
	api.GET("/resolve", handler.Resolve)
	api.GET("/layouts", handler.GetLayouts)
	api.GET("/layouts/:id", handler.GetLayout)
	api.GET("/colors", handler.GetColors)
	api.GET("/session/:layout", handler.GetSession)
	api.POST("/photos", handler.PostPhoto)
	api.POST("/stickers", handler.PostSticker)

	engine.NoRoute(handler.Fallback)
	return engine
}

// NewSource picks where view bundles come from: the S3 bucket when enabled,
// a local directory when set, built-in placeholders otherwise.
func NewSource(ctx context.Context, config *cfg.Properties, table *router.Table, logger *zap.Logger) (views.Source, error) {
	switch {
	case config.S3.Enabled:
		client, err := app.NewMinioS3Client(config.S3.Host, config.S3.AccessKey, config.S3.SecretKey,
			config.S3.Bucket, config.S3.UseSSL, logger)
		if err != nil {
			return nil, err
		}
		missing, err := views.Missing(ctx, client, config.S3.Prefix, routeNames(table))
		if err != nil {
			logger.Warn("could not list view bundles", zap.Error(err))
		} else if len(missing) > 0 {
			logger.Warn("view bundles missing from bucket", zap.Strings("views", missing))
		}
		return views.BucketSource{Store: client, Prefix: config.S3.Prefix}, nil
	case config.Views.Dir != "":
		return views.DirSource{Dir: config.Views.Dir}, nil
	default:
		return views.Placeholders(routeNames(table)...), nil
	}
}

func routeNames(table *router.Table) []string {
	names := make([]string, 0)
	for _, route := range table.Routes() {
		names = append(names, route.Name)
	}
	return names
}

// RunServer serves until ctx is cancelled.
func RunServer(ctx context.Context, config *cfg.Properties, logger *zap.Logger) error {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	table, err := router.NewTable(config.BaseURL, router.DefaultRoutes()...)
	if err != nil {
		return err
	}
	catalog, err := db.NewCatalog(config)
	if err != nil {
		return err
	}
	source, err := NewSource(ctx, config, table, logger)
	if err != nil {
		return err
	}
	registry := views.NewRegistry(source,
		views.WithTimeout(config.Views.LoadTimeout),
		views.WithLogger(logger))
	if err := registry.Routes(ctx, table); err != nil {
		return err
	}

	handler := NewHandler(table, registry, catalog, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", config.Server.Port),
		Handler:      NewRouter(config, handler, logger),
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("base", table.Base()+"/"))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
