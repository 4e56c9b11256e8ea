package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	app "photolayout/src/app"
	cfg "photolayout/src/configuration"
	"photolayout/src/logging"
	server "photolayout/src/server"
	"photolayout/src/views"
)

func main() {
	publish := flag.String("publish", "", "upload <dir>/*.js view bundles to the S3 bucket and exit")
	flag.Parse()

	config, err := cfg.ReadProperties()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(config.Log.Level, config.Log.Encoding)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *publish != "" {
		err = publishViews(ctx, config, *publish, logger)
	} else {
		err = server.RunServer(ctx, config, logger)
	}
	if err != nil {
		logger.Error("exiting", zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func publishViews(ctx context.Context, config *cfg.Properties, dir string, logger *zap.Logger) error {
	client, err := app.NewMinioS3Client(config.S3.Host, config.S3.AccessKey, config.S3.SecretKey,
		config.S3.Bucket, config.S3.UseSSL, logger)
	if err != nil {
		return err
	}
	published, err := views.Publish(ctx, client, config.S3.Prefix, dir)
	if err != nil {
		return err
	}
	logger.Info("published view bundles", zap.Strings("views", published), zap.String("bucket", config.S3.Bucket))
	return nil
}
