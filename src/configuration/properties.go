package configuration

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type (
	Properties struct {
		// BaseURL prefixes every front-end route, e.g. "/" or "/booth/".
		BaseURL string `env:"BASE_URL" envDefault:"/"`
		Debug   bool   `env:"DEBUG" envDefault:"false"`

		Log     LogProperties        `envPrefix:"LOG_"`
		Server  HttpServerProperties `envPrefix:"HTTP_"`
		S3      S3Properties         `envPrefix:"S3_"`
		Views   ViewsProperties      `envPrefix:"VIEWS_"`
		Catalog CatalogProperties    `envPrefix:"CATALOG_"`
	}

	LogProperties struct {
		Level    string `env:"LEVEL" envDefault:"debug"`
		Encoding string `env:"ENCODING" envDefault:"json"`
	}

	HttpServerProperties struct {
		Name         string        `env:"NAME" envDefault:"photolayout"`
		Port         string        `env:"PORT" envDefault:"8088"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
		// AllowOrigins lists front-end origins allowed by CORS.
		AllowOrigins []string `env:"ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	}

	S3Properties struct {
		Enabled   bool   `env:"ENABLED" envDefault:"false"`
		Host      string `env:"HOST" envDefault:"localhost:9000"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET" envDefault:"views"`
		Prefix    string `env:"PREFIX" envDefault:"views/"`
	}

	ViewsProperties struct {
		// LoadTimeout bounds a single lazy view fetch.
		LoadTimeout time.Duration `env:"LOAD_TIMEOUT" envDefault:"10s"`
		// Dir holds view bundles served when S3 is disabled. Empty means built-in placeholders.
		Dir string `env:"DIR"`
	}

	CatalogProperties struct {
		// Path to a YAML catalog; the embedded default is used when empty.
		Path string `env:"PATH"`
	}
)

func ReadProperties() (*Properties, error) {
	config := &Properties{}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("read config error: %w", err)
	}
	return config, nil
}
