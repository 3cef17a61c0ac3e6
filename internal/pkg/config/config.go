package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the storefront's full runtime configuration, populated from the
// environment. Defaults suit local development.
type Config struct {
	Addr         string `envconfig:"ADDR" default:":3001"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"./data/storefront.db"`

	// RedisAddr enables the catalog listing cache when non-empty.
	RedisAddr string `envconfig:"REDIS_ADDR" default:""`

	// AdminUsers is the comma-separated allow-list of admin identities.
	AdminUsers []string `envconfig:"ADMIN_USERS" default:""`

	// ChatEndpoint and ChatAPIKey configure the external AI helper.
	ChatEndpoint string `envconfig:"CHAT_ENDPOINT" default:""`
	ChatAPIKey   string `envconfig:"CHAT_API_KEY" default:""`

	// MediaUploadURL is the external media host's upload endpoint.
	MediaUploadURL string `envconfig:"MEDIA_UPLOAD_URL" default:""`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
