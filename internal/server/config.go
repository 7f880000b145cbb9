// Package server carries the transport layer: connection admission, the
// per-connection session pump pair, the WebSocket and HTTP handlers, and
// the runtime configuration they share.
package server

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime settings, loaded from the environment.
type Config struct {
	Addr           string   `envconfig:"SERVER_ADDR" default:":8080" validate:"required"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`

	// MaxFrameSize bounds a single inbound WebSocket frame. It must leave
	// room for a maximum-length message body plus envelope overhead.
	MaxFrameSize int64 `envconfig:"MAX_FRAME_SIZE" default:"65536" validate:"gt=0"`

	RoomCapacity    int `envconfig:"ROOM_CAPACITY" default:"100" validate:"gt=0"`
	HistoryCapacity int `envconfig:"HISTORY_CAPACITY" default:"1000" validate:"gt=0"`

	RateLimitBurst  int           `envconfig:"RATE_LIMIT_BURST" default:"10" validate:"gt=0"`
	RateLimitRefill time.Duration `envconfig:"RATE_LIMIT_REFILL_INTERVAL" default:"1s" validate:"gt=0"`

	WriteWait       time.Duration `envconfig:"WRITE_WAIT" default:"10s" validate:"gt=0"`
	PongWait        time.Duration `envconfig:"PONG_WAIT" default:"60s" validate:"gt=0"`
	PingInterval    time.Duration `envconfig:"PING_INTERVAL" default:"54s" validate:"gt=0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// LoadConfig reads the configuration from environment variables and
// validates it. Unset variables fall back to their defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
