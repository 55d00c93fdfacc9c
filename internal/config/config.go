// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every externally tunable knob of the client core. Nothing
// in here is hardcoded anywhere else.
type Config struct {
	// ServerURL is the websocket endpoint of the game server.
	ServerURL string `env:"GOPOLY_SERVER_URL" envDefault:"ws://localhost:8080/ws"`
	// APIBaseURL is the base URL of the server's HTTP API.
	APIBaseURL string `env:"GOPOLY_API_URL" envDefault:"http://localhost:8080"`

	ReconnectAttempts int           `env:"GOPOLY_RECONNECT_ATTEMPTS" envDefault:"5"`
	ReconnectMinDelay time.Duration `env:"GOPOLY_RECONNECT_MIN_DELAY" envDefault:"500ms"`
	ReconnectMaxDelay time.Duration `env:"GOPOLY_RECONNECT_MAX_DELAY" envDefault:"10s"`

	// CallTimeout bounds how long one command waits for its ack.
	CallTimeout time.Duration `env:"GOPOLY_CALL_TIMEOUT" envDefault:"15s"`
	// DiceFallback bounds how long a roll animation may run before the
	// handshake force-settles.
	DiceFallback time.Duration `env:"GOPOLY_DICE_FALLBACK" envDefault:"5s"`

	// LogArchivePath enables the sqlite game-log archive when non-empty.
	LogArchivePath string `env:"GOPOLY_LOG_ARCHIVE"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadDotenv loads an optional .env file and then parses the environment.
// A missing file is not an error.
func LoadDotenv(path string) (Config, error) {
	_ = godotenv.Load(path)
	return Load()
}
