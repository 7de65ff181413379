package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/sadopc/nowdoing/internal/store"
	"github.com/sadopc/nowdoing/internal/tracker"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

type Config struct {
	Dir          string        // base directory for data, logs and the status file
	Backend      string        // sqlite or file
	DBPath       string        // SQLite database, used by the sqlite backend
	SlotDir      string        // JSON slot directory, used by the file backend
	LogFile      string        // TUI log destination
	LogLevel     string        // hclog level name
	StatusesFile string        // optional YAML status list
	Key          string        // slot key the snapshot is stored under
	Poll         time.Duration // timer refresh interval
}

// Load reads .env (if present) and the environment, falling back to defaults
// under the user config directory. Environment beats .env beats defaults.
// The result is not validated; callers apply their overrides first and then
// call Validate.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dir := os.Getenv("NOWDOING_DIR")
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		dir = d
	}

	poll, err := time.ParseDuration(get("NOWDOING_POLL", "1s"))
	if err != nil {
		return nil, fmt.Errorf("parse NOWDOING_POLL: %w", err)
	}

	c := &Config{
		Dir:          dir,
		Backend:      get("NOWDOING_BACKEND", BackendSQLite),
		DBPath:       get("NOWDOING_DB", filepath.Join(dir, "nowdoing.db")),
		SlotDir:      get("NOWDOING_SLOTS", filepath.Join(dir, "slots")),
		LogFile:      get("NOWDOING_LOG_FILE", filepath.Join(dir, "nowdoing.log")),
		LogLevel:     get("NOWDOING_LOG_LEVEL", "info"),
		StatusesFile: get("NOWDOING_STATUSES", filepath.Join(dir, "statuses.yaml")),
		Key:          get("NOWDOING_KEY", tracker.AppName),
		Poll:         poll,
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendFile)
	}
	if c.Poll <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Poll)
	}
	return nil
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
