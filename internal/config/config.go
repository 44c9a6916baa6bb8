// Package config reads the server settings from flags and CHESS_* environment
// variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Addr         string
	AllowOrigins string
	// ArchivePath is the SQLite file; empty disables the move archive.
	ArchivePath string
	// SnapshotDir is the Badger directory; empty disables snapshots.
	SnapshotDir  string
	LogLevel     string
	ClockSeconds int
}

func Default() Config {
	return Config{
		Addr:         ":3000",
		AllowOrigins: "http://localhost:5173",
		ArchivePath:  "chess.db",
		SnapshotDir:  "snapshots",
		LogLevel:     "info",
		ClockSeconds: 600,
	}
}

// Load parses args (without the program name). Environment variables
// override the defaults and flags override both.
func Load(args []string) (Config, error) {
	cfg := Default()
	if err := cfg.fromEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.AllowOrigins, "origins", cfg.AllowOrigins, "comma separated CORS origins")
	fs.StringVar(&cfg.ArchivePath, "archive", cfg.ArchivePath, "SQLite move archive, empty to disable")
	fs.StringVar(&cfg.SnapshotDir, "snapshots", cfg.SnapshotDir, "Badger snapshot directory, empty to disable")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.IntVar(&cfg.ClockSeconds, "clock", cfg.ClockSeconds, "seconds on each player's clock")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) fromEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"CHESS_ADDR":      &c.Addr,
		"CHESS_ORIGINS":   &c.AllowOrigins,
		"CHESS_ARCHIVE":   &c.ArchivePath,
		"CHESS_SNAPSHOTS": &c.SnapshotDir,
		"CHESS_LOG_LEVEL": &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	if v, ok := lookup("CHESS_CLOCK"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: CHESS_CLOCK=%q", ErrInvalidConfig, v)
		}
		c.ClockSeconds = n
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	if len(c.Origins()) == 0 {
		return fmt.Errorf("%w: no allowed origins", ErrInvalidConfig)
	}
	if c.ClockSeconds <= 0 {
		return fmt.Errorf("%w: clock must be positive, got %d", ErrInvalidConfig, c.ClockSeconds)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Clock() time.Duration {
	return time.Duration(c.ClockSeconds) * time.Second
}

// Level maps LogLevel onto the fiber logger levels.
func (c Config) Level() (log.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return log.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
}

// Origins splits AllowOrigins for the websocket origin check.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
