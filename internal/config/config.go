package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "picrename.toml"

// Config holds everything the app reads at startup.
type Config struct {
	LogFile      string   `toml:"log_file"`      // claim log, relative to the working directory
	LogDirectory string   `toml:"log_directory"` // diagnostics (info/warning/error .log)
	LogPassword  string   `toml:"log_password"`  // empty disables the log gate
	Watch        bool     `toml:"watch"`         // reload totals when the log changes on disk
	ImageExts    []string `toml:"image_exts"`
	Window       struct {
		Width  float32 `toml:"width"`
		Height float32 `toml:"height"`
	} `toml:"window"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{
		LogFile:      "rename_log.txt",
		LogDirectory: filepath.Join(".", "logs"),
		LogPassword:  "admin5678",
		Watch:        true,
		ImageExts:    []string{".jpg", ".jpeg", ".png", ".bmp", ".gif"},
	}
	c.Window.Width = 520
	c.Window.Height = 420
	return c
}

// Load builds the config from defaults, the TOML file at path (optional),
// a .env file next to it (optional) and PICREN_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	envFile := ".env"
	if path != "" {
		envFile = filepath.Join(filepath.Dir(path), ".env")
	}
	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", envFile, err)
	}

	cfg.LogFile = getEnv("PICREN_LOG_FILE", cfg.LogFile)
	cfg.LogDirectory = getEnv("PICREN_LOG_DIR", cfg.LogDirectory)
	if v, ok := os.LookupEnv("PICREN_LOG_PASSWORD"); ok {
		cfg.LogPassword = v
	}
	cfg.Watch = getEnvAsBool("PICREN_WATCH", cfg.Watch)

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.LogFile = strings.TrimSpace(c.LogFile)
	if c.LogFile == "" {
		return errors.New("config: log_file must not be empty")
	}
	exts := make([]string, 0, len(c.ImageExts))
	for _, e := range c.ImageExts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	c.ImageExts = exts
	if c.Window.Width <= 0 {
		c.Window.Width = 520
	}
	if c.Window.Height <= 0 {
		c.Window.Height = 420
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
