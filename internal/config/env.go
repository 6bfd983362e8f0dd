package config

import (
	"os"
	"strconv"
	"time"
)

// ApplyEnv overlays QUESTLOG_* environment variables on top of whatever
// the file (or the defaults) provided. Unset variables change nothing.
func ApplyEnv(c *Config) {
	if v := os.Getenv("QUESTLOG_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("QUESTLOG_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("QUESTLOG_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("QUESTLOG_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("QUESTLOG_GENERATE_ON_STARTUP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Generation.OnStartup = b
		}
	}
	if v := os.Getenv("QUESTLOG_GENERATE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.Generation.Interval = v
		}
	}
}
