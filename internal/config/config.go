package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     Server     `yaml:"server" json:"server"`
	Data       Data       `yaml:"data" json:"data"`
	Log        Log        `yaml:"log" json:"log"`
	XP         XP         `yaml:"xp" json:"xp"`
	Generation Generation `yaml:"generation" json:"generation"`
}

type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

type Data struct {
	Dir string `yaml:"dir" json:"dir"`
}

type Log struct {
	Level string `yaml:"level" json:"level"`

	// File enables rotating file output next to the console writer.
	// Empty means console only.
	File string `yaml:"file" json:"file"`
}

type XP struct {
	// Awards maps difficulty to the XP paid on clear.
	Awards map[string]int `yaml:"awards" json:"awards"`
}

type Generation struct {
	// OnStartup runs one generation pass when the server comes up.
	OnStartup bool `yaml:"on_startup" json:"on_startup"`

	// Interval re-runs the pass periodically, as a Go duration string
	// ("1h", "30m"). Empty disables the ticker; instances still appear
	// on demand via the refresh endpoint.
	Interval string `yaml:"interval" json:"interval"`
}

// IntervalDuration returns the parsed ticker interval, zero when the
// ticker is disabled. Validate already rejected unparsable values.
func (g Generation) IntervalDuration() time.Duration {
	if g.Interval == "" {
		return 0
	}
	d, err := time.ParseDuration(g.Interval)
	if err != nil {
		return 0
	}
	return d
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if len(c.XP.Awards) == 0 {
		c.XP.Awards = map[string]int{"1": 10, "2": 25, "3": 50}
	}
}

func (c *Config) Validate() error {
	for diff, xp := range c.XP.Awards {
		if xp < 0 {
			return fmt.Errorf("xp award for difficulty %q is negative", diff)
		}
	}
	if c.Generation.Interval != "" {
		d, err := time.ParseDuration(c.Generation.Interval)
		if err != nil {
			return fmt.Errorf("generation interval: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("generation interval is negative")
		}
	}
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var c Config
	c.ApplyDefaults()
	return &c
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
