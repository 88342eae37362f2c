package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server   ServerConfig   `yaml:"server"`
	Data     DataConfig     `yaml:"data"`
	Storage  StorageConfig  `yaml:"storage"`
	Playback PlaybackConfig `yaml:"playback"`
	Widget   WidgetConfig   `yaml:"widget"`
	UI       UIConfig       `yaml:"ui"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DataConfig struct {
	// Directory holding mixes.json, categories.json,
	// backgroundCategories.json and backgrounds.json
	Dir string `yaml:"dir"`

	// Reload the dataset when a file in Dir changes
	Watch bool `yaml:"watch"`
}

type StorageConfig struct {
	// Type of storage: "local", "gcs" or "redis"
	Type string `yaml:"type"`

	// Local storage options
	Dir string `yaml:"dir"`

	// GCS storage options
	Bucket          string `yaml:"bucket"`
	CredentialsFile string `yaml:"credentials_file"`

	// Redis storage options
	RedisURL string `yaml:"redis_url"`

	// Key prefix shared by the gcs and redis backends
	Prefix string `yaml:"prefix"`
}

type PlaybackConfig struct {
	ProgressInterval Duration `yaml:"progress_interval"`
	ShareMessageTTL  Duration `yaml:"share_message_ttl"`
	ShareBaseURL     string   `yaml:"share_base_url"`
	TrackTolerance   int      `yaml:"track_tolerance"`
}

type WidgetConfig struct {
	BaseURL string `yaml:"base_url"`
}

type UIConfig struct {
	ModalCloseGrace Duration `yaml:"modal_close_grace"`
}

// Duration is a time.Duration written as "5s" or "300ms" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	config.applyDefaults()

	return config, nil
}

// Default returns a Config with every default filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}

	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}

	if c.Storage.Dir == "" {
		c.Storage.Dir = "state"
	}

	if c.Storage.Prefix == "" {
		c.Storage.Prefix = "mixplayer"
	}

	if c.Playback.ProgressInterval == 0 {
		c.Playback.ProgressInterval = Duration(5 * time.Second)
	}

	if c.Playback.ShareMessageTTL == 0 {
		c.Playback.ShareMessageTTL = Duration(3 * time.Second)
	}

	if c.Playback.ShareBaseURL == "" {
		c.Playback.ShareBaseURL = "http://localhost:3000"
	}

	if c.Playback.TrackTolerance == 0 {
		c.Playback.TrackTolerance = 2
	}

	if c.Widget.BaseURL == "" {
		c.Widget.BaseURL = "https://player-widget.mixcloud.com/widget/iframe/"
	}

	if c.UI.ModalCloseGrace == 0 {
		c.UI.ModalCloseGrace = Duration(300 * time.Millisecond)
	}
}
