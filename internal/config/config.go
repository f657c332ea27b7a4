// Package config provides YAML-based configuration with defaults and
// validation, plus logger construction for the worker.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete worker configuration.
type Config struct {
	Watch         WatchConfig         `yaml:"watch"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Formatting    FormattingConfig    `yaml:"formatting"`
	Storage       StorageConfig       `yaml:"storage"`
	Notify        NotifyConfig        `yaml:"notify"`
	HTTP          HTTPConfig          `yaml:"http"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// WatchConfig controls the bucket polling loop.
type WatchConfig struct {
	Prefix          string `yaml:"prefix"`
	IntervalSeconds int    `yaml:"interval_seconds"`
}

// PipelineConfig carries the preprocessing decision thresholds.
type PipelineConfig struct {
	DirectMaxBytes                int64  `yaml:"direct_max_bytes"`
	CompressTriggerBytes          int64  `yaml:"compress_trigger_bytes"`
	PostCompressSplitTriggerBytes int64  `yaml:"post_compress_split_trigger_bytes"`
	ChunkDurationMS               int64  `yaml:"chunk_duration_ms"`
	WorkDir                       string `yaml:"work_dir"`
}

// ChunkDuration returns the configured chunk duration.
func (p PipelineConfig) ChunkDuration() time.Duration {
	return time.Duration(p.ChunkDurationMS) * time.Millisecond
}

// TranscriptionConfig selects the speech-to-text model.
type TranscriptionConfig struct {
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

// FormattingConfig selects the text model used for formatting and titles.
type FormattingConfig struct {
	Model string `yaml:"model"`
}

// StorageConfig names the bucket and key layout.
type StorageConfig struct {
	Bucket       string `yaml:"bucket"`
	OutputPrefix string `yaml:"output_prefix"`
}

// NotifyConfig points at the push-notification topic.
type NotifyConfig struct {
	TopicURL string `yaml:"topic_url"`
}

// HTTPConfig contains the monitoring endpoint configuration.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Watch: WatchConfig{
			Prefix:          "audio/",
			IntervalSeconds: 30,
		},
		Pipeline: PipelineConfig{
			DirectMaxBytes:                20 << 20,
			CompressTriggerBytes:          20 << 20,
			PostCompressSplitTriggerBytes: 25 << 20,
			ChunkDurationMS:               600_000,
			WorkDir:                       ".tmp",
		},
		Transcription: TranscriptionConfig{
			Model:    "whisper-1",
			Language: "en",
		},
		Formatting: FormattingConfig{
			Model: "gpt-4o",
		},
		Storage: StorageConfig{
			OutputPrefix: "transcriptions/",
		},
		Notify: NotifyConfig{},
		HTTP: HTTPConfig{
			Enabled: true,
			Address: "0.0.0.0",
			Port:    8090,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads and parses the configuration file on top of the defaults. An
// empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the pipeline depends on.
func (c *Config) Validate() error {
	p := c.Pipeline

	if p.DirectMaxBytes <= 0 {
		return fmt.Errorf("direct_max_bytes must be positive, got %d", p.DirectMaxBytes)
	}
	if p.DirectMaxBytes > p.CompressTriggerBytes {
		return fmt.Errorf("direct_max_bytes (%d) must not exceed compress_trigger_bytes (%d)",
			p.DirectMaxBytes, p.CompressTriggerBytes)
	}
	if p.CompressTriggerBytes > p.PostCompressSplitTriggerBytes {
		return fmt.Errorf("compress_trigger_bytes (%d) must not exceed post_compress_split_trigger_bytes (%d)",
			p.CompressTriggerBytes, p.PostCompressSplitTriggerBytes)
	}
	if p.ChunkDurationMS <= 0 {
		return fmt.Errorf("chunk_duration_ms must be positive, got %d", p.ChunkDurationMS)
	}
	if c.Watch.IntervalSeconds <= 0 {
		return fmt.Errorf("watch interval_seconds must be positive, got %d", c.Watch.IntervalSeconds)
	}
	return nil
}
