// Package config loads service configuration from an optional YAML
// file plus environment credentials.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete server configuration. Every field has a
// working default so the server runs with no config file at all.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Audio     AudioConfig     `yaml:"audio"`
	STT       STTConfig       `yaml:"stt"`
	LLM       LLMConfig       `yaml:"llm"`
	TTS       TTSConfig       `yaml:"tts"`
	Recording RecordingConfig `yaml:"recording"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
}

type AudioConfig struct {
	InSampleRate  int `yaml:"in_sample_rate"`
	OutSampleRate int `yaml:"out_sample_rate"`
	Channels      int `yaml:"channels"`
}

type STTConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"-"`
}

type LLMConfig struct {
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	SystemPrompt string `yaml:"system_prompt"`
	APIKey       string `yaml:"-"`
}

type TTSConfig struct {
	BaseURL string `yaml:"base_url"`
	ModelID string `yaml:"model_id"`
	VoiceID string `yaml:"voice_id"`
	APIKey  string `yaml:"-"`
}

type RecordingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Default returns the configuration matching the reference deployment:
// 16 kHz mono in, 24 kHz mono out, bound to 0.0.0.0:8765.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: "0.0.0.0:8765",
			Path: "/ws",
		},
		Audio: AudioConfig{
			InSampleRate:  16000,
			OutSampleRate: 24000,
			Channels:      1,
		},
		Recording: RecordingConfig{
			Enabled: true,
			Dir:     ".",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnv pulls service credentials from the environment, reading a
// .env file first when present. Missing keys are NOT an error here;
// they surface as connection failures from the service clients.
func (c *Config) loadEnv() {
	_ = godotenv.Load()

	c.STT.APIKey = os.Getenv("ASSEMBLYAI_API_KEY")
	c.LLM.APIKey = os.Getenv("CEREBRAS_API_KEY")
	c.TTS.APIKey = os.Getenv("CARTESIA_API_KEY")
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if s.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

func (a *AudioConfig) Validate() error {
	if a.InSampleRate <= 0 {
		return fmt.Errorf("in_sample_rate must be positive, got %d", a.InSampleRate)
	}
	if a.OutSampleRate <= 0 {
		return fmt.Errorf("out_sample_rate must be positive, got %d", a.OutSampleRate)
	}
	if a.Channels != 1 {
		return fmt.Errorf("only mono audio is supported, got %d channels", a.Channels)
	}
	return nil
}
