package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Service  ServiceConfig  `toml:"service"`
	Probe    ProbeConfig    `toml:"probe"`
	Audio    AudioConfig    `toml:"audio"`
	Realtime RealtimeConfig `toml:"realtime"`
	Mock     MockConfig     `toml:"mock"`
}

type ServiceConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// Language and TargetLanguage are empty by default on purpose: the
	// probe omits both form fields so the service has to auto-detect.
	Language       string `toml:"language"`
	TargetLanguage string `toml:"target_language"`
	Strict         bool   `toml:"strict"`
}

type ProbeConfig struct {
	SessionID string `toml:"session_id"` // empty -> generated per run
	ChunkID   int    `toml:"chunk_id"`
	Filename  string `toml:"filename"`
}

type AudioConfig struct {
	Payload       string `toml:"payload"` // "dummy" or "tone"
	SampleRate    int    `toml:"sample_rate"`
	ChunkMs       int    `toml:"chunk_ms"`
	ToneHz        int    `toml:"tone_hz"`
	ToneSeconds   int    `toml:"tone_seconds"`
	Device        string `toml:"device"`
	RecordSeconds int    `toml:"record_seconds"`
}

type RealtimeConfig struct {
	URL    string `toml:"url"`
	Model  string `toml:"model"`
	APIKey string `toml:"api_key"`
}

type MockConfig struct {
	Addr             string `toml:"addr"`
	DetectedLanguage string `toml:"detected_language"`
}

func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		Probe: ProbeConfig{
			ChunkID:  1,
			Filename: "test_audio.ogg",
		},
		Audio: AudioConfig{
			Payload:       "dummy",
			SampleRate:    16000,
			ChunkMs:       480,
			ToneHz:        440,
			ToneSeconds:   2,
			RecordSeconds: 5,
		},
		Realtime: RealtimeConfig{
			URL:   "ws://localhost:8000/v1/realtime",
			Model: "voxtral-mini-transcribe-realtime-2602",
		},
		Mock: MockConfig{
			Addr:             ":8000",
			DetectedLanguage: "en",
		},
	}
}

func loadConfigFrom(path string) (*Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("bad config %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func mustLoadConfig() *Config {
	// A .env next to the invocation is the easiest way to point the probe
	// at a non-default service; ignore it when absent.
	godotenv.Load()

	path := os.Getenv("STTPROBE_CONFIG")
	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, ".config", "sttprobe", "config.toml")
	}

	cfg, err := loadConfigFrom(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STT_BASE_URL"); v != "" {
		cfg.Service.BaseURL = v
	}
	if v := os.Getenv("STTPROBE_STRICT"); v != "" {
		if strict, err := strconv.ParseBool(v); err == nil {
			cfg.Service.Strict = strict
		}
	}
	if cfg.Realtime.APIKey == "" {
		cfg.Realtime.APIKey = os.Getenv("STT_REALTIME_API_KEY")
	}
}
