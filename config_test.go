package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Service.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", cfg.Service.BaseURL)
	}
	if cfg.Service.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d, want 30", cfg.Service.TimeoutSeconds)
	}
	if cfg.Service.Language != "" || cfg.Service.TargetLanguage != "" {
		t.Error("default config must not pin languages")
	}
	if cfg.Service.Strict {
		t.Error("Strict = true, default must keep exit-0 behavior")
	}
	if cfg.Probe.ChunkID != 1 || cfg.Probe.Filename != "test_audio.ogg" {
		t.Errorf("Probe = %+v", cfg.Probe)
	}
	if cfg.Audio.Payload != "dummy" {
		t.Errorf("Payload = %q, want dummy", cfg.Audio.Payload)
	}
}

func TestLoadConfigFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[service]
base_url = "http://stt.internal:9000"
strict = true

[audio]
payload = "tone"
tone_hz = 880
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfigFrom(path)
	if err != nil {
		t.Fatalf("loadConfigFrom() error = %v", err)
	}
	if cfg.Service.BaseURL != "http://stt.internal:9000" {
		t.Errorf("BaseURL = %q", cfg.Service.BaseURL)
	}
	if !cfg.Service.Strict {
		t.Error("Strict = false, want true")
	}
	if cfg.Audio.Payload != "tone" || cfg.Audio.ToneHz != 880 {
		t.Errorf("Audio = %+v", cfg.Audio)
	}
	// Untouched keys keep defaults
	if cfg.Service.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d, want default 30", cfg.Service.TimeoutSeconds)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want default 16000", cfg.Audio.SampleRate)
	}
}

func TestLoadConfigFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfigFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("loadConfigFrom() error = %v", err)
	}
	if cfg.Service.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q, want default", cfg.Service.BaseURL)
	}
}

func TestLoadConfigFrom_BadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[service\nbase_url"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfigFrom(path); err == nil {
		t.Error("loadConfigFrom() error = nil, want parse error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("STT_BASE_URL", "http://override:8000")
	t.Setenv("STTPROBE_STRICT", "1")
	t.Setenv("STT_REALTIME_API_KEY", "k-123")

	cfg := defaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Service.BaseURL != "http://override:8000" {
		t.Errorf("BaseURL = %q", cfg.Service.BaseURL)
	}
	if !cfg.Service.Strict {
		t.Error("Strict = false, want true from STTPROBE_STRICT=1")
	}
	if cfg.Realtime.APIKey != "k-123" {
		t.Errorf("APIKey = %q", cfg.Realtime.APIKey)
	}
}

func TestApplyEnvOverrides_ConfigKeyWins(t *testing.T) {
	t.Setenv("STT_REALTIME_API_KEY", "env-key")

	cfg := defaultConfig()
	cfg.Realtime.APIKey = "file-key"
	applyEnvOverrides(cfg)

	if cfg.Realtime.APIKey != "file-key" {
		t.Errorf("APIKey = %q, config file must win over env", cfg.Realtime.APIKey)
	}
}
