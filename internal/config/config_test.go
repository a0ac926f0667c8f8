package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Speech.Model != "gemini-2.5-flash-preview-tts" {
		t.Errorf("Speech.Model = %q, want gemini-2.5-flash-preview-tts", cfg.Speech.Model)
	}
	if cfg.Speech.Voice != "Kore" {
		t.Errorf("Speech.Voice = %q, want Kore", cfg.Speech.Voice)
	}
	if cfg.Speech.Backend != "rest" {
		t.Errorf("Speech.Backend = %q, want rest", cfg.Speech.Backend)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled should default to true")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
speech:
  model: gemini-2.5-pro-preview-tts
  voice: Puck
  backend: live
output:
  dir: /tmp/voices
history:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Speech.Model != "gemini-2.5-pro-preview-tts" {
		t.Errorf("Speech.Model = %q", cfg.Speech.Model)
	}
	if cfg.Speech.Voice != "Puck" {
		t.Errorf("Speech.Voice = %q", cfg.Speech.Voice)
	}
	if cfg.Speech.Backend != "live" {
		t.Errorf("Speech.Backend = %q", cfg.Speech.Backend)
	}
	if cfg.Output.Dir != "/tmp/voices" {
		t.Errorf("Output.Dir = %q", cfg.Output.Dir)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled should be false after load")
	}
}

func TestLoadKeepsDefaultsForOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("speech:\n  voice: Aoede\n"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Speech.Voice != "Aoede" {
		t.Errorf("Speech.Voice = %q, want Aoede", cfg.Speech.Voice)
	}
	if cfg.Speech.Model != "gemini-2.5-flash-preview-tts" {
		t.Errorf("Speech.Model = %q, want the default kept", cfg.Speech.Model)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("speech: [unclosed"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail for invalid YAML")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Speech.Voice = "Charon"
	cfg.Output.Dir = "/var/voices"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Speech.Voice != "Charon" {
		t.Errorf("Speech.Voice = %q, want Charon", loaded.Speech.Voice)
	}
	if loaded.Output.Dir != "/var/voices" {
		t.Errorf("Output.Dir = %q, want /var/voices", loaded.Output.Dir)
	}
}

func TestLoadWithFallbackExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("speech:\n  voice: Fenrir\n"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := LoadWithFallback(path)
	if err != nil {
		t.Fatalf("LoadWithFallback() error = %v", err)
	}
	if cfg.Speech.Voice != "Fenrir" {
		t.Errorf("Speech.Voice = %q, want Fenrir", cfg.Speech.Voice)
	}
}
