package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.History.Capacity != 50 {
		t.Errorf("History.Capacity = %d, want 50", c.History.Capacity)
	}
	if c.Sampler.CacheCapacity != 100 {
		t.Errorf("Sampler.CacheCapacity = %d, want 100", c.Sampler.CacheCapacity)
	}
	if c.Pipeline.CancelWait != time.Second {
		t.Errorf("Pipeline.CancelWait = %v, want 1s", c.Pipeline.CancelWait)
	}
	if c.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", c.LogLevel)
	}
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "history:\n  capacity: 10\npipeline:\n  cancel_wait: 250ms\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.History.Capacity != 10 {
		t.Errorf("History.Capacity = %d, want 10", c.History.Capacity)
	}
	if c.Pipeline.CancelWait != 250*time.Millisecond {
		t.Errorf("Pipeline.CancelWait = %v, want 250ms", c.Pipeline.CancelWait)
	}
	if c.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", c.LogLevel)
	}
	// Unset fields fall back to defaults.
	if c.Sampler.CacheCapacity != 100 {
		t.Errorf("Sampler.CacheCapacity = %d, want default 100", c.Sampler.CacheCapacity)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("history: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() of malformed YAML succeeded")
	}
}
