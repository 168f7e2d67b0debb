package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCapacityClamped(t *testing.T) {
	cfg := Default()
	if got := cfg.ClampedCapacity(); got != 128 {
		t.Fatalf("Default capacity = %d, want 128", got)
	}
}

func TestClampedCapacityBounds(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 2},
		{1, 2},
		{2, 2},
		{128, 128},
		{8192, 8192},
		{100000, 8192},
	}
	for _, c := range cases {
		cfg := Default()
		cfg.Capacity = c.in
		if got := cfg.ClampedCapacity(); got != c.want {
			t.Errorf("ClampedCapacity(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frameserver.toml")
	contents := []byte("capacity = 256\nlisten = \":9090\"\ndocroot = \"/srv/video\"\n")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Capacity != 256 {
		t.Errorf("Capacity = %d, want 256", cfg.Capacity)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("Listen = %q, want :9090", cfg.Listen)
	}
	if cfg.DocRoot != "/srv/video" {
		t.Errorf("DocRoot = %q, want /srv/video", cfg.DocRoot)
	}
	// Unspecified fields keep their Default() value.
	if cfg.FrameRate != 25 {
		t.Errorf("FrameRate = %v, want 25 (unset field should keep default)", cfg.FrameRate)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestCheckCapacityBudget(t *testing.T) {
	if err := CheckCapacityBudget(10, 1024, 1024*1024*1024); err != nil {
		t.Fatalf("should be within budget: %v", err)
	}
	if err := CheckCapacityBudget(8192, 50*1024*1024, 1024*1024*1024); err == nil {
		t.Fatal("expected a budget-exceeded error")
	}
}
