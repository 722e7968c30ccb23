package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/powerplay/internal/config"
)

func TestConfigListCmd(t *testing.T) {
	isolateHome(t, t.TempDir())

	out, err := runCmd(t, newConfigCmd(), "config", "list")
	if err != nil {
		t.Fatalf("config list failed: %v", err)
	}
	if !strings.HasPrefix(out, "# Effective configuration\n") {
		t.Errorf("missing header:\n%s", out)
	}
	for _, want := range []string{"reps: 500", "alpha: 0.05", "max_n: 100", "target_power: 0.8"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigListCmd_EnvOverride(t *testing.T) {
	isolateHome(t, t.TempDir())
	t.Setenv("POWERPLAY_REPS", "2000")
	t.Setenv("POWERPLAY_WELCH", "true")

	out, err := runCmd(t, newConfigCmd(), "config", "list", "--json")
	if err != nil {
		t.Fatalf("config list failed: %v", err)
	}

	var cfg config.PowerplayConfig
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if cfg.Simulation.Reps != 2000 || !cfg.Simulation.Welch {
		t.Errorf("env overrides not applied: %+v", cfg.Simulation)
	}
}

func TestConfigListCmd_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	path := filepath.Join(tmpDir, "powerplay.yaml")
	content := "curve:\n  mean_a: 45\n  max_n: 200\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, newConfigCmd(), "config", "list", "--json", "--config", path)
	if err != nil {
		t.Fatalf("config list failed: %v", err)
	}
	var cfg config.PowerplayConfig
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if cfg.Curve.MeanA != 45 || cfg.Curve.MaxN != 200 || cfg.Logging.Level != "debug" {
		t.Errorf("file values not applied: %+v %+v", cfg.Curve, cfg.Logging)
	}
	if cfg.Curve.MeanB != 50 {
		t.Errorf("unset values should keep defaults, mean_b = %v", cfg.Curve.MeanB)
	}

	if _, err := runCmd(t, newConfigCmd(), "config", "list", "--config", filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestConfigPathCmd(t *testing.T) {
	home := isolateHome(t, t.TempDir())

	out, err := runCmd(t, newConfigCmd(), "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	want := filepath.Join(home, ".powerplay", "config.yaml")
	if strings.TrimSpace(out) != want {
		t.Errorf("path = %q, want %q", strings.TrimSpace(out), want)
	}
}
