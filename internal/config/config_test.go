package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEmbeddedDefaultMatchesDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	want := Default()
	if cfg.SDK != want.SDK || cfg.Host != want.Host || cfg.Storage != want.Storage {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
	if cfg.Games.T2048 != want.Games.T2048 {
		t.Errorf("2048 config = %+v, want %+v", cfg.Games.T2048, want.Games.T2048)
	}
	if cfg.Games.Tapper != want.Games.Tapper {
		t.Errorf("tapper config = %+v, want %+v", cfg.Games.Tapper, want.Games.Tapper)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := []byte("sdk:\n  challenge_number: 7\n  dev_delay: 250ms\nlog:\n  level: debug\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.SDK.ChallengeNumber != 7 || cfg.SDK.DevDelay != 250*time.Millisecond {
		t.Errorf("SDK = %+v", cfg.SDK)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	// Unset sections keep defaults.
	if cfg.Host.Listen != ":8089" {
		t.Errorf("Host.Listen = %q, want default", cfg.Host.Listen)
	}
}

func TestLoadCustomPathMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() with missing file succeeded")
	}
}

func TestLoadLocalConfigsDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.MkdirAll("configs", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join("configs", "sdk.yaml"), []byte("sdk:\n  challenge_number: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.SDK.ChallengeNumber != 3 {
		t.Errorf("ChallengeNumber = %d, want 3", cfg.SDK.ChallengeNumber)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ARCADE_CHALLENGE_NUMBER", "42")
	t.Setenv("ARCADE_LOG_LEVEL", "warn")
	t.Setenv("ARCADE_DEV_DELAY", "1s")

	cfg := Default()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv() failed: %v", err)
	}
	if cfg.SDK.ChallengeNumber != 42 {
		t.Errorf("ChallengeNumber = %d, want 42", cfg.SDK.ChallengeNumber)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.SDK.DevDelay != time.Second {
		t.Errorf("DevDelay = %v, want 1s", cfg.SDK.DevDelay)
	}
	if cfg.Host.Listen != ":8089" {
		t.Errorf("unset variable changed Host.Listen to %q", cfg.Host.Listen)
	}
	if got := ChallengeFromEnv(); got != 42 {
		t.Errorf("ChallengeFromEnv() = %d, want 42", got)
	}
}

func TestEnvInvalid(t *testing.T) {
	t.Setenv("ARCADE_CHALLENGE_NUMBER", "many")
	cfg := Default()
	if err := ApplyEnv(&cfg); err == nil {
		t.Fatal("ApplyEnv() accepted a non-numeric challenge")
	}
	if got := ChallengeFromEnv(); got != 0 {
		t.Errorf("ChallengeFromEnv() = %d, want 0", got)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got := ExpandHome("~/x/y.db"); got != filepath.Join(home, "x", "y.db") {
		t.Errorf("ExpandHome() = %q", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandHome() = %q", got)
	}
}

func TestDifficultyManager(t *testing.T) {
	d := NewDifficultyManager(DifficultyConfig{
		Enabled:     true,
		Progression: ProgressionConfig{Type: "score", MaxAt: 10},
		Scaling:     ScalingConfig{SpeedMultiplier: 1.0, WindowReduction: 4},
	})

	if got := d.Level(0, 0); got != 0 {
		t.Errorf("Level(0) = %v, want 0", got)
	}
	if got := d.Level(5, 0); got != 0.5 {
		t.Errorf("Level(5) = %v, want 0.5", got)
	}
	if got := d.Level(50, 0); got != 1 {
		t.Errorf("Level(50) = %v, want 1 (clamped)", got)
	}
	if got := d.Speed(2, 10, 0); got != 4 {
		t.Errorf("Speed() = %v, want 4", got)
	}
	if got := d.Window(2, 10, 0); got != 0 {
		t.Errorf("Window() = %d, want 0", got)
	}

	fixed := NewDifficultyManager(DifficultyConfig{InitialLevel: 0.3})
	if fixed.IsEnabled() {
		t.Error("disabled manager reports enabled")
	}
	if got := fixed.Level(100, 100); got != 0.3 {
		t.Errorf("Level() = %v, want initial 0.3", got)
	}
}
