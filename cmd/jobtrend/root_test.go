package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/amishk599/jobtrend/internal/config"
	"github.com/amishk599/jobtrend/internal/model"
)

func TestLoadConfig_ImplicitDefaultMissing(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("JOBTREND_CONFIG", "")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.SnapshotPath != config.Default().SnapshotPath {
		t.Errorf("SnapshotPath = %q, want default", cfg.SnapshotPath)
	}
}

func TestLoadConfig_EnvPathMustExist(t *testing.T) {
	t.Setenv("JOBTREND_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := loadConfig(""); err == nil {
		t.Fatal("expected error for missing JOBTREND_CONFIG file")
	}
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("snapshot_path: out/jobs.csv\nsources:\n  - name: remotive\n    enabled: true\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.SnapshotPath != "out/jobs.csv" {
		t.Errorf("SnapshotPath = %q", cfg.SnapshotPath)
	}
	if got := enabledTags(cfg); len(got) != 1 || got[0] != model.SourceRemotive {
		t.Errorf("enabledTags = %v", got)
	}
}

func TestBuildCoordinator_RegistersEnabledSources(t *testing.T) {
	coord, err := buildCoordinator(config.Default(), nil, nil, silentLogger())
	if err != nil {
		t.Fatalf("buildCoordinator: %v", err)
	}
	got := coord.Sources()
	if len(got) != len(model.KnownSources) {
		t.Fatalf("Sources = %v", got)
	}
	for i := range got {
		if got[i] != model.KnownSources[i] {
			t.Errorf("source %d = %q, want %q", i, got[i], model.KnownSources[i])
		}
	}
}

func TestOpenHistory_CreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	h, err := openHistory(path)
	if err != nil {
		t.Fatalf("openHistory: %v", err)
	}
	defer h.Close()
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("dir not created: %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate long = %q", got)
	}
}

func TestVersionString(t *testing.T) {
	got := versionString()
	if !strings.HasPrefix(got, "jobtrend "+version+" (rev ") {
		t.Errorf("versionString = %q", got)
	}
	if !strings.Contains(got, runtime.Version()) {
		t.Errorf("versionString = %q, missing Go version", got)
	}
}
