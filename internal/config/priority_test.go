package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// chdir switches to dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWd); err != nil {
			t.Errorf("failed to restore directory: %v", err)
		}
	})
}

func TestConfig_ProjectFileWinsOverHome(t *testing.T) {
	home := resetForTest(t)
	if err := os.WriteFile(filepath.Join(home, ".latamai.yaml"), []byte("backend:\n  chat_url: http://home:8000/v1/chat\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	project := t.TempDir()
	configContent := `backend:
  chat_url: http://project:8000/v1/chat
  chat_timeout: 5s
`
	if err := os.WriteFile(filepath.Join(project, ".latamai.yaml"), []byte(configContent), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	chdir(t, project)

	Init()
	c := Get()

	if c.Backend.ChatURL != "http://project:8000/v1/chat" {
		t.Fatalf("expected project config to win, got %q", c.Backend.ChatURL)
	}
	if c.Backend.ChatTimeout != 5*time.Second {
		t.Fatalf("expected chat_timeout 5s from YAML, got %v", c.Backend.ChatTimeout)
	}
}

func TestConfig_ThreeTierPriority(t *testing.T) {
	resetForTest(t)

	// Set up YAML config (lowest priority)
	project := t.TempDir()
	if err := os.WriteFile(filepath.Join(project, ".latamai.yaml"), []byte("log:\n  level: warn\n"), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	chdir(t, project)

	// Set env var (middle priority)
	t.Setenv("LATAMAI_LOG_LEVEL", "error")

	Init()

	// Verify env overrides YAML
	c := Get()
	if c.Log.Level != "error" {
		t.Fatalf("expected env to override YAML, got %q", c.Log.Level)
	}

	// Set up flag (highest priority)
	cmd := &cobra.Command{Use: "test"}
	cmd.PersistentFlags().String("backend-url", "", "")
	cmd.PersistentFlags().String("sources-url", "", "")
	cmd.PersistentFlags().String("log-level", "", "")
	BindFlags(cmd)
	_ = cmd.PersistentFlags().Set("log-level", "debug")

	// Verify flag overrides env
	c = Get()
	if c.Log.Level != "debug" {
		t.Fatalf("expected flag to override env, got %q", c.Log.Level)
	}
}
