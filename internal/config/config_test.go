package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func resetForTest(t *testing.T) string {
	t.Helper()
	viper.Reset()
	cfg = Config{}
	configFile = ""
	// Prevent accidentally reading a real user config from HOME.
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestInit_SetsDefaults(t *testing.T) {
	home := resetForTest(t)
	Init()

	c := Get()
	if c.Backend.ChatURL != "http://127.0.0.1:8000/v1/chat" {
		t.Fatalf("expected backend.chat_url default, got %q", c.Backend.ChatURL)
	}
	if c.Backend.SourcesURL != "http://127.0.0.1:8000/v1/sources" {
		t.Fatalf("expected backend.sources_url default, got %q", c.Backend.SourcesURL)
	}
	if c.Backend.ChatTimeout != 22*time.Second {
		t.Fatalf("expected backend.chat_timeout default 22s, got %v", c.Backend.ChatTimeout)
	}
	if c.Backend.SourcesTimeout != 14*time.Second {
		t.Fatalf("expected backend.sources_timeout default 14s, got %v", c.Backend.SourcesTimeout)
	}
	if c.Server.Addr != ":3000" {
		t.Fatalf("expected server.addr default %q, got %q", ":3000", c.Server.Addr)
	}
	if c.Server.RateLimit != 5 || c.Server.RateBurst != 10 {
		t.Fatalf("expected rate limit 5/10, got %v/%d", c.Server.RateLimit, c.Server.RateBurst)
	}
	if want := filepath.Join(home, ".latamai", "settings.toml"); c.UI.SettingsPath != want {
		t.Fatalf("expected ui.settings_path %q, got %q", want, c.UI.SettingsPath)
	}
	if c.Log.Level != "info" || c.Log.Format != "text" {
		t.Fatalf("expected log defaults info/text, got %q/%q", c.Log.Level, c.Log.Format)
	}

	if GetConfigPath() != "" {
		t.Fatalf("expected no config file to be loaded in tests, got %q", GetConfigPath())
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestInit_EnvOverrides(t *testing.T) {
	resetForTest(t)
	t.Setenv("LATAMAI_BACKEND_CHAT_TIMEOUT", "30s")
	t.Setenv("LATAMAI_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("LATAMAI_LOG_LEVEL", "debug")

	Init()
	c := Get()

	if c.Backend.ChatTimeout != 30*time.Second {
		t.Fatalf("expected backend.chat_timeout override 30s, got %v", c.Backend.ChatTimeout)
	}
	if c.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("expected server.addr override, got %q", c.Server.Addr)
	}
	if c.Log.Level != "debug" {
		t.Fatalf("expected log.level override debug, got %q", c.Log.Level)
	}
}

func TestInit_LegacyEnvNames(t *testing.T) {
	resetForTest(t)
	t.Setenv("LATAM_BACKEND_URL", "http://backend:8000/v1/chat")
	t.Setenv("LATAM_SOURCES_BACKEND_URL", "http://backend:8000/v1/sources")

	Init()
	c := Get()

	if c.Backend.ChatURL != "http://backend:8000/v1/chat" {
		t.Fatalf("expected LATAM_BACKEND_URL to set backend.chat_url, got %q", c.Backend.ChatURL)
	}
	if c.Backend.SourcesURL != "http://backend:8000/v1/sources" {
		t.Fatalf("expected LATAM_SOURCES_BACKEND_URL to set backend.sources_url, got %q", c.Backend.SourcesURL)
	}
}

func TestInit_PrefixedEnvWinsOverLegacy(t *testing.T) {
	resetForTest(t)
	t.Setenv("LATAM_BACKEND_URL", "http://legacy:8000/v1/chat")
	t.Setenv("LATAMAI_BACKEND_CHAT_URL", "http://new:8000/v1/chat")

	Init()
	if got := Get().Backend.ChatURL; got != "http://new:8000/v1/chat" {
		t.Fatalf("expected LATAMAI_BACKEND_CHAT_URL to win, got %q", got)
	}
}

func TestInit_ReadsConfigFileFromHome(t *testing.T) {
	home := resetForTest(t)
	content := "backend:\n  chat_url: http://10.0.0.5:8000/v1/chat\nserver:\n  rate_limit: 0\n"
	if err := os.WriteFile(filepath.Join(home, ".latamai.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	Init()
	c := Get()

	if GetConfigPath() != filepath.Join(home, ".latamai.yaml") {
		t.Fatalf("expected config file in home to be used, got %q", GetConfigPath())
	}
	if c.Backend.ChatURL != "http://10.0.0.5:8000/v1/chat" {
		t.Fatalf("expected chat_url from file, got %q", c.Backend.ChatURL)
	}
	if c.Server.RateLimit != 0 {
		t.Fatalf("expected rate_limit 0 from file, got %v", c.Server.RateLimit)
	}
}

func TestBindFlags(t *testing.T) {
	resetForTest(t)
	Init()

	cmd := &cobra.Command{Use: "test"}
	cmd.PersistentFlags().String("backend-url", "", "")
	cmd.PersistentFlags().String("sources-url", "", "")
	cmd.PersistentFlags().String("log-level", "", "")
	serve := &cobra.Command{Use: "serve"}
	serve.Flags().String("addr", "", "")

	BindFlags(cmd)
	BindServeFlags(serve)
	_ = cmd.PersistentFlags().Set("backend-url", "http://flag:8000/v1/chat")
	_ = serve.Flags().Set("addr", ":4000")

	c := Get()
	if c.Backend.ChatURL != "http://flag:8000/v1/chat" {
		t.Fatalf("expected --backend-url to override, got %q", c.Backend.ChatURL)
	}
	if c.Server.Addr != ":4000" {
		t.Fatalf("expected --addr to override, got %q", c.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	resetForTest(t)
	Init()

	c := *Get()
	c.Backend.ChatURL = "127.0.0.1:8000"
	c.Backend.SourcesTimeout = 0

	err := c.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "backend.chat_url") {
		t.Fatalf("expected chat_url error, got %v", err)
	}
	if !strings.Contains(err.Error(), "backend.sources_timeout") {
		t.Fatalf("expected sources_timeout error, got %v", err)
	}
}

func TestGetDefaultConfigPath_UsesHome(t *testing.T) {
	resetForTest(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	p := GetDefaultConfigPath()
	if p == "" {
		t.Fatal("expected non-empty default config path")
	}
	if p != home+"/.latamai.yaml" {
		t.Fatalf("expected %q, got %q", home+"/.latamai.yaml", p)
	}
}
