package config_test

import (
	"testing"

	"github.com/dhvanibank/dhvani/internal/config"
)

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Server: config.ServerConfig{LogLevel: config.LogInfo},
		Speech: config.SpeechConfig{Locale: "en"},
	}
	d := config.Diff(cfg, cfg)
	if d.LogLevelChanged || d.LocaleChanged || d.RoutesChanged {
		t.Errorf("expected empty diff for identical configs, got %+v", d)
	}
}

func TestDiff_LogLevelChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Server: config.ServerConfig{LogLevel: config.LogInfo}}
	new := &config.Config{Server: config.ServerConfig{LogLevel: config.LogDebug}}

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Fatal("expected LogLevelChanged=true")
	}
	if d.NewLogLevel != config.LogDebug {
		t.Errorf("NewLogLevel = %q, want debug", d.NewLogLevel)
	}
}

func TestDiff_LocaleChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Speech: config.SpeechConfig{Locale: "en"}}
	new := &config.Config{Speech: config.SpeechConfig{Locale: "kn"}}

	d := config.Diff(old, new)
	if !d.LocaleChanged {
		t.Fatal("expected LocaleChanged=true")
	}
	if d.NewLocale != "kn" {
		t.Errorf("NewLocale = %q, want kn", d.NewLocale)
	}
}

func TestDiff_RoutesChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{}
	new := &config.Config{
		Routes: []config.RouteConfig{
			{Target: "/balance", Keywords: map[string][]string{"en": {"balance"}}},
		},
	}

	d := config.Diff(old, new)
	if !d.RoutesChanged {
		t.Fatal("expected RoutesChanged=true")
	}
	if d.LocaleChanged || d.LogLevelChanged {
		t.Errorf("unexpected extra changes: %+v", d)
	}
}
