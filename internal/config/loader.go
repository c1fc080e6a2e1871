package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dhvanibank/dhvani/internal/intent"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" {
			errs = append(errs, errors.New("server.tls.cert_file is required when tls is set"))
		}
		if cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls.key_file is required when tls is set"))
		}
	}

	// Speech
	if cfg.Speech.Locale != "" && !intent.Locale(cfg.Speech.Locale).IsValid() {
		errs = append(errs, fmt.Errorf("speech.locale %q is invalid; valid values: en, hi, kn", cfg.Speech.Locale))
	}
	if cfg.Speech.SpeakDelayMs < 0 {
		errs = append(errs, fmt.Errorf("speech.speak_delay_ms %d must not be negative", cfg.Speech.SpeakDelayMs))
	}
	if cfg.Speech.VoiceWaitMs < 0 {
		errs = append(errs, fmt.Errorf("speech.voice_wait_ms %d must not be negative", cfg.Speech.VoiceWaitMs))
	}

	// Routes
	targetsSeen := make(map[string]int, len(cfg.Routes))
	for i, rc := range cfg.Routes {
		prefix := fmt.Sprintf("routes[%d]", i)
		if rc.Target == "" {
			errs = append(errs, fmt.Errorf("%s.target is required", prefix))
		} else if !strings.HasPrefix(rc.Target, "/") {
			errs = append(errs, fmt.Errorf("%s.target %q must start with /", prefix, rc.Target))
		}
		// Multiple routes may share a target (the built-in table maps two
		// keyword groups to "/"). Warn only so typos are still noticed.
		if prev, ok := targetsSeen[rc.Target]; ok {
			slog.Warn("duplicate route target; later keywords only match if earlier routes miss",
				"target", rc.Target, "index", i, "previous", prev)
		}
		targetsSeen[rc.Target] = i

		total := 0
		for loc, kws := range rc.Keywords {
			if !intent.Locale(loc).IsValid() {
				errs = append(errs, fmt.Errorf("%s.keywords has unknown locale %q", prefix, loc))
			}
			total += len(kws)
		}
		if total == 0 {
			errs = append(errs, fmt.Errorf("%s has no keywords; the route can never match", prefix))
		}
		for loc := range rc.Messages {
			if !intent.Locale(loc).IsValid() {
				errs = append(errs, fmt.Errorf("%s.messages has unknown locale %q", prefix, loc))
			}
		}
		if _, ok := rc.Messages[string(intent.LocaleEnglish)]; !ok && len(rc.Messages) > 0 {
			slog.Warn("route has no English confirmation; locales without a message stay silent",
				"target", rc.Target)
		}
	}

	// Bank
	if cfg.Bank.PostgresDSN == "" {
		slog.Warn("bank.postgres_dsn is empty; using the in-memory account store")
	}

	return errors.Join(errs...)
}
