package config

import "reflect"

// ConfigDiff describes what changed between two configs. Only fields that can
// be acted on at runtime are tracked; everything else needs a restart.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// LocaleChanged is set when speech.locale changed; the engine can switch
	// locales live.
	LocaleChanged bool
	NewLocale     string

	// RoutesChanged is set when the route overrides changed. The route table
	// is immutable once built, so this requires a restart to take effect.
	RoutesChanged bool
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Speech.Locale != new.Speech.Locale {
		d.LocaleChanged = true
		d.NewLocale = new.Speech.Locale
	}

	if !reflect.DeepEqual(old.Routes, new.Routes) {
		d.RoutesChanged = true
	}

	return d
}
