package config

import (
	"fmt"
	"strings"
	"time"
)

// PreferenceStoreKind selects where the auto-refresh preference is persisted.
type PreferenceStoreKind string

const (
	// PreferenceStoreMemory keeps preferences for the lifetime of the process.
	PreferenceStoreMemory PreferenceStoreKind = "memory"
	// PreferenceStoreFile persists preferences to a dotenv-formatted file.
	PreferenceStoreFile PreferenceStoreKind = "file"
	// PreferenceStoreRedis persists preferences in Redis.
	PreferenceStoreRedis PreferenceStoreKind = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for PreferenceStoreKind.
func (k *PreferenceStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "file", "redis":
		*k = PreferenceStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid PreferenceStoreKind: %q (valid options: memory, file, redis)", v)
	}
}

// PreferencesConfig controls persistence of the auto-refresh toggle.
type PreferencesConfig struct {
	Store PreferenceStoreKind `env:"PREFERENCES_STORE" envDefault:"memory"`

	// File is the dotenv file used when Store=file.
	File string `env:"PREFERENCES_FILE" envDefault:".authdemo-preferences"`

	// Key is the storage key of the "prevent auto-refresh" flag.
	Key string `env:"PREFERENCES_KEY" envDefault:"preventAutoRefresh"`

	// RedisPrefix namespaces keys when Store=redis.
	RedisPrefix string `env:"PREFERENCES_REDIS_PREFIX" envDefault:"authdemo:prefs:"`

	// TTL expires idle redis entries; zero keeps them forever.
	TTL time.Duration `env:"PREFERENCES_TTL" envDefault:"720h"`
}

// Sanitize restores defaults for blank values.
func (p *PreferencesConfig) Sanitize() {
	if p.Store == "" {
		p.Store = PreferenceStoreMemory
	}
	if strings.TrimSpace(p.Key) == "" {
		p.Key = "preventAutoRefresh"
	}
	if strings.TrimSpace(p.File) == "" {
		p.File = ".authdemo-preferences"
	}
	if p.TTL < 0 {
		p.TTL = 0
	}
}
