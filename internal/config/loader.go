package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "EXOMETRICS"

// newViper builds a Viper instance with YAML file type, the EXOMETRICS_ env
// prefix and a "." → "_" key replacer, so "database.host" resolves to
// EXOMETRICS_DATABASE_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v)
	return v
}

// bindEnvKeys registers every known key so AutomaticEnv can resolve values
// that are absent from the file. Unmarshal only consults env for keys viper
// already knows about.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.port", "server.grpc_port", "server.mode",
		"database.host", "database.port", "database.user", "database.password",
		"database.db_name", "database.ssl_mode", "database.auto_migrate",
		"redis.addr", "redis.password", "redis.db",
		"kafka.enabled", "kafka.group_id",
		"opensearch.enabled", "opensearch.user", "opensearch.password",
		"minio.enabled", "minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket",
		"archive.base_url", "archive.refresh_interval",
		"catalog.seed_file",
		"metrics.enabled",
		"log.level", "log.format",
	} {
		_ = v.BindEnv(key)
	}
}

// Load reads the YAML file at configPath, merges EXOMETRICS_* overrides,
// applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from EXOMETRICS_* environment variables and
// defaults, with no config file.
//
//	EXOMETRICS_<SECTION>_<FIELD>   e.g. EXOMETRICS_DATABASE_HOST
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOrDefault loads configPath when set and falls back to LoadFromEnv.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the re-parsed Config
// whenever the file changes. Invalid revisions are reported through onError
// (when non-nil) and never reach onChange. Watch does not block.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad wraps Load and panics on error. For main() only.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
