package config

import (
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/simpol/pkg/errors"
)

// envPrefix is the environment variable prefix used by every setting.
const envPrefix = "SIMPOL"

// newViper builds a Viper instance with YAML file type, SIMPOL_ env prefix and
// a "." → "_" key replacer so "server.port" resolves to SIMPOL_SERVER_PORT.
// Every key is registered with its default so that environment variables are
// seen by Unmarshal even when no file mentions the key.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerDefaults(v, "", reflect.ValueOf(*NewDefaultConfig()))
	v.SetDefault("metrics.enabled", true)
	return v
}

func registerDefaults(v *viper.Viper, prefix string, rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		tag := rt.Field(i).Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if fv := rv.Field(i); fv.Kind() == reflect.Struct {
			registerDefaults(v, key, fv)
		} else {
			v.SetDefault(key, fv.Interface())
		}
	}
}

// Load reads the YAML file at configPath, merges SIMPOL_* environment
// overrides, applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "config: failed to read config file").WithDetail(configPath)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from SIMPOL_* environment variables and
// defaults alone.
//
//	SIMPOL_<SECTION>_<FIELD>   e.g.  SIMPOL_SERVER_PORT, SIMPOL_KAFKA_BROKERS
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOrDefault loads configPath when it is non-empty and falls back to
// LoadFromEnv otherwise.  The CLI uses it so a config file stays optional.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "config: failed to unmarshal configuration")
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Watch reloads configPath whenever it is written and passes the new Config
// to onChange.  A change that fails to parse or validate goes to onError
// (which may be nil) and onChange is not called.  Watch does not block.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "config: failed to read config file").WithDetail(configPath)
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

// MustLoad wraps Load and panics on error.  Intended for main().
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic("config: MustLoad failed: " + err.Error())
	}
	return cfg
}

//Personal.AI order the ending
