package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix for every setting.
const EnvPrefix = "CLAIMTRACK"

var (
	// ErrConfigFileNotFound is returned when the configured file does not exist.
	ErrConfigFileNotFound = errors.New("config: file not found")
	// ErrConfigParseError is returned when the file is not valid YAML.
	ErrConfigParseError = errors.New("config: parse error")
	// ErrConfigValidation is returned when the merged configuration is invalid.
	ErrConfigValidation = errors.New("config: validation failed")
)

type loadOptions struct {
	path string
}

// LoadOption customises Load.
type LoadOption func(*loadOptions)

// WithConfigPath reads the YAML file at path before applying environment
// overrides. Without it only the environment and defaults are used.
func WithConfigPath(path string) LoadOption {
	return func(o *loadOptions) { o.path = path }
}

// newViper builds a Viper instance with YAML file type, the CLAIMTRACK_ env
// prefix and a "." → "_" key replacer, so database.host resolves to
// CLAIMTRACK_DATABASE_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, reflect.TypeOf(Config{}), "")
	return v
}

// bindEnvs registers every mapstructure key of t with v. AutomaticEnv alone
// only consults the environment for keys viper already knows about.
func bindEnvs(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, f.Type, key)
			continue
		}
		_ = v.BindEnv(key)
	}
}

// Load merges the optional config file, CLAIMTRACK_* environment overrides
// and defaults, then validates the result.
func Load(opts ...LoadOption) (*Config, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	v := newViper()
	if o.path != "" {
		v.SetConfigFile(o.path)
		if err := v.ReadInConfig(); err != nil {
			return nil, classifyReadError(o.path, err)
		}
	}
	return unmarshalAndFinalize(v)
}

func classifyReadError(path string, err error) error {
	var notFound viper.ConfigFileNotFoundError
	if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
	}
	var parse viper.ConfigParseError
	if errors.As(err, &parse) {
		return fmt.Errorf("%w: %s: %v", ErrConfigParseError, path, err)
	}
	return fmt.Errorf("config: failed to read %q: %w", path, err)
}

// unmarshalAndFinalize unmarshals viper state into a Config, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParseError, err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigValidation, err)
	}
	return cfg, nil
}

// Watch monitors configPath and calls onChange with the re-parsed Config
// whenever the file changes. Invalid revisions are passed to onError, when
// set, and onChange is not called for them. Watch returns the error of the
// initial read.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return classifyReadError(configPath, err)
	}

	v.OnConfigChange(func(fsnotify.Event) {
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

// MustLoad is Load that panics on error, for use in main.
func MustLoad(opts ...LoadOption) *Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
