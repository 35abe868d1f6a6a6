// Package config provides layered configuration loading for the waitlist
// service. It merges Defaults -> Environment Variables (WAITLIST_*), then
// validates the result.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/haukened/waitlist/internal/resourceid"
)

// EnvPrefix is stripped from environment variable names before mapping to keys.
const EnvPrefix = "WAITLIST_"

// Config holds the merged runtime configuration for the waitlist service.
type Config struct {
	Addr                string        `koanf:"addr" validate:"ip_port"`               // listen address, e.g. ":8080"
	DataDir             string        `koanf:"data_dir" validate:"safe_path"`         // directory for the SQLite database
	IDSecret            string        `koanf:"id_secret" validate:"required"`         // master secret for resource ids
	IDPrefix            string        `koanf:"id_prefix" validate:"resource_prefix"`  // prefix of waitlist entry ids
	MaxBytes            int64         `koanf:"max_bytes" validate:"gt=0"`             // max request body size
	LogLevel            slog.Level    `koanf:"log_level"`                             // debug|info|warn|error
	LogFormat           string        `koanf:"log_format" validate:"oneof=text json"` // handler format
	MetricsToken        string        `koanf:"metrics_token"`                         // optional bearer token for /metrics
	FlushInterval       time.Duration `koanf:"flush_interval" validate:"gt=0"`        // metrics flush cadence
	MaintenanceInterval time.Duration `koanf:"maintenance_interval" validate:"gt=0"`  // SQLite housekeeping cadence
}

// DefaultAppConfig holds defaults. IDSecret has no default: it must come
// from the environment.
var DefaultAppConfig = Config{
	Addr:                ":8080",
	DataDir:             "data",
	IDPrefix:            "wait",
	MaxBytes:            4 << 10, // 4 KiB
	LogLevel:            slog.LevelInfo,
	LogFormat:           "text",
	FlushInterval:       5 * time.Second,
	MaintenanceInterval: 15 * time.Minute,
}

// SQLiteDSN returns the DSN for the waitlist database under DataDir.
func (c *Config) SQLiteDSN() string {
	return "file:" + filepath.ToSlash(filepath.Join(c.DataDir, "waitlist.db")) +
		"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_synchronous=FULL"
}

// Secret returns the resource id secret as bytes for resourceid.New.
func (c *Config) Secret() []byte { return []byte(c.IDSecret) }

// defaultLoader loads DefaultAppConfig into k.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DefaultAppConfig, "koanf"), nil)
}

// envLoader overlays WAITLIST_* variables onto k, e.g. WAITLIST_DATA_DIR -> data_dir.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), value
		},
	}), nil)
}

// registerValidators installs the custom validation tags used by Config.
var registerValidators = func(v *validator.Validate) error {
	for tag, fn := range map[string]validator.Func{
		"ip_port":         validIPPort,
		"safe_path":       validSafePath,
		"resource_prefix": validResourcePrefix,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// Load merges defaults and environment, decodes into Config, and validates.
// A missing id secret is reported as resourceid.ErrMissingSecret.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	var cfg Config
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				StringToLogLevel(),
				mapstructure.StringToTimeDurationHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.IDSecret = strings.TrimSpace(cfg.IDSecret)
	if cfg.IDSecret == "" {
		return nil, fmt.Errorf("%sID_SECRET: %w", EnvPrefix, resourceid.ErrMissingSecret)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := registerValidators(v); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: failed %q", fe.Field(), fe.Tag())
		}
		return err
	}
	return nil
}

// validIPPort accepts "host:port" where host is empty or an IP literal and
// port is 1-65535.
func validIPPort(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || strings.ContainsAny(s, " \t") {
		return false
	}
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return false
	}
	if host != "" && net.ParseIP(host) == nil {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// validSafePath rejects empty, root, current-dir, and any path with "..".
func validSafePath(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(s), "/") {
		if part == ".." {
			return false
		}
	}
	clean := filepath.Clean(s)
	return clean != "." && clean != string(filepath.Separator)
}

func validResourcePrefix(fl validator.FieldLevel) bool {
	return resourceid.ValidPrefix(fl.Field().String())
}
