// Package config loads user settings and locates project manifests.
package config

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.trai.ch/parcel/internal/core/domain"
)

const (
	// EnvPrefix prefixes every environment override, e.g. PARCEL_CACHE_DIR.
	EnvPrefix = "PARCEL"

	// DefaultRegistryURL is the registry used when none is configured.
	DefaultRegistryURL = "https://registry.parcel.dev"

	appDir         = "parcel"
	configFileName = "config.yaml"
)

// DefaultConfigFile returns $XDG_CONFIG_HOME/parcel/config.yaml, or "" when
// the user configuration directory is unknown.
func DefaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDir, configFileName)
}

// DefaultPlatforms returns the host platform followed by "any".
func DefaultPlatforms() []string {
	return []string{runtime.GOOS + "-" + runtime.GOARCH, domain.PlatformAny}
}

// LoadSettings reads settings from defaults, the optional config file and the environment,
// in increasing order of precedence. A missing config file is not an error.
func LoadSettings(configFile string) (*domain.Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			v.SetConfigFile(configFile)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, domain.Fail(domain.ErrConfigLoadFailed, "failed to read config file",
					"path", configFile, "cause", err.Error())
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, domain.Fail(domain.ErrConfigLoadFailed, "failed to stat config file",
				"path", configFile, "cause", err.Error())
		}
	}

	var s domain.Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, domain.Fail(domain.ErrConfigLoadFailed, "failed to decode settings", "cause", err.Error())
	}
	if err := normalize(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cache_dir", defaultCacheDir())
	v.SetDefault("registry_url", DefaultRegistryURL)
	v.SetDefault("workers", 4)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("retries", 3)
	v.SetDefault("platforms", DefaultPlatforms())
	v.SetDefault("token", "")
	v.SetDefault("extract", false)
	v.SetDefault("log_json", false)
	v.SetDefault("debug_log", false)
	v.SetDefault("verbose", false)
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, appDir)
	}
	return filepath.Join(os.TempDir(), appDir)
}

func normalize(s *domain.Settings) error {
	var problems []string

	if s.CacheDir == "" {
		problems = append(problems, "cache_dir must not be empty")
	} else if abs, err := filepath.Abs(s.CacheDir); err == nil {
		s.CacheDir = abs
	}

	if u, err := url.Parse(s.RegistryURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, "registry_url must be an absolute URL")
	} else {
		s.RegistryURL = strings.TrimRight(s.RegistryURL, "/")
	}

	if s.Workers < 1 {
		problems = append(problems, "workers must be at least 1")
	}
	if s.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if s.Retries < 0 {
		problems = append(problems, "retries must not be negative")
	}

	platforms := s.Platforms[:0]
	for _, p := range s.Platforms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !domain.ValidName(p) {
			problems = append(problems, "platform "+p+" contains invalid characters")
			continue
		}
		platforms = append(platforms, p)
	}
	s.Platforms = platforms

	if len(problems) > 0 {
		return domain.Fail(domain.ErrConfigLoadFailed, "invalid settings", "problems", strings.Join(problems, "; "))
	}
	return nil
}
