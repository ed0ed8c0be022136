package domain

import "time"

// Settings holds the user level configuration of the client.
// Platforms lists acceptable platforms, most preferred first.
// Extract keeps an extracted copy of every cached archive.
// Verbose also prints debug records on the console.
type Settings struct {
	CacheDir    string        `mapstructure:"cache_dir"`
	RegistryURL string        `mapstructure:"registry_url"`
	Workers     int           `mapstructure:"workers"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Retries     int           `mapstructure:"retries"`
	Platforms   []string      `mapstructure:"platforms"`
	Token       string        `mapstructure:"token"`
	Extract     bool          `mapstructure:"extract"`
	LogJSON     bool          `mapstructure:"log_json"`
	DebugLog    bool          `mapstructure:"debug_log"`
	Verbose     bool          `mapstructure:"verbose"`
}

// PlatformRank returns the preference rank of platform; lower is better.
// Platforms not listed rank after every listed one.
func (s *Settings) PlatformRank(platform string) int {
	for i, p := range s.Platforms {
		if p == platform {
			return i
		}
	}
	return len(s.Platforms)
}

// AcceptsPlatform reports whether platform is listed. An empty list accepts everything.
func (s *Settings) AcceptsPlatform(platform string) bool {
	return len(s.Platforms) == 0 || s.PlatformRank(platform) < len(s.Platforms)
}
