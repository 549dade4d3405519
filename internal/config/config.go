package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	koanf "github.com/knadh/koanf/v2"
)

type Resolver struct {
	// TTL of resolved Provider clients before credentials are re-read
	CacheTTL time.Duration `koanf:"cacheTTL"`
}

type RateLimits struct {
	// token-bucket rates, per second
	Kube   float64 `koanf:"kube"`
	Remote float64 `koanf:"remote"`
}

type Backoff struct {
	Base        time.Duration `koanf:"base"`
	Cap         time.Duration `koanf:"cap"`
	Multiplier  float64       `koanf:"multiplier"`
	Jitter      float64       `koanf:"jitter"`
	MaxAttempts int           `koanf:"maxAttempts"`
}

type Rotation struct {
	DefaultIntervalDays  int32 `koanf:"defaultIntervalDays"`
	DefaultRetentionDays int32 `koanf:"defaultRetentionDays"`
}

type Config struct {
	// how often converged resources are re-checked for remote drift
	DriftInterval time.Duration `koanf:"driftInterval"`
	Resolver      *Resolver     `koanf:"resolver"`
	RateLimits    *RateLimits   `koanf:"rateLimits"`
	Backoff       *Backoff      `koanf:"backoff"`
	Rotation      *Rotation     `koanf:"rotation"`
}

var (
	defaultConfig = Config{
		DriftInterval: 5 * time.Minute,
		Resolver: &Resolver{
			CacheTTL: 30 * time.Second,
		},
		RateLimits: &RateLimits{
			Kube:   10,
			Remote: 5,
		},
		Backoff: &Backoff{
			Base:        time.Second,
			Cap:         60 * time.Second,
			Multiplier:  2,
			Jitter:      0.1,
			MaxAttempts: 5,
		},
		Rotation: &Rotation{
			DefaultIntervalDays:  90,
			DefaultRetentionDays: 7,
		},
	}
)

// GetConfig loads defaults and overlays the YAML file at configPath when it
// is non-empty.
func GetConfig(configPath string) (*Config, error) {
	k := koanf.New(".")
	parser := yaml.Parser()
	cfg := &Config{}

	if err := k.Load(structs.Provider(defaultConfig, "koanf"), nil); err != nil {
		return nil, err
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), parser); err != nil {
			return nil, err
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
