package videofx

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries the tunables of the effects pipeline. Zero values are
// replaced by defaults, so a partially specified YAML file works.
type Config struct {
	// PendingRevealDelay is how long an operation must stay pending before
	// the debounced pending signal reveals it. Short operations never
	// flicker the UI.
	PendingRevealDelay time.Duration

	// DegradedThreshold is the number of consecutive per-frame transform
	// failures after which a processor detaches itself and reports
	// ErrTransformDegraded.
	DegradedThreshold int

	// BlurLightRadius and BlurNormalRadius are the pixel radii behind the
	// Light and Normal blur settings.
	BlurLightRadius  int
	BlurNormalRadius int

	// WarmupTimeout bounds asynchronous model loading.
	WarmupTimeout time.Duration
}

// UnmarshalYAML decodes durations from Go duration strings ("200ms"),
// which yaml.v3 does not do on its own.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		PendingRevealDelay string `yaml:"pending_reveal_delay"`
		DegradedThreshold  int    `yaml:"degraded_threshold"`
		BlurLightRadius    int    `yaml:"blur_light_radius"`
		BlurNormalRadius   int    `yaml:"blur_normal_radius"`
		WarmupTimeout      string `yaml:"warmup_timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.PendingRevealDelay != "" {
		d, err := time.ParseDuration(raw.PendingRevealDelay)
		if err != nil {
			return fmt.Errorf("pending_reveal_delay: %w", err)
		}
		c.PendingRevealDelay = d
	}
	if raw.WarmupTimeout != "" {
		d, err := time.ParseDuration(raw.WarmupTimeout)
		if err != nil {
			return fmt.Errorf("warmup_timeout: %w", err)
		}
		c.WarmupTimeout = d
	}
	c.DegradedThreshold = raw.DegradedThreshold
	c.BlurLightRadius = raw.BlurLightRadius
	c.BlurNormalRadius = raw.BlurNormalRadius
	return nil
}

// DefaultConfig returns the standard pipeline configuration.
//
// The degraded threshold defaults to 30 frames, roughly one second of
// sustained failure at typical webcam rates.
func DefaultConfig() *Config {
	return &Config{
		PendingRevealDelay: 150 * time.Millisecond,
		DegradedThreshold:  30,
		BlurLightRadius:    3,
		BlurNormalRadius:   6,
		WarmupTimeout:      30 * time.Second,
	}
}

// LoadConfig reads a YAML configuration file, filling unset fields with
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.PendingRevealDelay == 0 {
		c.PendingRevealDelay = def.PendingRevealDelay
	}
	if c.DegradedThreshold == 0 {
		c.DegradedThreshold = def.DegradedThreshold
	}
	if c.BlurLightRadius == 0 {
		c.BlurLightRadius = def.BlurLightRadius
	}
	if c.BlurNormalRadius == 0 {
		c.BlurNormalRadius = def.BlurNormalRadius
	}
	if c.WarmupTimeout == 0 {
		c.WarmupTimeout = def.WarmupTimeout
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if c.PendingRevealDelay < 0 {
		return fmt.Errorf("pending_reveal_delay cannot be negative")
	}
	if c.DegradedThreshold < 1 {
		return fmt.Errorf("degraded_threshold must be at least 1")
	}
	if c.BlurLightRadius < 1 || c.BlurNormalRadius < c.BlurLightRadius {
		return fmt.Errorf("invalid blur radii: light=%d normal=%d", c.BlurLightRadius, c.BlurNormalRadius)
	}
	if c.WarmupTimeout <= 0 {
		return fmt.Errorf("warmup_timeout must be positive")
	}
	return nil
}
