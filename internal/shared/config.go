package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// BackendURLEnv overrides [BackendConfig.URL] when set.
const BackendURLEnv = "TUNESMITH_BACKEND_URL"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend    BackendConfig    `toml:"backend"`
	Generation GenerationConfig `toml:"generation"`
	Storage    StorageConfig    `toml:"storage"`
	Player     PlayerConfig     `toml:"player"`
	UI         UIConfig         `toml:"ui"`
}

// BackendConfig locates the music generation backend.
type BackendConfig struct {
	URL            string `toml:"url"`
	APIToken       string `toml:"api_token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// GenerationConfig contains the duration slider bounds.
type GenerationConfig struct {
	DefaultDuration int    `toml:"default_duration"`
	MinDuration     int    `toml:"min_duration"`
	MaxDuration     int    `toml:"max_duration"`
	Step            int    `toml:"step"`
	DownloadDir     string `toml:"download_dir"`
}

// StorageConfig contains database connection settings for favorites and preferences.
type StorageConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PlayerConfig contains audio output and analyser settings.
type PlayerConfig struct {
	SampleRate int    `toml:"sample_rate"`
	FFTSize    int    `toml:"fft_size"`
	FFmpegPath string `toml:"ffmpeg_path"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	Particles int    `toml:"particles"`
	FPS       int    `toml:"fps"`
	LogFile   string `toml:"log_file"`
}

// Timeout converts the configured backend timeout. Zero means no timeout.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.applyEnv()
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// Validate checks the generation slider bounds.
func (c *Config) Validate() error {
	g := c.Generation
	if g.MinDuration <= 0 || g.MaxDuration < g.MinDuration {
		return fmt.Errorf("%w: duration range %d..%d", ErrInvalidConfig, g.MinDuration, g.MaxDuration)
	}
	if g.DefaultDuration < g.MinDuration || g.DefaultDuration > g.MaxDuration {
		return fmt.Errorf("%w: default duration %d outside %d..%d", ErrInvalidConfig, g.DefaultDuration, g.MinDuration, g.MaxDuration)
	}
	if g.Step <= 0 {
		return fmt.Errorf("%w: duration step must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(BackendURLEnv); v != "" {
		c.Backend.URL = v
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
