// Package config provides YAML-based configuration for the SDK, the host
// tooling and the demo games, with environment overrides.
package config

import "time"

// Config is the full arcade configuration.
type Config struct {
	SDK     SDKConfig     `yaml:"sdk"`
	Host    HostConfig    `yaml:"host"`
	SSH     SSHConfig     `yaml:"ssh"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Games   GamesConfig   `yaml:"games"`
}

// SDKConfig controls the game side of the protocol.
type SDKConfig struct {
	ChallengeNumber int           `yaml:"challenge_number" env:"ARCADE_CHALLENGE_NUMBER"`
	DevDelay        time.Duration `yaml:"dev_delay"        env:"ARCADE_DEV_DELAY"`
}

// HostConfig controls the host simulator and its WebSocket endpoint.
type HostConfig struct {
	Listen     string `yaml:"listen"      env:"ARCADE_HOST_LISTEN"`
	URL        string `yaml:"url"         env:"ARCADE_HOST_URL"`
	PipeBuffer int    `yaml:"pipe_buffer" env:"ARCADE_PIPE_BUFFER"`
}

// SSHConfig controls the SSH-served host console.
type SSHConfig struct {
	Host        string `yaml:"host"          env:"ARCADE_SSH_HOST"`
	Port        int    `yaml:"port"          env:"ARCADE_SSH_PORT"`
	HostKeyPath string `yaml:"host_key_path" env:"ARCADE_SSH_HOST_KEY"`
}

// StorageConfig locates the scores database.
type StorageConfig struct {
	DBPath string `yaml:"db_path" env:"ARCADE_DB_PATH"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" env:"ARCADE_LOG_LEVEL"`
}

// GamesConfig holds per-game settings.
type GamesConfig struct {
	T2048  T2048Config  `yaml:"2048"`
	Tapper TapperConfig `yaml:"tapper"`
}

// T2048Config configures the 2048 demo.
type T2048Config struct {
	Size       int     `yaml:"size"`
	FourChance float64 `yaml:"four_chance"` // probability a spawned tile is a 4
	StartTiles int     `yaml:"start_tiles"`
}

// TapperConfig configures the tapper demo.
type TapperConfig struct {
	TrackWidth int              `yaml:"track_width"`
	Window     int              `yaml:"window"` // cells around the center that count as a hit
	BaseSpeed  float64          `yaml:"base_speed"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // score or ticks at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier"`
	WindowReduction int     `yaml:"window_reduction"`
}
