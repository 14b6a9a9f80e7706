package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/sdk.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SDK: SDKConfig{
			ChallengeNumber: 1,
			DevDelay:        3 * time.Second,
		},
		Host: HostConfig{
			Listen:     ":8089",
			URL:        "ws://localhost:8089/game",
			PipeBuffer: 64,
		},
		SSH: SSHConfig{
			Host:        "0.0.0.0",
			Port:        2222,
			HostKeyPath: "~/.arcade/ssh_host_ed25519",
		},
		Storage: StorageConfig{DBPath: "~/.arcade/scores.db"},
		Log:     LogConfig{Level: "info"},
		Games: GamesConfig{
			T2048: T2048Config{Size: 4, FourChance: 0.1, StartTiles: 2},
			Tapper: TapperConfig{
				TrackWidth: 31,
				Window:     2,
				BaseSpeed:  0.5,
				Difficulty: DifficultyConfig{
					Enabled:     true,
					Progression: ProgressionConfig{Type: "score", MaxAt: 30},
					Scaling:     ScalingConfig{SpeedMultiplier: 2.0, WindowReduction: 2},
				},
			},
		},
	}
}
