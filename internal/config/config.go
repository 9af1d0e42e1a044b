package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	StaticPath   string        `mapstructure:"static_path"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	WriteWait    time.Duration `mapstructure:"write_wait"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	PongWait     time.Duration `mapstructure:"pong_wait"`
	RoomCapacity int           `mapstructure:"room_capacity"`
	ChatLogDir   string        `mapstructure:"chat_log_dir"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("write_wait", "10s")
	v.SetDefault("ping_period", "30s")
	v.SetDefault("pong_wait", "45s")
	v.SetDefault("room_capacity", 12)
	v.SetDefault("chat_log_dir", os.TempDir())

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.RoomCapacity < 1 {
		return nil, fmt.Errorf("room_capacity must be positive, got %d", cfg.RoomCapacity)
	}
	// A ping must fit inside the liveness window or every session times out.
	if cfg.PingPeriod >= cfg.PongWait {
		return nil, fmt.Errorf("ping_period (%s) must be shorter than pong_wait (%s)", cfg.PingPeriod, cfg.PongWait)
	}
	return &cfg, nil
}
