// Package config loads engine configuration from an optional YAML file with
// environment overrides, so container deployments can run file-less.
package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures everything the serve command needs to wire the engine.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Auth struct {
		// JWTSigningKey verifies bearer tokens carrying the caller principal.
		JWTSigningKey string `yaml:"jwt_signing_key"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	Engine struct {
		MaxUsers          uint64 `yaml:"max_users"`
		MaxQuizzes        uint64 `yaml:"max_quizzes"`
		BaseRewardAmount  uint64 `yaml:"base_reward_amount"`
		BonusMultiplier   uint64 `yaml:"bonus_multiplier"`
		CooldownBlocks    uint64 `yaml:"cooldown_blocks"`
		MaxRewardsPerUser uint64 `yaml:"max_rewards_per_user"`
	} `yaml:"engine"`
}

// Defaults mirrors the reference deployment parameters.
func Defaults() Config {
	var cfg Config
	cfg.Server.Addr = ":8080"
	cfg.Kafka.Topic = "agora.audit"
	cfg.Engine.MaxUsers = 10000
	cfg.Engine.MaxQuizzes = 50
	cfg.Engine.BaseRewardAmount = 100
	cfg.Engine.BonusMultiplier = 50
	cfg.Engine.CooldownBlocks = 100
	cfg.Engine.MaxRewardsPerUser = 1000
	return cfg
}

// Load reads the YAML file at path (when non-empty) over the defaults, then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AGORA_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("AGORA_JWT_SIGNING_KEY"); v != "" {
		cfg.Auth.JWTSigningKey = v
	}
	if v := os.Getenv("AGORA_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("AGORA_POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("AGORA_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("AGORA_COOLDOWN_BLOCKS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Engine.CooldownBlocks = n
		}
	}
}
