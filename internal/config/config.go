package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken          string      `yaml:"discord_token"`
	Prefix                string      `yaml:"prefix"`
	DataDir               string      `yaml:"data_dir"`
	HistoryPath           string      `yaml:"history_path"`
	HistoryRetentionDays  int         `yaml:"history_retention_days"`
	LogLevel              string      `yaml:"log_level"`
	AllowList             []string    `yaml:"allow_list"`
	ConfirmTimeoutSeconds int         `yaml:"confirm_timeout_seconds"`
	HTTP                  HTTPConfig  `yaml:"http"`
	Hack                  HackConfig  `yaml:"hack"`
	Bulk                  BulkConfig  `yaml:"bulk"`
	EmbedColors           EmbedColors `yaml:"embed_colors"`
	Footer                string      `yaml:"footer"`

	path string
}

type HTTPConfig struct {
	Addr             string `yaml:"addr"`
	ForwardChannelID string `yaml:"forward_channel_id"`
}

type HackConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	WindowSeconds   int    `yaml:"window_seconds"`
	ReplyPhrase     string `yaml:"reply_phrase"`
	ImageURL        string `yaml:"image_url"`
}

type BulkConfig struct {
	ActionsPerSecond float64 `yaml:"actions_per_second"`
	Burst            int     `yaml:"burst"`
}

type EmbedColors struct {
	Info    int `yaml:"info"`
	Success int `yaml:"success"`
	Warning int `yaml:"warning"`
	Error   int `yaml:"error"`
}

func DefaultConfig() Config {
	return Config{
		Prefix:                "!",
		DataDir:               "./data",
		HistoryPath:           "./data/history.db",
		HistoryRetentionDays:  30,
		LogLevel:              "info",
		ConfirmTimeoutSeconds: 20,
		HTTP:                  HTTPConfig{Addr: ":3000"},
		Hack: HackConfig{
			IntervalSeconds: 1,
			WindowSeconds:   60,
			ReplyPhrase:     "gaber je kul",
			ImageURL:        "https://upload.wikimedia.org/wikipedia/commons/thumb/9/9c/Middle_finger_BNC.jpg/500px-Middle_finger_BNC.jpg",
		},
		Bulk: BulkConfig{ActionsPerSecond: 5, Burst: 5},
		EmbedColors: EmbedColors{
			Info:    0x5865F2,
			Success: 0x57F287,
			Warning: 0xFFAA00,
			Error:   0xFF5555,
		},
		Footer: "Gabers bot 2025",
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	// .env is optional; real environment variables still win.
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg.path = path
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	normalize(&cfg)
	return cfg, nil
}

// Path returns the config file the values were read from, if any.
func (c Config) Path() string {
	return c.path
}

func (c Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutSeconds) * time.Second
}

func (c HackConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

func (c HackConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.Prefix = envString("PREFIX", cfg.Prefix)
	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)
	cfg.HistoryPath = envString("HISTORY_PATH", cfg.HistoryPath)
	cfg.HistoryRetentionDays = envInt("HISTORY_RETENTION_DAYS", cfg.HistoryRetentionDays)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.AllowList = envList("ALLOW_LIST", cfg.AllowList)
	cfg.ConfirmTimeoutSeconds = envInt("CONFIRM_TIMEOUT_SECONDS", cfg.ConfirmTimeoutSeconds)
	if port := os.Getenv("PORT"); port != "" {
		cfg.HTTP.Addr = ":" + port
	}
	cfg.HTTP.Addr = envString("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.ForwardChannelID = envString("FORWARD_CHANNEL_ID", cfg.HTTP.ForwardChannelID)
	cfg.Hack.IntervalSeconds = envInt("HACK_INTERVAL_SECONDS", cfg.Hack.IntervalSeconds)
	cfg.Hack.WindowSeconds = envInt("HACK_WINDOW_SECONDS", cfg.Hack.WindowSeconds)
	cfg.Hack.ReplyPhrase = envString("HACK_REPLY_PHRASE", cfg.Hack.ReplyPhrase)
	cfg.Bulk.ActionsPerSecond = envFloat("BULK_ACTIONS_PER_SECOND", cfg.Bulk.ActionsPerSecond)
}

func normalize(cfg *Config) {
	cfg.Prefix = strings.TrimSpace(cfg.Prefix)
	if cfg.Prefix == "" {
		cfg.Prefix = "!"
	}
	if cfg.ConfirmTimeoutSeconds <= 0 {
		cfg.ConfirmTimeoutSeconds = 20
	}
	if cfg.Hack.IntervalSeconds <= 0 {
		cfg.Hack.IntervalSeconds = 1
	}
	if cfg.Hack.WindowSeconds <= 0 {
		cfg.Hack.WindowSeconds = 60
	}
	if cfg.Bulk.ActionsPerSecond <= 0 {
		cfg.Bulk.ActionsPerSecond = 5
	}
	if cfg.Bulk.Burst <= 0 {
		cfg.Bulk.Burst = 1
	}
	cfg.AllowList = cleanList(cfg.AllowList)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(strings.ToLower(level)))
	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return fallback
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
