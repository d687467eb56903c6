package config

import (
	"os"

	"github.com/insidejustjoin/justjoin-sub002/pkg/logger"
	"github.com/insidejustjoin/justjoin-sub002/pkg/util"
)

// Config carries everything the interview service reads from the environment.
type Config struct {
	Addr      string `env:"ADDR"`
	Mode      string `env:"MODE"`
	APIPrefix string `env:"API_PREFIX"`

	DBDriver string `env:"DB_DRIVER"`
	DSN      string `env:"DSN"`

	Log logger.LogConfig

	DefaultLanguage string `env:"DEFAULT_LANGUAGE"`

	StorageType string `env:"STORAGE_TYPE"` // local | minio
	StoragePath string `env:"STORAGE_PATH"`

	CacheType string `env:"CACHE_TYPE"` // gocache | redis
	RedisAddr string `env:"REDIS_ADDR"`

	MaxUploadMB int64  `env:"MAX_UPLOAD_MB"`
	UploadRate  string `env:"UPLOAD_RATE"`

	LLMAPIKey  string `env:"LLM_API_KEY"`
	LLMBaseURL string `env:"LLM_BASE_URL"`
	LLMModel   string `env:"LLM_MODEL"`
}

var GlobalConfig *Config

// Load reads the .env file for APP_ENV and populates GlobalConfig.
func Load() error {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	// Absent .env files are normal outside development.
	_ = util.LoadEnv(env)

	GlobalConfig = &Config{
		Addr:      util.GetEnvDefault("ADDR", ":8080"),
		Mode:      util.GetEnvDefault("MODE", "debug"),
		APIPrefix: util.GetEnvDefault("API_PREFIX", "/api/interview"),

		DBDriver: util.GetEnv("DB_DRIVER"),
		DSN:      util.GetEnv("DSN"),

		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},

		DefaultLanguage: util.GetEnvDefault("DEFAULT_LANGUAGE", "ja"),

		StorageType: util.GetEnvDefault("STORAGE_TYPE", "local"),
		StoragePath: util.GetEnvDefault("STORAGE_PATH", "recordings"),

		CacheType: util.GetEnvDefault("CACHE_TYPE", "gocache"),
		RedisAddr: util.GetEnv("REDIS_ADDR"),

		MaxUploadMB: maxUploadDefault(util.GetIntEnv("MAX_UPLOAD_MB")),
		UploadRate:  util.GetEnvDefault("UPLOAD_RATE", "30-M"),

		LLMAPIKey:  util.GetEnv("LLM_API_KEY"),
		LLMBaseURL: util.GetEnv("LLM_BASE_URL"),
		LLMModel:   util.GetEnvDefault("LLM_MODEL", "gpt-4o-mini"),
	}
	return nil
}

func maxUploadDefault(v int64) int64 {
	if v <= 0 {
		return 100
	}
	return v
}
