package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Speech    SpeechConfig
	Image     ImageConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	ApiDomain string
	// EditorIdleMin is how long a live editor may sit unused, in minutes,
	// before it is persisted and evicted.
	EditorIdleMin int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	FillInPerHour  int
	ExportPerHour  int
	SessionsPerMin int
}

// SpeechConfig points at the text-to-speech service.
type SpeechConfig struct {
	ServiceURL string
	APIKey     string
	Voice      string
	Timeout    int // seconds
}

// ImageConfig points at the still-image generation service.
type ImageConfig struct {
	ServiceURL string
	APIKey     string
	Width      int
	Height     int
	Timeout    int // seconds
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("SPEECH_API_KEY")
	readSecret("IMAGE_API_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.api_domain", "API_DOMAIN")
	_ = viper.BindEnv("server.editor_idle_minutes", "EDITOR_IDLE_MINUTES")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = viper.BindEnv("ratelimit.fillin_per_hour", "RATELIMIT_FILLIN_PER_HOUR")
	_ = viper.BindEnv("ratelimit.export_per_hour", "RATELIMIT_EXPORT_PER_HOUR")
	_ = viper.BindEnv("ratelimit.sessions_per_min", "RATELIMIT_SESSIONS_PER_MIN")
	_ = viper.BindEnv("speech.service_url", "SPEECH_SERVICE_URL")
	_ = viper.BindEnv("speech.api_key", "SPEECH_API_KEY")
	_ = viper.BindEnv("speech.voice", "SPEECH_VOICE")
	_ = viper.BindEnv("speech.timeout", "SPEECH_TIMEOUT")
	_ = viper.BindEnv("image.service_url", "IMAGE_SERVICE_URL")
	_ = viper.BindEnv("image.api_key", "IMAGE_API_KEY")
	_ = viper.BindEnv("image.width", "IMAGE_WIDTH")
	_ = viper.BindEnv("image.height", "IMAGE_HEIGHT")
	_ = viper.BindEnv("image.timeout", "IMAGE_TIMEOUT")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("server.editor_idle_minutes", 30)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.fillin_per_hour", 10)
	viper.SetDefault("ratelimit.export_per_hour", 20)
	viper.SetDefault("ratelimit.sessions_per_min", 30)

	// Speech service defaults
	viper.SetDefault("speech.voice", "narrator")
	viper.SetDefault("speech.timeout", 120)

	// Image service defaults
	viper.SetDefault("image.width", 1920)
	viper.SetDefault("image.height", 1080)
	viper.SetDefault("image.timeout", 120)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:          viper.GetString("server.port"),
			Env:           viper.GetString("server.env"),
			LogLevel:      viper.GetString("server.log_level"),
			ApiDomain:     viper.GetString("server.api_domain"),
			EditorIdleMin: viper.GetInt("server.editor_idle_minutes"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			FillInPerHour:  viper.GetInt("ratelimit.fillin_per_hour"),
			ExportPerHour:  viper.GetInt("ratelimit.export_per_hour"),
			SessionsPerMin: viper.GetInt("ratelimit.sessions_per_min"),
		},
		Speech: SpeechConfig{
			ServiceURL: viper.GetString("speech.service_url"),
			APIKey:     viper.GetString("speech.api_key"),
			Voice:      viper.GetString("speech.voice"),
			Timeout:    viper.GetInt("speech.timeout"),
		},
		Image: ImageConfig{
			ServiceURL: viper.GetString("image.service_url"),
			APIKey:     viper.GetString("image.api_key"),
			Width:      viper.GetInt("image.width"),
			Height:     viper.GetInt("image.height"),
			Timeout:    viper.GetInt("image.timeout"),
		},
	}

	return cfg, nil
}
