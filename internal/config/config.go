package config

import "time"

type Config struct {
	ServerPort string `koanf:"server_port"`
	LogLevel   string `koanf:"log_level"`
	LogFormat  string `koanf:"log_format"`

	// Store selects the repository backend: "postgres" or "memory".
	Store string `koanf:"store"`

	DBHost     string `koanf:"db_host"`
	DBPort     string `koanf:"db_port"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"`

	// RedisURL may be empty, in which case rate limits are kept per process.
	RedisURL  string        `koanf:"redis_url"`
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	// Rate limits apply per caller within RateLimitWindow.
	MessageRateLimit     int           `koanf:"message_rate_limit"`
	ApplicationRateLimit int           `koanf:"application_rate_limit"`
	RateLimitWindow      time.Duration `koanf:"rate_limit_window"`

	AllowedOrigin string `koanf:"allowed_origin"`
}

// New returns the development defaults.
func New() *Config {
	return &Config{
		ServerPort: "8080",
		LogLevel:   "info",
		LogFormat:  "text",

		Store: "postgres",

		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "campus",
		DBPassword: "campus_dev_password",
		DBName:     "campusconnect",

		RedisURL:  "localhost:6379",
		JWTSecret: "dev-secret-change-me",
		TokenTTL:  24 * time.Hour,

		MessageRateLimit:     5,
		ApplicationRateLimit: 3,
		RateLimitWindow:      10 * time.Second,

		AllowedOrigin: "*",
	}
}
