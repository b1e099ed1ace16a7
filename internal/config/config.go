// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each leaf field
// corresponds to one environment variable.
type Config struct {
	Env         string   `env:"APP_ENV" env-default:"development"`
	Host        string   `env:"APP_HOST" env-default:"0.0.0.0"`
	Port        string   `env:"APP_PORT" env-default:"8080"`
	Version     string   `env:"APP_VERSION" env-default:"1.0.0"`
	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"*"`
	RabbitURL   string   `env:"RABBITMQ_URL"`

	DB        DBConfig
	Auth      AuthConfig
	Log       LogConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type DBConfig struct {
	User string `env:"DB_USER" env-required:"true"`
	Pass string `env:"DB_PASS"`
	Host string `env:"DB_HOST" env-default:"127.0.0.1"`
	Port string `env:"DB_PORT" env-default:"3306"`
	Name string `env:"DB_NAME" env-required:"true"`
}

// DSN renders the go-sql-driver connection string.  parseTime maps
// DATETIME to time.Time and loc=UTC keeps stored times consistent.
func (c DBConfig) DSN(multiStatements bool) string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Pass
	mc.Net = "tcp"
	mc.Addr = c.Host + ":" + c.Port
	mc.DBName = c.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.MultiStatements = multiStatements
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

type AuthConfig struct {
	PrivateKeyPath string `env:"JWT_PRIVATE_KEY_PATH" env-default:"keys/private.pem"`
	PublicKeyPath  string `env:"JWT_PUBLIC_KEY_PATH" env-default:"keys/public.pem"`
	AccessTTLMin   int    `env:"ACCESS_TOKEN_TTL_MIN" env-default:"15"`
	RefreshTTLDays int    `env:"REFRESH_TOKEN_TTL_DAYS" env-default:"30"`
	BcryptCost     int    `env:"BCRYPT_COST" env-default:"10"`
}

func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTTLMin) * time.Minute
}

func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTTLDays) * 24 * time.Hour
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
	Dir   string `env:"LOG_DIR" env-default:"logs"`
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Addr is the host:port the HTTP server binds to.
func (c Config) Addr() string { return c.Host + ":" + c.Port }

// Load reads a .env file when one exists and then the process
// environment.  Variables already set in the environment win.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	cfg.RateLimit.normalize()
	return cfg, nil
}
