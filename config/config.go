package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	Server      ServerConfig
	Reservation ReservationConfig
	DB          DBConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Security    SecurityConfig
	Seed        SeedConfig
}

type AppConfig struct {
	Port       string
	HealthPort string
	Env        string
	LogLevel   string
	LogFile    string
	CORSOrigin string
}

type ServerConfig struct {
	MaxConnections int
	IdleTimeout    time.Duration
}

type ReservationConfig struct {
	HoldWindow    time.Duration
	SweepInterval time.Duration
}

type DBConfig struct {
	Enabled            bool
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	CheckpointSchedule string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

type SecurityConfig struct {
	BcryptCost int
}

// SeedConfig describes the administrator created when the store starts empty.
type SeedConfig struct {
	AdminUsername string
	AdminPassword string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "9090")
	v.SetDefault("APP_HEALTH_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_CORS_ORIGIN", "*")
	v.SetDefault("SERVER_MAX_CONNECTIONS", 256)
	v.SetDefault("SERVER_IDLE_TIMEOUT", "0s")
	v.SetDefault("RESERVATION_HOLD_WINDOW", "24h")
	v.SetDefault("RESERVATION_SWEEP_INTERVAL", "30s")
	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_CHECKPOINT_SCHEDULE", "@every 5m")
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_ACCESS_EXPIRY", "12h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("SEED_ADMIN_USERNAME", "admin")
}

// LoadConfig reads configuration from the given env file and the process
// environment. A missing file is not an error; defaults and environment
// variables still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = ".env"
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Port:       v.GetString("APP_PORT"),
			HealthPort: v.GetString("APP_HEALTH_PORT"),
			Env:        v.GetString("APP_ENV"),
			LogLevel:   v.GetString("LOG_LEVEL"),
			LogFile:    v.GetString("LOG_FILE"),
			CORSOrigin: v.GetString("APP_CORS_ORIGIN"),
		},
		Server: ServerConfig{
			MaxConnections: v.GetInt("SERVER_MAX_CONNECTIONS"),
			IdleTimeout:    durationOr(v, "SERVER_IDLE_TIMEOUT", 0),
		},
		Reservation: ReservationConfig{
			HoldWindow:    durationOr(v, "RESERVATION_HOLD_WINDOW", 24*time.Hour),
			SweepInterval: durationOr(v, "RESERVATION_SWEEP_INTERVAL", 30*time.Second),
		},
		DB: DBConfig{
			Enabled:            v.GetBool("DB_ENABLED"),
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetString("DB_PORT"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			Name:               v.GetString("DB_NAME"),
			CheckpointSchedule: v.GetString("DB_CHECKPOINT_SCHEDULE"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			AccessExpiry: durationOr(v, "JWT_ACCESS_EXPIRY", 12*time.Hour),
		},
		Security: SecurityConfig{
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
		Seed: SeedConfig{
			AdminUsername: v.GetString("SEED_ADMIN_USERNAME"),
			AdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
		},
	}
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
