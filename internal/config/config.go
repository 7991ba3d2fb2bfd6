package config

import (
	"os"
	"strconv"
)

type Config struct {
	DB        DBConfig
	Media     MediaConfig
	JWT       JWTConfig
	Server    ServerConfig
	Bootstrap BootstrapConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// MediaConfig configures the external media host. InsecureSkipVerify is
// scoped to this one client, never a process-wide trust override.
type MediaConfig struct {
	Endpoint           string
	PublicEndpoint     string
	AccessKey          string
	SecretKey          string
	Bucket             string
	UseSSL             bool
	InsecureSkipVerify bool
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type ServerConfig struct {
	Port string
}

// BootstrapConfig seeds the initial superadmin account on first startup.
// Skipped entirely when email or password is unset.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

func Load() *Config {
	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "recipeplanner"),
			Password: getEnv("DB_PASSWORD", "recipeplanner_secret"),
			Name:     getEnv("DB_NAME", "recipeplanner"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Media: MediaConfig{
			Endpoint:           getEnv("MEDIA_ENDPOINT", "localhost:9000"),
			PublicEndpoint:     getEnv("MEDIA_PUBLIC_ENDPOINT", getEnv("MEDIA_ENDPOINT", "localhost:9000")),
			AccessKey:          getEnv("MEDIA_ACCESS_KEY", "recipeplanner"),
			SecretKey:          getEnv("MEDIA_SECRET_KEY", "recipeplanner_secret"),
			Bucket:             getEnv("MEDIA_BUCKET", "recipe-media"),
			UseSSL:             getEnvAsBool("MEDIA_USE_SSL", false),
			InsecureSkipVerify: getEnvAsBool("MEDIA_TLS_INSECURE_SKIP_VERIFY", false),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-me-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 168),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5000"),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    getEnv("MAIN_ADMIN_EMAIL", ""),
			AdminPassword: getEnv("MAIN_ADMIN_PASSWORD", ""),
			AdminName:     getEnv("MAIN_ADMIN_NAME", "Main Admin"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
