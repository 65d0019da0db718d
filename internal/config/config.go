package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EngineProviderHTTP   = "http"
	EngineProviderGemini = "gemini"

	DatabaseDriverPostgres = "postgres"
	DatabaseDriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Engine   EngineConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AuthConfig struct {
	// ProjectID is the identity provider project; it is the expected audience
	// and part of the default issuer.
	ProjectID  string
	Issuer     string
	Audience   string
	CertsURL   string
	HMACSecret string
	KeyRefresh time.Duration
}

type EngineConfig struct {
	Provider   string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type StorageConfig struct {
	MaxFileSize int64
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	projectID := getEnv("AUTH_PROJECT_ID", "")

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "5000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", DatabaseDriverPostgres)),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ai_resume_platform"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			ProjectID:  projectID,
			Issuer:     getEnv("AUTH_ISSUER", defaultIssuer(projectID)),
			Audience:   getEnv("AUTH_AUDIENCE", projectID),
			CertsURL:   getEnv("AUTH_CERTS_URL", "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"),
			HMACSecret: getEnv("AUTH_HMAC_SECRET", ""),
			KeyRefresh: getEnvAsDuration("AUTH_KEY_REFRESH", "1h"),
		},
		Engine: EngineConfig{
			Provider:   strings.ToLower(getEnv("ENGINE_PROVIDER", EngineProviderHTTP)),
			BaseURL:    getEnv("ENGINE_URL", "http://localhost:8000"),
			Timeout:    getEnvAsDuration("ENGINE_TIMEOUT", "60s"),
			MaxRetries: getEnvAsInt("ENGINE_MAX_RETRIES", 1),
			RetryWait:  getEnvAsDuration("ENGINE_RETRY_WAIT", "500ms"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Storage: StorageConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 5*1024*1024),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Auth.HMACSecret == "" && c.Auth.ProjectID == "" {
		return fmt.Errorf("either AUTH_PROJECT_ID or AUTH_HMAC_SECRET must be set")
	}

	switch c.Engine.Provider {
	case EngineProviderHTTP:
		if c.Engine.BaseURL == "" {
			return fmt.Errorf("ENGINE_URL must be set for the http engine provider")
		}
	case EngineProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set for the gemini engine provider")
		}
	default:
		return fmt.Errorf("unknown ENGINE_PROVIDER %q", c.Engine.Provider)
	}

	switch c.Database.Driver {
	case DatabaseDriverPostgres, DatabaseDriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}

	if c.Engine.MaxRetries < 0 {
		return fmt.Errorf("ENGINE_MAX_RETRIES must not be negative")
	}

	if c.Storage.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}

	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func defaultIssuer(projectID string) string {
	if projectID == "" {
		return ""
	}
	return "https://securetoken.google.com/" + projectID
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
