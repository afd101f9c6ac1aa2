package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig        `json:"server"`
	Database      DatabaseConfig      `json:"database"`
	Trust         TrustConfig         `json:"trust"`
	Security      SecurityConfig      `json:"security"`
	Notifications NotificationsConfig `json:"notifications"`
	Exports       ExportsConfig       `json:"exports"`
	Logging       LoggingConfig       `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
}

// TrustConfig governs the claim verification engine and anomaly detector.
type TrustConfig struct {
	QuorumThreshold    int     `json:"quorum_threshold"`
	MaxClaimHours      float64 `json:"max_claim_hours"`
	MaxProximityMeters float64 `json:"max_proximity_meters"`
	RewardVerifiers    bool    `json:"reward_verifiers"`
	FlagThreshold      float64 `json:"flag_threshold"`
	SlashPenalty       float64 `json:"slash_penalty"`
	ScanSchedule       string  `json:"scan_schedule"`
}

// SecurityConfig
type SecurityConfig struct {
	JWTSecret string `json:"jwt_secret"`
}

// NotificationsConfig
type NotificationsConfig struct {
	SNSTopicARN string `json:"sns_topic_arn"`
}

// ExportsConfig
type ExportsConfig struct {
	ArchiveBucket string `json:"archive_bucket"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "labor_trust",
			SSLMode: "disable",
		},
		Trust: TrustConfig{
			QuorumThreshold:    3,
			MaxClaimHours:      16.0,
			MaxProximityMeters: 500,
			RewardVerifiers:    true,
			FlagThreshold:      0.65,
			SlashPenalty:       5.0,
			ScanSchedule:       "@hourly",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Security.JWTSecret = secret
	}
	if quorum := os.Getenv("TRUST_QUORUM_THRESHOLD"); quorum != "" {
		if q, err := strconv.Atoi(quorum); err == nil && q > 0 {
			config.Trust.QuorumThreshold = q
		}
	}
	if topic := os.Getenv("SNS_TOPIC_ARN"); topic != "" {
		config.Notifications.SNSTopicARN = topic
	}
	if bucket := os.Getenv("EXPORTS_ARCHIVE_BUCKET"); bucket != "" {
		config.Exports.ArchiveBucket = bucket
	}
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
