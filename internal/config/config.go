package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"couple-plans-backend-go/internal/models"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	AppVersion                       string `mapstructure:"APP_VERSION"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	FirebaseWebAPIKey                string `mapstructure:"FIREBASE_WEB_API_KEY"` // Used for password sign-in
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	WorkspaceID                      string `mapstructure:"WORKSPACE_ID"`
	AllowedUsers                     string `mapstructure:"ALLOWED_USERS"` // "michel=michel@couple-plans.local,sarahi=..."
	AdminUsers                       string `mapstructure:"ADMIN_USERS"`   // "michel"
	RedisAddress                     string `mapstructure:"REDIS_ADDRESS"`
	RedisPassword                    string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                          int    `mapstructure:"REDIS_DB"`
	MirrorEncryptionKey              string `mapstructure:"MIRROR_ENCRYPTION_KEY"` // Base64 encoded, optional
	RabbitMQURL                      string `mapstructure:"RABBITMQ_URL"`
	RabbitMQQueue                    string `mapstructure:"RABBITMQ_QUEUE"`
	SeedFile                         string `mapstructure:"SEED_FILE"`
}

var appConfig *Config

var envKeys = []string{
	"PORT", "GIN_MODE", "APP_VERSION",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"FIREBASE_WEB_API_KEY", "CLIENT_URL", "WORKSPACE_ID", "ALLOWED_USERS", "ADMIN_USERS",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "MIRROR_ENCRYPTION_KEY",
	"RABBITMQ_URL", "RABBITMQ_QUEUE", "SEED_FILE",
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("WORKSPACE_ID", "shared")
	v.SetDefault("ALLOWED_USERS", "michel=michel@couple-plans.local,sarahi=sarahi@couple-plans.local")
	v.SetDefault("ADMIN_USERS", "michel")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RABBITMQ_QUEUE", "couple-plans.events")
	v.SetDefault("SEED_FILE", "configs/seed.yaml")

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if _, err := cfg.Users(); err != nil {
		return nil, err
	}

	appConfig = &cfg
	return appConfig, nil
}

// GetConfig returns the loaded application configuration.
// It will panic if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}

// Users parses ALLOWED_USERS and ADMIN_USERS into the collaborator allow-list.
func (c *Config) Users() ([]models.User, error) {
	admins := make(map[string]bool)
	for _, name := range strings.Split(c.AdminUsers, ",") {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			admins[name] = true
		}
	}

	var users []models.User
	for _, entry := range strings.Split(c.AllowedUsers, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		username, email, ok := strings.Cut(entry, "=")
		username = strings.ToLower(strings.TrimSpace(username))
		email = strings.ToLower(strings.TrimSpace(email))
		if !ok || username == "" || !strings.Contains(email, "@") {
			return nil, fmt.Errorf("ALLOWED_USERS entry %q must look like username=email", entry)
		}
		role := models.RoleUser
		if admins[username] {
			role = models.RoleAdmin
		}
		users = append(users, models.User{Username: username, Email: email, Role: role})
	}
	if len(users) == 0 {
		return nil, errors.New("ALLOWED_USERS must list at least one collaborator")
	}
	return users, nil
}

// IsRelease reports whether Gin runs in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// DefaultOwner is the first admin collaborator, or the first collaborator when none is admin.
// Legacy plans without a creator are attributed to it.
func DefaultOwner(users []models.User) models.User {
	for _, u := range users {
		if u.Role == models.RoleAdmin {
			return u
		}
	}
	if len(users) == 0 {
		return models.User{}
	}
	return users[0]
}
