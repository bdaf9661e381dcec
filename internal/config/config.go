package config

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`

	Server   ServerConfig   `env:",prefix=SERVER_"`
	Database DatabaseConfig `env:",prefix=PSQL_"`
	Auth     AuthConfig     `env:",prefix=AUTH_"`
	S3       S3Settings     `env:",prefix=S3_"`
}

type ServerConfig struct {
	Port string `env:"PORT,default=8080"`
}

type DatabaseConfig struct {
	// URL overrides the individual fields when set.
	URL      string `env:"URL"`
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=postgres"`
	Password string `env:"PASSWORD,default=postgres"`
	Name     string `env:"DB_NAME,default=adx"`
	SSLMode  string `env:"SSL_MODE,default=disable"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET,default=dev-secret"`
	Username  string `env:"USERNAME,default=operator"`
	Password  string `env:"PASSWORD,default=changeme"`
}

type S3Settings struct {
	Enabled bool   `env:"ENABLED,default=false"`
	Bucket  string `env:"BUCKET"`
	Region  string `env:"REGION,default=us-east-1"`
	Prefix  string `env:"PREFIX,default=reports"`
}

// Load reads configuration from the environment.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

// DatabaseURL returns the postgres connection URL.
func (c *DatabaseConfig) DatabaseURL() string {
	if c.URL != "" {
		return c.URL
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   c.Name,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
