package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Environment string
	ServerPort  string
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	JWTSecret   string

	// Token lifecycle settings. A session's QR token is rotated every
	// RotationInterval and stays valid for ExpiryWindow after it is issued.
	RotationInterval time.Duration
	ExpiryWindow     time.Duration
	LateGracePeriod  time.Duration
}

func Load() (*Config, error) {
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	rotationSeconds, err := getEnvInt("TOKEN_ROTATION_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	expirySeconds, err := getEnvInt("TOKEN_EXPIRY_SECONDS", 90)
	if err != nil {
		return nil, err
	}
	graceMinutes, err := getEnvInt("LATE_GRACE_MINUTES", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		ServerPort:       getEnv("PORT", "8080"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           dbPort,
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", ""),
		DBName:           getEnv("DB_NAME", "rollcall"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		RotationInterval: time.Duration(rotationSeconds) * time.Second,
		ExpiryWindow:     time.Duration(expirySeconds) * time.Second,
		LateGracePeriod:  time.Duration(graceMinutes) * time.Minute,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the token lifecycle invariants. A rotation interval
// longer than the expiry window would leave gaps where a session has no
// valid token at all, so startup must fail rather than run misconfigured.
func (c *Config) Validate() error {
	if c.RotationInterval <= 0 {
		return fmt.Errorf("TOKEN_ROTATION_SECONDS must be positive, got %s", c.RotationInterval)
	}
	if c.ExpiryWindow <= 0 {
		return fmt.Errorf("TOKEN_EXPIRY_SECONDS must be positive, got %s", c.ExpiryWindow)
	}
	if c.ExpiryWindow < c.RotationInterval {
		return fmt.Errorf("token expiry window (%s) must be at least the rotation interval (%s)",
			c.ExpiryWindow, c.RotationInterval)
	}
	if c.LateGracePeriod < 0 {
		return fmt.Errorf("LATE_GRACE_MINUTES must not be negative, got %s", c.LateGracePeriod)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to defaultValue only when the variable is unset. A
// value that is set but not an integer is a configuration mistake and must
// fail loudly instead of being silently replaced by the default.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}
