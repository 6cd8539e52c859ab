package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"pizzatracker/internal/core/domain/model/kernel"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort   string `env:"HTTP_PORT"   envDefault:"8080"`
	DBHost     string `env:"DB_HOST"     envDefault:"localhost"`
	DBPort     string `env:"DB_PORT"     envDefault:"5432"`
	DBUser     string `env:"DB_USER"     envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"     envDefault:"pizzatracker"`
	DBSslMode  string `env:"DB_SSLMODE"  envDefault:"disable"`

	// AMQPURL enables the status relay when set.
	AMQPURL string `env:"AMQP_URL"`

	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	VAPIDSubscriber string `env:"VAPID_SUBSCRIBER" envDefault:"mailto:ops@pizzatracker.local"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"  envDefault:"http://localhost:8080"`

	PrepDuration             time.Duration `env:"PREP_DURATION"              envDefault:"10s"`
	DeliveryDuration         time.Duration `env:"DELIVERY_DURATION"          envDefault:"60s"`
	TrackingPollInterval     time.Duration `env:"TRACKING_POLL_INTERVAL"     envDefault:"4s"`
	TrackingQueueCapacity    int           `env:"TRACKING_QUEUE_CAPACITY"    envDefault:"100"`
	TrackingMaxConcurrent    int           `env:"TRACKING_MAX_CONCURRENT"    envDefault:"0"`
	TrackingRecoverySchedule string        `env:"TRACKING_RECOVERY_SCHEDULE" envDefault:"@every 30s"`

	DispatchLatitude  float64 `env:"DISPATCH_LATITUDE"  envDefault:"51.5072"`
	DispatchLongitude float64 `env:"DISPATCH_LONGITUDE" envDefault:"-0.1276"`
}

// LoadConfig reads the configuration from the environment. Values from an
// optional .env file in the working directory are applied first and never
// override variables that are already set.
func LoadConfig(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var config Config
	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate rejects values the application cannot start with.
func (c Config) Validate() error {
	var problems []error
	if c.PrepDuration <= 0 {
		problems = append(problems, fmt.Errorf("PREP_DURATION must be positive, got %s", c.PrepDuration))
	}
	if c.DeliveryDuration <= 0 {
		problems = append(problems, fmt.Errorf("DELIVERY_DURATION must be positive, got %s", c.DeliveryDuration))
	}
	if c.TrackingPollInterval <= 0 {
		problems = append(problems, fmt.Errorf("TRACKING_POLL_INTERVAL must be positive, got %s", c.TrackingPollInterval))
	}
	if c.TrackingQueueCapacity <= 0 {
		problems = append(problems, fmt.Errorf("TRACKING_QUEUE_CAPACITY must be positive, got %d", c.TrackingQueueCapacity))
	}
	if c.TrackingMaxConcurrent < 0 {
		problems = append(problems, fmt.Errorf("TRACKING_MAX_CONCURRENT must not be negative, got %d", c.TrackingMaxConcurrent))
	}
	if _, err := c.DispatchLocation(); err != nil {
		problems = append(problems, fmt.Errorf("DISPATCH_LATITUDE/DISPATCH_LONGITUDE: %w", err))
	}
	if u, err := url.Parse(c.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Errorf("PUBLIC_BASE_URL must be an absolute URL, got %q", c.PublicBaseURL))
	}
	return errors.Join(problems...)
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// DispatchLocation is the coordinate used for orders placed without one.
func (c Config) DispatchLocation() (kernel.Location, error) {
	return kernel.NewLocation(c.DispatchLatitude, c.DispatchLongitude)
}

// PushEnabled reports whether VAPID keys were configured.
func (c Config) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
