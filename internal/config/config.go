package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // SCHEDULE_TZ must resolve in minimal images

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration from environment.
type Config struct {
	GitHubToken   string
	GitHubRepo    string
	WorkflowFile  string
	TriggerSecret string
	GitHubAPIURL  string
	UserAgent     string

	HTTPAddr           string
	Schedule           string
	ScheduleTZ         string
	HTTPTimeoutSec     int
	ShutdownTimeoutSec int

	LogLevel  string
	LogFormat string
}

// Default values when env vars are unset.
const (
	DefaultHTTPAddr           = ":8080"
	DefaultSchedule           = "0 6 * * *"
	DefaultScheduleTZ         = "UTC"
	DefaultUserAgent          = "hn-digest-trigger"
	DefaultHTTPTimeoutSec     = 30
	DefaultShutdownTimeoutSec = 10
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
)

// LoadEnvFile loads a dotenv file into the process environment.
// Variables already set in the environment are not overridden.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from the environment.
// Uses defaults for optional values when unset.
func Load() *Config {
	c := &Config{
		GitHubToken:        os.Getenv("GITHUB_TOKEN"),
		GitHubRepo:         strings.TrimSpace(os.Getenv("GITHUB_REPO")),
		WorkflowFile:       strings.TrimSpace(os.Getenv("WORKFLOW_FILE")),
		TriggerSecret:      os.Getenv("TRIGGER_SECRET"),
		GitHubAPIURL:       os.Getenv("GITHUB_API_URL"),
		UserAgent:          DefaultUserAgent,
		HTTPAddr:           DefaultHTTPAddr,
		Schedule:           DefaultSchedule,
		ScheduleTZ:         DefaultScheduleTZ,
		HTTPTimeoutSec:     DefaultHTTPTimeoutSec,
		ShutdownTimeoutSec: DefaultShutdownTimeoutSec,
		LogLevel:           DefaultLogLevel,
		LogFormat:          DefaultLogFormat,
	}
	if v := os.Getenv("USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	} else if v := os.Getenv("PORT"); v != "" {
		c.HTTPAddr = ":" + v
	}
	// An explicitly empty TRIGGER_SCHEDULE disables the timer.
	if v, ok := os.LookupEnv("TRIGGER_SCHEDULE"); ok {
		c.Schedule = strings.TrimSpace(v)
	}
	if v := os.Getenv("SCHEDULE_TZ"); v != "" {
		c.ScheduleTZ = v
	}
	if v := os.Getenv("HTTP_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.HTTPTimeoutSec = n
		}
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ShutdownTimeoutSec = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	return c
}

// Validate reports every setting that prevents a dispatch from being built.
func (c *Config) Validate() error {
	var errs []error
	if c.GitHubToken == "" {
		errs = append(errs, errors.New("GITHUB_TOKEN is required"))
	}
	if _, _, err := c.RepoOwnerName(); err != nil {
		errs = append(errs, err)
	}
	if c.WorkflowFile == "" {
		errs = append(errs, errors.New("WORKFLOW_FILE is required"))
	}
	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("TRIGGER_SCHEDULE %q is invalid: %w", c.Schedule, err))
		}
	}
	if _, err := time.LoadLocation(c.ScheduleTZ); err != nil {
		errs = append(errs, fmt.Errorf("SCHEDULE_TZ %q is invalid: %w", c.ScheduleTZ, err))
	}
	return errors.Join(errs...)
}

// RepoOwnerName splits GITHUB_REPO into owner and repository name.
func (c *Config) RepoOwnerName() (owner, name string, err error) {
	parts := strings.Split(c.GitHubRepo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("GITHUB_REPO %q must be in owner/name form", c.GitHubRepo)
	}
	return parts[0], parts[1], nil
}

// HTTPTimeout returns the outbound client timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// ShutdownTimeout returns the grace period for in-flight work on shutdown.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}
