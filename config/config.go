package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/SamShahinDev/dirtfree-crm-sub004/core/models"
	"github.com/SamShahinDev/dirtfree-crm-sub004/core/schedule"
)

// Config holds the application configuration
type Config struct {
	// Database
	DatabaseURL string

	// Server
	ServerPort string

	// Logging
	LogLevel string

	// SchedulePolicyFile optionally points at a YAML file overriding the
	// default scheduling policy.
	SchedulePolicyFile string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		DatabaseURL:        getEnv("DATABASE_URL", "postgres://localhost/dirtfree_crm?sslmode=disable"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		SchedulePolicyFile: getEnv("SCHEDULE_POLICY_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// policyFile is the YAML shape of the schedule policy override file.
// Omitted fields keep their defaults.
type policyFile struct {
	BusinessHours struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"business_hours"`
	Slots struct {
		MinMinutes int `yaml:"min_minutes"`
		MaxMinutes int `yaml:"max_minutes"`
	} `yaml:"slots"`
	DefaultJobMinutes int               `yaml:"default_job_minutes"`
	BucketStarts      map[string]string `yaml:"bucket_starts"`
}

// LoadPolicy returns the schedule policy: the defaults, overlaid with the
// policy file when one is configured.
func (c *Config) LoadPolicy() (schedule.Policy, error) {
	policy := schedule.DefaultPolicy()
	if c.SchedulePolicyFile == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(c.SchedulePolicyFile)
	if err != nil {
		return policy, errors.Wrap(err, "read schedule policy file")
	}
	var file policyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return policy, errors.Wrap(err, "parse schedule policy file")
	}

	if file.BusinessHours.Start != "" {
		start, err := models.ParseTimeOfDay(file.BusinessHours.Start)
		if err != nil {
			return policy, errors.Wrap(err, "business_hours.start")
		}
		policy.BusinessStart = start
	}
	if file.BusinessHours.End != "" {
		end, err := models.ParseTimeOfDay(file.BusinessHours.End)
		if err != nil {
			return policy, errors.Wrap(err, "business_hours.end")
		}
		policy.BusinessEnd = end
	}
	if file.Slots.MinMinutes > 0 {
		policy.MinSlotMinutes = file.Slots.MinMinutes
	}
	if file.Slots.MaxMinutes > 0 {
		policy.MaxSlotMinutes = file.Slots.MaxMinutes
	}
	if file.DefaultJobMinutes > 0 {
		policy.DefaultJobMinutes = file.DefaultJobMinutes
	}
	for name, value := range file.BucketStarts {
		bucket, err := models.ParseBucket(name)
		if err != nil {
			return policy, errors.Wrap(err, "bucket_starts")
		}
		if bucket == models.BucketAny {
			return policy, errors.New("bucket_starts: the any bucket has no canonical start")
		}
		start, err := models.ParseTimeOfDay(value)
		if err != nil {
			return policy, errors.Wrapf(err, "bucket_starts.%s", name)
		}
		policy.BucketStarts[bucket] = start
	}
	if policy.BusinessStart >= policy.BusinessEnd {
		return policy, errors.New("business hours start must precede end")
	}
	return policy, nil
}
