package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the sender verification service.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Storage      StorageConfig      `yaml:"storage"`
	SES          SESConfig          `yaml:"ses"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
	Redis        RedisConfig        `yaml:"redis"`
	Route53      Route53Config      `yaml:"route53"`
	Verification VerificationConfig `yaml:"verification"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with ECS detection.
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// StorageConfig holds DynamoDB persistence settings.
type StorageConfig struct {
	DynamoDBTable string `yaml:"dynamodb_table"`
	AWSRegion     string `yaml:"aws_region"`
	AWSProfile    string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
}

// GetAWSProfile returns the AWS profile, with environment variable override.
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	// On ECS/Lambda, don't use a profile - use IAM role
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// SESConfig holds AWS SES API configuration for identity verification.
type SESConfig struct {
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	// VerificationTemplate names the custom verification email template.
	// Empty means SES's built-in verification mail is used.
	VerificationTemplate string `yaml:"verification_template"`
}

// Timeout returns the configured timeout as a duration.
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SchedulerConfig holds EventBridge Scheduler settings for one-shot polls.
type SchedulerConfig struct {
	GroupName string `yaml:"group_name"`
	TargetArn string `yaml:"target_arn"` // API destination the schedule invokes
	RoleArn   string `yaml:"role_arn"`
	// CallbackToken is the shared secret the scheduler target presents on
	// POST /internal/poll.
	CallbackToken string `yaml:"callback_token"`
}

// RedisConfig holds the optional Redis connection for tenant locking.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Pass    string `yaml:"pass"`
	DB      int    `yaml:"db"`
}

// Route53Config enables optional DKIM CNAME auto-provisioning for tenants
// whose zone is hosted in this account.
type Route53Config struct {
	Enabled      bool   `yaml:"enabled"`
	HostedZoneID string `yaml:"hosted_zone_id"`
}

// VerificationConfig tunes the poll/timeout behavior of the status poller.
type VerificationConfig struct {
	TimeoutHours        int `yaml:"timeout_hours"`
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
}

// Timeout returns how long a pending sender may stay unverified before it is
// abandoned.
func (c VerificationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutHours) * time.Hour
}

// PollInterval returns the delay between poller invocations.
func (c VerificationConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "us-west-2"
	}
	if cfg.Storage.DynamoDBTable == "" {
		cfg.Storage.DynamoDBTable = "sender-hub"
	}
	if cfg.SES.TimeoutSeconds == 0 {
		cfg.SES.TimeoutSeconds = 30
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = cfg.Storage.AWSRegion
	}
	if cfg.Scheduler.GroupName == "" {
		cfg.Scheduler.GroupName = "sender-hub-polls"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Verification.TimeoutHours == 0 {
		cfg.Verification.TimeoutHours = 24
	}
	if cfg.Verification.PollIntervalSeconds == 0 {
		cfg.Verification.PollIntervalSeconds = 60
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("DYNAMODB_TABLE"); v != "" {
		cfg.Storage.DynamoDBTable = v
	}
	if v := os.Getenv("SCHEDULER_TARGET_ARN"); v != "" {
		cfg.Scheduler.TargetArn = v
	}
	if v := os.Getenv("SCHEDULER_ROLE_ARN"); v != "" {
		cfg.Scheduler.RoleArn = v
	}
	if v := os.Getenv("SCHEDULER_CALLBACK_TOKEN"); v != "" {
		cfg.Scheduler.CallbackToken = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("ROUTE53_HOSTED_ZONE_ID"); v != "" {
		cfg.Route53.HostedZoneID = v
		cfg.Route53.Enabled = true
	}

	return cfg, nil
}
