package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"

storage:
  dynamodb_table: "senders-test"
  aws_region: "us-east-1"

ses:
  region: "us-east-1"
  timeout_seconds: 45
  verification_template: "tenant-verify"

scheduler:
  group_name: "test-polls"
  target_arn: "arn:aws:scheduler:::api-destination/poll"
  role_arn: "arn:aws:iam::123456789012:role/poll"

verification:
  timeout_hours: 1
  poll_interval_seconds: 30
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "senders-test", cfg.Storage.DynamoDBTable)
	assert.Equal(t, "us-east-1", cfg.Storage.AWSRegion)
	assert.Equal(t, 45*time.Second, cfg.SES.Timeout())
	assert.Equal(t, "tenant-verify", cfg.SES.VerificationTemplate)
	assert.Equal(t, "test-polls", cfg.Scheduler.GroupName)
	assert.Equal(t, time.Hour, cfg.Verification.Timeout())
	assert.Equal(t, 30*time.Second, cfg.Verification.PollInterval())
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: 0\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "us-west-2", cfg.Storage.AWSRegion)
	assert.Equal(t, "sender-hub", cfg.Storage.DynamoDBTable)
	assert.Equal(t, cfg.Storage.AWSRegion, cfg.SES.Region)
	assert.Equal(t, "sender-hub-polls", cfg.Scheduler.GroupName)
	assert.Equal(t, 24, cfg.Verification.TimeoutHours)
	assert.Equal(t, 60*time.Second, cfg.Verification.PollInterval())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: 9000\n"), 0644))

	t.Setenv("DYNAMODB_TABLE", "senders-prod")
	t.Setenv("SCHEDULER_CALLBACK_TOKEN", "sekrit")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, "senders-prod", cfg.Storage.DynamoDBTable)
	assert.Equal(t, "sekrit", cfg.Scheduler.CallbackToken)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}
