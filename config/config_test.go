package config

import (
	"strings"
	"testing"
	"time"

	"github.com/slighter12/go-lib/database/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryConfig(env string) *Config {
	cfg := &Config{}
	cfg.Env.Env = env
	cfg.Storage.Driver = StorageDriverMemory
	cfg.ApplyDefaults()

	return cfg
}

func setValidProduction(cfg *Config) {
	cfg.Env.Env = EnvProduction
	cfg.JWT.SigningKey = strings.Repeat("k", MinSigningKeyLength)
	cfg.Storage.Driver = StorageDriverPostgres
	cfg.Postgres = &postgres.DBConn{}
	cfg.Worker = &WorkerConfig{VerifyPushToken: true, PushAudience: "https://worker.example.com/pubsub/push"}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, EnvDevelopment, cfg.Env.Env)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "JobPortalAPI", cfg.JWT.Issuer)
	assert.Equal(t, "JobPortalFrontend", cfg.JWT.Audience)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 5, cfg.Auth.Lockout.MaxFailedAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Auth.Lockout.Duration)
	assert.Equal(t, LockerMemory, cfg.Auth.Lockout.Locker)
	assert.Equal(t, 24*time.Hour, cfg.Auth.Reset.TokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshToken.TTL)
	assert.False(t, cfg.Auth.RefreshToken.Enabled)
	assert.Equal(t, MinPasswordLength, cfg.PasswordStrength.MinLength)
	assert.Equal(t, MaxPasswordBytes, cfg.PasswordStrength.MaxLength)
	assert.Equal(t, NotificationChannelLog, cfg.Notification.Channel)
}

func TestApplyDefaults_ClampsPasswordStrength(t *testing.T) {
	cfg := &Config{PasswordStrength: &PasswordStrengthConfig{MinLength: 6}}
	cfg.ApplyDefaults()
	assert.Equal(t, MinPasswordLength, cfg.PasswordStrength.MinLength)
	assert.Equal(t, MaxPasswordBytes, cfg.PasswordStrength.MaxLength)

	cfg = &Config{PasswordStrength: &PasswordStrengthConfig{MinLength: 10, MaxLength: 200}}
	cfg.ApplyDefaults()
	assert.Equal(t, 10, cfg.PasswordStrength.MinLength)
	assert.Equal(t, MaxPasswordBytes, cfg.PasswordStrength.MaxLength)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "development without signing key",
			mutate: func(cfg *Config) {},
		},
		{
			name: "production without signing key",
			mutate: func(cfg *Config) {
				cfg.Env.Env = EnvProduction
				cfg.Storage.Driver = StorageDriverPostgres
				cfg.Postgres = &postgres.DBConn{}
			},
			wantErr: "jwt.signingKey is required",
		},
		{
			name: "production with short signing key",
			mutate: func(cfg *Config) {
				cfg.Env.Env = EnvProduction
				cfg.JWT.SigningKey = "short"
			},
			wantErr: "at least 32 bytes",
		},
		{
			name: "production with memory storage",
			mutate: func(cfg *Config) {
				cfg.Env.Env = EnvProduction
				cfg.JWT.SigningKey = strings.Repeat("k", MinSigningKeyLength)
			},
			wantErr: "memory storage driver is not allowed",
		},
		{
			name: "production without push verification",
			mutate: func(cfg *Config) {
				setValidProduction(cfg)
				cfg.Worker.VerifyPushToken = false
			},
			wantErr: "worker.verifyPushToken must be enabled",
		},
		{
			name: "production without push audience",
			mutate: func(cfg *Config) {
				setValidProduction(cfg)
				cfg.Worker.PushAudience = ""
			},
			wantErr: "worker.pushAudience is required",
		},
		{
			name:   "valid production",
			mutate: setValidProduction,
		},
		{
			name: "min length above max length",
			mutate: func(cfg *Config) {
				cfg.PasswordStrength = &PasswordStrengthConfig{MinLength: 40, MaxLength: 20}
			},
			wantErr: "passwordStrength.minLength exceeds",
		},
		{
			name: "bcrypt cost out of range",
			mutate: func(cfg *Config) {
				cfg.Auth.BcryptCost = 40
			},
			wantErr: "auth.bcryptCost",
		},
		{
			name: "postgres driver without postgres config",
			mutate: func(cfg *Config) {
				cfg.Storage.Driver = StorageDriverPostgres
			},
			wantErr: "postgres configuration is required",
		},
		{
			name: "redis locker without address",
			mutate: func(cfg *Config) {
				cfg.Auth.Lockout.Locker = LockerRedis
			},
			wantErr: "redis.addr is required",
		},
		{
			name: "mail channel without credentials",
			mutate: func(cfg *Config) {
				cfg.Notification.Channel = NotificationChannelMail
			},
			wantErr: "mail.domain and mail.apiKey",
		},
		{
			name: "unknown channel",
			mutate: func(cfg *Config) {
				cfg.Notification.Channel = "sms"
			},
			wantErr: "unknown notification.channel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newMemoryConfig(EnvDevelopment)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)

				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsProduction(t *testing.T) {
	assert.True(t, newMemoryConfig(" Production ").IsProduction())
	assert.False(t, newMemoryConfig(EnvDevelopment).IsProduction())
}
