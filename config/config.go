package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"

	EnvProduction  = "production"
	EnvDevelopment = "development"

	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	LockerMemory = "memory"
	LockerRedis  = "redis"

	NotificationChannelLog    = "log"
	NotificationChannelMail   = "mail"
	NotificationChannelPubSub = "pubsub"

	// MinSigningKeyLength is the minimum HS256 key length accepted in production.
	MinSigningKeyLength = 32

	MinPasswordLength = 8
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Storage struct {
		// Driver selects the credential store backend: "postgres" or "memory".
		Driver string `json:"driver" yaml:"driver"`
		// AutoMigrate applies pending migrations when the API starts.
		AutoMigrate bool `json:"autoMigrate" yaml:"autoMigrate"`
	} `json:"storage" yaml:"storage"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Redis *RedisConfig `json:"redis" yaml:"redis"`

	JWT JWTConfig `json:"jwt" yaml:"jwt"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	PasswordStrength *PasswordStrengthConfig `json:"passwordStrength" yaml:"passwordStrength"`

	Notification *NotificationConfig `json:"notification" yaml:"notification"`

	// PubSub configuration for reset notification events
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	Mail *MailConfig `json:"mail" yaml:"mail"`

	Worker *WorkerConfig `json:"worker" yaml:"worker"`
}

// JWTConfig configures access token issuance and validation.
type JWTConfig struct {
	SigningKey     string        `json:"signingKey" yaml:"signingKey"`
	Issuer         string        `json:"issuer" yaml:"issuer"`
	Audience       string        `json:"audience" yaml:"audience"`
	AccessTokenTTL time.Duration `json:"accessTokenTTL" yaml:"accessTokenTTL"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost   int                `json:"bcryptCost" yaml:"bcryptCost"`
	Lockout      LockoutConfig      `json:"lockout" yaml:"lockout"`
	Reset        ResetConfig        `json:"reset" yaml:"reset"`
	RefreshToken RefreshTokenConfig `json:"refreshToken" yaml:"refreshToken"`
}

type LockoutConfig struct {
	MaxFailedAttempts int           `json:"maxFailedAttempts" yaml:"maxFailedAttempts"`
	Duration          time.Duration `json:"duration" yaml:"duration"`
	// Locker serializes logins per account: "memory" or "redis".
	Locker  string        `json:"locker" yaml:"locker"`
	LockTTL time.Duration `json:"lockTTL" yaml:"lockTTL"`
}

type ResetConfig struct {
	TokenTTL      time.Duration `json:"tokenTTL" yaml:"tokenTTL"`
	PurgeInterval time.Duration `json:"purgeInterval" yaml:"purgeInterval"`
}

type RefreshTokenConfig struct {
	Enabled bool          `json:"enabled" yaml:"enabled"`
	TTL     time.Duration `json:"ttl" yaml:"ttl"`
}

// PasswordStrengthConfig tightens the length bounds of the password policy.
// One uppercase, lowercase, digit and special character are always required.
type PasswordStrengthConfig struct {
	// MinLength counts characters and never drops below MinPasswordLength.
	MinLength int `json:"minLength" yaml:"minLength"`
	// MaxLength counts bytes and never exceeds MaxPasswordBytes.
	MaxLength int `json:"maxLength" yaml:"maxLength"`
}

// Normalize clamps the bounds to the mandatory policy.
func (p *PasswordStrengthConfig) Normalize() {
	if p.MinLength < MinPasswordLength {
		p.MinLength = MinPasswordLength
	}
	if p.MaxLength <= 0 || p.MaxLength > MaxPasswordBytes {
		p.MaxLength = MaxPasswordBytes
	}
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// NotificationConfig selects how reset secrets leave the service.
type NotificationConfig struct {
	// Channel is one of "log", "mail" or "pubsub".
	Channel string `json:"channel" yaml:"channel"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// MailConfig configures the Mailgun sender.
type MailConfig struct {
	Domain  string `json:"domain" yaml:"domain"`
	APIKey  string `json:"apiKey" yaml:"apiKey"`
	APIBase string `json:"apiBase" yaml:"apiBase"`
	From    string `json:"from" yaml:"from"`
	// ResetURL is the frontend page that accepts the reset secret as the "token" query parameter.
	ResetURL string `json:"resetUrl" yaml:"resetUrl"`
	// Template is an optional Mailgun template name; a plain text body is sent when empty.
	Template string `json:"template" yaml:"template"`
}

type WorkerConfig struct {
	Port            int    `json:"port" yaml:"port"`
	VerifyPushToken bool   `json:"verifyPushToken" yaml:"verifyPushToken"`
	PushAudience    string `json:"pushAudience" yaml:"pushAudience"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// IsProduction reports whether the service runs in the production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env.Env), EnvProduction)
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate

			break
		}
	}

	if configFile == "" {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// AUTH_LOCKOUT_MAXFAILEDATTEMPTS -> auth.lockout.maxFailedAttempts
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if cfg.Postgres != nil {
		// POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, ...
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyDefaults fills every unset tunable with its documented default.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.Env.Env) == "" {
		c.Env.Env = EnvDevelopment
	}
	if strings.TrimSpace(c.HTTP.MaxRequestBodySize) == "" {
		c.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageDriverPostgres
	}

	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "JobPortalAPI"
	}
	if c.JWT.Audience == "" {
		c.JWT.Audience = "JobPortalFrontend"
	}
	if c.JWT.AccessTokenTTL <= 0 {
		c.JWT.AccessTokenTTL = 15 * time.Minute
	}

	if c.Auth == nil {
		c.Auth = &AuthConfig{}
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 12
	}
	if c.Auth.Lockout.MaxFailedAttempts <= 0 {
		c.Auth.Lockout.MaxFailedAttempts = 5
	}
	if c.Auth.Lockout.Duration <= 0 {
		c.Auth.Lockout.Duration = 30 * time.Minute
	}
	if c.Auth.Lockout.Locker == "" {
		c.Auth.Lockout.Locker = LockerMemory
	}
	if c.Auth.Lockout.LockTTL <= 0 {
		c.Auth.Lockout.LockTTL = 10 * time.Second
	}
	if c.Auth.Reset.TokenTTL <= 0 {
		c.Auth.Reset.TokenTTL = 24 * time.Hour
	}
	if c.Auth.RefreshToken.TTL <= 0 {
		c.Auth.RefreshToken.TTL = 7 * 24 * time.Hour
	}

	if c.PasswordStrength == nil {
		c.PasswordStrength = &PasswordStrengthConfig{}
	}
	c.PasswordStrength.Normalize()

	if c.Notification == nil {
		c.Notification = &NotificationConfig{}
	}
	if c.Notification.Channel == "" {
		c.Notification.Channel = NotificationChannelLog
	}
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if strings.TrimSpace(c.JWT.SigningKey) == "" {
			return errors.New("jwt.signingKey is required in production")
		}
		if len(c.JWT.SigningKey) < MinSigningKeyLength {
			return errors.Errorf("jwt.signingKey must be at least %d bytes in production", MinSigningKeyLength)
		}
	}

	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return errors.Errorf("auth.bcryptCost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.PasswordStrength.MinLength > c.PasswordStrength.MaxLength {
		return errors.New("passwordStrength.minLength exceeds passwordStrength.maxLength")
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Postgres == nil {
			return errors.New("postgres configuration is required for the postgres storage driver")
		}
	case StorageDriverMemory:
		if c.IsProduction() {
			return errors.New("the memory storage driver is not allowed in production")
		}
	default:
		return errors.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	switch c.Auth.Lockout.Locker {
	case LockerMemory:
	case LockerRedis:
		if c.Redis == nil || c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis locker")
		}
	default:
		return errors.Errorf("unknown auth.lockout.locker %q", c.Auth.Lockout.Locker)
	}

	switch c.Notification.Channel {
	case NotificationChannelLog:
	case NotificationChannelMail:
		if c.Mail == nil || c.Mail.Domain == "" || c.Mail.APIKey == "" {
			return errors.New("mail.domain and mail.apiKey are required for the mail channel")
		}
	case NotificationChannelPubSub:
		if c.PubSub == nil {
			return errors.New("pubsub configuration is required for the pubsub channel")
		}
	default:
		return errors.Errorf("unknown notification.channel %q", c.Notification.Channel)
	}

	// An unauthenticated push endpoint would mail arbitrary reset links.
	if c.IsProduction() {
		if c.Worker == nil || !c.Worker.VerifyPushToken {
			return errors.New("worker.verifyPushToken must be enabled in production")
		}
		if strings.TrimSpace(c.Worker.PushAudience) == "" {
			return errors.New("worker.pushAudience is required in production")
		}
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv reads POSTGRES_REPLICAS_{index}_{HOST,PORT,USERNAME,PASSWORD}.
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
