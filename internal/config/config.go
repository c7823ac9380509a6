package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SNSRegion   string
	SNSTopicARN string // empty disables status-change events

	RedisURL    string        // empty selects the in-process acknowledgement guard
	AckGuardTTL time.Duration // how long an in-flight acknowledgement suppresses duplicates
	AckTimeout  time.Duration // upper bound for one background acknowledgement run

	AllowedOrigins    []string // CORS allowed origins
	TrustProxyHeaders bool     // take the client IP from X-Forwarded-For / X-Real-IP; only behind a proxy that overwrites them
}

// DynamoTables holds the DynamoDB table name for each category partition.
type DynamoTables struct {
	ResidentActionPlans    string
	CareFileActionPlans    string
	GovernanceActionPlans  string
	ClinicalActionPlans    string
	EnvironmentActionPlans string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "eu-west-2"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			ResidentActionPlans:    getEnv("DYNAMO_TABLE_RESIDENT_ACTION_PLANS", "resident_action_plans"),
			CareFileActionPlans:    getEnv("DYNAMO_TABLE_CAREFILE_ACTION_PLANS", "carefile_action_plans"),
			GovernanceActionPlans:  getEnv("DYNAMO_TABLE_GOVERNANCE_ACTION_PLANS", "governance_action_plans"),
			ClinicalActionPlans:    getEnv("DYNAMO_TABLE_CLINICAL_ACTION_PLANS", "clinical_action_plans"),
			EnvironmentActionPlans: getEnv("DYNAMO_TABLE_ENVIRONMENT_ACTION_PLANS", "environment_action_plans"),
		},
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 12)) * time.Hour,
		SNSRegion:         getEnv("SNS_REGION", "eu-west-2"),
		SNSTopicARN:       getEnv("SNS_TOPIC_ARN", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		AckGuardTTL:       getEnvDuration("ACK_GUARD_TTL", 30*time.Second),
		AckTimeout:        getEnvDuration("ACK_TIMEOUT", 10*time.Second),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("30s", "2m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
