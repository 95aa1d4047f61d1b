package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the service reads from the environment.
// Grouped by subsystem; loaded once at startup by the factory.
type Config struct {
	Environment string

	Server        ServerConfig
	Logging       LoggingConfig
	Scylla        ScyllaConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Elasticsearch ElasticsearchConfig
	Clickhouse    ClickhouseConfig
	SMS           SMSConfig
	Storage       StorageConfig
	KMS           KMSConfig
	Session       SessionConfig
	OTP           OTPConfig
	Hashing       HashingConfig
	Bucketing     BucketingConfig
	Meeting       MeetingConfig
	RateLimit     RateLimitConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CertFile     string
	KeyFile      string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ScyllaConfig struct {
	Nodes    []string
	Keyspace string
	Username string
	Password string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

type KafkaConfig struct {
	Brokers         []string
	AuthEventsTopic string
}

type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	CourseIndex string
}

type ClickhouseConfig struct {
	URL      string
	Username string
	Password string
	Database string
}

type SMSConfig struct {
	AccountSID  string
	AuthToken   string
	FromNumber  string
	MaxAttempts int
	RetryDelay  time.Duration
}

type StorageConfig struct {
	Bucket       string
	Region       string
	PresignTTL   time.Duration
	ImagePrefix  string
	ExportPrefix string
	PDFFontPath  string
}

type KMSConfig struct {
	Enabled bool
	KeyID   string
}

type SessionConfig struct {
	CookieName   string
	CookieMaxAge time.Duration
}

type OTPConfig struct {
	TTL time.Duration
}

type HashingConfig struct {
	BcryptCost int
}

type BucketingConfig struct {
	UserBuckets int
}

type MeetingConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type RateLimitConfig struct {
	LoginLimit  int
	LoginWindow time.Duration
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			CertFile:     getEnv("SERVER_CERT_FILE", ""),
			KeyFile:      getEnv("SERVER_KEY_FILE", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Scylla: ScyllaConfig{
			Nodes:    splitList(getEnv("SCYLLA_NODES", "127.0.0.1:9042")),
			Keyspace: getEnv("SCYLLA_KEYSPACE", "lms"),
			Username: getEnv("SCYLLA_USERNAME", ""),
			Password: getEnv("SCYLLA_PASSWORD", ""),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 50),
		},
		Kafka: KafkaConfig{
			Brokers:         splitList(getEnv("KAFKA_BROKERS", "127.0.0.1:9092")),
			AuthEventsTopic: getEnv("KAFKA_AUTH_EVENTS_TOPIC", "lms.auth-events"),
		},
		Elasticsearch: ElasticsearchConfig{
			URL:         getEnv("ELASTICSEARCH_URL", "http://127.0.0.1:9200"),
			Username:    getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:    getEnv("ELASTICSEARCH_PASSWORD", ""),
			CourseIndex: getEnv("ELASTICSEARCH_COURSE_INDEX", "lms-courses"),
		},
		Clickhouse: ClickhouseConfig{
			URL:      getEnv("CLICKHOUSE_URL", "127.0.0.1:9000"),
			Username: getEnv("CLICKHOUSE_USERNAME", "default"),
			Password: getEnv("CLICKHOUSE_PASSWORD", ""),
			Database: getEnv("CLICKHOUSE_DATABASE", "lms"),
		},
		SMS: SMSConfig{
			AccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber:  getEnv("TWILIO_FROM_NUMBER", ""),
			MaxAttempts: getEnvInt("SMS_MAX_ATTEMPTS", 5),
			RetryDelay:  getEnvDuration("SMS_RETRY_DELAY", 3*time.Second),
		},
		Storage: StorageConfig{
			Bucket:       getEnv("S3_BUCKET", "lms-assets"),
			Region:       getEnv("AWS_REGION", "ap-south-1"),
			PresignTTL:   getEnvDuration("S3_PRESIGN_TTL", 1*time.Hour),
			ImagePrefix:  getEnv("S3_IMAGE_PREFIX", "courses/images/"),
			ExportPrefix: getEnv("S3_EXPORT_PREFIX", "exports/"),
			PDFFontPath:  getEnv("PDF_FONT_PATH", "assets/fonts/DejaVuSans.ttf"),
		},
		KMS: KMSConfig{
			Enabled: getEnvBool("KMS_ENABLED", false),
			KeyID:   getEnv("KMS_KEY_ID", ""),
		},
		Session: SessionConfig{
			CookieName:   getEnv("SESSION_COOKIE_NAME", "sid"),
			CookieMaxAge: getEnvDuration("SESSION_COOKIE_MAX_AGE", 7*24*time.Hour),
		},
		OTP: OTPConfig{
			TTL: getEnvDuration("OTP_TTL", 15*time.Minute),
		},
		Hashing: HashingConfig{
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
		},
		Bucketing: BucketingConfig{
			UserBuckets: getEnvInt("USER_BUCKETS", 64),
		},
		Meeting: MeetingConfig{
			JWTSecret: getEnv("MEETING_JWT_SECRET", ""),
			TokenTTL:  getEnvDuration("MEETING_TOKEN_TTL", 2*time.Hour),
		},
		RateLimit: RateLimitConfig{
			LoginLimit:  getEnvInt("LOGIN_RATE_LIMIT", 20),
			LoginWindow: getEnvDuration("LOGIN_RATE_WINDOW", 5*time.Minute),
		},
	}
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }

func (c *Config) IsDevelopment() bool { return c.Environment == "development" }

// GetServerAddress returns the host:port the HTTP server binds to.
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
