package cmd

import (
	"time"

	loggerKit "github.com/superj80820/link-shortener/kit/logger"
	utilKit "github.com/superj80820/link-shortener/kit/util"
	linkUseCase "github.com/superj80820/link-shortener/link/usecase/link"
)

const (
	SYSTEM_NAME  = "link"
	SERVICE_NAME = "shortener"
)

// version is replaced at build time with -ldflags "-X ...cmd.version=...".
var version = "dev"

type config struct {
	env      string
	version  string
	logPath     string
	logNoStdout bool
	httpAddr    string

	dbDriver    string
	mysqlURI    string
	postgresURI string
	sqlitePath  string
	autoMigrate bool
	dbTimeZone  string

	dbMaxOpenConns    int
	dbMaxIdleConns    int
	dbConnMaxLifetime time.Duration

	redisURI      string
	redisPassword string
	redisDB       int

	rateLimitPerHour  int
	apiKeyRateLimit   int
	redirectPermanent bool
	staticDir         string

	turnstileEnabled   bool
	turnstileSecretKey string

	enableKafka    bool
	kafkaURI       string
	clickTopicName string

	cleanupInterval time.Duration

	enableMetric bool
	enableTracer bool

	link linkUseCase.Config
}

func loadConfig() config {
	defaultLink := linkUseCase.DefaultConfig()

	return config{
		env:      utilKit.GetEnvString("ENV", "development"),
		version:  utilKit.GetEnvString("APP_VERSION", version),
		logPath:     utilKit.GetEnvString("LOG_PATH", ""),
		logNoStdout: utilKit.GetEnvBool("LOG_NO_STDOUT", false),
		httpAddr:    utilKit.GetEnvString("HTTP_ADDR", ":8000"),

		dbDriver:    utilKit.GetEnvString("DB_DRIVER", "mysql"),
		mysqlURI:    utilKit.GetEnvString("MYSQL_URI", ""),
		postgresURI: utilKit.GetEnvString("POSTGRES_URI", ""),
		sqlitePath:  utilKit.GetEnvString("SQLITE_PATH", "./link.db"),
		autoMigrate: utilKit.GetEnvBool("AUTO_MIGRATE", false),
		dbTimeZone:  utilKit.GetEnvString("DB_TIMEZONE", "UTC"),

		dbMaxOpenConns:    utilKit.GetEnvInt("DB_MAX_OPEN_CONNS", 0),
		dbMaxIdleConns:    utilKit.GetEnvInt("DB_MAX_IDLE_CONNS", 0),
		dbConnMaxLifetime: utilKit.GetEnvDuration("DB_CONN_MAX_LIFETIME", 0),

		redisURI:      utilKit.GetEnvString("REDIS_URI", ""),
		redisPassword: utilKit.GetEnvString("REDIS_PASSWORD", ""),
		redisDB:       utilKit.GetEnvInt("REDIS_DB", 0),

		rateLimitPerHour:  utilKit.GetEnvInt("RATE_LIMIT_PER_HOUR", 30),
		apiKeyRateLimit:   utilKit.GetEnvInt("API_KEY_RATE_LIMIT", 1000),
		redirectPermanent: utilKit.GetEnvBool("REDIRECT_PERMANENT", false),
		staticDir:         utilKit.GetEnvString("STATIC_DIR", ""),

		turnstileEnabled:   utilKit.GetEnvBool("TURNSTILE_ENABLED", false),
		turnstileSecretKey: utilKit.GetEnvString("TURNSTILE_SECRET_KEY", ""),

		enableKafka:    utilKit.GetEnvBool("ENABLE_KAFKA", false),
		kafkaURI:       utilKit.GetEnvString("KAFKA_URI", ""),
		clickTopicName: utilKit.GetEnvString("CLICK_TOPIC_NAME", "LINK_CLICK"),

		cleanupInterval: time.Duration(utilKit.GetEnvInt("CLEANUP_INTERVAL_HOURS", 1)) * time.Hour,

		enableMetric: utilKit.GetEnvBool("ENABLE_METRIC", false),
		enableTracer: utilKit.GetEnvBool("ENABLE_TRACER", false),

		link: linkUseCase.Config{
			BaseURL:             utilKit.GetEnvString("BASE_URL", defaultLink.BaseURL),
			CodeLength:          utilKit.GetEnvInt("DEFAULT_CODE_LENGTH", defaultLink.CodeLength),
			MinCustomCodeLength: utilKit.GetEnvInt("MIN_CUSTOM_CODE_LENGTH", defaultLink.MinCustomCodeLength),
			MaxCustomCodeLength: utilKit.GetEnvInt("MAX_CUSTOM_CODE_LENGTH", defaultLink.MaxCustomCodeLength),
			DefaultExpiryDays:   utilKit.GetEnvInt("DEFAULT_EXPIRY_DAYS", defaultLink.DefaultExpiryDays),
			MaxExpiryDays:       utilKit.GetEnvInt("MAX_EXPIRY_DAYS", defaultLink.MaxExpiryDays),
			MaxURLLength:        defaultLink.MaxURLLength,
			CacheTTL:            utilKit.GetEnvDuration("CACHE_TTL", defaultLink.CacheTTL),
			ReservedCodes:       utilKit.GetEnvStringSlice("RESERVED_CODES", nil),
			BlockedDomains:      utilKit.GetEnvStringSlice("BLOCKED_DOMAINS", nil),
			DeleteExpiredLinks:  utilKit.GetEnvBool("DELETE_EXPIRED_LINKS", false),
		},
	}
}

func (c config) loggerOptions() []loggerKit.Option {
	if c.logNoStdout {
		return []loggerKit.Option{loggerKit.NoStdout}
	}
	return nil
}

func (c config) logLevel() loggerKit.Level {
	if c.env == "development" {
		return loggerKit.DebugLevel
	}
	return loggerKit.InfoLevel
}
