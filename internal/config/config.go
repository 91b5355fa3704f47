package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"

	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultJWTSecret = "change_me_this_is_a_development_only_secret_key"
)

var (
	ErrUnknownDriver  = errors.New("DB_DRIVER must be sqlite or postgres")
	ErrNoDBFile       = errors.New("DB_FILE is required for the sqlite driver")
	ErrNoDBPassword   = errors.New("DB_PASSWORD is required for the postgres driver")
	ErrNoJWTSecret    = errors.New("JWT_SECRET is required")
	ErrShortJWTSecret = errors.New("JWT_SECRET must be at least 32 characters")
	ErrBadTokenTTL    = errors.New("TOKEN_TTL must be positive")
	ErrBadProxy       = errors.New("TRUSTED_PROXIES must list IP addresses or CIDRs")
)

type Config struct {
	AppEnv string
	Host   string
	Port   string

	DBDriver          string
	DBFile            string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool

	LogLevel  string
	LogFormat string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitPerIP  int
	RateLimitWindow time.Duration
	// TrustedProxies may set X-Forwarded-For. Empty means the connection address is the client.
	TrustedProxies  []string

	StaticDir string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", EnvDevelopment)
	v.SetDefault("host", "")
	v.SetDefault("port", "8080")

	v.SetDefault("db_driver", DriverSqlite)
	v.SetDefault("db_file", "notes-service.db")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "notes")
	v.SetDefault("db_name", "notes")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", time.Hour)

	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("token_ttl", 7*24*time.Hour)
	v.SetDefault("cookie_secure", false)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("redis_db", 0)

	v.SetDefault("rate_limit_per_ip", 20)
	v.SetDefault("rate_limit_window", time.Minute)

	v.SetDefault("read_timeout", 15*time.Second)
	v.SetDefault("write_timeout", 15*time.Second)
	v.SetDefault("shutdown_timeout", 10*time.Second)
}

// LoadEnvFile loads a .env file into the process environment when it exists.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	return godotenv.Load(path)
}

// Load reads configuration from the environment and, when configFile is not empty, from that file.
// Environment variables take precedence over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		AppEnv: v.GetString("app_env"),
		Host:   v.GetString("host"),
		Port:   v.GetString("port"),

		DBDriver:          v.GetString("db_driver"),
		DBFile:            v.GetString("db_file"),
		DBHost:            v.GetString("db_host"),
		DBPort:            v.GetString("db_port"),
		DBUser:            v.GetString("db_user"),
		DBPassword:        v.GetString("db_password"),
		DBName:            v.GetString("db_name"),
		DBSSLMode:         v.GetString("db_sslmode"),
		DBMaxOpenConns:    v.GetInt("db_max_open_conns"),
		DBMaxIdleConns:    v.GetInt("db_max_idle_conns"),
		DBConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),

		JWTSecret:    v.GetString("jwt_secret"),
		TokenTTL:     v.GetDuration("token_ttl"),
		CookieSecure: v.GetBool("cookie_secure"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),

		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),

		RateLimitPerIP:  v.GetInt("rate_limit_per_ip"),
		RateLimitWindow: v.GetDuration("rate_limit_window"),
		TrustedProxies:  splitList(v.GetStringSlice("trusted_proxies")),

		StaticDir: v.GetString("static_dir"),

		ReadTimeout:     v.GetDuration("read_timeout"),
		WriteTimeout:    v.GetDuration("write_timeout"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSqlite:
		if c.DBFile == "" {
			return ErrNoDBFile
		}
	case DriverPostgres:
		if c.DBPassword == "" {
			return ErrNoDBPassword
		}
	default:
		return ErrUnknownDriver
	}
	if c.JWTSecret == "" {
		return ErrNoJWTSecret
	}
	if len(c.JWTSecret) < 32 {
		return ErrShortJWTSecret
	}
	if c.TokenTTL <= 0 {
		return ErrBadTokenTTL
	}
	for _, p := range c.TrustedProxies {
		if _, err := netip.ParsePrefix(p); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(p); err != nil {
			return fmt.Errorf("%w: %q", ErrBadProxy, p)
		}
	}
	return nil
}

// splitList flattens comma separated entries, as env values arrive as one string.
func splitList(items []string) []string {
	var res []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				res = append(res, part)
			}
		}
	}
	return res
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != EnvProduction {
		return nil
	}

	if c.DBDriver == DriverPostgres && c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}
	if c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be changed from default in production")
	}
	if !c.CookieSecure {
		return fmt.Errorf("COOKIE_SECURE must be enabled in production")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func (c *Config) GetDSN() string {
	if c.DBDriver == DriverSqlite {
		return c.DBFile
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) GetAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}
