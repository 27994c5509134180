package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Cart         CartConfig
	Rates        RatesConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Rates.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"REPAIRPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"REPAIRPOS_APP_PORT" default:"8080"`
	TerminalID   string `envconfig:"REPAIRPOS_TERMINAL_ID" default:"terminal-1"`
	LogLevel     string `envconfig:"REPAIRPOS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"REPAIRPOS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"REPAIRPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"REPAIRPOS_DB_DSN"`
	SQLitePath string `envconfig:"REPAIRPOS_DB_SQLITE_PATH" default:"repairpos.db"`

	LegacyHost     string `envconfig:"REPAIRPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"REPAIRPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"REPAIRPOS_DB_USER"`
	LegacyPassword string `envconfig:"REPAIRPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"REPAIRPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"REPAIRPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REPAIRPOS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"REPAIRPOS_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"REPAIRPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REPAIRPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional: with neither URL nor address set the terminal runs
// without redis and the cart slot must live in the database.
type RedisConfig struct {
	URL          string        `envconfig:"REPAIRPOS_REDIS_URL"`
	Address      string        `envconfig:"REPAIRPOS_REDIS_ADDR"`
	Password     string        `envconfig:"REPAIRPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"REPAIRPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REPAIRPOS_REDIS_POOL_SIZE" default:"5"`
	MinIdleConns int           `envconfig:"REPAIRPOS_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"REPAIRPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REPAIRPOS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REPAIRPOS_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"REPAIRPOS_USE_SQLITE" default:"true"`
	AutoMigrate bool `envconfig:"REPAIRPOS_AUTO_MIGRATE" default:"false"`
}

type CartConfig struct {
	SlotKey        string        `envconfig:"REPAIRPOS_CART_SLOT_KEY" default:"pos-cart"`
	SlotBackend    string        `envconfig:"REPAIRPOS_CART_SLOT_BACKEND" default:"db"`
	PersistTimeout time.Duration `envconfig:"REPAIRPOS_CART_PERSIST_TIMEOUT" default:"2s"`
}

func (c CartConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.SlotBackend)) {
	case SlotBackendDB, SlotBackendRedis:
	default:
		return fmt.Errorf("%s must be %q or %q", EnvCartSlotBackend, SlotBackendDB, SlotBackendRedis)
	}
	if strings.TrimSpace(c.SlotKey) == "" {
		return fmt.Errorf("%s is required", EnvCartSlotKey)
	}
	return nil
}

// Backend returns the normalized slot backend name.
func (c CartConfig) Backend() string {
	return strings.ToLower(strings.TrimSpace(c.SlotBackend))
}

type RatesConfig struct {
	InitialRate        string        `envconfig:"REPAIRPOS_RATES_INITIAL" default:"1"`
	LocalCurrencyCode  string        `envconfig:"REPAIRPOS_RATES_LOCAL_CURRENCY" default:"VES"`
	AuthorityURL       string        `envconfig:"REPAIRPOS_RATES_AUTHORITY_URL"`
	SyncTimeout        time.Duration `envconfig:"REPAIRPOS_RATES_SYNC_TIMEOUT" default:"10s"`
	SyncInterval       time.Duration `envconfig:"REPAIRPOS_RATES_SYNC_INTERVAL" default:"1h"`
	BreakerMaxFailures uint32        `envconfig:"REPAIRPOS_RATES_BREAKER_MAX_FAILURES" default:"3"`
	BreakerOpenTimeout time.Duration `envconfig:"REPAIRPOS_RATES_BREAKER_OPEN_TIMEOUT" default:"1m"`
	HistoryRetention   int           `envconfig:"REPAIRPOS_RATES_HISTORY_RETENTION_DAYS" default:"90"`
}

// Initial parses the configured bootstrap rate.
func (r RatesConfig) Initial() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(r.InitialRate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s: %w", EnvRatesInitial, err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s must be positive", EnvRatesInitial)
	}
	return rate, nil
}

// SyncEnabled reports whether an authority endpoint was configured.
func (r RatesConfig) SyncEnabled() bool {
	return strings.TrimSpace(r.AuthorityURL) != ""
}

func (r RatesConfig) validate() error {
	if _, err := r.Initial(); err != nil {
		return err
	}
	if r.SyncEnabled() {
		if _, err := url.ParseRequestURI(r.AuthorityURL); err != nil {
			return fmt.Errorf("parsing %s: %w", EnvRatesAuthorityURL, err)
		}
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
