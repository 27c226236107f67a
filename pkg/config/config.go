package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Tokens       TokenConfig
	Leaderboard  LeaderboardConfig
	Chain        ChainConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DRIVEWISE_APP_ENV" required:"true"`
	Port         string `envconfig:"DRIVEWISE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DRIVEWISE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DRIVEWISE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DRIVEWISE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DRIVEWISE_DB_DSN"`
	Driver string `envconfig:"DRIVEWISE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DRIVEWISE_DB_HOST"`
	LegacyPort     int    `envconfig:"DRIVEWISE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DRIVEWISE_DB_USER"`
	LegacyPassword string `envconfig:"DRIVEWISE_DB_PASSWORD"`
	LegacyName     string `envconfig:"DRIVEWISE_DB_NAME"`
	LegacySSLMode  string `envconfig:"DRIVEWISE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DRIVEWISE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DRIVEWISE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DRIVEWISE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DRIVEWISE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DRIVEWISE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DRIVEWISE_REDIS_ADDR"`
	Password     string        `envconfig:"DRIVEWISE_REDIS_PASSWORD"`
	DB           int           `envconfig:"DRIVEWISE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DRIVEWISE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DRIVEWISE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DRIVEWISE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DRIVEWISE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DRIVEWISE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// TokenConfig controls the score-to-token award table. Tiers is a comma
// separated list of "minScore:tokens" pairs, evaluated highest first.
type TokenConfig struct {
	Tiers string `envconfig:"DRIVEWISE_TOKEN_TIERS" default:"90:10,70:5,50:2"`
}

type LeaderboardConfig struct {
	MinTrips        int           `envconfig:"DRIVEWISE_LEADERBOARD_MIN_TRIPS" default:"3"`
	DefaultLimit    int           `envconfig:"DRIVEWISE_LEADERBOARD_DEFAULT_LIMIT" default:"10"`
	CacheTTL        time.Duration `envconfig:"DRIVEWISE_LEADERBOARD_CACHE_TTL" default:"30s"`
	RebuildInterval time.Duration `envconfig:"DRIVEWISE_LEADERBOARD_REBUILD_INTERVAL" default:"1m"`
}

// ChainConfig carries the blockchain notifier settings. The notifier
// stays a no-op while the contract address or key keeps its placeholder
// value.
type ChainConfig struct {
	NetworkURL      string `envconfig:"DRIVEWISE_CHAIN_NETWORK_URL" default:"http://127.0.0.1:8545"`
	ContractAddress string `envconfig:"DRIVEWISE_CHAIN_CONTRACT_ADDRESS" default:"0x0000000000000000000000000000000000000000"`
	PrivateKey      string `envconfig:"DRIVEWISE_CHAIN_PRIVATE_KEY" default:"0x0000000000000000000000000000000000000000000000000000000000000000"`
}

// Configured reports whether the chain settings look real rather than
// placeholder values.
func (c ChainConfig) Configured() bool {
	return c.ContractAddress != "" &&
		c.ContractAddress != PlaceholderContractAddress &&
		c.PrivateKey != "" &&
		c.PrivateKey != PlaceholderPrivateKey
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DRIVEWISE_AUTO_MIGRATE" default:"false"`
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
