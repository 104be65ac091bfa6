package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/notional-finance/notional-indexer/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // e.g. "5m", "1h"
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // e.g. "10m"
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	ConsumerName   string        `mapstructure:"consumer_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	AckWait        time.Duration `mapstructure:"ack_wait"`
	MaxDeliver     int           `mapstructure:"max_deliver"`
	// RedeliveryDelay is how long a message that failed for a transient reason waits before redelivery
	RedeliveryDelay time.Duration `mapstructure:"redelivery_delay"`
}

// EthereumConfig holds Ethereum-specific configuration
type EthereumConfig struct {
	WebSocketURL    string       `mapstructure:"websocket_url"`
	RPCURL          string       `mapstructure:"rpc_url"`
	ChainID         domain.Chain `mapstructure:"chain_id"`
	StartBlock      uint64       `mapstructure:"start_block"`
	NotionalAddress string       `mapstructure:"notional_address"`
	LogPageSize     uint64       `mapstructure:"log_page_size"`
}

// CacheConfig holds the sizes of the in-memory LRU caches
type CacheConfig struct {
	HeaderSize int `mapstructure:"header_size"`
	OriginSize int `mapstructure:"origin_size"`
	TokenSize  int `mapstructure:"token_size"`
}

// RetryConfig holds the backoff applied to RPC calls
type RetryConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

// CursorConfig holds how often the emitter persists its block cursor
type CursorConfig struct {
	SaveFrequency uint64        `mapstructure:"save_frequency"` // in blocks
	SaveDelay     time.Duration `mapstructure:"save_delay"`
}

// EmitterConfig holds configuration for notional-event-emitter
type EmitterConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
	Cache      CacheConfig    `mapstructure:"cache"`
	Retry      RetryConfig    `mapstructure:"retry"`
	Cursor     CursorConfig   `mapstructure:"cursor"`
}

// IndexerConfig holds configuration for notional-indexer
type IndexerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
	Cache      CacheConfig    `mapstructure:"cache"`
	Retry      RetryConfig    `mapstructure:"retry"`
}

// LoadEmitterConfig loads the configuration of the event emitter
func LoadEmitterConfig(configFile string, envPath string) (*EmitterConfig, error) {
	v := configureViper("notional-event-emitter", configFile, envPath)

	setCommonDefaults(v)
	v.SetDefault("nats.connection_name", "notional-event-emitter")
	v.SetDefault("cursor.save_frequency", 20)
	v.SetDefault("cursor.save_delay", "1m")

	if err := readInConfig(v); err != nil {
		return nil, err
	}

	var config EmitterConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Ethereum.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadIndexerConfig loads the configuration of the indexer
func LoadIndexerConfig(configFile string, envPath string) (*IndexerConfig, error) {
	v := configureViper("notional-indexer", configFile, envPath)

	setCommonDefaults(v)
	v.SetDefault("nats.connection_name", "notional-indexer")
	v.SetDefault("nats.consumer_name", "notional-indexer")
	v.SetDefault("nats.ack_wait", "5m")
	v.SetDefault("nats.max_deliver", 5)
	v.SetDefault("nats.redelivery_delay", "30s")

	if err := readInConfig(v); err != nil {
		return nil, err
	}

	var config IndexerConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Ethereum.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setCommonDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "NOTIONAL")
	v.SetDefault("ethereum.chain_id", string(domain.ChainEthereumMainnet))
	v.SetDefault("ethereum.notional_address", "0x1344A36A1B56144C3Bc62E7757377D288fDE0369")
	v.SetDefault("ethereum.log_page_size", 2000)
	v.SetDefault("cache.header_size", 4096)
	v.SetDefault("cache.origin_size", 4096)
	v.SetDefault("cache.token_size", 256)
	v.SetDefault("retry.initial_interval", "500ms")
	v.SetDefault("retry.max_elapsed_time", "2m")
}

// readInConfig reads the config file. A missing file is fine since every key
// can come from the environment.
func readInConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		// an explicit config file that does not exist
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func (c *EthereumConfig) validate() error {
	if !domain.IsValidChain(c.ChainID) {
		return fmt.Errorf("ethereum.chain_id %q is not supported", c.ChainID)
	}
	if !common.IsHexAddress(c.NotionalAddress) {
		return fmt.Errorf("ethereum.notional_address %q is not an address", c.NotionalAddress)
	}
	return nil
}

func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("NOTIONAL_INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars binds every key so that Unmarshal sees values that only
// exist in the environment
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.consumer_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.ack_wait",
		"nats.max_deliver",
		"nats.redelivery_delay",
		// Ethereum
		"ethereum.websocket_url",
		"ethereum.rpc_url",
		"ethereum.chain_id",
		"ethereum.start_block",
		"ethereum.notional_address",
		"ethereum.log_page_size",
		// Caches
		"cache.header_size",
		"cache.origin_size",
		"cache.token_size",
		// Retry
		"retry.initial_interval",
		"retry.max_elapsed_time",
		// Emitter cursor
		"cursor.save_frequency",
		"cursor.save_delay",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Shared base first, then local, then the optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
