// Package config loads the issuer configuration from a YAML file.
//
// Values may reference environment variables as ${NAME}; they are expanded
// before parsing. Unset fields take the defaults declared in struct tags and
// the result is validated before it is returned.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/chainsafe/crosschain-issuer/pkg/indexer"
	"github.com/chainsafe/crosschain-issuer/pkg/keys"
	"github.com/chainsafe/crosschain-issuer/pkg/wait"
)

// Config represents the issuer service configuration
type Config struct {
	Server    ServerConfig   `yaml:"server"`
	Database  DatabaseConfig `yaml:"database"`
	Logging   LoggingConfig  `yaml:"logging"`
	MainChain ChainConfig    `yaml:"main_chain" validate:"required"`
	SideChain ChainConfig    `yaml:"side_chain" validate:"required"`
	Signer    keys.Config    `yaml:"signer"`
	Issuance  IssuanceConfig `yaml:"issuance"`
	Balance   BalanceConfig  `yaml:"balance"`
	Redis     RedisConfig    `yaml:"redis"`
	Indexer   indexer.Config `yaml:"indexer"`
	Auth      AuthConfig     `yaml:"auth"`
	Transfer  TransferConfig `yaml:"transfer"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"30s"`
}

// DatabaseConfig contains database connection settings. An empty host
// keeps run history in memory.
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port" default:"5432"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database" default:"issuer"`
	SSLMode      string `yaml:"ssl_mode" default:"disable" validate:"oneof=disable require verify-ca verify-full"`
	MaxOpenConns int    `yaml:"max_open_conns" default:"10"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

// ChainConfig describes one aelf node
type ChainConfig struct {
	Name           string        `yaml:"name" validate:"required"`
	RPCURL         string        `yaml:"rpc_url" validate:"required,url"`
	ChainID        int32         `yaml:"chain_id" validate:"required"`
	RequestTimeout time.Duration `yaml:"request_timeout" default:"30s"`
	RateLimit      float64       `yaml:"rate_limit" validate:"gte=0"`
	Burst          int           `yaml:"burst" default:"5"`
}

// PollConfig bounds one kind of wait
type PollConfig struct {
	Interval    time.Duration `yaml:"interval" validate:"gt=0"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts" validate:"gte=0"`
}

// Policy converts the settings into a wait policy.
func (c PollConfig) Policy() wait.Policy {
	return wait.Policy{Interval: c.Interval, Timeout: c.Timeout, MaxAttempts: c.MaxAttempts}
}

// IssuanceConfig bounds the waits and retries of an issuance run
type IssuanceConfig struct {
	ParentSync           PollConfig    `yaml:"parent_sync" default:"{\"Interval\":5000000000,\"Timeout\":1200000000000}"`
	TxFinal              PollConfig    `yaml:"tx_final" default:"{\"Interval\":2000000000,\"Timeout\":300000000000}"`
	CrossChainBackoff    time.Duration `yaml:"cross_chain_backoff" default:"10s"`
	CrossChainMaxRetries int           `yaml:"cross_chain_max_retries" default:"30" validate:"gte=0"`
	CrossChainTimeout    time.Duration `yaml:"cross_chain_timeout" default:"15m"`
	MaxConcurrentRuns    int           `yaml:"max_concurrent_runs" default:"4" validate:"gte=1"` // across all symbols
}

// BalanceConfig tunes balance aggregation
type BalanceConfig struct {
	Concurrency int `yaml:"concurrency" default:"8" validate:"gte=1"`
}

// RedisConfig enables the shared contract address cache
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix" default:"issuer:contract:"`
	TTL      time.Duration `yaml:"ttl" default:"24h"`
}

// Enabled reports whether a Redis address is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// AuthConfig protects write endpoints with HS256 bearer tokens
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer" default:"crosschain-issuer"`
	Leeway    time.Duration `yaml:"leeway" default:"30s"`
}

// Enabled reports whether write endpoints require a token.
func (c *AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

// TransferConfig bounds side chain transfers
type TransferConfig struct {
	TxFinal PollConfig `yaml:"tx_final" default:"{\"Interval\":2000000000,\"Timeout\":120000000000}"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads, expands, defaults and validates the configuration file.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a configuration from raw YAML.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks struct constraints and the cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	if cfg.MainChain.ChainID == cfg.SideChain.ChainID {
		return errors.New("main_chain and side_chain must have different chain ids")
	}
	if cfg.Issuance.ParentSync.Timeout <= 0 && cfg.Issuance.ParentSync.MaxAttempts <= 0 {
		return errors.New("issuance.parent_sync needs a timeout or max_attempts")
	}
	if cfg.Issuance.TxFinal.Timeout <= 0 && cfg.Issuance.TxFinal.MaxAttempts <= 0 {
		return errors.New("issuance.tx_final needs a timeout or max_attempts")
	}
	return nil
}
