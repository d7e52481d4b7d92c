// Package config loads the orchestrator's runtime configuration via
// spf13/viper, the same layered file/env/default precedence cosmos-sdk
// command trees use for node configuration.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config is the orchestrator's full runtime configuration surface:
// scheduler tick resolution, agent interval, shutdown grace period,
// signing key path and endpoint, chain RPC endpoint, persistence DSN,
// treasury address, and chain ID. The agent's tier table is not
// configurable here.
type Config struct {
	SchedulerTick     time.Duration
	AgentInterval     time.Duration
	ShutdownGrace     time.Duration
	SigningEndpoint   string
	SigningKeyPath    string
	ChainRPCEndpoint  string
	PersistenceDSN    string
	TreasuryAddress   string
	ChainID           uint64
	Development       bool
}

// Defaults matches the orchestrator's baseline constants: a 1s
// scheduler tick and a 30 minute agent creation interval.
func Defaults() Config {
	return Config{
		SchedulerTick:   time.Second,
		AgentInterval:   30 * time.Minute,
		ShutdownGrace:   10 * time.Second,
		SigningEndpoint: "",
		ChainRPCEndpoint: "tcp://127.0.0.1:26657",
		PersistenceDSN:  "memory://",
		ChainID:         1,
		Development:     false,
	}
}

// Load reads configuration from a file (if present), environment
// variables prefixed CLAWARENA_, and finally the built-in defaults, in
// viper's usual precedence order (explicit set > flag > env > config
// file > default).
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLAWARENA")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("scheduler_tick", d.SchedulerTick)
	v.SetDefault("agent_interval", d.AgentInterval)
	v.SetDefault("shutdown_grace", d.ShutdownGrace)
	v.SetDefault("signing_endpoint", d.SigningEndpoint)
	v.SetDefault("signing_key_path", d.SigningKeyPath)
	v.SetDefault("chain_rpc_endpoint", d.ChainRPCEndpoint)
	v.SetDefault("persistence_dsn", d.PersistenceDSN)
	v.SetDefault("treasury_address", d.TreasuryAddress)
	v.SetDefault("chain_id", d.ChainID)
	v.SetDefault("development", d.Development)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	return Config{
		SchedulerTick:    v.GetDuration("scheduler_tick"),
		AgentInterval:    v.GetDuration("agent_interval"),
		ShutdownGrace:    v.GetDuration("shutdown_grace"),
		SigningEndpoint:  v.GetString("signing_endpoint"),
		SigningKeyPath:   v.GetString("signing_key_path"),
		ChainRPCEndpoint: v.GetString("chain_rpc_endpoint"),
		PersistenceDSN:   v.GetString("persistence_dsn"),
		TreasuryAddress:  v.GetString("treasury_address"),
		ChainID:          v.GetUint64("chain_id"),
		Development:      v.GetBool("development"),
	}, nil
}
