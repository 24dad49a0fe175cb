package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ServerConfig is the `serve` kind: a status responder plus its admin
// endpoint.
type ServerConfig struct {
	Node           string       `toml:"node"`
	Addr           string       `toml:"addr"`
	AdminAddr      string       `toml:"admin_addr"`
	CorsOrigins    []string     `toml:"cors_origins"`
	ReadTimeoutMS  int          `toml:"read_timeout_ms"`
	WriteTimeoutMS int          `toml:"write_timeout_ms"`
	LogLevel       string       `toml:"log_level"`
	Status         StatusConfig `toml:"status"`
}

// StatusConfig is the document the server answers status requests with.
type StatusConfig struct {
	VersionName   string `toml:"version_name"`
	Protocol      int32  `toml:"protocol"`
	MaxPlayers    int    `toml:"max_players"`
	OnlinePlayers int    `toml:"online_players"`
	MOTD          string `toml:"motd"`
}

// ProbeConfig is the `probe` kind: one client status-ping.
type ProbeConfig struct {
	Addr             string        `toml:"addr"`
	ProtocolVersion  int32         `toml:"protocol_version"`
	ConnectTimeoutMS int           `toml:"connect_timeout_ms"`
	ReadTimeoutMS    int           `toml:"read_timeout_ms"`
	Attempts         int           `toml:"attempts"`
	Backoff          BackoffConfig `toml:"backoff"`
}

type BackoffConfig struct {
	InitialDelayMS int     `toml:"initial_delay_ms"`
	Multiplier     float64 `toml:"multiplier"`
	MaxDelayMS     int     `toml:"max_delay_ms"`
	Jitter         bool    `toml:"jitter"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Node:           "mcwire",
		Addr:           ":25565",
		AdminAddr:      "127.0.0.1:9465",
		CorsOrigins:    []string{"http://localhost:3000"},
		ReadTimeoutMS:  15000,
		WriteTimeoutMS: 15000,
		LogLevel:       "info",
		Status: StatusConfig{
			VersionName: "mcwire",
			MaxPlayers:  20,
			MOTD:        "A mcwire status responder",
		},
	}
}

func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Addr:             "localhost:25565",
		ProtocolVersion:  763,
		ConnectTimeoutMS: 5000,
		ReadTimeoutMS:    5000,
		Attempts:         3,
		Backoff: BackoffConfig{
			InitialDelayMS: 250,
			Multiplier:     2.0,
			MaxDelayMS:     5000,
			Jitter:         true,
		},
	}
}

func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	if err := loadToml(path, &cfg); err != nil {
		return ServerConfig{}, err
	}
	if err := ValidateServerConfig(cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

func LoadProbeConfig(path string) (ProbeConfig, error) {
	cfg := DefaultProbeConfig()
	if err := loadToml(path, &cfg); err != nil {
		return ProbeConfig{}, err
	}
	if err := ValidateProbeConfig(cfg); err != nil {
		return ProbeConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateServerConfig(cfg ServerConfig) error {
	if strings.TrimSpace(cfg.Node) == "" {
		return fmt.Errorf("server config missing node")
	}
	if err := validateAddr("addr", cfg.Addr); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if strings.TrimSpace(cfg.AdminAddr) != "" {
		if err := validateAddr("admin_addr", cfg.AdminAddr); err != nil {
			return fmt.Errorf("server config: %w", err)
		}
	}
	if cfg.ReadTimeoutMS < 0 || cfg.WriteTimeoutMS < 0 {
		return fmt.Errorf("server config timeouts must not be negative")
	}
	if cfg.Status.MaxPlayers < 0 || cfg.Status.OnlinePlayers < 0 {
		return fmt.Errorf("server config player counts must not be negative")
	}
	return nil
}

func ValidateProbeConfig(cfg ProbeConfig) error {
	if err := validateAddr("addr", cfg.Addr); err != nil {
		return fmt.Errorf("probe config: %w", err)
	}
	if cfg.ConnectTimeoutMS < 0 || cfg.ReadTimeoutMS < 0 {
		return fmt.Errorf("probe config timeouts must not be negative")
	}
	if cfg.Attempts < 1 {
		return fmt.Errorf("probe config attempts must be at least 1")
	}
	if cfg.Backoff.InitialDelayMS < 0 || cfg.Backoff.MaxDelayMS < 0 {
		return fmt.Errorf("probe config backoff delays must not be negative")
	}
	return nil
}

func validateAddr(key, addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("%s is required", key)
	}
	if _, port, err := net.SplitHostPort(addr); err != nil || port == "" {
		return fmt.Errorf("%s %q must be host:port", key, addr)
	}
	return nil
}
