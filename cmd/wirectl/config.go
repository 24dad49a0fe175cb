package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/mcwire/internal/config"
)

// wirectl config.toml keys. Only keys present in the file replace the
// built-in defaults.
type serverFileConfig struct {
	Node           string   `toml:"node"`
	Addr           string   `toml:"addr"`
	AdminAddr      string   `toml:"admin_addr"`
	CorsOrigins    []string `toml:"cors_origins"`
	ReadTimeoutMS  int      `toml:"read_timeout_ms"`
	WriteTimeoutMS int      `toml:"write_timeout_ms"`
	LogLevel       string   `toml:"log_level"`
	Status         struct {
		VersionName   string `toml:"version_name"`
		Protocol      int32  `toml:"protocol"`
		MaxPlayers    int    `toml:"max_players"`
		OnlinePlayers int    `toml:"online_players"`
		MOTD          string `toml:"motd"`
	} `toml:"status"`
}

func loadServerConfig(path string) (config.ServerConfig, error) {
	cfg := config.DefaultServerConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw serverFileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.ServerConfig{}, fmt.Errorf("load server config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config.ServerConfig{}, fmt.Errorf("load server config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("node") {
		cfg.Node = strings.TrimSpace(raw.Node)
	}
	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("admin_addr") {
		cfg.AdminAddr = strings.TrimSpace(raw.AdminAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = raw.CorsOrigins
	}
	if meta.IsDefined("read_timeout_ms") {
		cfg.ReadTimeoutMS = raw.ReadTimeoutMS
	}
	if meta.IsDefined("write_timeout_ms") {
		cfg.WriteTimeoutMS = raw.WriteTimeoutMS
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("status", "version_name") {
		cfg.Status.VersionName = raw.Status.VersionName
	}
	if meta.IsDefined("status", "protocol") {
		cfg.Status.Protocol = raw.Status.Protocol
	}
	if meta.IsDefined("status", "max_players") {
		cfg.Status.MaxPlayers = raw.Status.MaxPlayers
	}
	if meta.IsDefined("status", "online_players") {
		cfg.Status.OnlinePlayers = raw.Status.OnlinePlayers
	}
	if meta.IsDefined("status", "motd") {
		cfg.Status.MOTD = raw.Status.MOTD
	}

	if err := config.ValidateServerConfig(cfg); err != nil {
		return config.ServerConfig{}, fmt.Errorf("load server config: %w", err)
	}
	return cfg, nil
}

// loadProbeConfig has no overlay: every probe key has a flag, and the file
// kind is the one configgen validates.
func loadProbeConfig(path string) (config.ProbeConfig, error) {
	if strings.TrimSpace(path) == "" {
		return config.DefaultProbeConfig(), nil
	}
	return config.LoadProbeConfig(path)
}
