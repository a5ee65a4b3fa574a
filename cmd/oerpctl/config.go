package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chjbbs/oerplib/connector"
)

// clientConfig is the resolved connection configuration: built-in defaults,
// overlaid by the optional config file, overlaid by command-line flags.
type clientConfig struct {
	Server   string
	Port     string
	Protocol string
	Database string
	UID      int64
	Password string
}

func defaultClientConfig() clientConfig {
	return clientConfig{
		Server:   "localhost",
		Port:     "8069",
		Protocol: connector.DefaultProtocol,
	}
}

// oerpctl config.toml key mapping.
type fileConfig struct {
	Server   string `toml:"server"`
	Port     int64  `toml:"port"`
	Protocol string `toml:"protocol"`
	Database string `toml:"database"`
	UID      int64  `toml:"uid"`
	Password string `toml:"password"`
}

// oerpctl loader for TOML config with default overlay.
func loadClientConfig(path string) (clientConfig, error) {
	cfg := defaultClientConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return clientConfig{}, fmt.Errorf("load client config: %w", err)
	}

	if meta.IsDefined("server") {
		cfg.Server = strings.TrimSpace(raw.Server)
	}
	if meta.IsDefined("port") {
		cfg.Port = strconv.FormatInt(raw.Port, 10)
	}
	if meta.IsDefined("protocol") {
		cfg.Protocol = strings.TrimSpace(raw.Protocol)
	}
	if meta.IsDefined("database") {
		cfg.Database = strings.TrimSpace(raw.Database)
	}
	if meta.IsDefined("uid") {
		cfg.UID = raw.UID
	}
	if meta.IsDefined("password") {
		cfg.Password = raw.Password
	}

	if cfg.Server == "" {
		return clientConfig{}, fmt.Errorf("load client config: server must not be empty")
	}
	return cfg, nil
}
