// Package config persists an RNP node's NodeConfig to a TOML file on disk,
// acting as a concrete host-side backing store for the values a node
// would otherwise keep in non-volatile storage.
package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/icl-rocketry/rnp/pkg/rnp"
)

// DefaultConfigDir is the system-wide config directory for an rnpnode.
const DefaultConfigDir = "/etc/rnpnode"

// DefaultConfigPath returns the default location of the node config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir, "config.toml")
}

// fileConfig is the on-disk TOML representation of rnp.NodeConfig. Field
// names are spelled out rather than reusing rnp.NodeConfig directly so the
// runtime type and the persisted shape can evolve independently.
type fileConfig struct {
	Address         uint8 `toml:"address"`
	NodeType        uint8 `toml:"node_type"`
	NoRouteAction   uint8 `toml:"no_route_action"`
	RouteGenEnabled bool  `toml:"route_gen_enabled"`
}

// Load reads and parses the node config at path. A missing file is
// reported as a wrapped fs.ErrNotExist so callers can fall back to
// defaults with errors.Is.
func Load(path string) (rnp.NodeConfig, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if os.IsNotExist(err) {
			return rnp.NodeConfig{}, fmt.Errorf("config: %s: %w", path, fs.ErrNotExist)
		}
		return rnp.NodeConfig{}, fmt.Errorf("config: decode %s: %w", path, err)
	}

	// Address 0 (NOADDRESS) is never a valid assigned address, so a
	// config file with address 0 is treated as if it didn't exist.
	if fc.Address == rnp.NOADDRESS {
		return rnp.NodeConfig{}, fmt.Errorf("config: %s: %w", path, fs.ErrNotExist)
	}

	return rnp.NodeConfig{
		CurrentAddress:  fc.Address,
		NodeType:        rnp.NodeType(fc.NodeType),
		NoRouteAction:   rnp.NoRouteAction(fc.NoRouteAction),
		RouteGenEnabled: fc.RouteGenEnabled,
	}, nil
}

// Save writes cfg to path, creating parent directories as needed. This is
// the SaveConfigFunc the Network Manager invokes on NETMAN's SAVE_CONF.
func Save(path string, cfg rnp.NodeConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir %s: %w", filepath.Dir(path), err)
	}

	fc := fileConfig{
		Address:         cfg.CurrentAddress,
		NodeType:        uint8(cfg.NodeType),
		NoRouteAction:   uint8(cfg.NoRouteAction),
		RouteGenEnabled: cfg.RouteGenEnabled,
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o664)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(fc); err != nil {
		return fmt.Errorf("config: encode %s: %w", path, err)
	}
	return nil
}
