package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/icl-rocketry/rnp/pkg/rnp"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := rnp.NodeConfig{
		CurrentAddress:  5,
		NodeType:        rnp.HUB,
		NoRouteAction:   rnp.BROADCAST,
		RouteGenEnabled: true,
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Errorf("Load() = %+v, want %+v", got, cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoadZeroAddressIsNoValidConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := Save(path, rnp.NodeConfig{CurrentAddress: rnp.NOADDRESS}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist for address=NOADDRESS", err)
	}
}
