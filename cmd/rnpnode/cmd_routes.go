package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/icl-rocketry/rnp/internal/config"
	"github.com/icl-rocketry/rnp/pkg/rnp"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the default routing table for the configured node",
	RunE:  runRoutes,
}

func runRoutes(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load config: %w", err)
	}

	nm := rnp.New(rnp.WithAddress(cfg.CurrentAddress), rnp.WithNodeType(cfg.NodeType))
	nm.RoutingTable().Print(os.Stdout)
	return nil
}
