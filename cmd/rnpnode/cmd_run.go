package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/icl-rocketry/rnp/internal/config"
	"github.com/icl-rocketry/rnp/internal/iface"
	"github.com/icl-rocketry/rnp/internal/stats"
	"github.com/icl-rocketry/rnp/pkg/rnp"
)

var (
	runAddress  uint8
	runHub      bool
	runListen   string
	runRouteGen bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a network manager node, accepting TCP peers",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().Uint8Var(&runAddress, "address", 0, "node address (default: from config, or 0)")
	runCmd.Flags().BoolVar(&runHub, "hub", false, "forward packets not addressed to this node")
	runCmd.Flags().StringVar(&runListen, "listen", ":9401", "TCP address to accept peer connections on")
	runCmd.Flags().BoolVar(&runRouteGen, "route-gen", false, "auto-learn routes from ingress traffic")
}

func runRun(cmd *cobra.Command, args []string) error {
	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load config: %w", err)
	}
	if runAddress != 0 {
		cfg.CurrentAddress = runAddress
	}
	if runHub {
		cfg.NodeType = rnp.HUB
	}
	if runRouteGen {
		cfg.RouteGenEnabled = true
	}

	registry := prometheus.NewRegistry()
	collector := stats.NewCollector(registry)

	nm := rnp.New(
		rnp.WithAddress(cfg.CurrentAddress),
		rnp.WithNodeType(cfg.NodeType),
		rnp.WithLogger(globalLogger),
		rnp.WithCounters(collector),
		rnp.WithSaveConfig(func(c rnp.NodeConfig) error {
			return config.Save(path, c)
		}),
	)
	// noRouteAction and routeGenEnabled have no constructor Option.
	nm.Reconfigure(cfg, nm.RoutingTable())

	ln, err := net.Listen("tcp", runListen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", runListen, err)
	}
	defer ln.Close()
	globalLogger.Info("listening for peers", "addr", runListen, "node_address", cfg.CurrentAddress)

	// The manager is not safe for concurrent use, so accepted peers are
	// handed to the update loop, which registers them.
	accepted := make(chan *iface.TCP)
	nextID := uint8(2)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			id := nextID
			nextID++
			accepted <- iface.NewTCP(id, conn, globalLogger)
			globalLogger.Info("peer connected", "id", id, "remote", conn.RemoteAddr())
		}
	}()

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ti := <-accepted:
			nm.AddInterface(ti)
			if err := ti.Setup(); err != nil {
				globalLogger.Warn("interface setup failed", "id", ti.ID(), "error", err)
			}
		case <-ticker.C:
			nm.Update()
		}
	}
}
