package main

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/icl-rocketry/rnp/pkg/rnp"
)

var (
	setRouteTarget string
	setRouteDest   uint8
	setRouteIface  uint8
	setRouteMetric uint8
)

var setRouteCmd = &cobra.Command{
	Use:   "set-route",
	Short: "Send a NETMAN SET_ROUTE to a node over TCP, impersonating the debug host",
	RunE:  runSetRoute,
}

func init() {
	setRouteCmd.Flags().StringVar(&setRouteTarget, "target", "", "host:port of the node's TCP interface")
	setRouteCmd.Flags().Uint8Var(&setRouteDest, "dest", 0, "destination address the new route applies to")
	setRouteCmd.Flags().Uint8Var(&setRouteIface, "iface", 0, "egress interface id for the new route")
	setRouteCmd.Flags().Uint8Var(&setRouteMetric, "metric", 1, "metric for the new route")
	setRouteCmd.MarkFlagRequired("target")
}

func runSetRoute(cmd *cobra.Command, args []string) error {
	conn, err := net.DialTimeout("tcp", setRouteTarget, 5*time.Second)
	if err != nil {
		return fmt.Errorf("dial %s: %w", setRouteTarget, err)
	}
	defer conn.Close()

	route := rnp.Route{Iface: setRouteIface, Metric: setRouteMetric}
	p := rnp.NewSetRoutePacket(rnp.NOSERVICE, rnp.DEBUG, rnp.NOADDRESS, setRouteDest, route)

	if err := writeFrame(conn, p.ToSerialized()); err != nil {
		return fmt.Errorf("send set-route: %w", err)
	}
	fmt.Printf("sent SET_ROUTE: dest=%d -> iface=%d metric=%d\n", setRouteDest, setRouteIface, setRouteMetric)
	return nil
}
