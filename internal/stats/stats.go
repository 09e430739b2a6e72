// Package stats exposes Network Manager routing outcomes as Prometheus
// counters, the way m-lab/tcp-info exposes collected socket state via
// prometheus/client_golang.
package stats

import "github.com/prometheus/client_golang/prometheus"

// Collector implements rnp.Counters, recording routed/dropped/broadcast
// packet counts for scraping.
type Collector struct {
	routed    prometheus.Counter
	dropped   *prometheus.CounterVec
	broadcast prometheus.Counter
}

// NewCollector builds a Collector and registers its metrics with reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the default
// global registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		routed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rnp",
			Name:      "packets_routed_total",
			Help:      "Packets addressed to this node and handed to local dispatch (NOSERVICE, NETMAN or a service id).",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rnp",
			Name:      "packets_dropped_total",
			Help:      "Packets dropped by the network manager, labelled by reason.",
		}, []string{"reason"}),
		broadcast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rnp",
			Name:      "packets_broadcast_total",
			Help:      "Packets sent as part of a no-route broadcast.",
		}),
	}
	reg.MustRegister(c.routed, c.dropped, c.broadcast)
	return c
}

// PacketRouted implements rnp.Counters.
func (c *Collector) PacketRouted() { c.routed.Inc() }

// PacketDropped implements rnp.Counters.
func (c *Collector) PacketDropped(reason string) { c.dropped.WithLabelValues(reason).Inc() }

// PacketBroadcast implements rnp.Counters.
func (c *Collector) PacketBroadcast() { c.broadcast.Inc() }
