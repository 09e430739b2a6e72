// Package rnp implements the Rocket Networking Protocol: an addressed,
// service-multiplexed, best-effort datagram stack for interconnecting
// embedded nodes over heterogeneous links. NetworkManager is the core: it
// owns the ingress queue, the routing table, and the loopback interface,
// and implements routing, forwarding, service dispatch, and the in-band
// NETMAN management service.
package rnp

import (
	"log/slog"
)

// Counters receives notifications of routing outcomes for observability.
// Implementations must be safe for use from a single goroutine calling
// Update repeatedly; NetworkManager never calls Counters concurrently with
// itself.
type Counters interface {
	PacketRouted()
	PacketDropped(reason string)
	PacketBroadcast()
}

// ServiceHandler consumes a packet addressed to a locally registered
// service, taking ownership of it.
type ServiceHandler func(p *SerializedPacket)

// SaveConfigFunc persists a NodeConfig blob to a backing store. It returns
// an error on failure and nil on success, the usual Go convention.
type SaveConfigFunc func(cfg NodeConfig) error

// NodeConfig is the persisted subset of a Network Manager's state.
type NodeConfig struct {
	CurrentAddress  uint8
	NodeType        NodeType
	NoRouteAction   NoRouteAction
	RouteGenEnabled bool
}

// NetworkManager is the router, forwarder, service dispatcher and NETMAN
// handler at the center of a node. It is not safe for concurrent use:
// Update is the only progress operation and is expected to be driven from
// a single cooperative loop.
type NetworkManager struct {
	config NodeConfig

	routingTable *RoutingTable
	baseTable    *RoutingTable

	services   map[uint8]ServiceHandler
	interfaces map[uint8]Interface
	broadcast  []uint8

	queue    *IngressQueue
	loopback *Loopback

	saveConfig SaveConfigFunc
	log        *slog.Logger
	counters   Counters
}

// IngressQueueCapacity is the default bound on the shared ingress queue.
const IngressQueueCapacity = 64

// New constructs a Network Manager with address=0, nodeType=LEAF,
// noRouteAction=DUMP, routeGenEnabled=false. WithAddress and WithNodeType
// override the first two; there is no Option for noRouteAction or
// routeGenEnabled, which change through Reconfigure or NETMAN. The
// loopback interface is always added and default routes are generated
// immediately.
func New(opts ...Option) *NetworkManager {
	nm := &NetworkManager{
		config:       NodeConfig{CurrentAddress: NOADDRESS, NodeType: LEAF, NoRouteAction: DUMP},
		routingTable: NewRoutingTable(),
		services:     make(map[uint8]ServiceHandler),
		interfaces:   make(map[uint8]Interface),
		queue:        NewIngressQueue(IngressQueueCapacity),
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(nm)
	}
	nm.loopback = NewLoopback()
	nm.addInterfaceLocked(nm.loopback)
	nm.generateDefaultRoutes()
	return nm
}

// Option configures a NetworkManager at construction time.
type Option func(*NetworkManager)

// WithAddress sets the initial node address.
func WithAddress(addr uint8) Option { return func(nm *NetworkManager) { nm.config.CurrentAddress = addr } }

// WithNodeType sets the initial node role.
func WithNodeType(t NodeType) Option { return func(nm *NetworkManager) { nm.config.NodeType = t } }

// WithLogger sets the structured logger used for diagnostic messages. A
// nil logger is replaced with slog.Default(); passing WithLogger(nil)
// is equivalent to not calling it. There is no separate "logging enabled"
// flag — a discard handler achieves the same effect idiomatically.
func WithLogger(l *slog.Logger) Option {
	return func(nm *NetworkManager) {
		if l != nil {
			nm.log = l
		}
	}
}

// WithCounters attaches an observability sink.
func WithCounters(c Counters) Option { return func(nm *NetworkManager) { nm.counters = c } }

// WithSaveConfig installs the persistence callback used by NETMAN's
// SAVE_CONF.
func WithSaveConfig(f SaveConfigFunc) Option { return func(nm *NetworkManager) { nm.saveConfig = f } }

func (nm *NetworkManager) drop(reason string, args ...any) {
	nm.log.Debug("dropping packet", append([]any{"reason", reason}, args...)...)
	if nm.counters != nil {
		nm.counters.PacketDropped(reason)
	}
}

// dropErr is drop for the cases where the reason is one of the sentinel
// errors in errors.go rather than an ad-hoc string.
func (nm *NetworkManager) dropErr(err error, args ...any) {
	nm.drop(err.Error(), args...)
}

// generateDefaultRoutes regenerates the two routes every node must always
// have: currentAddress -> loopback, and DEBUG -> USBSERIAL. It runs after
// construction, after SetAddress, and after Reset.
func (nm *NetworkManager) generateDefaultRoutes() {
	nm.routingTable.SetRoute(nm.config.CurrentAddress, Route{Iface: LOOPBACK, Metric: 1})
	nm.routingTable.SetRoute(DEBUG, Route{Iface: USBSERIAL, Metric: 1})
}

// Reconfigure replaces both the config and the routing table in one step.
// The table is installed first, then the non-address fields are applied,
// then the address is applied last through SetAddress so the old
// address's loopback route is cleaned up and the default routes
// (currentAddress -> loopback, DEBUG -> USBSERIAL) are regenerated against
// the new table, the same as a standalone SetAddress call.
func (nm *NetworkManager) Reconfigure(cfg NodeConfig, table *RoutingTable) {
	nm.routingTable = table
	nm.config.NodeType = cfg.NodeType
	nm.config.NoRouteAction = cfg.NoRouteAction
	nm.config.RouteGenEnabled = cfg.RouteGenEnabled
	nm.SetAddress(cfg.CurrentAddress)
}

// Reset restores the routing table from the last UpdateBaseTable snapshot
// and regenerates the default routes.
func (nm *NetworkManager) Reset() {
	if nm.baseTable != nil {
		nm.routingTable = nm.baseTable.Clone()
	}
	nm.generateDefaultRoutes()
}

// UpdateBaseTable snapshots the current routing table for a later Reset.
func (nm *NetworkManager) UpdateBaseTable() {
	nm.baseTable = nm.routingTable.Clone()
}

// RoutingTable returns the live routing table, for read access by
// diagnostics (e.g. the reference CLI's routes subcommand).
func (nm *NetworkManager) RoutingTable() *RoutingTable { return nm.routingTable }

// Config returns the current persisted-config subset of manager state.
func (nm *NetworkManager) Config() NodeConfig { return nm.config }

// RegisterService installs a handler at id. Registering at id==NOSERVICE
// is rejected. Re-registering an occupied id overwrites it.
func (nm *NetworkManager) RegisterService(id uint8, h ServiceHandler) error {
	if id == NOSERVICE {
		nm.log.Warn("rejected service registration at reserved id", "id", id)
		return ErrIllegalServiceID
	}
	nm.services[id] = h
	return nil
}

// UnregisterService clears the handler at id.
func (nm *NetworkManager) UnregisterService(id uint8) error {
	if id == NOSERVICE {
		return ErrIllegalServiceID
	}
	delete(nm.services, id)
	return nil
}

// AddInterface registers an external interface, injecting the shared
// ingress queue into it. Registering at an ID already occupied by a
// different interface logs a warning and overwrites the slot.
func (nm *NetworkManager) AddInterface(i Interface) {
	nm.addInterfaceLocked(i)
}

func (nm *NetworkManager) addInterfaceLocked(i Interface) {
	if existing, ok := nm.interfaces[i.ID()]; ok && existing != i {
		nm.log.Warn("interface id already registered, overwriting", "id", i.ID())
	}
	nm.interfaces[i.ID()] = i
	i.SetPacketBuffer(nm.queue)
}

// RemoveInterface unregisters the interface at id and detaches the queue
// from it.
func (nm *NetworkManager) RemoveInterface(id uint8) {
	if i, ok := nm.interfaces[id]; ok {
		i.SetPacketBuffer(nil)
		delete(nm.interfaces, id)
	}
}

// SetBroadcastList sets the interfaces used for a BROADCAST noRouteAction.
// An empty list means "all interfaces" (see sendBroadcast).
func (nm *NetworkManager) SetBroadcastList(ids []uint8) { nm.broadcast = ids }

// SetAddress changes the node's address, deleting any existing loopback
// route for the old address and regenerating the default routes for the
// new one.
func (nm *NetworkManager) SetAddress(a uint8) {
	if r, ok := nm.routingTable.GetRoute(nm.config.CurrentAddress); ok && r.Iface == LOOPBACK {
		nm.routingTable.DeleteRoute(nm.config.CurrentAddress)
	}
	nm.config.CurrentAddress = a
	nm.generateDefaultRoutes()
}

// Update drains each registered interface's own Update routine, then
// processes at most one ingress packet via RoutePackets. Callers are
// expected to call Update in a loop.
func (nm *NetworkManager) Update() {
	for _, i := range nm.interfaces {
		i.Update()
	}
	nm.RoutePackets()
}

// RoutePackets pops and processes exactly one ingress packet, or does
// nothing if the queue is empty.
func (nm *NetworkManager) RoutePackets() {
	p, ok := nm.queue.TryDequeue()
	if !ok {
		return
	}

	if nm.config.RouteGenEnabled {
		if _, exists := nm.routingTable.GetRoute(p.Header.Source); !exists {
			nm.routingTable.SetRoute(p.Header.Source, Route{
				Iface:   p.Header.SrcIface,
				Metric:  p.Header.Hops,
				Address: p.Header.LLAddress,
			})
		}
	}

	// Debug impersonation on ingress: let an unaddressed node be talked
	// to directly by a debug host.
	if p.Header.Source == DEBUG && p.Header.Destination == NOADDRESS {
		p.Header.Destination = nm.config.CurrentAddress
	}

	if p.Header.Destination != nm.config.CurrentAddress {
		nm.forwardPacket(p)
		return
	}

	// Loopback sanity: a self-addressed packet must have arrived via the
	// loopback interface.
	if p.Header.Source == nm.config.CurrentAddress && p.Header.SrcIface != LOOPBACK {
		nm.drop("misrouted self-addressed packet", "src_iface", p.Header.SrcIface)
		return
	}

	if nm.counters != nil {
		nm.counters.PacketRouted()
	}

	switch p.Header.DestinationService {
	case NOSERVICE:
		p.Header.Destination = DEBUG
		nm.SendPacket(p)
	case NETMAN:
		nm.handleNetman(p)
	default:
		h, ok := nm.services[p.Header.DestinationService]
		if !ok {
			nm.dropErr(ErrUnknownService, "service", p.Header.DestinationService)
			return
		}
		h(p)
	}
}

// forwardPacket handles a packet not addressed to this node: a debug host
// speaking on behalf of an unaddressed node has its source rewritten to
// currentAddress; any other forwarded packet is dropped unless this node
// is a HUB.
func (nm *NetworkManager) forwardPacket(p *SerializedPacket) {
	if p.Header.Source == DEBUG && p.Header.SourceService == NOSERVICE {
		p.Header.Source = nm.config.CurrentAddress
		nm.SendPacket(p)
		return
	}
	if nm.config.NodeType != HUB {
		nm.drop("forwarding requires hub role", "dest", p.Header.Destination)
		return
	}
	nm.SendPacket(p)
}

// SendPacket is the egress path: increment hops, resolve a route, apply
// the no-route policy on a miss, suppress bounce-back onto the arrival
// interface, then hand off to sendByRoute.
func (nm *NetworkManager) SendPacket(p *SerializedPacket) {
	p.Header.Hops++

	route, ok := nm.routingTable.GetRoute(p.Header.Destination)
	if !ok {
		nm.applyNoRoute(p)
		return
	}

	// Forwarding a packet back out the interface it arrived on is only
	// legal if this node originated it.
	if p.Header.Source != nm.config.CurrentAddress && route.Iface == p.Header.SrcIface {
		nm.drop("suppressed bounce-back", "iface", route.Iface)
		return
	}

	nm.sendByRoute(route, p)
}

// applyNoRoute implements noRouteAction on a routing-table miss. BROADCAST
// is terminal: it never falls through to the bounce-back suppression that
// handles a resolved route.
func (nm *NetworkManager) applyNoRoute(p *SerializedPacket) {
	switch nm.config.NoRouteAction {
	case DUMP:
		nm.dropErr(ErrNoRoute, "dest", p.Header.Destination)
	case BROADCAST:
		nm.sendBroadcast(p)
	}
}

func (nm *NetworkManager) sendBroadcast(p *SerializedPacket) {
	targets := nm.broadcast
	if len(targets) == 0 {
		targets = make([]uint8, 0, len(nm.interfaces))
		for id := range nm.interfaces {
			targets = append(targets, id)
		}
	}
	for _, id := range targets {
		if id == p.Header.SrcIface || id == LOOPBACK {
			continue
		}
		if nm.counters != nil {
			nm.counters.PacketBroadcast()
		}
		nm.sendByRoute(Route{Iface: id, Metric: 0}, p.Clone())
	}
}

// sendByRoute rejects a loopback route for a foreign destination, resolves
// the interface, stamps the link-layer address, and sends.
func (nm *NetworkManager) sendByRoute(route Route, p *SerializedPacket) {
	if route.Iface == LOOPBACK && p.Header.Destination != nm.config.CurrentAddress {
		nm.dropErr(ErrMisroutedLoopback, "dest", p.Header.Destination)
		return
	}

	i, ok := nm.interfaces[route.Iface]
	if !ok {
		nm.drop("unknown interface", "iface", route.Iface)
		return
	}

	p.Header.LLAddress = route.Address
	if err := i.Send(p); err != nil {
		nm.log.Debug("interface send failed", "iface", route.Iface, "error", err)
	}
}

// handleNetman implements the in-band management service: address and
// route updates, role and policy changes, config persistence, and reset.
func (nm *NetworkManager) handleNetman(p *SerializedPacket) {
	switch p.Header.Type {
	case PING_REQ:
		ping, err := BasicDataFromSerialized(p)
		if err != nil {
			nm.drop("malformed PING_REQ", "error", err)
			return
		}
		resp := BasicDataPacket{
			Header: GenerateResponseHeader(ping.Header),
			Data:   ping.Data,
		}
		resp.Header.Type = PING_RES
		resp.Header.SourceService = NETMAN
		nm.SendPacket(resp.ToSerialized())

	case PING_RES:
		ping, err := BasicDataFromSerialized(p)
		if err != nil {
			nm.drop("malformed PING_RES", "error", err)
			return
		}
		nm.log.Info("ping response", "systime", ping.Data, "from", ping.Header.Source)

	case SET_ADDRESS:
		d, err := BasicDataFromSerialized(p)
		if err != nil {
			nm.drop("malformed SET_ADDRESS", "error", err)
			return
		}
		nm.SetAddress(uint8(d.Data & 0xFF))

	case SET_ROUTE:
		sr, err := SetRouteFromSerialized(p)
		if err != nil {
			nm.drop("malformed SET_ROUTE", "error", err)
			return
		}
		nm.routingTable.SetRoute(sr.Destination, sr.GetRoute())

	case SET_TYPE:
		d, err := BasicDataFromSerialized(p)
		if err != nil {
			nm.drop("malformed SET_TYPE", "error", err)
			return
		}
		nm.config.NodeType = NodeType(d.Data)

	case SET_NOROUTEACTION:
		d, err := BasicDataFromSerialized(p)
		if err != nil {
			nm.drop("malformed SET_NOROUTEACTION", "error", err)
			return
		}
		nm.config.NoRouteAction = NoRouteAction(d.Data)

	case SET_ROUTEGEN:
		d, err := BasicDataFromSerialized(p)
		if err != nil {
			nm.drop("malformed SET_ROUTEGEN", "error", err)
			return
		}
		nm.config.RouteGenEnabled = d.Data != 0

	case SAVE_CONF:
		if nm.saveConfig == nil {
			nm.log.Debug("SAVE_CONF received but no save callback installed")
			return
		}
		if err := nm.saveConfig(nm.config); err != nil {
			nm.log.Warn("save config failed", "error", err)
			return
		}
		nm.log.Info("config saved")

	case RESET_NETMAN:
		nm.Reset()

	default:
		nm.drop("unknown netman type", "type", p.Header.Type)
	}
}
