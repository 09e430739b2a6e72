package rnp

import "errors"

// Error taxonomy. These are returned by the serializer, header codec, and
// packet constructors to their direct callers. The Network Manager itself
// never propagates them past route_packets/send_packet — it logs and drops.
var (
	// ErrShortBuffer is returned when a serialised header or body is too
	// short for its declared size.
	ErrShortBuffer = errors.New("rnp: short buffer")

	// ErrSizeMismatch is returned when a typed packet's declared packet_len
	// does not match the fixed size expected for that type.
	ErrSizeMismatch = errors.New("rnp: packet_len does not match expected size")

	// ErrNoRoute indicates a routing-table miss for a destination address.
	ErrNoRoute = errors.New("rnp: no route to destination")

	// ErrBadInterface indicates an interface ID that is out of range or
	// has no interface registered at that slot.
	ErrBadInterface = errors.New("rnp: unknown interface")

	// ErrMisroutedLoopback indicates a route resolved to the loopback
	// interface for a packet not addressed to this node.
	ErrMisroutedLoopback = errors.New("rnp: loopback route for foreign destination")

	// ErrUnknownService indicates a destination service with no
	// registered callback.
	ErrUnknownService = errors.New("rnp: no service registered at that id")

	// ErrIllegalServiceID indicates an attempt to register or unregister
	// service ID 0 (NOSERVICE), which is handled internally and can never
	// carry a callback.
	ErrIllegalServiceID = errors.New("rnp: service id 0 is reserved for NOSERVICE")

	// ErrQueueFull indicates the bounded ingress queue rejected a packet.
	ErrQueueFull = errors.New("rnp: ingress queue full")
)
