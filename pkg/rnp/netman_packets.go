package rnp

// NETMAN wire types (service = NETMAN).
const (
	PING_REQ          uint8 = 1
	PING_RES          uint8 = 2
	SET_ADDRESS       uint8 = 3
	SET_ROUTE         uint8 = 4
	SET_TYPE          uint8 = 5
	SET_NOROUTEACTION uint8 = 6
	SET_ROUTEGEN      uint8 = 7
	SAVE_CONF         uint8 = 8
	RESET_NETMAN      uint8 = 9
)

// NodeType selects forwarding behaviour: only HUB nodes forward packets not
// addressed to them.
type NodeType uint8

const (
	LEAF NodeType = 0
	HUB  NodeType = 1
)

// NoRouteAction selects what send_packet does on a routing-table miss.
type NoRouteAction uint8

const (
	DUMP      NoRouteAction = 0
	BROADCAST NoRouteAction = 1
)

// addressType values in a wire-encoded SetRoutePacket body.
const (
	addrTypeNone   uint8 = 0
	addrTypeString uint8 = 1
)

// setRouteAddrLen is the fixed width of the address_data field.
const setRouteAddrLen = 32

// SetRouteBodyLen is the fixed wire size of a SetRoutePacket body:
// dest, iface, metric, address_type, address_len, address_data[32].
const SetRouteBodyLen = 5 + setRouteAddrLen

// SetRoutePacket carries a single routing-table update over NETMAN
// SET_ROUTE. Its body layout is fixed regardless of whether the address
// variant is present.
type SetRoutePacket struct {
	Header      Header
	Destination uint8
	Route       Route
}

// NewSetRoutePacket builds an outgoing SET_ROUTE packet for dest/route.
// Unrecognised address variants become NONE with address_len=0 — here
// Route.Address is always either nil or a *string, so there is no
// unrecognised variant to normalise. ToSerialized truncates a string longer
// than 32 bytes to keep the invariant address_len<=32; the Route held by
// the returned packet is not truncated.
func NewSetRoutePacket(sourceService, source, destination uint8, dest uint8, route Route) SetRoutePacket {
	h := NewHeader(sourceService, NETMAN, SET_ROUTE, source, destination, SetRouteBodyLen)
	return SetRoutePacket{Header: h, Destination: dest, Route: route}
}

// ToSerialized encodes the fixed 37-byte body.
func (s SetRoutePacket) ToSerialized() *SerializedPacket {
	body := make([]byte, SetRouteBodyLen)
	body[0] = s.Destination
	body[1] = s.Route.Iface
	body[2] = s.Route.Metric

	if s.Route.Address == nil {
		body[3] = addrTypeNone
		body[4] = 0
	} else {
		addr := *s.Route.Address
		if len(addr) > setRouteAddrLen {
			addr = addr[:setRouteAddrLen]
		}
		body[3] = addrTypeString
		body[4] = uint8(len(addr))
		copy(body[5:5+len(addr)], addr)
	}

	return NewSerializedPacket(Packet{Header: s.Header, Body: body})
}

// SetRouteFromSerialized parses a SetRoutePacket out of sp, validating the
// fixed body size.
func SetRouteFromSerialized(sp *SerializedPacket) (SetRoutePacket, error) {
	p, err := NewPacketFromSerialized(sp, SetRouteBodyLen)
	if err != nil {
		return SetRoutePacket{}, err
	}
	body := p.Body
	route := Route{Iface: body[1], Metric: body[2]}
	if body[3] == addrTypeString {
		n := body[4]
		if int(n) > setRouteAddrLen {
			n = setRouteAddrLen
		}
		addr := string(body[5 : 5+n])
		route.Address = &addr
	}
	return SetRoutePacket{Header: p.Header, Destination: body[0], Route: route}, nil
}

// GetRoute reconstructs the Route carried by this packet.
func (s SetRoutePacket) GetRoute() Route {
	return s.Route
}

// SimpleCommandBodyLen is the fixed wire size of a SimpleCommandPacket body.
const SimpleCommandBodyLen = 5

// SimpleCommandPacket is a small convenience type over service=COMMAND,
// carrying a one-byte command selector and a 32-bit argument. It is not
// part of the NETMAN service; services register for COMMAND (id 2) and
// interpret the Command byte however they choose.
type SimpleCommandPacket struct {
	Header  Header
	Command uint8
	Arg     uint32
}

// NewSimpleCommandPacket builds an outgoing COMMAND packet.
func NewSimpleCommandPacket(source, destination, command uint8, arg uint32) SimpleCommandPacket {
	h := NewHeader(COMMAND, COMMAND, command, source, destination, SimpleCommandBodyLen)
	return SimpleCommandPacket{Header: h, Command: command, Arg: arg}
}

// SimpleCommandFromSerialized parses a SimpleCommandPacket out of sp.
func SimpleCommandFromSerialized(sp *SerializedPacket) (SimpleCommandPacket, error) {
	p, err := NewPacketFromSerialized(sp, SimpleCommandBodyLen)
	if err != nil {
		return SimpleCommandPacket{}, err
	}
	arg := uint32(p.Body[1]) | uint32(p.Body[2])<<8 | uint32(p.Body[3])<<16 | uint32(p.Body[4])<<24
	return SimpleCommandPacket{Header: p.Header, Command: p.Body[0], Arg: arg}, nil
}

// ToSerialized encodes the SimpleCommandPacket.
func (c SimpleCommandPacket) ToSerialized() *SerializedPacket {
	body := make([]byte, SimpleCommandBodyLen)
	body[0] = c.Command
	body[1] = byte(c.Arg)
	body[2] = byte(c.Arg >> 8)
	body[3] = byte(c.Arg >> 16)
	body[4] = byte(c.Arg >> 24)
	return NewSerializedPacket(Packet{Header: c.Header, Body: body})
}

// GetCommand returns the command selector.
func (c SimpleCommandPacket) GetCommand() uint8 {
	return c.Command
}
