package rnp

const (
	// StartByte marks the beginning of every well-formed RNP packet.
	StartByte byte = 0xAF

	// HeaderSize is the fixed on-wire size of a Header, in bytes: the sum of
	// the field widths in headerDescriptor (1+2+2+6).
	HeaderSize = 11
)

// Reserved addresses.
const (
	NOADDRESS              uint8 = 0
	DEBUG                  uint8 = 1
	ROCKET                 uint8 = 2
	GROUNDSTATION_GATEWAY  uint8 = 3
	GROUNDSTATION          uint8 = 4
)

// Reserved service IDs.
const (
	NOSERVICE uint8 = 0
	NETMAN    uint8 = 1
	COMMAND   uint8 = 2
)

// Reserved interface IDs.
const (
	LOOPBACK  uint8 = 0
	USBSERIAL uint8 = 1
)

// Header is the fixed 11-byte on-wire packet header, plus two
// non-serialised fields populated at runtime by the receiving path:
// SrcIface and LLAddress (link-layer address, opaque to the core, used by
// link drivers).
type Header struct {
	StartByte          uint8
	PacketLen          uint16
	UID                uint16
	SourceService      uint8
	DestinationService uint8
	Type               uint8
	Source             uint8
	Destination        uint8
	Hops               uint8

	// Non-serialised, set by the receiving interface.
	SrcIface  uint8
	LLAddress *string
}

var headerDescriptor = NewDescriptor[Header](
	Field8[Header](func(h *Header) uint8 { return h.StartByte }, func(h *Header, v uint8) { h.StartByte = v }),
	Field16[Header](func(h *Header) uint16 { return h.PacketLen }, func(h *Header, v uint16) { h.PacketLen = v }),
	Field16[Header](func(h *Header) uint16 { return h.UID }, func(h *Header, v uint16) { h.UID = v }),
	Field8[Header](func(h *Header) uint8 { return h.SourceService }, func(h *Header, v uint8) { h.SourceService = v }),
	Field8[Header](func(h *Header) uint8 { return h.DestinationService }, func(h *Header, v uint8) { h.DestinationService = v }),
	Field8[Header](func(h *Header) uint8 { return h.Type }, func(h *Header, v uint8) { h.Type = v }),
	Field8[Header](func(h *Header) uint8 { return h.Source }, func(h *Header, v uint8) { h.Source = v }),
	Field8[Header](func(h *Header) uint8 { return h.Destination }, func(h *Header, v uint8) { h.Destination = v }),
	Field8[Header](func(h *Header) uint8 { return h.Hops }, func(h *Header, v uint8) { h.Hops = v }),
)

// NewHeader builds a header for an outgoing packet with the given
// service/type addressing and body length. StartByte is always stamped,
// UID and Hops start at zero.
func NewHeader(sourceService, destService, typ, source, destination uint8, bodyLen int) Header {
	return Header{
		StartByte:          StartByte,
		PacketLen:          uint16(bodyLen),
		SourceService:      sourceService,
		DestinationService: destService,
		Type:               typ,
		Source:             source,
		Destination:        destination,
	}
}

// Serialize appends the header's wire image to out.
func (h *Header) Serialize(out []byte) []byte {
	return headerDescriptor.Serialize(h, out)
}

// DeserializeHeader parses a Header from the first HeaderSize bytes of buf.
// Returns ErrShortBuffer if buf is shorter than HeaderSize.
func DeserializeHeader(buf []byte) (Header, error) {
	var h Header
	if err := headerDescriptor.Deserialize(&h, buf, 0); err != nil {
		return Header{}, err
	}
	return h, nil
}

// GenerateResponseHeader copies uid from req, swaps (source,destination)
// and (source_service,destination_service), and returns the result as the
// header for resp. type, hops, and the non-serialised fields are left to
// the caller.
func GenerateResponseHeader(req Header) Header {
	resp := req
	resp.Source, resp.Destination = req.Destination, req.Source
	resp.SourceService, resp.DestinationService = req.DestinationService, req.SourceService
	return resp
}
