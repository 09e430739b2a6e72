package rnp

import "encoding/binary"

// Packet is the in-memory view of a header plus its body bytes. packet_len
// on the header always equals len(Body) for a well-formed Packet.
type Packet struct {
	Header Header
	Body   []byte
}

// NewPacket builds an outgoing packet with a freshly constructed header.
func NewPacket(sourceService, destService, typ, source, destination uint8, body []byte) Packet {
	return Packet{
		Header: NewHeader(sourceService, destService, typ, source, destination, len(body)),
		Body:   body,
	}
}

// NewPacketFromSerialized copies the header from sp and validates that
// header.packet_len and sp's body size both equal expectedBodyLen, failing
// with ErrSizeMismatch otherwise. The variable-length MessagePacket skips
// this check by reading SerializedPacket.Header/Body directly instead.
func NewPacketFromSerialized(sp *SerializedPacket, expectedBodyLen int) (Packet, error) {
	if int(sp.Header.PacketLen) != expectedBodyLen || sp.BodySize() != expectedBodyLen {
		return Packet{}, ErrSizeMismatch
	}
	body := make([]byte, expectedBodyLen)
	copy(body, sp.Body())
	return Packet{Header: sp.Header, Body: body}, nil
}

// SerializedPacket owns the full on-wire byte buffer (header bytes ∥ body
// bytes) alongside a parsed Header view, so that routing can rewrite the
// header in place without re-marshalling the body.
type SerializedPacket struct {
	Header Header
	Raw    []byte
}

// NewSerializedPacket encodes p into a fresh SerializedPacket.
func NewSerializedPacket(p Packet) *SerializedPacket {
	raw := make([]byte, 0, HeaderSize+len(p.Body))
	raw = p.Header.Serialize(raw)
	raw = append(raw, p.Body...)
	return &SerializedPacket{Header: p.Header, Raw: raw}
}

// DeserializeSerializedPacket parses a Header from the front of buf and
// retains the full buffer (header ∥ body) as Raw. buf is not copied; the
// caller must not mutate it afterward.
func DeserializeSerializedPacket(buf []byte) (*SerializedPacket, error) {
	h, err := DeserializeHeader(buf)
	if err != nil {
		return nil, err
	}
	return &SerializedPacket{Header: h, Raw: buf}, nil
}

// Body returns the bytes of Raw after the header.
func (sp *SerializedPacket) Body() []byte {
	if len(sp.Raw) <= HeaderSize {
		return nil
	}
	return sp.Raw[HeaderSize:]
}

// BodySize returns max(0, len(Raw)-HeaderSize).
func (sp *SerializedPacket) BodySize() int {
	n := len(sp.Raw) - HeaderSize
	if n < 0 {
		return 0
	}
	return n
}

// Serialize re-encodes Header into the first HeaderSize bytes of Raw (the
// header may have been mutated in place by routing) and appends the full
// Raw buffer to out.
func (sp *SerializedPacket) Serialize(out []byte) []byte {
	head := sp.Header.Serialize(make([]byte, 0, HeaderSize))
	copy(sp.Raw[:HeaderSize], head)
	return append(out, sp.Raw...)
}

// Clone returns a SerializedPacket holding an independent copy of Raw, for
// callers (such as broadcast) that need to mutate one copy's header
// per-destination interface without disturbing the others.
func (sp *SerializedPacket) Clone() *SerializedPacket {
	raw := make([]byte, len(sp.Raw))
	copy(raw, sp.Raw)
	return &SerializedPacket{Header: sp.Header, Raw: raw}
}

// BasicDataPacket is a typed packet whose body is the raw little-endian
// image of a fixed-size uint32 scalar. NETMAN's control messages (PING,
// SET_ADDRESS, SET_TYPE, ...) are all BasicDataPacket<uint32>.
type BasicDataPacket struct {
	Header Header
	Data   uint32
}

// BasicDataBodyLen is the fixed wire size of a BasicDataPacket body.
const BasicDataBodyLen = 4

// NewBasicDataPacket builds an outgoing BasicDataPacket.
func NewBasicDataPacket(sourceService, destService, typ, source, destination uint8, data uint32) BasicDataPacket {
	return BasicDataPacket{
		Header: NewHeader(sourceService, destService, typ, source, destination, BasicDataBodyLen),
		Data:   data,
	}
}

// BasicDataFromSerialized parses a BasicDataPacket out of sp, validating
// the fixed body size.
func BasicDataFromSerialized(sp *SerializedPacket) (BasicDataPacket, error) {
	p, err := NewPacketFromSerialized(sp, BasicDataBodyLen)
	if err != nil {
		return BasicDataPacket{}, err
	}
	return BasicDataPacket{Header: p.Header, Data: binary.LittleEndian.Uint32(p.Body)}, nil
}

// ToSerialized encodes the BasicDataPacket.
func (b BasicDataPacket) ToSerialized() *SerializedPacket {
	body := make([]byte, BasicDataBodyLen)
	binary.LittleEndian.PutUint32(body, b.Data)
	return NewSerializedPacket(Packet{Header: b.Header, Body: body})
}

// MessagePacket carries a variable-length UTF-8 body; packet_len equals the
// string's byte length. It skips the fixed-size validation that
// NewPacketFromSerialized performs.
type MessagePacket struct {
	Header Header
	Text   string
}

// NewMessagePacket builds an outgoing MessagePacket.
func NewMessagePacket(sourceService, destService, typ, source, destination uint8, text string) MessagePacket {
	return MessagePacket{
		Header: NewHeader(sourceService, destService, typ, source, destination, len(text)),
		Text:   text,
	}
}

// MessageFromSerialized parses a MessagePacket out of sp without a fixed
// body-size check.
func MessageFromSerialized(sp *SerializedPacket) MessagePacket {
	return MessagePacket{Header: sp.Header, Text: string(sp.Body())}
}

// ToSerialized encodes the MessagePacket.
func (m MessagePacket) ToSerialized() *SerializedPacket {
	return NewSerializedPacket(Packet{Header: m.Header, Body: []byte(m.Text)})
}
