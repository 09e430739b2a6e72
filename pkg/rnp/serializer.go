package rnp

// A Descriptor is a compile-time-described, field-ordered little-endian
// codec for a fixed-layout record of type T: a small, declarative list of
// accessor pairs. Each field is described once, by a getter and setter
// closure plus its on-wire width, and the descriptor walks the list in
// declaration order for both directions.
//
// Descriptors are built once (typically as package-level vars) and reused
// across every Serialize/Deserialize call; they hold no per-record state.
type Descriptor[T any] struct {
	fields []fieldSpec[T]
	size   int
}

type fieldSpec[T any] struct {
	width int
	get   func(*T) uint64
	set   func(*T, uint64)
}

// NewDescriptor builds a Descriptor from an ordered list of field
// descriptors. Field order defines wire order.
func NewDescriptor[T any](fields ...fieldSpec[T]) *Descriptor[T] {
	d := &Descriptor[T]{fields: fields}
	for _, f := range fields {
		d.size += f.width
	}
	return d
}

// Field8 describes a single byte field.
func Field8[T any](get func(*T) uint8, set func(*T, uint8)) fieldSpec[T] {
	return fieldSpec[T]{
		width: 1,
		get:   func(v *T) uint64 { return uint64(get(v)) },
		set:   func(v *T, x uint64) { set(v, uint8(x)) },
	}
}

// Field16 describes a little-endian 16-bit field.
func Field16[T any](get func(*T) uint16, set func(*T, uint16)) fieldSpec[T] {
	return fieldSpec[T]{
		width: 2,
		get:   func(v *T) uint64 { return uint64(get(v)) },
		set:   func(v *T, x uint64) { set(v, uint16(x)) },
	}
}

// Field32 describes a little-endian 32-bit field.
func Field32[T any](get func(*T) uint32, set func(*T, uint32)) fieldSpec[T] {
	return fieldSpec[T]{
		width: 4,
		get:   func(v *T) uint64 { return uint64(get(v)) },
		set:   func(v *T, x uint64) { set(v, uint32(x)) },
	}
}

// MemberSize returns the sum of all field sizes, known once the descriptor
// is built.
func (d *Descriptor[T]) MemberSize() int {
	return d.size
}

// Serialize appends the little-endian memory image of each field, in
// declaration order, to out and returns the extended slice.
func (d *Descriptor[T]) Serialize(v *T, out []byte) []byte {
	for _, f := range d.fields {
		x := f.get(v)
		for i := 0; i < f.width; i++ {
			out = append(out, byte(x>>(8*i)))
		}
	}
	return out
}

// Deserialize consumes exactly MemberSize() bytes from buf starting at
// offset, writing each field into v. It fails with ErrShortBuffer if the
// buffer is shorter than offset+MemberSize().
func (d *Descriptor[T]) Deserialize(v *T, buf []byte, offset int) error {
	if len(buf) < offset+d.size {
		return ErrShortBuffer
	}
	pos := offset
	for _, f := range d.fields {
		var x uint64
		for i := 0; i < f.width; i++ {
			x |= uint64(buf[pos+i]) << (8 * i)
		}
		f.set(v, x)
		pos += f.width
	}
	return nil
}
