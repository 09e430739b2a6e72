// Package iface provides a minimal demonstration link driver over TCP. It
// exists only to give the reference rnpnode binary something concrete to
// run; it implements nothing beyond the rnp.Interface contract.
package iface

import (
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/icl-rocketry/rnp/pkg/rnp"
)

// TCP is a stream-framed Interface: each RNP packet is preceded by its
// total on-wire length (header + body) as a little-endian uint16, so a
// stream reader knows exactly how many bytes to pull before handing the
// buffer to DeserializeSerializedPacket.
type TCP struct {
	rnp.BaseInterface

	log  *slog.Logger
	mu   sync.Mutex
	conn net.Conn
}

// NewTCP wraps an already-connected net.Conn as an rnp.Interface with the
// given ID.
func NewTCP(id uint8, conn net.Conn, log *slog.Logger) *TCP {
	if log == nil {
		log = slog.Default()
	}
	t := &TCP{
		BaseInterface: rnp.NewBaseInterface(id, 1500),
		log:           log.With("component", "iface.tcp", "id", id),
		conn:          conn,
	}
	t.SetUp(true)
	return t
}

// Setup starts the background reader that feeds the ingress queue.
func (t *TCP) Setup() error {
	go t.readLoop()
	return nil
}

// Update is a no-op; framing and pushes happen on the reader goroutine,
// which does its own synchronisation before touching the shared ingress
// queue.
func (t *TCP) Update() {}

func (t *TCP) readLoop() {
	lenBuf := make([]byte, 2)
	for {
		if _, err := io.ReadFull(t.conn, lenBuf); err != nil {
			t.SetUp(false)
			return
		}
		n := binary.LittleEndian.Uint16(lenBuf)
		frame := make([]byte, n)
		if _, err := io.ReadFull(t.conn, frame); err != nil {
			t.SetUp(false)
			return
		}
		if !t.Push(frame, nil) {
			t.log.Debug("dropped inbound frame, queue full or malformed")
		}
	}
}

// Send frames p with its length prefix and writes it to the connection.
func (t *TCP) Send(p *rnp.SerializedPacket) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := p.Serialize(nil)
	if len(out) > 0xFFFF {
		t.MarkTxError()
		return errors.New("iface/tcp: frame too large")
	}

	lenBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBuf, uint16(len(out)))
	if _, err := t.conn.Write(lenBuf); err != nil {
		t.MarkTxError()
		return err
	}
	if _, err := t.conn.Write(out); err != nil {
		t.MarkTxError()
		return err
	}
	return nil
}

// Close closes the underlying connection.
func (t *TCP) Close() error {
	return t.conn.Close()
}
