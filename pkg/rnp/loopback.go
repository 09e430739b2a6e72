package rnp

// Loopback is the built-in interface (ID 0) that is always present in a
// Network Manager's interface list and is owned by the manager for its
// entire lifetime. Sending a packet via Loopback simply re-stamps its
// src_iface and pushes it straight back onto the ingress queue — nothing
// is written to or read from any external medium.
type Loopback struct {
	BaseInterface
}

// NewLoopback returns a Loopback interface.
func NewLoopback() *Loopback {
	l := &Loopback{BaseInterface: NewBaseInterface(LOOPBACK, 1<<16 - HeaderSize)}
	l.SetUp(true)
	return l
}

func (l *Loopback) Setup() error { return nil }

// Update is a no-op; loopback never has asynchronous work to drain.
func (l *Loopback) Update() {}

// Send stamps src_iface with the loopback ID and pushes the packet onto
// its own ingress queue, without re-serialising the body.
func (l *Loopback) Send(p *SerializedPacket) error {
	if l.queue == nil {
		l.MarkTxError()
		return ErrBadInterface
	}
	p.Header.SrcIface = LOOPBACK
	if !l.queue.TryEnqueue(p) {
		l.info.RxErrors++
		return ErrQueueFull
	}
	return nil
}
