package rnp

// IngressQueue is the bounded single-consumer, multi-producer queue that is
// the sole synchronisation point between link interfaces and the Network
// Manager. Capacity is fixed at construction; TryEnqueue reports
// backpressure through its return value instead of blocking, so a full
// queue is the interface's problem (it increments its own rx_errors), not
// the manager's.
type IngressQueue struct {
	ch chan *SerializedPacket
}

// NewIngressQueue creates a queue with the given capacity.
func NewIngressQueue(capacity int) *IngressQueue {
	return &IngressQueue{ch: make(chan *SerializedPacket, capacity)}
}

// TryEnqueue pushes p onto the queue without blocking. It returns false if
// the queue is full.
func (q *IngressQueue) TryEnqueue(p *SerializedPacket) bool {
	select {
	case q.ch <- p:
		return true
	default:
		return false
	}
}

// TryDequeue pops the head packet, or returns ok=false if the queue is
// empty.
func (q *IngressQueue) TryDequeue() (*SerializedPacket, bool) {
	select {
	case p := <-q.ch:
		return p, true
	default:
		return nil, false
	}
}

// InterfaceInfo reports link health and error counters.
type InterfaceInfo struct {
	Up        bool
	Error     bool
	MTU       int
	RxErrors  uint32
	TxErrors  uint32
}

// Interface is the abstract link contract. Every link implements Setup,
// Update, Send and Info. A non-owning ingress queue is injected by the
// manager via SetPacketBuffer; on receive, an interface constructs a
// SerializedPacket, sets header.SrcIface to its own ID, and pushes it onto
// that queue.
type Interface interface {
	ID() uint8
	Setup() error
	Update()
	Send(p *SerializedPacket) error
	Info() InterfaceInfo
	SetPacketBuffer(q *IngressQueue)
}

// BaseInterface provides the common bookkeeping (ID, queue, error counters)
// that every concrete Interface embeds.
type BaseInterface struct {
	id    uint8
	queue *IngressQueue
	info  InterfaceInfo
}

// NewBaseInterface returns a BaseInterface for the given interface ID.
func NewBaseInterface(id uint8, mtu int) BaseInterface {
	return BaseInterface{id: id, info: InterfaceInfo{MTU: mtu}}
}

func (b *BaseInterface) ID() uint8 { return b.id }

func (b *BaseInterface) SetPacketBuffer(q *IngressQueue) { b.queue = q }

func (b *BaseInterface) Info() InterfaceInfo { return b.info }

// Push constructs a SerializedPacket from buf, stamps src_iface, and
// attempts to push it onto the injected queue. It returns false (and
// increments RxErrors) if the queue is missing, the buffer fails to parse,
// or the queue is full.
func (b *BaseInterface) Push(buf []byte, lladdress *string) bool {
	if b.queue == nil {
		b.info.RxErrors++
		return false
	}
	sp, err := DeserializeSerializedPacket(buf)
	if err != nil {
		b.info.RxErrors++
		return false
	}
	sp.Header.SrcIface = b.id
	sp.Header.LLAddress = lladdress
	if !b.queue.TryEnqueue(sp) {
		b.info.RxErrors++
		return false
	}
	return true
}

// MarkTxError increments the TxErrors counter, for use by Send
// implementations on write failure.
func (b *BaseInterface) MarkTxError() { b.info.TxErrors++ }

// SetUp sets the Up/Error flags reported by Info.
func (b *BaseInterface) SetUp(up bool) {
	b.info.Up = up
	b.info.Error = !up
}
