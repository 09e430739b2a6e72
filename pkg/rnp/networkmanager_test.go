package rnp

import "testing"

// fakeInterface records every packet handed to Send, for assertions.
type fakeInterface struct {
	BaseInterface
	sent []*SerializedPacket
}

func newFakeInterface(id uint8) *fakeInterface {
	return &fakeInterface{BaseInterface: NewBaseInterface(id, 1500)}
}

func (f *fakeInterface) Setup() error { return nil }
func (f *fakeInterface) Update()      {}

func (f *fakeInterface) Send(p *SerializedPacket) error {
	f.sent = append(f.sent, p)
	return nil
}

func TestScenarioSelfLoopback(t *testing.T) {
	t.Parallel()

	var received *SerializedPacket
	nm := New(WithAddress(5))
	if err := nm.RegisterService(COMMAND, func(p *SerializedPacket) { received = p }); err != nil {
		t.Fatalf("RegisterService: %v", err)
	}

	p := NewBasicDataPacket(COMMAND, COMMAND, 0, 5, 5, 42)
	nm.SendPacket(p.ToSerialized())
	nm.RoutePackets()

	if received == nil {
		t.Fatalf("service callback never invoked")
	}
	if received.Header.SrcIface != LOOPBACK {
		t.Errorf("SrcIface = %d, want LOOPBACK", received.Header.SrcIface)
	}
}

func TestScenarioUnknownDestinationDump(t *testing.T) {
	t.Parallel()

	nm := New(WithAddress(5))
	iface1 := newFakeInterface(1)
	nm.AddInterface(iface1)

	called := false
	nm.RegisterService(COMMAND, func(p *SerializedPacket) { called = true })

	p := NewBasicDataPacket(COMMAND, COMMAND, 0, 5, 9, 1)
	nm.SendPacket(p.ToSerialized())

	if len(iface1.sent) != 0 {
		t.Errorf("iface1.sent = %d packets, want 0", len(iface1.sent))
	}
	if called {
		t.Errorf("service callback should not fire for an undelivered packet")
	}
}

func TestScenarioUnknownDestinationBroadcast(t *testing.T) {
	t.Parallel()

	nm := New(WithAddress(5))
	nm.config.NoRouteAction = BROADCAST
	iface1 := newFakeInterface(1)
	iface2 := newFakeInterface(2)
	nm.AddInterface(iface1)
	nm.AddInterface(iface2)
	nm.SetBroadcastList([]uint8{1})

	p := NewBasicDataPacket(COMMAND, COMMAND, 0, 5, 9, 1)
	sp := p.ToSerialized()
	sp.Header.SrcIface = 2
	nm.SendPacket(sp)

	if len(iface1.sent) != 1 {
		t.Fatalf("iface1.sent = %d, want 1", len(iface1.sent))
	}
	if len(iface2.sent) != 0 {
		t.Errorf("iface2.sent = %d, want 0 (broadcast list excludes it)", len(iface2.sent))
	}
}

func TestScenarioHubForwarding(t *testing.T) {
	t.Parallel()

	nm := New(WithAddress(1), WithNodeType(HUB))
	iface1 := newFakeInterface(1)
	iface2 := newFakeInterface(2)
	nm.AddInterface(iface1)
	nm.AddInterface(iface2)
	nm.RoutingTable().SetRoute(7, Route{Iface: 1, Metric: 1})
	nm.RoutingTable().SetRoute(9, Route{Iface: 2, Metric: 1})

	p := NewBasicDataPacket(COMMAND, COMMAND, 0, 7, 9, 1)
	sp := p.ToSerialized()
	sp.Header.SrcIface = 1
	nm.forwardPacket(sp)

	if len(iface2.sent) != 1 {
		t.Fatalf("iface2.sent = %d, want 1", len(iface2.sent))
	}
	if len(iface1.sent) != 0 {
		t.Errorf("iface1.sent = %d, want 0 (arrival interface suppressed)", len(iface1.sent))
	}
	if iface2.sent[0].Header.Hops != 1 {
		t.Errorf("Hops = %d, want 1 after forwarding", iface2.sent[0].Header.Hops)
	}
}

func TestScenarioDebugImpersonation(t *testing.T) {
	t.Parallel()

	nm := New(WithAddress(5))
	iface1 := newFakeInterface(1)
	nm.AddInterface(iface1)
	nm.RoutingTable().SetRoute(DEBUG, Route{Iface: 1, Metric: 1})

	req := NewBasicDataPacket(NOSERVICE, NETMAN, PING_REQ, DEBUG, NOADDRESS, 0xDEADBEEF)
	sp := req.ToSerialized()
	sp.Header.SrcIface = USBSERIAL
	if !nm.queue.TryEnqueue(sp) {
		t.Fatalf("failed to enqueue request")
	}

	nm.RoutePackets()

	if len(iface1.sent) != 1 {
		t.Fatalf("iface1.sent = %d, want 1", len(iface1.sent))
	}
	resp, err := BasicDataFromSerialized(iface1.sent[0])
	if err != nil {
		t.Fatalf("BasicDataFromSerialized: %v", err)
	}
	if resp.Header.Source != 5 || resp.Header.Destination != DEBUG {
		t.Errorf("response addressing = %+v, want source=5 destination=DEBUG", resp.Header)
	}
	if resp.Data != 0xDEADBEEF {
		t.Errorf("Data = %#x, want 0xDEADBEEF", resp.Data)
	}
	if resp.Header.Type != PING_RES {
		t.Errorf("Type = %d, want PING_RES", resp.Header.Type)
	}
}

func TestScenarioAutoRouteGen(t *testing.T) {
	t.Parallel()

	nm := New(WithAddress(5))
	nm.config.RouteGenEnabled = true
	iface3 := newFakeInterface(3)
	nm.AddInterface(iface3)

	addr := "X"
	p := NewBasicDataPacket(COMMAND, COMMAND, 0, 99, 5, 1)
	sp := p.ToSerialized()
	sp.Header.SrcIface = 3
	sp.Header.Hops = 7
	sp.Header.LLAddress = &addr
	nm.queue.TryEnqueue(sp)
	nm.RoutePackets()

	route, ok := nm.RoutingTable().GetRoute(99)
	if !ok {
		t.Fatalf("no route learned for address 99")
	}
	if route.Iface != 3 || route.Metric != 7 || route.Address == nil || *route.Address != "X" {
		t.Errorf("route = %+v, want iface=3 metric=7 address=X", route)
	}

	// A second packet from 99 on a different interface must not overwrite.
	p2 := NewBasicDataPacket(COMMAND, COMMAND, 0, 99, 5, 1)
	sp2 := p2.ToSerialized()
	sp2.Header.SrcIface = 4
	sp2.Header.Hops = 1
	nm.queue.TryEnqueue(sp2)
	nm.RoutePackets()

	route2, _ := nm.RoutingTable().GetRoute(99)
	if route2.Iface != 3 {
		t.Errorf("route overwritten: iface = %d, want 3 (unchanged)", route2.Iface)
	}
}

func TestRoutePacketsConsumesExactlyOne(t *testing.T) {
	t.Parallel()

	nm := New(WithAddress(5))
	nm.RegisterService(COMMAND, func(p *SerializedPacket) {})

	p1 := NewBasicDataPacket(COMMAND, COMMAND, 0, 5, 5, 1)
	p2 := NewBasicDataPacket(COMMAND, COMMAND, 0, 5, 5, 2)
	nm.SendPacket(p1.ToSerialized())
	nm.SendPacket(p2.ToSerialized())

	if n := len(nm.queue.ch); n != 2 {
		t.Fatalf("queue len = %d, want 2 before draining", n)
	}
	nm.RoutePackets()
	if n := len(nm.queue.ch); n != 1 {
		t.Errorf("queue len = %d, want 1 after one RoutePackets call", n)
	}
}

func TestSetAddressRegeneratesDefaultRoutes(t *testing.T) {
	t.Parallel()

	nm := New(WithAddress(5))
	if r, ok := nm.RoutingTable().GetRoute(5); !ok || r.Iface != LOOPBACK {
		t.Fatalf("initial loopback route missing: %+v, %v", r, ok)
	}

	nm.SetAddress(7)

	if _, ok := nm.RoutingTable().GetRoute(5); ok {
		t.Errorf("old address's loopback route should be removed")
	}
	if r, ok := nm.RoutingTable().GetRoute(7); !ok || r.Iface != LOOPBACK {
		t.Errorf("new address should have a loopback route: %+v, %v", r, ok)
	}
	if r, ok := nm.RoutingTable().GetRoute(DEBUG); !ok || r.Iface != USBSERIAL {
		t.Errorf("DEBUG route missing after SetAddress: %+v, %v", r, ok)
	}
}

func TestReconfigureRegeneratesDefaultRoutes(t *testing.T) {
	t.Parallel()

	nm := New(WithAddress(5))
	newTable := NewRoutingTable()
	newTable.SetRoute(9, Route{Iface: 1, Metric: 1})
	newTable.SetRoute(5, Route{Iface: LOOPBACK, Metric: 1})

	nm.Reconfigure(NodeConfig{CurrentAddress: 7, NodeType: HUB, NoRouteAction: BROADCAST}, newTable)

	if _, ok := nm.RoutingTable().GetRoute(5); ok {
		t.Errorf("old address's stale loopback route should be removed after Reconfigure")
	}
	if r, ok := nm.RoutingTable().GetRoute(7); !ok || r.Iface != LOOPBACK {
		t.Errorf("new address should have a loopback route after Reconfigure: %+v, %v", r, ok)
	}
	if r, ok := nm.RoutingTable().GetRoute(DEBUG); !ok || r.Iface != USBSERIAL {
		t.Errorf("DEBUG route missing after Reconfigure: %+v, %v", r, ok)
	}
	if _, ok := nm.RoutingTable().GetRoute(9); !ok {
		t.Errorf("route carried by the new table should survive Reconfigure")
	}
	if nm.Config().NodeType != HUB || nm.Config().NoRouteAction != BROADCAST {
		t.Errorf("Config() = %+v, want NodeType=HUB NoRouteAction=BROADCAST", nm.Config())
	}
}

func TestRegisterServiceRejectsNoService(t *testing.T) {
	t.Parallel()

	nm := New()
	if err := nm.RegisterService(NOSERVICE, func(p *SerializedPacket) {}); err != ErrIllegalServiceID {
		t.Errorf("err = %v, want ErrIllegalServiceID", err)
	}
}

func TestResetRestoresBaseTable(t *testing.T) {
	t.Parallel()

	nm := New(WithAddress(5))
	nm.UpdateBaseTable()
	nm.RoutingTable().SetRoute(9, Route{Iface: 1})

	nm.Reset()

	if _, ok := nm.RoutingTable().GetRoute(9); ok {
		t.Errorf("Reset should discard routes added after the snapshot")
	}
	if r, ok := nm.RoutingTable().GetRoute(5); !ok || r.Iface != LOOPBACK {
		t.Errorf("Reset should regenerate default routes: %+v, %v", r, ok)
	}
}
