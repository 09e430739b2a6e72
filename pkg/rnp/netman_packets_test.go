package rnp

import "testing"

func TestSetRoutePacketRoundTripWithAddress(t *testing.T) {
	t.Parallel()

	addr := "433.92MHz/07"
	p := NewSetRoutePacket(NOSERVICE, DEBUG, NOADDRESS, 9, Route{Iface: 3, Metric: 2, Address: &addr})
	sp := p.ToSerialized()

	if int(sp.Header.PacketLen) != SetRouteBodyLen {
		t.Fatalf("packet_len = %d, want %d", sp.Header.PacketLen, SetRouteBodyLen)
	}

	got, err := SetRouteFromSerialized(sp)
	if err != nil {
		t.Fatalf("SetRouteFromSerialized: %v", err)
	}
	if got.Destination != 9 {
		t.Errorf("Destination = %d, want 9", got.Destination)
	}
	route := got.GetRoute()
	if route.Iface != 3 || route.Metric != 2 {
		t.Errorf("route = %+v, want iface=3 metric=2", route)
	}
	if route.Address == nil || *route.Address != addr {
		t.Errorf("Address = %v, want %q", route.Address, addr)
	}
}

func TestSetRoutePacketRoundTripNoAddress(t *testing.T) {
	t.Parallel()

	p := NewSetRoutePacket(NOSERVICE, DEBUG, NOADDRESS, 9, Route{Iface: 1, Metric: 1})
	sp := p.ToSerialized()

	got, err := SetRouteFromSerialized(sp)
	if err != nil {
		t.Fatalf("SetRouteFromSerialized: %v", err)
	}
	if got.GetRoute().Address != nil {
		t.Errorf("Address = %v, want nil", got.GetRoute().Address)
	}
}

func TestSimpleCommandPacketRoundTrip(t *testing.T) {
	t.Parallel()

	c := NewSimpleCommandPacket(ROCKET, GROUNDSTATION, 7, 0x01020304)
	sp := c.ToSerialized()

	got, err := SimpleCommandFromSerialized(sp)
	if err != nil {
		t.Fatalf("SimpleCommandFromSerialized: %v", err)
	}
	if got.GetCommand() != 7 {
		t.Errorf("GetCommand() = %d, want 7", got.GetCommand())
	}
	if got.Arg != 0x01020304 {
		t.Errorf("Arg = %#x, want 0x01020304", got.Arg)
	}
}
