package rnp

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Route maps a destination address to an egress interface, a metric (hop
// count at the time the route was learned, or 0/1 for manually-set routes),
// and an optional link-layer address opaque to the core and handed to the
// interface on send.
type Route struct {
	Iface   uint8
	Metric  uint8
	Address *string
}

// RoutingTable is a dense vector indexed by destination address; each slot
// is either empty or holds a single Route, so a destination never has more
// than one route at a time.
type RoutingTable struct {
	slots []routeSlot
}

type routeSlot struct {
	occupied bool
	route    Route
}

// NewRoutingTable returns an empty table.
func NewRoutingTable() *RoutingTable {
	return &RoutingTable{}
}

// SetRoute grows the table if dest >= size, filling the gap with empty
// slots, and overwrites any existing entry at dest.
func (t *RoutingTable) SetRoute(dest uint8, r Route) {
	idx := int(dest)
	if idx >= len(t.slots) {
		grown := make([]routeSlot, idx+1)
		copy(grown, t.slots)
		t.slots = grown
	}
	t.slots[idx] = routeSlot{occupied: true, route: r}
}

// GetRoute returns the route at dest, or ok=false if dest is out of range
// or the slot is empty.
func (t *RoutingTable) GetRoute(dest uint8) (Route, bool) {
	idx := int(dest)
	if idx >= len(t.slots) || !t.slots[idx].occupied {
		return Route{}, false
	}
	return t.slots[idx].route, true
}

// DeleteRoute removes the entry at dest. If dest is the last slot the
// table shrinks; otherwise the slot is marked empty.
func (t *RoutingTable) DeleteRoute(dest uint8) {
	idx := int(dest)
	if idx >= len(t.slots) {
		return
	}
	t.slots[idx] = routeSlot{}
	t.shrink()
}

func (t *RoutingTable) shrink() {
	n := len(t.slots)
	for n > 0 && !t.slots[n-1].occupied {
		n--
	}
	t.slots = t.slots[:n]
}

// Clear removes all entries.
func (t *RoutingTable) Clear() {
	t.slots = nil
}

// Clone returns an independent copy of the table, used to snapshot the
// "base table" the manager restores to on reset().
func (t *RoutingTable) Clone() *RoutingTable {
	c := &RoutingTable{slots: make([]routeSlot, len(t.slots))}
	copy(c.slots, t.slots)
	return c
}

// Print renders a human-readable tabular view of the table to w, for use
// by diagnostics and the reference CLI's "rnpnode routes" subcommand.
func (t *RoutingTable) Print(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEST\tIFACE\tMETRIC\tADDRESS")
	for dest, slot := range t.slots {
		if !slot.occupied {
			continue
		}
		addr := "-"
		if slot.route.Address != nil {
			addr = *slot.route.Address
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", dest, slot.route.Iface, slot.route.Metric, addr)
	}
	tw.Flush()
}
