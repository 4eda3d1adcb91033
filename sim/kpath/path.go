package kpath

import (
	"strings"

	"github.com/slice-sim/slice-sim/sim/network"
)

// Path is an ordered, loopless sequence of substrate nodes. Cost is the hop
// count at discovery; Bandwidth is the bottleneck available bandwidth along
// its links at discovery time. Paths are transient: produced here, consumed
// immediately by link provisioning.
type Path struct {
	Nodes     []string
	Cost      float64
	Bandwidth float64
}

// HopCount is the number of links in the path.
func (p Path) HopCount() int {
	if len(p.Nodes) == 0 {
		return 0
	}
	return len(p.Nodes) - 1
}

// Links returns the canonical link keys along the path, in traversal order.
func (p Path) Links() []network.LinkKey {
	if len(p.Nodes) < 2 {
		return nil
	}
	out := make([]network.LinkKey, 0, len(p.Nodes)-1)
	for i := 0; i+1 < len(p.Nodes); i++ {
		out = append(out, network.NewLinkKey(p.Nodes[i], p.Nodes[i+1]))
	}
	return out
}

func (p Path) String() string {
	return strings.Join(p.Nodes, " -> ")
}

// key is the dedup identity of a path: its exact node sequence.
func (p Path) key() string {
	return strings.Join(p.Nodes, "\x00")
}
