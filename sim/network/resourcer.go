package network

// Resourcer is the shared accessor capability over an attributed graph. The
// physical network exposes available capacity through it, a slice request
// exposes demand, so ranking metrics read both graph kinds uniformly without
// a type switch.
type Resourcer interface {
	Nodes() []string
	Neighbors(id string) []string
	Degree(id string) int
	NumNodes() int
	ShortestPath(src, dst string) ([]string, bool)
	HopDistances(src string) map[string]int

	// NodeResource is available CPU for a substrate node, CPU demand for a
	// slice node.
	NodeResource(id string) float64
	// LinkResource is available bandwidth for a substrate link, bandwidth
	// demand for a slice link.
	LinkResource(u, v string) float64
}

var (
	_ Resourcer = (*PhysicalNetwork)(nil)
	_ Resourcer = (*SliceRequest)(nil)
)
