// Models the physical substrate: nodes with CPU capacity and a 2D location,
// links with bandwidth capacity, and the per-slice allocation ledger that
// makes every allocation exactly reversible.

package network

import (
	"math"
	"sort"
)

// Point is a 2D location in the substrate's coordinate plane.
type Point struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance to q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

type physicalNode struct {
	cpuInitial   float64
	cpuAvailable float64
	cpuUsed      float64
	location     Point
}

type physicalLink struct {
	bwInitial   float64
	bwAvailable float64
	bwUsed      float64
}

// sliceAllocation records exactly what one slice currently holds, so that
// rollback and departure can release it without recomputation.
type sliceAllocation struct {
	nodes map[string]float64
	links map[LinkKey]float64
}

// PhysicalNetwork is the shared substrate. All resource mutation goes through
// the Allocate*/Deallocate* methods, which keep the invariant
// available + used == initial on every node and link and maintain the
// per-slice ledger. It is not safe for concurrent use; the simulator owns it.
type PhysicalNetwork struct {
	topo   *Topology
	nodes  map[string]*physicalNode
	links  map[LinkKey]*physicalLink
	ledger map[string]*sliceAllocation
}

// NewPhysicalNetwork returns an empty substrate network.
func NewPhysicalNetwork() *PhysicalNetwork {
	return &PhysicalNetwork{
		topo:   NewTopology(),
		nodes:  make(map[string]*physicalNode),
		links:  make(map[LinkKey]*physicalLink),
		ledger: make(map[string]*sliceAllocation),
	}
}

// AddNode inserts a substrate node with the given CPU capacity and location.
// Re-adding an existing node is a no-op.
func (pn *PhysicalNetwork) AddNode(id string, cpuCapacity float64, loc Point) {
	if _, ok := pn.nodes[id]; ok {
		return
	}
	pn.topo.AddNode(id)
	pn.nodes[id] = &physicalNode{
		cpuInitial:   cpuCapacity,
		cpuAvailable: cpuCapacity,
		location:     loc,
	}
}

// AddLink inserts a substrate link with the given bandwidth capacity.
// Both endpoints must already exist.
func (pn *PhysicalNetwork) AddLink(u, v string, bandwidth float64) error {
	if err := pn.topo.AddLink(u, v); err != nil {
		return err
	}
	key := NewLinkKey(u, v)
	if _, ok := pn.links[key]; !ok {
		pn.links[key] = &physicalLink{bwInitial: bandwidth, bwAvailable: bandwidth}
	}
	return nil
}

// Topology exposes the underlying graph for path queries.
func (pn *PhysicalNetwork) Topology() *Topology { return pn.topo }

// Graph capability delegates, so PhysicalNetwork satisfies Resourcer.

func (pn *PhysicalNetwork) Nodes() []string              { return pn.topo.Nodes() }
func (pn *PhysicalNetwork) Links() []LinkKey             { return pn.topo.Links() }
func (pn *PhysicalNetwork) Neighbors(id string) []string { return pn.topo.Neighbors(id) }
func (pn *PhysicalNetwork) Degree(id string) int         { return pn.topo.Degree(id) }
func (pn *PhysicalNetwork) NumNodes() int                { return pn.topo.NumNodes() }
func (pn *PhysicalNetwork) NumLinks() int                { return pn.topo.NumLinks() }
func (pn *PhysicalNetwork) HasNode(id string) bool       { return pn.topo.HasNode(id) }
func (pn *PhysicalNetwork) HasLink(u, v string) bool     { return pn.topo.HasLink(u, v) }

func (pn *PhysicalNetwork) ShortestPath(src, dst string) ([]string, bool) {
	return pn.topo.ShortestPath(src, dst)
}

func (pn *PhysicalNetwork) HopDistances(src string) map[string]int {
	return pn.topo.HopDistances(src)
}

// NodeResource returns the node's available CPU: the substrate side of the
// shared resource accessor. Unknown nodes read as 0.
func (pn *PhysicalNetwork) NodeResource(id string) float64 { return pn.CPUAvailable(id) }

// LinkResource returns the link's available bandwidth. Unknown links read as 0.
func (pn *PhysicalNetwork) LinkResource(u, v string) float64 { return pn.BandwidthAvailable(u, v) }

// CPUInitial returns a node's initial CPU capacity (0 for unknown nodes).
func (pn *PhysicalNetwork) CPUInitial(id string) float64 {
	if n, ok := pn.nodes[id]; ok {
		return n.cpuInitial
	}
	return 0
}

// CPUAvailable returns a node's currently available CPU (0 for unknown nodes).
func (pn *PhysicalNetwork) CPUAvailable(id string) float64 {
	if n, ok := pn.nodes[id]; ok {
		return n.cpuAvailable
	}
	return 0
}

// CPUUsed returns a node's currently used CPU (0 for unknown nodes).
func (pn *PhysicalNetwork) CPUUsed(id string) float64 {
	if n, ok := pn.nodes[id]; ok {
		return n.cpuUsed
	}
	return 0
}

// Location returns a node's coordinates. ok is false for unknown nodes.
func (pn *PhysicalNetwork) Location(id string) (Point, bool) {
	if n, ok := pn.nodes[id]; ok {
		return n.location, true
	}
	return Point{}, false
}

// BandwidthInitial returns a link's initial bandwidth (0 for unknown links).
func (pn *PhysicalNetwork) BandwidthInitial(u, v string) float64 {
	if l, ok := pn.links[NewLinkKey(u, v)]; ok {
		return l.bwInitial
	}
	return 0
}

// BandwidthAvailable returns a link's available bandwidth (0 for unknown links).
func (pn *PhysicalNetwork) BandwidthAvailable(u, v string) float64 {
	if l, ok := pn.links[NewLinkKey(u, v)]; ok {
		return l.bwAvailable
	}
	return 0
}

// BandwidthUsed returns a link's used bandwidth (0 for unknown links).
func (pn *PhysicalNetwork) BandwidthUsed(u, v string) float64 {
	if l, ok := pn.links[NewLinkKey(u, v)]; ok {
		return l.bwUsed
	}
	return 0
}

// EuclideanDistance returns the distance between two substrate nodes, or +Inf
// if either is unknown.
func (pn *PhysicalNetwork) EuclideanDistance(a, b string) float64 {
	la, okA := pn.Location(a)
	lb, okB := pn.Location(b)
	if !okA || !okB {
		return math.Inf(1)
	}
	return la.Distance(lb)
}

// DistanceToLocation returns the distance from a substrate node to an
// arbitrary location, or +Inf if the node is unknown.
func (pn *PhysicalNetwork) DistanceToLocation(id string, loc Point) float64 {
	l, ok := pn.Location(id)
	if !ok {
		return math.Inf(1)
	}
	return l.Distance(loc)
}

// AllocateNode reserves amount CPU on a node for sliceID. It fails without
// mutation when the node is unknown or the available CPU is insufficient.
func (pn *PhysicalNetwork) AllocateNode(id string, amount float64, sliceID string) bool {
	n, ok := pn.nodes[id]
	if !ok || n.cpuAvailable < amount {
		return false
	}
	n.cpuAvailable -= amount
	n.cpuUsed += amount
	pn.allocation(sliceID).nodes[id] += amount
	return true
}

// AllocateLink reserves amount bandwidth on the link (u,v) for sliceID. It
// fails without mutation when the link is unknown or the available bandwidth
// is insufficient.
func (pn *PhysicalNetwork) AllocateLink(u, v string, amount float64, sliceID string) bool {
	l, ok := pn.links[NewLinkKey(u, v)]
	if !ok || l.bwAvailable < amount {
		return false
	}
	l.bwAvailable -= amount
	l.bwUsed += amount
	pn.allocation(sliceID).links[NewLinkKey(u, v)] += amount
	return true
}

// AllocatePath reserves amount bandwidth on every link along path for
// sliceID. Every link is pre-checked before anything is allocated, so a
// failed call leaves no trace. The per-link rollback below covers the case
// of an allocation failing after its pre-check passed, which a single-writer
// caller never triggers.
func (pn *PhysicalNetwork) AllocatePath(path []string, amount float64, sliceID string) bool {
	for i := 0; i+1 < len(path); i++ {
		if pn.BandwidthAvailable(path[i], path[i+1]) < amount {
			return false
		}
	}
	for i := 0; i+1 < len(path); i++ {
		if !pn.AllocateLink(path[i], path[i+1], amount, sliceID) {
			for j := i - 1; j >= 0; j-- {
				pn.DeallocateLink(path[j], path[j+1], amount, sliceID)
			}
			return false
		}
	}
	return true
}

// DeallocateNode releases amount CPU on a node and drops the node's ledger
// entry for sliceID. Used CPU is clamped at zero.
func (pn *PhysicalNetwork) DeallocateNode(id string, amount float64, sliceID string) {
	n, ok := pn.nodes[id]
	if !ok {
		return
	}
	n.cpuAvailable += amount
	n.cpuUsed = math.Max(0, n.cpuUsed-amount)
	if alloc, ok := pn.ledger[sliceID]; ok {
		delete(alloc.nodes, id)
	}
}

// DeallocateLink releases amount bandwidth on the link (u,v) and decrements
// the slice's ledger entry, dropping it once nothing remains.
func (pn *PhysicalNetwork) DeallocateLink(u, v string, amount float64, sliceID string) {
	key := NewLinkKey(u, v)
	l, ok := pn.links[key]
	if !ok {
		return
	}
	l.bwAvailable += amount
	l.bwUsed = math.Max(0, l.bwUsed-amount)
	if alloc, ok := pn.ledger[sliceID]; ok {
		if remaining, held := alloc.links[key]; held {
			remaining -= amount
			if remaining <= 0 {
				delete(alloc.links, key)
			} else {
				alloc.links[key] = remaining
			}
		}
	}
}

// DeallocateSlice releases every resource the ledger attributes to sliceID
// and removes the ledger entry. Unknown slice IDs are a no-op.
func (pn *PhysicalNetwork) DeallocateSlice(sliceID string) {
	alloc, ok := pn.ledger[sliceID]
	if !ok {
		return
	}
	nodeIDs := make([]string, 0, len(alloc.nodes))
	for id := range alloc.nodes {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)
	for _, id := range nodeIDs {
		pn.DeallocateNode(id, alloc.nodes[id], sliceID)
	}
	linkKeys := make([]LinkKey, 0, len(alloc.links))
	for k := range alloc.links {
		linkKeys = append(linkKeys, k)
	}
	sort.Slice(linkKeys, func(i, j int) bool {
		if linkKeys[i].A != linkKeys[j].A {
			return linkKeys[i].A < linkKeys[j].A
		}
		return linkKeys[i].B < linkKeys[j].B
	})
	for _, k := range linkKeys {
		pn.DeallocateLink(k.A, k.B, alloc.links[k], sliceID)
	}
	delete(pn.ledger, sliceID)
}

// ActiveSlices returns the IDs of all slices currently holding resources,
// in lexicographic order.
func (pn *PhysicalNetwork) ActiveSlices() []string {
	out := make([]string, 0, len(pn.ledger))
	for id := range pn.ledger {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SliceAllocation returns copies of the node and link amounts currently held
// by sliceID. ok is false when the slice holds nothing.
func (pn *PhysicalNetwork) SliceAllocation(sliceID string) (nodes map[string]float64, links map[LinkKey]float64, ok bool) {
	alloc, held := pn.ledger[sliceID]
	if !held {
		return nil, nil, false
	}
	nodes = make(map[string]float64, len(alloc.nodes))
	for id, amt := range alloc.nodes {
		nodes[id] = amt
	}
	links = make(map[LinkKey]float64, len(alloc.links))
	for k, amt := range alloc.links {
		links[k] = amt
	}
	return nodes, links, true
}

// Utilization aggregates network-wide resource usage.
type Utilization struct {
	CPUPercent       float64 `yaml:"cpu_percent" json:"cpu_percent"`
	BandwidthPercent float64 `yaml:"bandwidth_percent" json:"bandwidth_percent"`
	CPUInitial       float64 `yaml:"cpu_initial" json:"cpu_initial"`
	CPUUsed          float64 `yaml:"cpu_used" json:"cpu_used"`
	BandwidthInitial float64 `yaml:"bandwidth_initial" json:"bandwidth_initial"`
	BandwidthUsed    float64 `yaml:"bandwidth_used" json:"bandwidth_used"`
}

// Utilization returns aggregate used/initial percentages for CPU and
// bandwidth across the whole network. Observational only.
func (pn *PhysicalNetwork) Utilization() Utilization {
	var u Utilization
	for _, n := range pn.nodes {
		u.CPUInitial += n.cpuInitial
		u.CPUUsed += n.cpuUsed
	}
	for _, l := range pn.links {
		u.BandwidthInitial += l.bwInitial
		u.BandwidthUsed += l.bwUsed
	}
	if u.CPUInitial > 0 {
		u.CPUPercent = u.CPUUsed / u.CPUInitial * 100
	}
	if u.BandwidthInitial > 0 {
		u.BandwidthPercent = u.BandwidthUsed / u.BandwidthInitial * 100
	}
	return u
}

// Reset releases every slice and restores all counters to their initial
// values.
func (pn *PhysicalNetwork) Reset() {
	for _, id := range pn.ActiveSlices() {
		pn.DeallocateSlice(id)
	}
	for _, n := range pn.nodes {
		n.cpuAvailable = n.cpuInitial
		n.cpuUsed = 0
	}
	for _, l := range pn.links {
		l.bwAvailable = l.bwInitial
		l.bwUsed = 0
	}
}

func (pn *PhysicalNetwork) allocation(sliceID string) *sliceAllocation {
	alloc, ok := pn.ledger[sliceID]
	if !ok {
		alloc = &sliceAllocation{
			nodes: make(map[string]float64),
			links: make(map[LinkKey]float64),
		}
		pn.ledger[sliceID] = alloc
	}
	return alloc
}
