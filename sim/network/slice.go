// Models a slice request: a small virtual topology with per-node CPU/location
// demands and per-link bandwidth demands, plus arrival timing and lifecycle
// status.

package network

import (
	"errors"
	"fmt"
)

// SliceStatus is the lifecycle state of a slice request.
type SliceStatus string

const (
	StatusPending   SliceStatus = "pending"
	StatusActive    SliceStatus = "active"
	StatusCompleted SliceStatus = "completed"
	StatusRejected  SliceStatus = "rejected"
)

type sliceNode struct {
	cpuDemand    float64
	expected     *Point
	maxDeviation float64
}

type sliceLink struct {
	bandwidthDemand float64
}

// SliceNodeSpec describes one virtual node of a slice request.
// ExpectedLocation nil means the node carries no placement constraint.
type SliceNodeSpec struct {
	CPUDemand        float64
	ExpectedLocation *Point
	MaxDeviation     float64
}

// SliceRequest is a requested virtual network to be embedded into the
// substrate. Once admitted its departure time is fixed; the object itself is
// inert after departure and is retained only for metrics.
type SliceRequest struct {
	ID          string
	ArrivalTime float64
	Lifetime    float64

	topo   *Topology
	nodes  map[string]*sliceNode
	links  map[LinkKey]*sliceLink
	status SliceStatus
}

// NewSliceRequest returns an empty slice request arriving at arrival and
// living for lifetime time units.
func NewSliceRequest(id string, arrival, lifetime float64) *SliceRequest {
	return &SliceRequest{
		ID:          id,
		ArrivalTime: arrival,
		Lifetime:    lifetime,
		topo:        NewTopology(),
		nodes:       make(map[string]*sliceNode),
		links:       make(map[LinkKey]*sliceLink),
		status:      StatusPending,
	}
}

// DepartureTime is the virtual time at which an admitted slice releases its
// resources.
func (s *SliceRequest) DepartureTime() float64 { return s.ArrivalTime + s.Lifetime }

// AddNode inserts a virtual node. Re-adding an existing node is a no-op.
func (s *SliceRequest) AddNode(id string, spec SliceNodeSpec) {
	if _, ok := s.nodes[id]; ok {
		return
	}
	s.topo.AddNode(id)
	s.nodes[id] = &sliceNode{
		cpuDemand:    spec.CPUDemand,
		expected:     spec.ExpectedLocation,
		maxDeviation: spec.MaxDeviation,
	}
}

// AddLink inserts a virtual link demanding the given bandwidth. Both
// endpoints must already exist.
func (s *SliceRequest) AddLink(u, v string, bandwidthDemand float64) error {
	if err := s.topo.AddLink(u, v); err != nil {
		return err
	}
	key := NewLinkKey(u, v)
	if _, ok := s.links[key]; !ok {
		s.links[key] = &sliceLink{bandwidthDemand: bandwidthDemand}
	}
	return nil
}

// Topology exposes the virtual topology for adjacency queries.
func (s *SliceRequest) Topology() *Topology { return s.topo }

func (s *SliceRequest) Nodes() []string              { return s.topo.Nodes() }
func (s *SliceRequest) Links() []LinkKey             { return s.topo.Links() }
func (s *SliceRequest) Neighbors(id string) []string { return s.topo.Neighbors(id) }
func (s *SliceRequest) Degree(id string) int         { return s.topo.Degree(id) }
func (s *SliceRequest) NumNodes() int                { return s.topo.NumNodes() }
func (s *SliceRequest) NumLinks() int                { return s.topo.NumLinks() }
func (s *SliceRequest) HasNode(id string) bool       { return s.topo.HasNode(id) }

func (s *SliceRequest) ShortestPath(src, dst string) ([]string, bool) {
	return s.topo.ShortestPath(src, dst)
}

func (s *SliceRequest) HopDistances(src string) map[string]int {
	return s.topo.HopDistances(src)
}

// NodeResource returns the node's CPU demand: the slice side of the shared
// resource accessor.
func (s *SliceRequest) NodeResource(id string) float64 { return s.CPUDemand(id) }

// LinkResource returns the link's bandwidth demand.
func (s *SliceRequest) LinkResource(u, v string) float64 { return s.BandwidthDemand(u, v) }

// CPUDemand returns a node's CPU demand (0 for unknown nodes).
func (s *SliceRequest) CPUDemand(id string) float64 {
	if n, ok := s.nodes[id]; ok {
		return n.cpuDemand
	}
	return 0
}

// ExpectedLocation returns a node's expected deployment location. ok is false
// when the node is unknown or unconstrained.
func (s *SliceRequest) ExpectedLocation(id string) (Point, bool) {
	if n, ok := s.nodes[id]; ok && n.expected != nil {
		return *n.expected, true
	}
	return Point{}, false
}

// MaxDeviation returns a node's maximum allowed deployment deviation
// (0 for unknown nodes).
func (s *SliceRequest) MaxDeviation(id string) float64 {
	if n, ok := s.nodes[id]; ok {
		return n.maxDeviation
	}
	return 0
}

// BandwidthDemand returns a link's bandwidth demand (0 for unknown links).
func (s *SliceRequest) BandwidthDemand(u, v string) float64 {
	if l, ok := s.links[NewLinkKey(u, v)]; ok {
		return l.bandwidthDemand
	}
	return 0
}

// TotalCPUDemand sums CPU demand over all slice nodes.
func (s *SliceRequest) TotalCPUDemand() float64 {
	var total float64
	for _, n := range s.nodes {
		total += n.cpuDemand
	}
	return total
}

// TotalBandwidthDemand sums bandwidth demand over all slice links.
func (s *SliceRequest) TotalBandwidthDemand() float64 {
	var total float64
	for _, l := range s.links {
		total += l.bandwidthDemand
	}
	return total
}

// Revenue is the value delivered by admitting this slice: total CPU demand
// plus total bandwidth demand, at unit price.
func (s *SliceRequest) Revenue() float64 {
	return s.TotalCPUDemand() + s.TotalBandwidthDemand()
}

// Cost is the substrate resource consumed by an embedding: total CPU demand
// plus, for every slice link, its bandwidth demand weighted by the hop count
// of the physical path carrying it.
func (s *SliceRequest) Cost(linkPaths map[LinkKey][]string) float64 {
	cost := s.TotalCPUDemand()
	for key, path := range linkPaths {
		hops := len(path) - 1
		cost += float64(hops) * s.BandwidthDemand(key.A, key.B)
	}
	return cost
}

// Status returns the current lifecycle status.
func (s *SliceRequest) Status() SliceStatus { return s.status }

// SetStatus transitions the lifecycle status. Unknown statuses are rejected.
func (s *SliceRequest) SetStatus(status SliceStatus) error {
	switch status {
	case StatusPending, StatusActive, StatusCompleted, StatusRejected:
		s.status = status
		return nil
	default:
		return fmt.Errorf("slice %s: invalid status %q", s.ID, status)
	}
}

// Validate checks the caller contract for a well-formed request: at least one
// node, positive demands, non-negative deviations, positive lifetime,
// non-negative arrival time. Malformed requests must be rejected here, before
// they ever enter the event queue.
func (s *SliceRequest) Validate() error {
	var errs []error
	if s.NumNodes() == 0 {
		errs = append(errs, errors.New("slice request must have at least one node"))
	}
	for _, id := range s.Nodes() {
		n := s.nodes[id]
		if n.cpuDemand <= 0 {
			errs = append(errs, fmt.Errorf("node %s: non-positive CPU demand %v", id, n.cpuDemand))
		}
		if n.maxDeviation < 0 {
			errs = append(errs, fmt.Errorf("node %s: negative max deviation %v", id, n.maxDeviation))
		}
	}
	for _, key := range s.Links() {
		if bw := s.links[key].bandwidthDemand; bw <= 0 {
			errs = append(errs, fmt.Errorf("link %s-%s: non-positive bandwidth demand %v", key.A, key.B, bw))
		}
	}
	if s.Lifetime <= 0 {
		errs = append(errs, fmt.Errorf("non-positive lifetime %v", s.Lifetime))
	}
	if s.ArrivalTime < 0 {
		errs = append(errs, fmt.Errorf("negative arrival time %v", s.ArrivalTime))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("slice %s: %w", s.ID, errors.Join(errs...))
}

// TopologyStats summarizes a slice's shape and demands for logging.
type TopologyStats struct {
	NumNodes             int
	NumLinks             int
	TotalCPUDemand       float64
	TotalBandwidthDemand float64
	Revenue              float64
}

// Stats returns the slice's topology summary.
func (s *SliceRequest) Stats() TopologyStats {
	return TopologyStats{
		NumNodes:             s.NumNodes(),
		NumLinks:             s.NumLinks(),
		TotalCPUDemand:       s.TotalCPUDemand(),
		TotalBandwidthDemand: s.TotalBandwidthDemand(),
		Revenue:              s.Revenue(),
	}
}
