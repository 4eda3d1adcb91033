package provision

import (
	"fmt"

	"github.com/slice-sim/slice-sim/sim/kpath"
	"github.com/slice-sim/slice-sim/sim/network"
)

// Result is the outcome of one provisioning attempt. On success the node
// mapping is injective over exactly the slice's node set and the link mapping
// covers exactly the slice's link set; on failure both are nil and
// FailureReason says why.
type Result struct {
	Success       bool
	NodeMapping   map[string]string
	LinkMapping   map[network.LinkKey]kpath.Path
	FailureReason string
}

// LinkPaths returns the link mapping as raw node sequences, the shape
// consumed by cost computation and visualization callers.
func (r Result) LinkPaths() map[network.LinkKey][]string {
	out := make(map[network.LinkKey][]string, len(r.LinkMapping))
	for key, p := range r.LinkMapping {
		out[key] = p.Nodes
	}
	return out
}

func (r Result) String() string {
	if r.Success {
		return fmt.Sprintf("provisioned (nodes=%d links=%d)", len(r.NodeMapping), len(r.LinkMapping))
	}
	return fmt.Sprintf("rejected: %s", r.FailureReason)
}

// Stats summarizes a successful provisioning for reporting.
type Stats struct {
	Revenue          float64
	Cost             float64
	RevenueCostRatio float64
	TotalHops        int
	AvgPathLength    float64
}

// ResultStats computes revenue, cost and path statistics for a result.
// A failed result yields the zero Stats.
func ResultStats(req *network.SliceRequest, r Result) Stats {
	if !r.Success {
		return Stats{}
	}
	s := Stats{Revenue: req.Revenue(), Cost: req.Cost(r.LinkPaths())}
	if s.Cost > 0 {
		s.RevenueCostRatio = s.Revenue / s.Cost
	}
	for _, p := range r.LinkMapping {
		s.TotalHops += p.HopCount()
	}
	if len(r.LinkMapping) > 0 {
		s.AvgPathLength = float64(s.TotalHops) / float64(len(r.LinkMapping))
	}
	return s
}
