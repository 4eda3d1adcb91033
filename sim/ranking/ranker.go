// Node ranking for provisioning: scores slice nodes to decide placement
// order, filters feasible substrate candidates, and ranks candidates with the
// cooperative provisioning coefficient.

package ranking

import (
	"sort"

	"github.com/slice-sim/slice-sim/sim/network"
)

// unreachablePenalty is the hop-count surrogate used when a candidate cannot
// reach an already-mapped neighbor at all. It is chosen to dominate any
// realistic substrate diameter.
const unreachablePenalty = 1000

// Config carries the ranking weights. Alpha weighs the local term
// (LR x DC), Beta the global term (GR x CC); Epsilon keeps the cooperative
// divisor positive.
type Config struct {
	Alpha   float64
	Beta    float64
	Epsilon float64
}

// DefaultConfig returns the standard weights: alpha = beta = 0.5,
// epsilon = 1e-5.
func DefaultConfig() Config {
	return Config{Alpha: 0.5, Beta: 0.5, Epsilon: 1e-5}
}

// ScoredNode pairs a node identifier with its ranking score.
type ScoredNode struct {
	ID    string
	Score float64
}

// CombinedScore is the ranking score of one node:
// alpha*LR*DC + beta*GR*CC.
func CombinedScore(g network.Resourcer, id string, cfg Config) float64 {
	return cfg.Alpha*LocalResource(g, id)*DegreeCentrality(g, id) +
		cfg.Beta*GlobalResource(g, id)*ClosenessCentrality(g, id)
}

// ScoreCache memoizes combined scores for a single graph snapshot. It is
// created by the caller for one ranking pass and discarded with it; reusing
// a cache across resource mutations would serve stale scores.
type ScoreCache struct {
	scores map[string]float64
}

// NewScoreCache returns an empty cache for one ranking pass.
func NewScoreCache() *ScoreCache {
	return &ScoreCache{scores: make(map[string]float64)}
}

// Score returns the memoized combined score of a node, computing it on first
// use.
func (c *ScoreCache) Score(g network.Resourcer, id string, cfg Config) float64 {
	if s, ok := c.scores[id]; ok {
		return s
	}
	s := CombinedScore(g, id, cfg)
	c.scores[id] = s
	return s
}

// RankSliceNodes scores every node of the slice request against the slice
// graph itself and orders them by score descending. Higher-scoring nodes are
// assumed harder to place and are provisioned first. Ties order
// lexicographically by identifier.
func RankSliceNodes(req *network.SliceRequest, cfg Config) []ScoredNode {
	out := make([]ScoredNode, 0, req.NumNodes())
	for _, id := range req.Nodes() {
		out = append(out, ScoredNode{ID: id, Score: CombinedScore(req, id, cfg)})
	}
	sortScoredDesc(out)
	return out
}

// CandidateNodes returns the substrate nodes that can host the given slice
// node: enough available CPU, and within the slice node's allowed deviation
// from its expected location. A slice node without an expected location is
// unconstrained in space.
func CandidateNodes(req *network.SliceRequest, sliceNodeID string, pn *network.PhysicalNetwork) []string {
	demand := req.CPUDemand(sliceNodeID)
	expected, constrained := req.ExpectedLocation(sliceNodeID)
	maxDev := req.MaxDeviation(sliceNodeID)

	var candidates []string
	for _, id := range pn.Nodes() {
		if pn.CPUAvailable(id) < demand {
			continue
		}
		if constrained && pn.DistanceToLocation(id, expected) > maxDev {
			continue
		}
		candidates = append(candidates, id)
	}
	return candidates
}

// CooperationCoefficient is the cooperative provisioning coefficient H: the
// summed hop distance from a candidate substrate node to every substrate node
// already hosting a neighbor of the slice node being placed. Unreachable
// neighbors add a fixed large penalty. Smaller H means a more compact
// placement.
func CooperationCoefficient(pn *network.PhysicalNetwork, candidate string, mappedNeighbors []string) int {
	if len(mappedNeighbors) == 0 {
		return 0
	}
	dists := pn.HopDistances(candidate)
	total := 0
	for _, nbr := range mappedNeighbors {
		if hops, ok := dists[nbr]; ok {
			total += hops
		} else {
			total += unreachablePenalty
		}
	}
	return total
}

// RankCandidates scores candidate substrate nodes as
// CombinedScore / (H + epsilon) and orders them descending, so proximity to
// already-placed neighbors is rewarded. The cache must be scoped to one
// provisioning pass over an unmutated substrate. Ties order lexicographically.
func RankCandidates(pn *network.PhysicalNetwork, candidates, mappedNeighbors []string, cfg Config, cache *ScoreCache) []ScoredNode {
	out := make([]ScoredNode, 0, len(candidates))
	for _, id := range candidates {
		base := cache.Score(pn, id, cfg)
		h := CooperationCoefficient(pn, id, mappedNeighbors)
		out = append(out, ScoredNode{ID: id, Score: base / (float64(h) + cfg.Epsilon)})
	}
	sortScoredDesc(out)
	return out
}

func sortScoredDesc(nodes []ScoredNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Score != nodes[j].Score {
			return nodes[i].Score > nodes[j].Score
		}
		return nodes[i].ID < nodes[j].ID
	})
}
