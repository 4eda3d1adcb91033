// Slice node provisioning: place every slice node on a distinct substrate
// node in ranked order, committing CPU as it goes and unwinding completely on
// any failure.

package provision

import (
	"github.com/sirupsen/logrus"

	"github.com/slice-sim/slice-sim/sim/network"
	"github.com/slice-sim/slice-sim/sim/ranking"
)

// provisionNodes maps every node of the slice request onto a distinct
// substrate node. Slice nodes are processed in combined-score order (hardest
// first); for each, feasible candidates are ranked by score over the
// cooperative provisioning coefficient and the best one is committed. Any
// failure deallocates everything committed so far and returns ok=false: no
// partial mapping ever escapes.
func provisionNodes(req *network.SliceRequest, pn *network.PhysicalNetwork, cfg ranking.Config) (map[string]string, bool) {
	rankedSliceNodes := ranking.RankSliceNodes(req, cfg)

	// One score cache per provisioning attempt. Substrate scores drift as
	// CPU is committed below, matching the ranking pass the scores were
	// computed for.
	cache := ranking.NewScoreCache()

	mapping := make(map[string]string, req.NumNodes())
	used := make(map[string]bool, req.NumNodes())
	// committed records placement order so rollback can replay the inverse
	// operations.
	committed := make([]string, 0, req.NumNodes())

	rollback := func() {
		for _, sliceNode := range committed {
			pn.DeallocateNode(mapping[sliceNode], req.CPUDemand(sliceNode), req.ID)
		}
	}

	for _, sn := range rankedSliceNodes {
		candidates := ranking.CandidateNodes(req, sn.ID, pn)
		if len(candidates) == 0 {
			logrus.Debugf("slice %s: no feasible substrate node for %s", req.ID, sn.ID)
			rollback()
			return nil, false
		}

		// One-to-one constraint: a substrate node hosts at most one node of
		// this slice.
		free := candidates[:0:0]
		for _, c := range candidates {
			if !used[c] {
				free = append(free, c)
			}
		}
		if len(free) == 0 {
			logrus.Debugf("slice %s: all candidates for %s already host this slice", req.ID, sn.ID)
			rollback()
			return nil, false
		}

		mappedNeighbors := mappedNeighborHosts(req, sn.ID, mapping)
		rankedCandidates := ranking.RankCandidates(pn, free, mappedNeighbors, cfg, cache)
		if len(rankedCandidates) == 0 {
			rollback()
			return nil, false
		}

		best := rankedCandidates[0].ID
		if !pn.AllocateNode(best, req.CPUDemand(sn.ID), req.ID) {
			// Candidate filtering already checked capacity; reaching this
			// means the substrate mutated underneath us.
			logrus.Warnf("slice %s: allocation on %s failed after passing candidate check", req.ID, best)
			rollback()
			return nil, false
		}
		mapping[sn.ID] = best
		used[best] = true
		committed = append(committed, sn.ID)
	}

	return mapping, true
}

// mappedNeighborHosts returns the substrate nodes hosting the already-placed
// neighbors of a slice node, in the slice graph's adjacency order.
func mappedNeighborHosts(req *network.SliceRequest, sliceNodeID string, mapping map[string]string) []string {
	var hosts []string
	for _, nbr := range req.Neighbors(sliceNodeID) {
		if host, ok := mapping[nbr]; ok {
			hosts = append(hosts, host)
		}
	}
	return hosts
}
