// Pure per-node attribute metrics over a graph snapshot. These are the
// inputs to node ranking: two resource metrics (local, global) and two
// topology metrics (degree centrality, closeness centrality).

package ranking

import (
	"github.com/slice-sim/slice-sim/sim/network"
)

// LocalResource is the node's resource value multiplied by the summed
// resource of its adjacent links. A large value means the node is both
// well-provisioned and well-connected locally.
func LocalResource(g network.Resourcer, id string) float64 {
	var bandwidth float64
	for _, nbr := range g.Neighbors(id) {
		bandwidth += g.LinkResource(id, nbr)
	}
	return g.NodeResource(id) * bandwidth
}

// GlobalResource averages, over every other reachable node, the bottleneck
// link resource plus the bottleneck node resource along the shortest path.
// Unreachable targets contribute nothing; a graph with at most one node
// scores 0.
func GlobalResource(g network.Resourcer, id string) float64 {
	nodes := g.Nodes()
	if len(nodes) <= 1 {
		return 0
	}
	var total float64
	for _, target := range nodes {
		if target == id {
			continue
		}
		path, ok := g.ShortestPath(id, target)
		if !ok || len(path) < 2 {
			continue
		}
		minBW := g.LinkResource(path[0], path[1])
		for i := 1; i+1 < len(path); i++ {
			if bw := g.LinkResource(path[i], path[i+1]); bw < minBW {
				minBW = bw
			}
		}
		minCPU := g.NodeResource(path[0])
		for _, n := range path[1:] {
			if cpu := g.NodeResource(n); cpu < minCPU {
				minCPU = cpu
			}
		}
		total += minBW + minCPU
	}
	return total / float64(len(nodes)-1)
}

// DegreeCentrality is the node's degree normalized by |V|-1.
func DegreeCentrality(g network.Resourcer, id string) float64 {
	n := g.NumNodes()
	if n <= 1 {
		return 0
	}
	return float64(g.Degree(id)) / float64(n-1)
}

// ClosenessCentrality is (|V|-1) divided by the summed hop distance to every
// reachable node. Isolated nodes and singleton graphs score 0.
func ClosenessCentrality(g network.Resourcer, id string) float64 {
	n := g.NumNodes()
	if n <= 1 {
		return 0
	}
	var total float64
	for target, hops := range g.HopDistances(id) {
		if target == id {
			continue
		}
		total += float64(hops)
	}
	if total == 0 {
		return 0
	}
	return float64(n-1) / total
}
