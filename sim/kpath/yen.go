// Yen's algorithm for k shortest loopless paths, filtered by a bottleneck
// bandwidth floor. Runs in O(k*|V|*(|E| + |V| log |V|)).
//
// Reference: Yen, J.Y. (1971). Finding the k shortest loopless paths in a
// network. Management Science 17(11).

package kpath

import (
	"math"
	"sort"

	"github.com/slice-sim/slice-sim/sim/network"
)

// KShortest returns up to k loopless paths from source to target whose
// bottleneck available bandwidth is at least minBandwidth, ordered by
// ascending hop count. It returns nil when source equals target, when either
// endpoint is missing, or when no feasible path exists. Bandwidth is read
// from the substrate's availability at call time.
func KShortest(pn *network.PhysicalNetwork, source, target string, k int, minBandwidth float64) []Path {
	if k <= 0 || source == target {
		return nil
	}
	topo := pn.Topology()
	if !topo.HasNode(source) || !topo.HasNode(target) {
		return nil
	}

	first, ok := shortest(pn, source, target, nil, nil)
	if !ok || first.Bandwidth < minBandwidth {
		// No path, or the unconstrained shortest path already misses the
		// bandwidth floor: no accepted path to spur from.
		return nil
	}

	// accepted is Yen's A list; pending is the B candidate set. Every entry
	// in either has passed the bandwidth floor.
	accepted := []Path{first}
	var pending []Path
	seen := map[string]bool{first.key(): true}

	for len(accepted) < k {
		prev := accepted[len(accepted)-1]

		for i := 0; i+1 < len(prev.Nodes); i++ {
			spur := prev.Nodes[i]
			root := prev.Nodes[:i+1]

			// Mask every edge leaving the spur that an accepted path sharing
			// this root already uses, and every root node except the spur.
			exLinks := make(map[network.LinkKey]bool)
			for _, p := range accepted {
				if len(p.Nodes) > i+1 && sameRoot(p.Nodes, root) {
					exLinks[network.NewLinkKey(spur, p.Nodes[i+1])] = true
				}
			}
			exNodes := make(map[string]bool)
			for _, n := range root[:len(root)-1] {
				exNodes[n] = true
			}

			spurPath, ok := shortest(pn, spur, target, exNodes, exLinks)
			if !ok {
				continue
			}

			total := make([]string, 0, i+len(spurPath.Nodes))
			total = append(total, root[:len(root)-1]...)
			total = append(total, spurPath.Nodes...)
			cand := Path{
				Nodes:     total,
				Cost:      float64(len(total) - 1),
				Bandwidth: bottleneck(pn, total),
			}
			if cand.Bandwidth < minBandwidth {
				continue
			}
			if seen[cand.key()] {
				continue
			}
			seen[cand.key()] = true
			pending = append(pending, cand)
		}

		if len(pending) == 0 {
			break
		}
		// Promote the cheapest candidate; equal costs order by node
		// sequence so promotion is deterministic.
		sort.Slice(pending, func(a, b int) bool {
			if pending[a].Cost != pending[b].Cost {
				return pending[a].Cost < pending[b].Cost
			}
			return pending[a].key() < pending[b].key()
		})
		accepted = append(accepted, pending[0])
		pending = pending[1:]
	}

	return accepted
}

// Shortest returns the single shortest feasible path, if any.
func Shortest(pn *network.PhysicalNetwork, source, target string, minBandwidth float64) (Path, bool) {
	paths := KShortest(pn, source, target, 1, minBandwidth)
	if len(paths) == 0 {
		return Path{}, false
	}
	return paths[0], true
}

func shortest(pn *network.PhysicalNetwork, src, dst string, exNodes map[string]bool, exLinks map[network.LinkKey]bool) (Path, bool) {
	nodes, ok := pn.Topology().ShortestPathExcluding(src, dst, exNodes, exLinks)
	if !ok {
		return Path{}, false
	}
	return Path{
		Nodes:     nodes,
		Cost:      float64(len(nodes) - 1),
		Bandwidth: bottleneck(pn, nodes),
	}, true
}

// bottleneck is the minimum available bandwidth along the path's links.
func bottleneck(pn *network.PhysicalNetwork, nodes []string) float64 {
	if len(nodes) < 2 {
		return math.Inf(1)
	}
	min := math.Inf(1)
	for i := 0; i+1 < len(nodes); i++ {
		if bw := pn.BandwidthAvailable(nodes[i], nodes[i+1]); bw < min {
			min = bw
		}
	}
	return min
}

func sameRoot(nodes, root []string) bool {
	if len(nodes) < len(root) {
		return false
	}
	for i := range root {
		if nodes[i] != root[i] {
			return false
		}
	}
	return true
}
