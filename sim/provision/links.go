// Slice link provisioning: route every slice link over a feasible substrate
// path, hardest (largest demand) first, committing bandwidth transactionally.

package provision

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/slice-sim/slice-sim/sim/kpath"
	"github.com/slice-sim/slice-sim/sim/network"
)

// provisionLinks routes every link of the slice request over the substrate,
// given a complete node mapping. For each link (largest bandwidth demand
// first) it asks for k candidate paths meeting the demand, selects one by the
// configured strategy, and allocates the demand along it. Any failure
// deallocates every path committed so far in this call and returns ok=false.
func provisionLinks(req *network.SliceRequest, pn *network.PhysicalNetwork, nodeMapping map[string]string, k int, useMinMax bool) (map[network.LinkKey]kpath.Path, bool) {
	mapping := make(map[network.LinkKey]kpath.Path, req.NumLinks())
	committed := make([]network.LinkKey, 0, req.NumLinks())

	rollback := func() {
		for _, key := range committed {
			demand := req.BandwidthDemand(key.A, key.B)
			nodes := mapping[key].Nodes
			for i := 0; i+1 < len(nodes); i++ {
				pn.DeallocateLink(nodes[i], nodes[i+1], demand, req.ID)
			}
		}
	}

	for _, key := range rankLinksByDemand(req) {
		demand := req.BandwidthDemand(key.A, key.B)

		src, okSrc := nodeMapping[key.A]
		dst, okDst := nodeMapping[key.B]
		if !okSrc || !okDst {
			// Node provisioning returned an incomplete mapping; nothing
			// sensible to route.
			logrus.Warnf("slice %s: link %s-%s has unmapped endpoint", req.ID, key.A, key.B)
			rollback()
			return nil, false
		}

		candidates := kpath.KShortest(pn, src, dst, k, demand)
		if len(candidates) == 0 {
			logrus.Debugf("slice %s: no feasible path for link %s-%s (demand %v)", req.ID, key.A, key.B, demand)
			rollback()
			return nil, false
		}

		var chosen kpath.Path
		if useMinMax {
			chosen = selectMinMaxBWUtilHops(candidates, pn)
		} else {
			chosen = candidates[0]
		}

		if !pn.AllocatePath(chosen.Nodes, demand, req.ID) {
			logrus.Warnf("slice %s: path allocation failed for link %s-%s", req.ID, key.A, key.B)
			rollback()
			return nil, false
		}
		mapping[key] = chosen
		committed = append(committed, key)
	}

	return mapping, true
}

// rankLinksByDemand orders the slice's links by bandwidth demand descending;
// larger demands are harder to route and go first. Ties order by canonical
// link key.
func rankLinksByDemand(req *network.SliceRequest) []network.LinkKey {
	links := req.Links()
	sort.SliceStable(links, func(i, j int) bool {
		di := req.BandwidthDemand(links[i].A, links[i].B)
		dj := req.BandwidthDemand(links[j].A, links[j].B)
		if di != dj {
			return di > dj
		}
		if links[i].A != links[j].A {
			return links[i].A < links[j].A
		}
		return links[i].B < links[j].B
	})
	return links
}

// selectMinMaxBWUtilHops picks the candidate with the smallest Gamma value:
// the maximum link utilization along the path times its hop count. This
// jointly steers routing away from bottlenecked links and long paths.
// The first candidate wins ties.
func selectMinMaxBWUtilHops(candidates []kpath.Path, pn *network.PhysicalNetwork) kpath.Path {
	best := candidates[0]
	bestGamma := Gamma(best.Nodes, pn)
	for _, p := range candidates[1:] {
		if g := Gamma(p.Nodes, pn); g < bestGamma {
			best = p
			bestGamma = g
		}
	}
	return best
}

// Gamma is the minMaxBWUtilHops path score:
// max over the path's links of (1 - available/initial), times hop count.
// Lower is better.
func Gamma(pathNodes []string, pn *network.PhysicalNetwork) float64 {
	if len(pathNodes) < 2 {
		return 0
	}
	var maxUtil float64
	for i := 0; i+1 < len(pathNodes); i++ {
		initial := pn.BandwidthInitial(pathNodes[i], pathNodes[i+1])
		if initial <= 0 {
			continue
		}
		util := 1 - pn.BandwidthAvailable(pathNodes[i], pathNodes[i+1])/initial
		if util > maxUtil {
			maxUtil = util
		}
	}
	return maxUtil * float64(len(pathNodes)-1)
}
