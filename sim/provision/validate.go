// Post-hoc mapping validation. Used by tests and by callers (e.g.
// visualization) that want single-slice detail checked against the
// provisioning constraints.

package provision

import (
	"errors"
	"fmt"

	"github.com/slice-sim/slice-sim/sim/network"
)

// ValidateNodeMapping checks that a node mapping covers exactly the slice's
// node set, is injective, and respects capacity and location constraints.
func ValidateNodeMapping(req *network.SliceRequest, pn *network.PhysicalNetwork, mapping map[string]string) error {
	var errs []error

	if len(mapping) != req.NumNodes() {
		errs = append(errs, fmt.Errorf("mapping covers %d of %d slice nodes", len(mapping), req.NumNodes()))
	}
	hosts := make(map[string]string, len(mapping))
	for _, sliceNode := range req.Nodes() {
		host, ok := mapping[sliceNode]
		if !ok {
			errs = append(errs, fmt.Errorf("slice node %s is unmapped", sliceNode))
			continue
		}
		if other, dup := hosts[host]; dup {
			errs = append(errs, fmt.Errorf("substrate node %s hosts both %s and %s", host, other, sliceNode))
		}
		hosts[host] = sliceNode

		if req.CPUDemand(sliceNode) > pn.CPUInitial(host) {
			errs = append(errs, fmt.Errorf("substrate node %s cannot ever hold demand of %s", host, sliceNode))
		}
		if expected, constrained := req.ExpectedLocation(sliceNode); constrained {
			if d := pn.DistanceToLocation(host, expected); d > req.MaxDeviation(sliceNode) {
				errs = append(errs, fmt.Errorf("slice node %s placed %.2f away, max deviation %.2f", sliceNode, d, req.MaxDeviation(sliceNode)))
			}
		}
	}
	return errors.Join(errs...)
}

// ValidateLinkMapping checks that a link mapping covers exactly the slice's
// link set, that every path connects the mapped endpoints, and that the
// aggregate demand routed across any substrate link stays within its initial
// bandwidth.
func ValidateLinkMapping(req *network.SliceRequest, pn *network.PhysicalNetwork, nodeMapping map[string]string, linkPaths map[network.LinkKey][]string) error {
	var errs []error

	if len(linkPaths) != req.NumLinks() {
		errs = append(errs, fmt.Errorf("mapping covers %d of %d slice links", len(linkPaths), req.NumLinks()))
	}

	usage := make(map[network.LinkKey]float64)
	for _, key := range req.Links() {
		path, ok := linkPaths[key]
		if !ok {
			errs = append(errs, fmt.Errorf("slice link %s-%s is unmapped", key.A, key.B))
			continue
		}
		if len(path) < 2 {
			errs = append(errs, fmt.Errorf("slice link %s-%s mapped to degenerate path", key.A, key.B))
			continue
		}
		ends := map[string]bool{path[0]: true, path[len(path)-1]: true}
		if !ends[nodeMapping[key.A]] || !ends[nodeMapping[key.B]] {
			errs = append(errs, fmt.Errorf("path for %s-%s does not connect its mapped endpoints", key.A, key.B))
		}
		demand := req.BandwidthDemand(key.A, key.B)
		for i := 0; i+1 < len(path); i++ {
			usage[network.NewLinkKey(path[i], path[i+1])] += demand
		}
	}
	for key, total := range usage {
		if initial := pn.BandwidthInitial(key.A, key.B); total > initial {
			errs = append(errs, fmt.Errorf("substrate link %s-%s overcommitted: %.2f > %.2f", key.A, key.B, total, initial))
		}
	}
	return errors.Join(errs...)
}
