// Two-phase slice provisioning (RT-CSP / RT-CSP+): node placement first,
// then link routing, with node allocations unwound if the link phase fails.

package provision

import (
	"github.com/sirupsen/logrus"

	"github.com/slice-sim/slice-sim/sim/network"
	"github.com/slice-sim/slice-sim/sim/ranking"
)

// Config carries the provisioning parameters. UseMinMax is the single switch
// distinguishing RT-CSP+ (minMaxBWUtilHops path selection) from RT-CSP
// (first shortest candidate); everything else is shared.
type Config struct {
	Alpha     float64
	Beta      float64
	Epsilon   float64
	K         int
	UseMinMax bool
}

// DefaultConfig returns the standard parameters: alpha = beta = 0.5,
// epsilon = 1e-5, k = 3, basic path selection.
func DefaultConfig() Config {
	r := ranking.DefaultConfig()
	return Config{Alpha: r.Alpha, Beta: r.Beta, Epsilon: r.Epsilon, K: 3}
}

// Provisioner embeds slice requests into a substrate network.
type Provisioner struct {
	cfg Config
}

// New returns a provisioner with the given parameters. Zero-valued K falls
// back to the default of 3; a zero Epsilon falls back to 1e-5.
func New(cfg Config) *Provisioner {
	if cfg.K <= 0 {
		cfg.K = 3
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = ranking.DefaultConfig().Epsilon
	}
	return &Provisioner{cfg: cfg}
}

// NewRTCSP returns the basic algorithm: k-shortest path selection.
func NewRTCSP() *Provisioner {
	return New(DefaultConfig())
}

// NewRTCSPPlus returns the enhanced algorithm: minMaxBWUtilHops path
// selection. It differs from RT-CSP in nothing else.
func NewRTCSPPlus() *Provisioner {
	cfg := DefaultConfig()
	cfg.UseMinMax = true
	return New(cfg)
}

// Name identifies the configured algorithm variant.
func (p *Provisioner) Name() string {
	if p.cfg.UseMinMax {
		return "RT-CSP+"
	}
	return "RT-CSP"
}

// Config returns the provisioner's parameters.
func (p *Provisioner) Config() Config { return p.cfg }

// Provision attempts to embed the slice request into the substrate as an
// atomic two-phase commit. Phase 1 places nodes; on failure nothing is held
// and the request is rejected. Phase 2 routes links; on failure the phase-1
// node allocations are unwound before rejecting. On success the substrate
// holds exactly the slice's demands and the result carries both mappings.
func (p *Provisioner) Provision(req *network.SliceRequest, pn *network.PhysicalNetwork) Result {
	rcfg := ranking.Config{Alpha: p.cfg.Alpha, Beta: p.cfg.Beta, Epsilon: p.cfg.Epsilon}

	nodeMapping, ok := provisionNodes(req, pn, rcfg)
	if !ok {
		return Result{
			Success:       false,
			FailureReason: "node provisioning failed: no feasible substrate nodes",
		}
	}

	linkMapping, ok := provisionLinks(req, pn, nodeMapping, p.cfg.K, p.cfg.UseMinMax)
	if !ok {
		for sliceNode, host := range nodeMapping {
			pn.DeallocateNode(host, req.CPUDemand(sliceNode), req.ID)
		}
		return Result{
			Success:       false,
			FailureReason: "link provisioning failed: no feasible substrate paths",
		}
	}

	logrus.Debugf("slice %s: provisioned by %s (nodes=%d links=%d)", req.ID, p.Name(), len(nodeMapping), len(linkMapping))
	return Result{
		Success:     true,
		NodeMapping: nodeMapping,
		LinkMapping: linkMapping,
	}
}
