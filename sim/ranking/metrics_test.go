package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slice-sim/slice-sim/sim/network"
)

// pathSubstrate builds the substrate A - B - C with CPU 10 per node and
// bandwidth 10 per link.
func pathSubstrate(t *testing.T) *network.PhysicalNetwork {
	t.Helper()
	pn := network.NewPhysicalNetwork()
	pn.AddNode("A", 10, network.Point{X: 0, Y: 0})
	pn.AddNode("B", 10, network.Point{X: 1, Y: 0})
	pn.AddNode("C", 10, network.Point{X: 2, Y: 0})
	require.NoError(t, pn.AddLink("A", "B", 10))
	require.NoError(t, pn.AddLink("B", "C", 10))
	return pn
}

func TestLocalResource(t *testing.T) {
	pn := pathSubstrate(t)

	// B touches two 10-bandwidth links, A only one.
	assert.InDelta(t, 200.0, LocalResource(pn, "B"), 1e-9)
	assert.InDelta(t, 100.0, LocalResource(pn, "A"), 1e-9)
}

func TestGlobalResource(t *testing.T) {
	pn := pathSubstrate(t)

	// From A: both B and C see bottleneck bandwidth 10 and bottleneck CPU 10.
	assert.InDelta(t, 20.0, GlobalResource(pn, "A"), 1e-9)
}

func TestGlobalResource_SkipsUnreachable(t *testing.T) {
	pn := pathSubstrate(t)
	pn.AddNode("Z", 10, network.Point{X: 9, Y: 9})

	// Z contributes nothing to A's average; |V|-1 is still the divisor.
	assert.InDelta(t, 40.0/3.0, GlobalResource(pn, "A"), 1e-9)
	// An isolated node reaches nobody.
	assert.Equal(t, 0.0, GlobalResource(pn, "Z"))
}

func TestDegreeCentrality(t *testing.T) {
	pn := pathSubstrate(t)

	assert.InDelta(t, 1.0, DegreeCentrality(pn, "B"), 1e-9)
	assert.InDelta(t, 0.5, DegreeCentrality(pn, "A"), 1e-9)
}

func TestClosenessCentrality(t *testing.T) {
	pn := pathSubstrate(t)

	// A: hop distances 1 (B) + 2 (C) = 3.
	assert.InDelta(t, 2.0/3.0, ClosenessCentrality(pn, "A"), 1e-9)
	assert.InDelta(t, 1.0, ClosenessCentrality(pn, "B"), 1e-9)
}

func TestClosenessCentrality_Isolated(t *testing.T) {
	pn := pathSubstrate(t)
	pn.AddNode("Z", 10, network.Point{})

	assert.Equal(t, 0.0, ClosenessCentrality(pn, "Z"))
}

func TestMetrics_SingletonGraph(t *testing.T) {
	pn := network.NewPhysicalNetwork()
	pn.AddNode("only", 10, network.Point{})

	assert.Equal(t, 0.0, GlobalResource(pn, "only"))
	assert.Equal(t, 0.0, DegreeCentrality(pn, "only"))
	assert.Equal(t, 0.0, ClosenessCentrality(pn, "only"))
}
