package network

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeNodePath builds the substrate A - B - C with CPU 10 per node and
// bandwidth 10 per link.
func threeNodePath(t *testing.T) *PhysicalNetwork {
	t.Helper()
	pn := NewPhysicalNetwork()
	pn.AddNode("A", 10, Point{X: 0, Y: 0})
	pn.AddNode("B", 10, Point{X: 1, Y: 0})
	pn.AddNode("C", 10, Point{X: 2, Y: 0})
	require.NoError(t, pn.AddLink("A", "B", 10))
	require.NoError(t, pn.AddLink("B", "C", 10))
	return pn
}

// assertInvariants checks available + used == initial on every node and link.
func assertInvariants(t *testing.T, pn *PhysicalNetwork) {
	t.Helper()
	for _, id := range pn.Nodes() {
		assert.InDelta(t, pn.CPUInitial(id), pn.CPUAvailable(id)+pn.CPUUsed(id), 1e-9, "node %s", id)
		assert.GreaterOrEqual(t, pn.CPUAvailable(id), 0.0, "node %s", id)
	}
	for _, lk := range pn.Links() {
		assert.InDelta(t, pn.BandwidthInitial(lk.A, lk.B),
			pn.BandwidthAvailable(lk.A, lk.B)+pn.BandwidthUsed(lk.A, lk.B), 1e-9, "link %s-%s", lk.A, lk.B)
	}
}

func TestAllocateNode_Succeeds(t *testing.T) {
	pn := threeNodePath(t)

	// WHEN 4 CPU is allocated on A for slice s1
	ok := pn.AllocateNode("A", 4, "s1")

	// THEN counters move and the ledger records it
	require.True(t, ok)
	assert.Equal(t, 6.0, pn.CPUAvailable("A"))
	assert.Equal(t, 4.0, pn.CPUUsed("A"))
	assertInvariants(t, pn)

	nodes, _, held := pn.SliceAllocation("s1")
	require.True(t, held)
	assert.Equal(t, 4.0, nodes["A"])
}

func TestAllocateNode_InsufficientCPU_NoMutation(t *testing.T) {
	pn := threeNodePath(t)

	ok := pn.AllocateNode("A", 11, "s1")

	assert.False(t, ok)
	assert.Equal(t, 10.0, pn.CPUAvailable("A"))
	_, _, held := pn.SliceAllocation("s1")
	assert.False(t, held)
}

func TestAllocateLink_InsufficientBandwidth_NoMutation(t *testing.T) {
	pn := threeNodePath(t)

	ok := pn.AllocateLink("A", "B", 15, "s1")

	assert.False(t, ok)
	assert.Equal(t, 10.0, pn.BandwidthAvailable("A", "B"))
}

func TestAllocatePath_PreChecksEveryLink(t *testing.T) {
	pn := threeNodePath(t)
	// GIVEN B-C has only 3 bandwidth left
	require.True(t, pn.AllocateLink("B", "C", 7, "other"))

	// WHEN a 5-bandwidth path A-B-C is requested
	ok := pn.AllocatePath([]string{"A", "B", "C"}, 5, "s1")

	// THEN nothing is allocated, A-B included
	assert.False(t, ok)
	assert.Equal(t, 10.0, pn.BandwidthAvailable("A", "B"))
	assert.Equal(t, 3.0, pn.BandwidthAvailable("B", "C"))
	assertInvariants(t, pn)
}

func TestAllocatePath_Succeeds(t *testing.T) {
	pn := threeNodePath(t)

	ok := pn.AllocatePath([]string{"A", "B", "C"}, 5, "s1")

	require.True(t, ok)
	assert.Equal(t, 5.0, pn.BandwidthAvailable("A", "B"))
	assert.Equal(t, 5.0, pn.BandwidthAvailable("B", "C"))
	assertInvariants(t, pn)
}

func TestDeallocateSlice_ReleasesEverything(t *testing.T) {
	pn := threeNodePath(t)
	require.True(t, pn.AllocateNode("A", 5, "s1"))
	require.True(t, pn.AllocateNode("C", 5, "s1"))
	require.True(t, pn.AllocatePath([]string{"A", "B", "C"}, 5, "s1"))
	require.Equal(t, []string{"s1"}, pn.ActiveSlices())

	// WHEN the slice departs
	pn.DeallocateSlice("s1")

	// THEN every counter reads initial again and the ledger entry is gone
	assert.Equal(t, 10.0, pn.CPUAvailable("A"))
	assert.Equal(t, 10.0, pn.CPUAvailable("C"))
	assert.Equal(t, 10.0, pn.BandwidthAvailable("A", "B"))
	assert.Equal(t, 10.0, pn.BandwidthAvailable("B", "C"))
	assert.Empty(t, pn.ActiveSlices())
	assertInvariants(t, pn)
}

func TestDeallocateSlice_UnknownID_NoOp(t *testing.T) {
	pn := threeNodePath(t)
	pn.DeallocateSlice("ghost")
	assertInvariants(t, pn)
}

func TestLedger_AccumulatesRepeatedAllocations(t *testing.T) {
	pn := threeNodePath(t)
	// GIVEN the same link allocated twice for one slice
	require.True(t, pn.AllocateLink("A", "B", 3, "s1"))
	require.True(t, pn.AllocateLink("A", "B", 2, "s1"))

	_, links, held := pn.SliceAllocation("s1")
	require.True(t, held)
	assert.Equal(t, 5.0, links[NewLinkKey("A", "B")])

	// WHEN the slice departs, the full amount comes back
	pn.DeallocateSlice("s1")
	assert.Equal(t, 10.0, pn.BandwidthAvailable("A", "B"))
}

func TestGeometry(t *testing.T) {
	pn := threeNodePath(t)

	assert.InDelta(t, 2.0, pn.EuclideanDistance("A", "C"), 1e-9)
	assert.InDelta(t, 1.0, pn.DistanceToLocation("B", Point{X: 1, Y: 1}), 1e-9)
	// Missing nodes read as infinitely far away.
	assert.True(t, math.IsInf(pn.EuclideanDistance("A", "nope"), 1))
	assert.True(t, math.IsInf(pn.DistanceToLocation("nope", Point{}), 1))
}

func TestUtilization(t *testing.T) {
	pn := threeNodePath(t)
	require.True(t, pn.AllocateNode("A", 3, "s1"))
	require.True(t, pn.AllocateLink("A", "B", 5, "s1"))

	u := pn.Utilization()

	assert.InDelta(t, 10.0, u.CPUPercent, 1e-9)       // 3 of 30
	assert.InDelta(t, 25.0, u.BandwidthPercent, 1e-9) // 5 of 20
}

func TestReset_RestoresInitialState(t *testing.T) {
	pn := threeNodePath(t)
	require.True(t, pn.AllocateNode("A", 5, "s1"))
	require.True(t, pn.AllocatePath([]string{"A", "B"}, 4, "s2"))

	pn.Reset()

	assert.Empty(t, pn.ActiveSlices())
	assert.Equal(t, 10.0, pn.CPUAvailable("A"))
	assert.Equal(t, 10.0, pn.BandwidthAvailable("A", "B"))
	assertInvariants(t, pn)
}
