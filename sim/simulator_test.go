package sim

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slice-sim/slice-sim/sim/network"
	"github.com/slice-sim/slice-sim/sim/provision"
)

// recordedEvent appends its label to a shared log when executed.
type recordedEvent struct {
	time  float64
	label string
	log   *[]string
}

func (e *recordedEvent) Timestamp() float64   { return e.time }
func (e *recordedEvent) Execute(s *Simulator) { *e.log = append(*e.log, e.label) }

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

// feasibleSlice builds a 2-node slice the path substrate can always host.
func feasibleSlice(id string, arrival, lifetime float64) *network.SliceRequest {
	req := network.NewSliceRequest(id, arrival, lifetime)
	req.AddNode("u", network.SliceNodeSpec{CPUDemand: 2})
	req.AddNode("v", network.SliceNodeSpec{CPUDemand: 2})
	_ = req.AddLink("u", "v", 2)
	return req
}

func TestEventQueue_OrdersByTime(t *testing.T) {
	var log []string
	s := NewSimulator(pathSubstrate(t), provision.NewRTCSP())
	s.Schedule(&recordedEvent{time: 30, label: "late", log: &log})
	s.Schedule(&recordedEvent{time: 10, label: "early", log: &log})
	s.Schedule(&recordedEvent{time: 20, label: "middle", log: &log})

	s.Run()

	assert.Equal(t, []string{"early", "middle", "late"}, log)
}

func TestEventQueue_EqualTimes_InsertionOrder(t *testing.T) {
	// GIVEN five events at the same timestamp
	var log []string
	s := NewSimulator(pathSubstrate(t), provision.NewRTCSP())
	for _, label := range []string{"1", "2", "3", "4", "5"} {
		s.Schedule(&recordedEvent{time: 7, label: label, log: &log})
	}

	s.Run()

	// THEN they execute in insertion order, every run
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, log)
}

func TestEventQueue_HeapInterface(t *testing.T) {
	eq := make(EventQueue, 0)
	heap.Push(&eq, queuedEvent{ev: &recordedEvent{time: 5}, seq: 2})
	heap.Push(&eq, queuedEvent{ev: &recordedEvent{time: 5}, seq: 1})
	heap.Push(&eq, queuedEvent{ev: &recordedEvent{time: 1}, seq: 3})

	assert.Equal(t, 3, eq.Len())
	first := heap.Pop(&eq).(queuedEvent)
	assert.Equal(t, 1.0, first.ev.Timestamp())
	second := heap.Pop(&eq).(queuedEvent)
	assert.Equal(t, uint64(1), second.seq)
}

func TestRun_AcceptedSliceLifecycle(t *testing.T) {
	// GIVEN a slice arriving at t=10 with lifetime 50
	pn := pathSubstrate(t)
	s := NewSimulator(pn, provision.NewRTCSP())
	req := feasibleSlice("s1", 10, 50)
	s.AddRequests([]*network.SliceRequest{req})

	results := s.Run()

	// THEN the departure fires at exactly t=60 with everything released
	assert.Equal(t, 60.0, results.SimulationTime)
	assert.Equal(t, 1, results.TotalArrivals)
	assert.Equal(t, 1, results.TotalDepartures)
	assert.Equal(t, network.StatusCompleted, req.Status())
	assert.Empty(t, pn.ActiveSlices())
	assert.Empty(t, s.Active)
	for _, id := range pn.Nodes() {
		assert.Equal(t, pn.CPUInitial(id), pn.CPUAvailable(id))
	}
	assert.Equal(t, 1, results.Summary.AcceptedRequests)
	assert.Equal(t, 1.0, results.Summary.AcceptanceRatio)
}

func TestRun_SliceIsActiveBetweenArrivalAndDeparture(t *testing.T) {
	pn := pathSubstrate(t)
	s := NewSimulator(pn, provision.NewRTCSP())
	req := feasibleSlice("s1", 10, 50)
	s.AddRequests([]*network.SliceRequest{req})

	// GIVEN a probe scheduled between arrival and departure
	var statusAt30 network.SliceStatus
	var heldAt30 []string
	s.Schedule(&probeEvent{time: 30, fn: func(sim *Simulator) {
		statusAt30 = req.Status()
		heldAt30 = pn.ActiveSlices()
	}})

	s.Run()

	assert.Equal(t, network.StatusActive, statusAt30)
	assert.Equal(t, []string{"s1"}, heldAt30)
}

type probeEvent struct {
	time float64
	fn   func(*Simulator)
}

func (e *probeEvent) Timestamp() float64   { return e.time }
func (e *probeEvent) Execute(s *Simulator) { e.fn(s) }

func TestRun_RejectedSlice(t *testing.T) {
	// GIVEN a slice demanding more bandwidth than any link carries
	pn := pathSubstrate(t)
	s := NewSimulator(pn, provision.NewRTCSP())
	req := network.NewSliceRequest("big", 5, 10)
	req.AddNode("u", network.SliceNodeSpec{CPUDemand: 1})
	req.AddNode("v", network.SliceNodeSpec{CPUDemand: 1})
	require.NoError(t, req.AddLink("u", "v", 15))
	s.AddRequests([]*network.SliceRequest{req})

	results := s.Run()

	// THEN it is rejected, nothing is held, and no departure is scheduled
	assert.Equal(t, network.StatusRejected, req.Status())
	assert.Equal(t, 1, results.Summary.RejectedRequests)
	assert.Equal(t, 0, results.TotalDepartures)
	assert.Empty(t, pn.ActiveSlices())
}

func TestHandleDeparture_InactiveSlice_NoOp(t *testing.T) {
	pn := pathSubstrate(t)
	s := NewSimulator(pn, provision.NewRTCSP())
	req := feasibleSlice("ghost", 0, 10)

	// WHEN a departure fires for a slice that was never admitted
	s.Schedule(NewDepartureEvent(req))
	s.Run()

	// THEN nothing changes beyond the departure counter
	assert.Equal(t, 1, s.TotalDepartures)
	assert.Equal(t, network.StatusPending, req.Status())
	for _, id := range pn.Nodes() {
		assert.Equal(t, pn.CPUInitial(id), pn.CPUAvailable(id))
	}
}

func TestRun_MaxTimeBoundsTheRun(t *testing.T) {
	var log []string
	s := NewSimulator(pathSubstrate(t), provision.NewRTCSP())
	s.MaxTime = 15
	s.Schedule(&recordedEvent{time: 10, label: "in", log: &log})
	s.Schedule(&recordedEvent{time: 20, label: "out", log: &log})

	results := s.Run()

	assert.Equal(t, []string{"in"}, log)
	assert.Equal(t, 10.0, results.SimulationTime)
}

func TestRun_SnapshotCadence(t *testing.T) {
	// GIVEN snapshots after every event
	s := NewSimulator(pathSubstrate(t), provision.NewRTCSP())
	s.SnapshotEvery = 1
	s.AddRequests([]*network.SliceRequest{feasibleSlice("s1", 10, 50)})

	results := s.Run()

	// THEN two per-event snapshots plus the final one
	assert.Equal(t, []float64{10, 60, 60}, results.TimeSeries.Time)
}

func TestRun_Deterministic(t *testing.T) {
	run := func() Results {
		s := NewSimulator(pathSubstrate(t), provision.NewRTCSP())
		s.AddRequests([]*network.SliceRequest{
			feasibleSlice("s1", 10, 50),
			feasibleSlice("s2", 10, 20),
			feasibleSlice("s3", 15, 5),
		})
		return s.Run()
	}

	assert.Equal(t, run(), run())
}

func TestSimulator_Reset(t *testing.T) {
	pn := pathSubstrate(t)
	s := NewSimulator(pn, provision.NewRTCSP())
	s.AddRequests([]*network.SliceRequest{feasibleSlice("s1", 10, 50)})
	s.Run()

	s.Reset()

	assert.Equal(t, 0.0, s.Clock)
	assert.Equal(t, 0, s.QueueLen())
	assert.Empty(t, s.Active)
	assert.Equal(t, 0, s.Metrics.TotalRequests)
	assert.Empty(t, pn.ActiveSlices())

	// A fresh run over the reset simulator behaves like the first.
	s.AddRequests([]*network.SliceRequest{feasibleSlice("s4", 0, 5)})
	results := s.Run()
	assert.Equal(t, 1, results.Summary.AcceptedRequests)
}

func TestContention_DeparturesFreeCapacity(t *testing.T) {
	// GIVEN two slices that cannot fit together but arrive sequentially
	pn := network.NewPhysicalNetwork()
	pn.AddNode("A", 10, network.Point{X: 0, Y: 0})
	pn.AddNode("B", 10, network.Point{X: 1, Y: 0})
	require.NoError(t, pn.AddLink("A", "B", 10))

	big := func(id string, arrival float64) *network.SliceRequest {
		req := network.NewSliceRequest(id, arrival, 10)
		req.AddNode("u", network.SliceNodeSpec{CPUDemand: 6})
		req.AddNode("v", network.SliceNodeSpec{CPUDemand: 6})
		_ = req.AddLink("u", "v", 8)
		return req
	}

	s := NewSimulator(pn, provision.NewRTCSP())
	// s2 arrives after s1 departs at t=10.
	s.AddRequests([]*network.SliceRequest{big("s1", 0), big("s2", 11)})

	results := s.Run()

	// THEN both are admitted because the first's departure freed the substrate
	assert.Equal(t, 2, results.Summary.AcceptedRequests)

	// WHEREAS overlapping arrivals force a rejection.
	s2 := NewSimulator(pathSubstrateOneLink(t), provision.NewRTCSP())
	s2.AddRequests([]*network.SliceRequest{big("s3", 0), big("s4", 5)})
	overlapped := s2.Run()
	assert.Equal(t, 1, overlapped.Summary.AcceptedRequests)
	assert.Equal(t, 1, overlapped.Summary.RejectedRequests)
}

func pathSubstrateOneLink(t *testing.T) *network.PhysicalNetwork {
	t.Helper()
	pn := network.NewPhysicalNetwork()
	pn.AddNode("A", 10, network.Point{X: 0, Y: 0})
	pn.AddNode("B", 10, network.Point{X: 1, Y: 0})
	require.NoError(t, pn.AddLink("A", "B", 10))
	return pn
}
