// sim/simulator.go
package sim

import (
	"container/heap"

	"github.com/sirupsen/logrus"

	"github.com/slice-sim/slice-sim/sim/network"
	"github.com/slice-sim/slice-sim/sim/provision"
)

// queuedEvent wraps an event with its insertion sequence number, so that
// events at identical timestamps execute in insertion order and runs stay
// reproducible.
type queuedEvent struct {
	ev  Event
	seq uint64
}

// EventQueue implements heap.Interface and orders events by timestamp, with
// insertion order as the tie-break.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []queuedEvent

func (eq EventQueue) Len() int { return len(eq) }
func (eq EventQueue) Less(i, j int) bool {
	if eq[i].ev.Timestamp() != eq[j].ev.Timestamp() {
		return eq[i].ev.Timestamp() < eq[j].ev.Timestamp()
	}
	return eq[i].seq < eq[j].seq
}
func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(queuedEvent))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// ActiveSlice is one admitted slice together with its embedding, held until
// its departure event fires.
type ActiveSlice struct {
	Slice  *network.SliceRequest
	Result provision.Result
}

// defaultSnapshotEvery is how many processed events pass between metric
// time-series snapshots.
const defaultSnapshotEvery = 100

// Simulator is the core object that holds virtual time, the substrate state,
// and the event loop. Arrivals invoke the provisioning algorithm; departures
// release resources through the substrate's allocation ledger.
type Simulator struct {
	Network   *network.PhysicalNetwork
	Algorithm *provision.Provisioner
	Metrics   *Metrics

	Clock float64
	// MaxTime bounds the run: events after this time are not processed.
	// Zero means run to queue exhaustion.
	MaxTime float64
	// SnapshotEvery is the number of processed events between time-series
	// snapshots.
	SnapshotEvery int

	// Active maps slice ID to its admitted embedding.
	Active map[string]ActiveSlice

	TotalArrivals   int
	TotalDepartures int

	queue     EventQueue
	seq       uint64
	processed int
}

// NewSimulator returns a simulator over the given substrate and algorithm.
func NewSimulator(pn *network.PhysicalNetwork, algo *provision.Provisioner) *Simulator {
	return &Simulator{
		Network:       pn,
		Algorithm:     algo,
		Metrics:       NewMetrics(),
		SnapshotEvery: defaultSnapshotEvery,
		Active:        make(map[string]ActiveSlice),
		queue:         make(EventQueue, 0),
	}
}

// Schedule pushes an event into the simulator's event queue.
func (s *Simulator) Schedule(ev Event) {
	s.seq++
	heap.Push(&s.queue, queuedEvent{ev: ev, seq: s.seq})
}

// AddRequests schedules an arrival event for every slice request. The
// requests are assumed validated by the construction layer.
func (s *Simulator) AddRequests(reqs []*network.SliceRequest) {
	for _, req := range reqs {
		s.Schedule(NewArrivalEvent(req))
	}
}

// QueueLen returns the number of pending events.
func (s *Simulator) QueueLen() int { return s.queue.Len() }

// Run processes events in timestamp order until the queue drains or an event
// exceeds MaxTime, then returns the run's results. Metrics snapshots are
// taken every SnapshotEvery processed events and once more at termination.
func (s *Simulator) Run() Results {
	logrus.Infof("Starting simulation with %s: %d substrate nodes, %d links, %d pending events",
		s.Algorithm.Name(), s.Network.NumNodes(), s.Network.NumLinks(), s.queue.Len())

	for s.queue.Len() > 0 {
		qe := heap.Pop(&s.queue).(queuedEvent)
		if s.MaxTime > 0 && qe.ev.Timestamp() > s.MaxTime {
			break
		}
		// advance the clock
		s.Clock = qe.ev.Timestamp()
		qe.ev.Execute(s)

		s.processed++
		if s.SnapshotEvery > 0 && s.processed%s.SnapshotEvery == 0 {
			s.Metrics.Snapshot(s.Clock)
		}
	}
	s.Metrics.Snapshot(s.Clock)

	logrus.Infof("[t=%.2f] Simulation ended: %s", s.Clock, s.Metrics)
	return s.results()
}

func (s *Simulator) handleArrival(req *network.SliceRequest) {
	s.TotalArrivals++

	result := s.Algorithm.Provision(req, s.Network)
	if result.Success {
		_ = req.SetStatus(network.StatusActive)
		s.Active[req.ID] = ActiveSlice{Slice: req, Result: result}
		s.Schedule(NewDepartureEvent(req))
		s.Metrics.RecordAccepted(req, result)
		return
	}

	_ = req.SetStatus(network.StatusRejected)
	s.Metrics.RecordRejected(req)
	logrus.Debugf("slice %s rejected: %s", req.ID, result.FailureReason)
}

func (s *Simulator) handleDeparture(req *network.SliceRequest) {
	s.TotalDepartures++

	if _, ok := s.Active[req.ID]; !ok {
		// Never admitted or already departed.
		return
	}
	s.Network.DeallocateSlice(req.ID)
	_ = req.SetStatus(network.StatusCompleted)
	delete(s.Active, req.ID)
}

// Reset restores the simulator and its substrate to the pre-run state:
// queue, active table, metrics and clock cleared, all resources released.
func (s *Simulator) Reset() {
	s.queue = make(EventQueue, 0)
	s.seq = 0
	s.processed = 0
	s.Clock = 0
	s.TotalArrivals = 0
	s.TotalDepartures = 0
	s.Active = make(map[string]ActiveSlice)
	s.Metrics.Reset()
	s.Network.Reset()
}

func (s *Simulator) results() Results {
	return Results{
		Algorithm:       s.Algorithm.Name(),
		SimulationTime:  s.Clock,
		TotalArrivals:   s.TotalArrivals,
		TotalDepartures: s.TotalDepartures,
		Summary:         s.Metrics.Summary(s.Clock),
		TimeSeries:      s.Metrics.Series(),
		Utilization:     s.Network.Utilization(),
	}
}
