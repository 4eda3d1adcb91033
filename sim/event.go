package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/slice-sim/slice-sim/sim/network"
)

// Event defines the interface for all simulation events. Each event has a
// virtual timestamp and an Execute method that advances simulation state
// when invoked.
type Event interface {
	Timestamp() float64
	Execute(*Simulator)
}

// ArrivalEvent represents the arrival of a slice request into the system.
type ArrivalEvent struct {
	time  float64
	Slice *network.SliceRequest
}

// NewArrivalEvent schedules the given slice's arrival at its arrival time.
func NewArrivalEvent(s *network.SliceRequest) *ArrivalEvent {
	return &ArrivalEvent{time: s.ArrivalTime, Slice: s}
}

// Timestamp returns the scheduled time of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() float64 { return e.time }

// Execute attempts to provision the arriving slice. On success the slice
// goes active and its departure is scheduled at exactly arrival + lifetime;
// on failure the slice is rejected. Either way the outcome is recorded in
// the metrics tracker.
func (e *ArrivalEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< Arrival: %s at t=%.2f", e.Slice.ID, e.time)
	sim.handleArrival(e.Slice)
}

// DepartureEvent represents an admitted slice reaching the end of its
// lifetime.
type DepartureEvent struct {
	time  float64
	Slice *network.SliceRequest
}

// NewDepartureEvent schedules the given slice's departure at its departure
// time.
func NewDepartureEvent(s *network.SliceRequest) *DepartureEvent {
	return &DepartureEvent{time: s.DepartureTime(), Slice: s}
}

// Timestamp returns the scheduled time of the DepartureEvent.
func (e *DepartureEvent) Timestamp() float64 { return e.time }

// Execute releases every resource the departing slice holds and marks it
// completed. A slice that is not currently active (never admitted, or
// already departed) is a no-op.
func (e *DepartureEvent) Execute(sim *Simulator) {
	logrus.Debugf(">> Departure: %s at t=%.2f", e.Slice.ID, e.time)
	sim.handleDeparture(e.Slice)
}
