// Tracks acceptance and revenue/cost performance of a provisioning run,
// both as running totals and as a periodic time series.

package sim

import (
	"fmt"

	"github.com/slice-sim/slice-sim/sim/network"
	"github.com/slice-sim/slice-sim/sim/provision"
)

// Metrics aggregates provisioning outcomes over a simulation run.
type Metrics struct {
	TotalRequests    int
	AcceptedRequests int
	RejectedRequests int

	TotalRevenue float64
	TotalCost    float64

	series TimeSeries
}

// TimeSeries holds parallel arrays of periodic metric snapshots, for
// time-series reporting by external consumers.
type TimeSeries struct {
	Time              []float64 `yaml:"time" json:"time"`
	AcceptanceRatio   []float64 `yaml:"acceptance_ratio" json:"acceptance_ratio"`
	CumulativeRevenue []float64 `yaml:"cumulative_revenue" json:"cumulative_revenue"`
	CumulativeCost    []float64 `yaml:"cumulative_cost" json:"cumulative_cost"`
	RevenueCostRatio  []float64 `yaml:"revenue_cost_ratio" json:"revenue_cost_ratio"`
}

// NewMetrics returns an empty tracker.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordAccepted records an admitted slice: revenue from its demands, cost
// from its demands weighted by the embedding's path lengths.
func (m *Metrics) RecordAccepted(req *network.SliceRequest, result provision.Result) {
	m.TotalRequests++
	m.AcceptedRequests++
	m.TotalRevenue += req.Revenue()
	m.TotalCost += req.Cost(result.LinkPaths())
}

// RecordRejected records a rejected slice.
func (m *Metrics) RecordRejected(req *network.SliceRequest) {
	m.TotalRequests++
	m.RejectedRequests++
}

// AcceptanceRatio is accepted over total requests (0 before any request).
func (m *Metrics) AcceptanceRatio() float64 {
	if m.TotalRequests == 0 {
		return 0
	}
	return float64(m.AcceptedRequests) / float64(m.TotalRequests)
}

// RejectionRatio is rejected over total requests (0 before any request).
func (m *Metrics) RejectionRatio() float64 {
	if m.TotalRequests == 0 {
		return 0
	}
	return float64(m.RejectedRequests) / float64(m.TotalRequests)
}

// RevenueCostRatio is total revenue over total cost (0 while cost is 0).
func (m *Metrics) RevenueCostRatio() float64 {
	if m.TotalCost == 0 {
		return 0
	}
	return m.TotalRevenue / m.TotalCost
}

// AverageRevenue is total revenue per unit of virtual time.
func (m *Metrics) AverageRevenue(simulationTime float64) float64 {
	if simulationTime <= 0 {
		return 0
	}
	return m.TotalRevenue / simulationTime
}

// Snapshot appends the current totals to the time series, stamped with the
// given virtual time.
func (m *Metrics) Snapshot(t float64) {
	m.series.Time = append(m.series.Time, t)
	m.series.AcceptanceRatio = append(m.series.AcceptanceRatio, m.AcceptanceRatio())
	m.series.CumulativeRevenue = append(m.series.CumulativeRevenue, m.TotalRevenue)
	m.series.CumulativeCost = append(m.series.CumulativeCost, m.TotalCost)
	m.series.RevenueCostRatio = append(m.series.RevenueCostRatio, m.RevenueCostRatio())
}

// Series returns the recorded time series.
func (m *Metrics) Series() TimeSeries { return m.series }

// Reset clears all counters and the time series.
func (m *Metrics) Reset() {
	*m = Metrics{}
}

// Summary is the flattened end-of-run view of the tracker.
type Summary struct {
	TotalRequests    int     `yaml:"total_requests" json:"total_requests"`
	AcceptedRequests int     `yaml:"accepted_requests" json:"accepted_requests"`
	RejectedRequests int     `yaml:"rejected_requests" json:"rejected_requests"`
	AcceptanceRatio  float64 `yaml:"acceptance_ratio" json:"acceptance_ratio"`
	RejectionRatio   float64 `yaml:"rejection_ratio" json:"rejection_ratio"`
	TotalRevenue     float64 `yaml:"total_revenue" json:"total_revenue"`
	TotalCost        float64 `yaml:"total_cost" json:"total_cost"`
	RevenueCostRatio float64 `yaml:"revenue_cost_ratio" json:"revenue_cost_ratio"`
	AverageRevenue   float64 `yaml:"average_revenue" json:"average_revenue"`
}

// Summary flattens the tracker at the given virtual time.
func (m *Metrics) Summary(simulationTime float64) Summary {
	return Summary{
		TotalRequests:    m.TotalRequests,
		AcceptedRequests: m.AcceptedRequests,
		RejectedRequests: m.RejectedRequests,
		AcceptanceRatio:  m.AcceptanceRatio(),
		RejectionRatio:   m.RejectionRatio(),
		TotalRevenue:     m.TotalRevenue,
		TotalCost:        m.TotalCost,
		RevenueCostRatio: m.RevenueCostRatio(),
		AverageRevenue:   m.AverageRevenue(simulationTime),
	}
}

func (m *Metrics) String() string {
	return fmt.Sprintf("acceptance=%.2f%% revenue=%.2f revenue/cost=%.3f",
		m.AcceptanceRatio()*100, m.TotalRevenue, m.RevenueCostRatio())
}
