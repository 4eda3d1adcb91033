package sim

import "github.com/slice-sim/slice-sim/sim/network"

// Results is the serializable end-of-run report: the run summary, the metric
// time series, and the substrate utilization at termination.
type Results struct {
	Algorithm       string              `yaml:"algorithm" json:"algorithm"`
	SimulationTime  float64             `yaml:"simulation_time" json:"simulation_time"`
	TotalArrivals   int                 `yaml:"total_arrivals" json:"total_arrivals"`
	TotalDepartures int                 `yaml:"total_departures" json:"total_departures"`
	Summary         Summary             `yaml:"summary" json:"summary"`
	TimeSeries      TimeSeries          `yaml:"time_series" json:"time_series"`
	Utilization     network.Utilization `yaml:"utilization" json:"utilization"`
}
