package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/slice-sim/slice-sim/sim/network"
)

// Scenario is the YAML description of one simulation input: the substrate
// network plus the slice requests that will arrive over virtual time.
type Scenario struct {
	Name     string        `yaml:"name"`
	Network  NetworkSpec   `yaml:"network"`
	Requests []RequestSpec `yaml:"requests"`
}

type NetworkSpec struct {
	Nodes []PhysicalNodeSpec `yaml:"nodes"`
	Links []PhysicalLinkSpec `yaml:"links"`
}

type PhysicalNodeSpec struct {
	Name     string     `yaml:"name"`
	CPU      float64    `yaml:"cpu"`
	Location [2]float64 `yaml:"location"`
}

type PhysicalLinkSpec struct {
	From      string  `yaml:"from"`
	To        string  `yaml:"to"`
	Bandwidth float64 `yaml:"bandwidth"`
}

type RequestSpec struct {
	ID          string          `yaml:"id"`
	ArrivalTime float64         `yaml:"arrival_time"`
	Lifetime    float64         `yaml:"lifetime"`
	Nodes       []SliceNodeSpec `yaml:"nodes"`
	Links       []SliceLinkSpec `yaml:"links"`
}

type SliceNodeSpec struct {
	Name string  `yaml:"name"`
	CPU  float64 `yaml:"cpu"`
	// Location is optional; absent means the node is free to land anywhere.
	Location     *[2]float64 `yaml:"location,omitempty"`
	MaxDeviation float64     `yaml:"max_deviation"`
}

type SliceLinkSpec struct {
	From      string  `yaml:"from"`
	To        string  `yaml:"to"`
	Bandwidth float64 `yaml:"bandwidth"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &sc, nil
}

// BuildNetwork constructs the substrate network from the scenario's network
// section.
func (sc *Scenario) BuildNetwork() (*network.PhysicalNetwork, error) {
	pn := network.NewPhysicalNetwork()
	for _, n := range sc.Network.Nodes {
		pn.AddNode(n.Name, n.CPU, network.Point{X: n.Location[0], Y: n.Location[1]})
	}
	for _, l := range sc.Network.Links {
		if err := pn.AddLink(l.From, l.To, l.Bandwidth); err != nil {
			return nil, fmt.Errorf("substrate link %s-%s: %w", l.From, l.To, err)
		}
	}
	if pn.NumNodes() == 0 {
		return nil, fmt.Errorf("scenario %s: substrate network has no nodes", sc.Name)
	}
	return pn, nil
}

// BuildRequests constructs the slice requests from the scenario's request
// section. Every request is validated here, before it can enter the event
// queue.
func (sc *Scenario) BuildRequests() ([]*network.SliceRequest, error) {
	reqs := make([]*network.SliceRequest, 0, len(sc.Requests))
	for _, rs := range sc.Requests {
		req := network.NewSliceRequest(rs.ID, rs.ArrivalTime, rs.Lifetime)
		for _, n := range rs.Nodes {
			spec := network.SliceNodeSpec{CPUDemand: n.CPU, MaxDeviation: n.MaxDeviation}
			if n.Location != nil {
				spec.ExpectedLocation = &network.Point{X: n.Location[0], Y: n.Location[1]}
			}
			req.AddNode(n.Name, spec)
		}
		for _, l := range rs.Links {
			if err := req.AddLink(l.From, l.To, l.Bandwidth); err != nil {
				return nil, fmt.Errorf("request %s link %s-%s: %w", rs.ID, l.From, l.To, err)
			}
		}
		if err := req.Validate(); err != nil {
			return nil, err
		}
		stats := req.Stats()
		logrus.Debugf("request %s: %d nodes, %d links, revenue %.2f", req.ID, stats.NumNodes, stats.NumLinks, stats.Revenue)
		reqs = append(reqs, req)
	}
	return reqs, nil
}
