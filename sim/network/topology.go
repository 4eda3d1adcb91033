// Defines the shared undirected topology used by both the physical substrate
// and slice request graphs: node/link storage, adjacency, and shortest-path
// queries.

package network

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// LinkKey is the canonical identifier of an undirected link: endpoints in
// lexicographic order so that (u,v) and (v,u) name the same link.
type LinkKey struct {
	A string
	B string
}

// NewLinkKey builds the canonical key for the link between u and v.
func NewLinkKey(u, v string) LinkKey {
	if u <= v {
		return LinkKey{A: u, B: v}
	}
	return LinkKey{A: v, B: u}
}

// Topology is an undirected graph over string node identifiers. No parallel
// links, no self-loops. All iteration orders (Nodes, Links, Neighbors) are
// lexicographic so that every pass over a topology is reproducible.
type Topology struct {
	nodes map[string]struct{}
	adj   map[string]map[string]struct{}
	links map[LinkKey]struct{}
}

// NewTopology returns an empty topology.
func NewTopology() *Topology {
	return &Topology{
		nodes: make(map[string]struct{}),
		adj:   make(map[string]map[string]struct{}),
		links: make(map[LinkKey]struct{}),
	}
}

// AddNode inserts a node. Adding an existing node is a no-op.
func (t *Topology) AddNode(id string) {
	if _, ok := t.nodes[id]; ok {
		return
	}
	t.nodes[id] = struct{}{}
	t.adj[id] = make(map[string]struct{})
}

// AddLink inserts the undirected link (u,v). Both endpoints must already
// exist and self-loops are not representable.
func (t *Topology) AddLink(u, v string) error {
	if u == v {
		return fmt.Errorf("topology: self-loop %q not allowed", u)
	}
	if _, ok := t.nodes[u]; !ok {
		return fmt.Errorf("topology: link endpoint %q does not exist", u)
	}
	if _, ok := t.nodes[v]; !ok {
		return fmt.Errorf("topology: link endpoint %q does not exist", v)
	}
	t.adj[u][v] = struct{}{}
	t.adj[v][u] = struct{}{}
	t.links[NewLinkKey(u, v)] = struct{}{}
	return nil
}

// HasNode reports whether a node exists.
func (t *Topology) HasNode(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// HasLink reports whether the undirected link (u,v) exists.
func (t *Topology) HasLink(u, v string) bool {
	_, ok := t.links[NewLinkKey(u, v)]
	return ok
}

// Nodes returns all node identifiers in lexicographic order.
func (t *Topology) Nodes() []string {
	out := make([]string, 0, len(t.nodes))
	for id := range t.nodes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Links returns all canonical link keys, ordered lexicographically.
func (t *Topology) Links() []LinkKey {
	out := make([]LinkKey, 0, len(t.links))
	for k := range t.links {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Neighbors returns the nodes adjacent to id in lexicographic order.
// An unknown node yields an empty slice.
func (t *Topology) Neighbors(id string) []string {
	nbrs, ok := t.adj[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(nbrs))
	for n := range nbrs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Degree returns the number of links adjacent to id (0 for unknown nodes).
func (t *Topology) Degree(id string) int {
	return len(t.adj[id])
}

// NumNodes returns the node count.
func (t *Topology) NumNodes() int { return len(t.nodes) }

// NumLinks returns the link count.
func (t *Topology) NumLinks() int { return len(t.links) }

// Connected reports whether the topology forms a single connected component.
// An empty topology is considered connected.
func (t *Topology) Connected() bool {
	if len(t.nodes) <= 1 {
		return true
	}
	g, _, _ := t.gonumGraph(nil, nil)
	return len(topo.ConnectedComponents(g)) == 1
}

// ShortestPath returns the hop-count shortest path from src to dst, endpoints
// inclusive. Among equal-length paths the lexicographically first one is
// returned, which keeps repeated runs byte-identical. The second return is
// false when either endpoint is missing or no path exists.
func (t *Topology) ShortestPath(src, dst string) ([]string, bool) {
	return t.ShortestPathExcluding(src, dst, nil, nil)
}

// ShortestPathExcluding is ShortestPath over the topology with the given
// nodes and links masked out. src and dst must not be masked. The masks may
// be nil.
//
// The search is a plain BFS with sorted neighbor expansion rather than the
// gonum Dijkstra used for distance queries: gonum's internal iteration order
// is map-based, so the particular path it reports among equal-cost
// alternatives is not stable across runs, and path identity (not just length)
// feeds the provisioning decisions.
func (t *Topology) ShortestPathExcluding(src, dst string, exNodes map[string]bool, exLinks map[LinkKey]bool) ([]string, bool) {
	if !t.HasNode(src) || !t.HasNode(dst) {
		return nil, false
	}
	if exNodes[src] || exNodes[dst] {
		return nil, false
	}
	if src == dst {
		return []string{src}, true
	}

	prev := map[string]string{src: ""}
	frontier := []string{src}
	for len(frontier) > 0 {
		next := frontier[:0:0]
		for _, u := range frontier {
			for _, v := range t.Neighbors(u) {
				if exNodes[v] || exLinks[NewLinkKey(u, v)] {
					continue
				}
				if _, seen := prev[v]; seen {
					continue
				}
				prev[v] = u
				if v == dst {
					return reconstruct(prev, src, dst), true
				}
				next = append(next, v)
			}
		}
		frontier = next
	}
	return nil, false
}

func reconstruct(prev map[string]string, src, dst string) []string {
	var rev []string
	for at := dst; at != ""; at = prev[at] {
		rev = append(rev, at)
	}
	out := make([]string, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}

// HopDistance returns the hop count of the shortest path between src and dst.
// The second return is false when no path exists.
func (t *Topology) HopDistance(src, dst string) (int, bool) {
	d := t.HopDistances(src)
	hops, ok := d[dst]
	return hops, ok
}

// HopDistances returns the hop count from src to every reachable node,
// including src itself at distance 0. Unreachable nodes are absent from the
// map. The tree is computed with gonum's Dijkstra over unit weights; only
// scalar distances are read from it, which are stable regardless of gonum's
// internal iteration order.
func (t *Topology) HopDistances(src string) map[string]int {
	if !t.HasNode(src) {
		return nil
	}
	g, index, ids := t.gonumGraph(nil, nil)
	tree := path.DijkstraFrom(simple.Node(index[src]), g)
	out := make(map[string]int, len(ids))
	for i, id := range ids {
		w := tree.WeightTo(int64(i))
		if math.IsInf(w, 1) {
			continue
		}
		out[id] = int(w)
	}
	return out
}

// gonumGraph converts the topology (minus any masked nodes/links) into a
// gonum weighted undirected graph with unit edge weights, plus the id<->index
// mapping. Indices follow the sorted node order.
func (t *Topology) gonumGraph(exNodes map[string]bool, exLinks map[LinkKey]bool) (*simple.WeightedUndirectedGraph, map[string]int64, []string) {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	ids := t.Nodes()
	index := make(map[string]int64, len(ids))
	kept := ids[:0:0]
	for _, id := range ids {
		if exNodes[id] {
			continue
		}
		index[id] = int64(len(kept))
		kept = append(kept, id)
		g.AddNode(simple.Node(index[id]))
	}
	for _, lk := range t.Links() {
		if exNodes[lk.A] || exNodes[lk.B] || exLinks[lk] {
			continue
		}
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(index[lk.A]),
			T: simple.Node(index[lk.B]),
			W: 1.0,
		})
	}
	return g, index, kept
}
