package mesh

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Partitions labels each vertex with the id of its connected component. The
// labels are computed on first use and kept until the triangles change.
// Vertices that belong to no triangle get their own set. Ids are handed out
// in order of the lowest vertex of each set.
func (m *Mesh) Partitions() ([]int, int) {
	if m.sets != nil && len(m.sets) == len(m.Vertices) {
		return m.sets, m.nSets
	}
	g := simple.NewUndirectedGraph()
	for i := range m.Vertices {
		g.AddNode(simple.Node(i))
	}
	for _, t := range m.Triangles {
		for k := 0; k < 3; k++ {
			a, b := t.V[k], t.V[(k+1)%3]
			if a == b || g.HasEdgeBetween(int64(a), int64(b)) {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(a), simple.Node(b)))
		}
	}

	comp := make([]int, len(m.Vertices))
	for c, nodes := range topo.ConnectedComponents(g) {
		for _, n := range nodes {
			comp[n.ID()] = c
		}
	}
	ids := make(map[int]int)
	sets := make([]int, len(m.Vertices))
	for i, c := range comp {
		id, ok := ids[c]
		if !ok {
			id = len(ids)
			ids[c] = id
		}
		sets[i] = id
	}
	m.sets, m.nSets = sets, len(ids)
	return m.sets, m.nSets
}
