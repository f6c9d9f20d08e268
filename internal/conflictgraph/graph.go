// Package conflictgraph builds and represents the undirected conflict graph
// of spec.md §4.1: vertices are (possibly merged) courses, edges mark
// "cannot share a slot" because some student is enrolled in both.
//
// Vertex identity is a dense integer mapped from the course identity tag
// (spec.md §9 design note on CSR-style adjacency), and each vertex's
// neighbour set is a hashicorp/go-set rather than a bare map, giving O(1)
// membership with a typed collection instead of map[string]map[string]bool.
package conflictgraph

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/enroll"
	"github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"
)

// Graph is a read-only snapshot once Build returns: the driver and solver
// stages never mutate it (spec.md §5, "Shared resources").
type Graph struct {
	courses   []model.CourseID
	index     map[model.CourseID]int
	adjacency []*set.Set[int]
}

// Build constructs the conflict graph from a normalised enrolment relation.
// For every student enrolled in k courses it adds the complete clique among
// those k vertices (spec.md §4.1). Building cost is O(Σ k²) over students.
func Build(n *enroll.Normalised) *Graph {
	courses := n.Courses()
	g := &Graph{
		courses:   courses,
		index:     make(map[model.CourseID]int, len(courses)),
		adjacency: make([]*set.Set[int], len(courses)),
	}
	for i, c := range courses {
		g.index[c] = i
		g.adjacency[i] = set.New[int](0)
	}

	for _, courseSet := range n.StudentToCourses {
		members := courseSet.Slice()
		for i := 0; i < len(members); i++ {
			ui, ok := g.index[members[i]]
			if !ok {
				continue
			}
			for j := i + 1; j < len(members); j++ {
				vi, ok := g.index[members[j]]
				if !ok || vi == ui {
					continue
				}
				g.adjacency[ui].Insert(vi)
				g.adjacency[vi].Insert(ui)
			}
		}
	}
	return g
}

// NumVertices returns |V|.
func (g *Graph) NumVertices() int { return len(g.courses) }

// CourseAt returns the course identity for dense vertex index v.
func (g *Graph) CourseAt(v int) model.CourseID { return g.courses[v] }

// IndexOf returns the dense vertex index for a course identity.
func (g *Graph) IndexOf(c model.CourseID) (int, bool) {
	i, ok := g.index[c]
	return i, ok
}

// Degree returns |neighbours(v)|.
func (g *Graph) Degree(v int) int { return g.adjacency[v].Size() }

// Neighbors returns the dense vertex indices adjacent to v.
func (g *Graph) Neighbors(v int) []int { return g.adjacency[v].Slice() }

// HasEdge reports whether u and v are adjacent.
func (g *Graph) HasEdge(u, v int) bool { return g.adjacency[u].Contains(v) }

// NumEdges returns |E|.
func (g *Graph) NumEdges() int {
	total := 0
	for _, n := range g.adjacency {
		total += n.Size()
	}
	return total / 2
}

// MaxDegree returns the maximum vertex degree, used for the Δ+1 colour
// lower bound (spec.md §4.7 step 2).
func (g *Graph) MaxDegree() int {
	max := 0
	for v := range g.adjacency {
		if d := g.Degree(v); d > max {
			max = d
		}
	}
	return max
}
