package graph

import (
	"bytes"
	"fmt"
)

// UnbranchingPath is a maximal walk whose internal nodes all have
// in-degree = out-degree = 1. Its id is the id of the first edge.
type UnbranchingPath struct {
	ID           EdgeID
	Path         []*Edge
	Length       int
	MeanCoverage int
}

func (up *UnbranchingPath) NodeLeft() *Node  { return up.Path[0].NodeLeft }
func (up *UnbranchingPath) NodeRight() *Node { return up.Path[len(up.Path)-1].NodeRight }

func (up *UnbranchingPath) IsLooped() bool {
	return up.NodeLeft() == up.NodeRight()
}

func (up *UnbranchingPath) EdgesStr() string {
	var buf bytes.Buffer
	for i, e := range up.Path {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%v", e.ID)
	}
	return buf.String()
}

func passThrough(n *Node) bool {
	return len(n.InEdges) == 1 && len(n.OutEdges) == 1
}

// GetUnbranchingPaths extracts every maximal unbranching walk of the
// graph. Each edge belongs to exactly one path; a perfect cycle of
// pass-through nodes yields a looped path starting at its smallest id.
func (g *Graph) GetUnbranchingPaths() []*UnbranchingPath {
	visited := make(map[EdgeID]bool)
	var paths []*UnbranchingPath

	buildFrom := func(start *Edge) *UnbranchingPath {
		up := &UnbranchingPath{ID: start.ID}
		cur := start
		for {
			visited[cur.ID] = true
			up.Path = append(up.Path, cur)
			up.Length += cur.Length
			up.MeanCoverage += cur.MeanCoverage * cur.Length
			if !passThrough(cur.NodeRight) {
				break
			}
			next := cur.NodeRight.OutEdges[0]
			if visited[next.ID] || next == start {
				break
			}
			cur = next
		}
		if up.Length > 0 {
			up.MeanCoverage /= up.Length
		}
		return up
	}

	for _, e := range g.IterEdges() {
		if visited[e.ID] {
			continue
		}
		if passThrough(e.NodeLeft) {
			continue
		}
		paths = append(paths, buildFrom(e))
	}
	// the remaining edges sit on perfect cycles
	for _, e := range g.IterEdges() {
		if visited[e.ID] {
			continue
		}
		paths = append(paths, buildFrom(e))
	}
	return paths
}
