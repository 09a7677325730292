package graph

import (
	"os"
	"path/filepath"
	"testing"
)

type builder struct {
	g     *Graph
	nodes map[string]*Node
}

func newBuilder() *builder {
	return &builder{g: NewGraph(), nodes: make(map[string]*Node)}
}

func (b *builder) n(name string) *Node {
	if node, ok := b.nodes[name]; ok {
		return node
	}
	node := b.g.AddNode()
	b.nodes[name] = node
	return node
}

// pair adds a forward edge and its reverse complement between the
// mirrored nodes (X maps to X~).
func (b *builder) pair(id int, from, to string, length, cov int) *Edge {
	e := b.g.AddEdge(EdgeID(id), b.n(from), b.n(to), length, cov)
	b.g.AddEdge(EdgeID(-id), b.n(to+"~"), b.n(from+"~"), length, cov)
	return e
}

func TestComplementEdge(t *testing.T) {
	b := newBuilder()
	e := b.pair(1, "a", "b", 100, 10)
	ce := b.g.ComplementEdge(e)
	if ce.ID != -1 {
		t.Fatalf("complement of +1 is %v", ce.ID)
	}
	if b.g.ComplementEdge(ce) != e {
		t.Fatalf("complement is not an involution")
	}
}

func TestSelfComplement(t *testing.T) {
	b := newBuilder()
	e := b.g.AddEdge(5, b.n("a"), b.n("b"), 100, 10)
	e.SelfComplement = true
	if b.g.ComplementEdge(e) != e {
		t.Fatalf("self-complement edge must map to itself")
	}
	if b.g.GetEdge(-5) != e {
		t.Fatalf("self-complement edge must answer for both signs")
	}
}

func TestComplementPath(t *testing.T) {
	b := newBuilder()
	e1 := b.pair(1, "a", "b", 100, 10)
	e2 := b.pair(2, "b", "c", 100, 10)
	cp := b.g.ComplementPath([]*Edge{e1, e2})
	if len(cp) != 2 || cp[0].ID != -2 || cp[1].ID != -1 {
		t.Fatalf("bad complement path: %v %v", cp[0].ID, cp[1].ID)
	}
}

func TestIterEdgesStable(t *testing.T) {
	b := newBuilder()
	b.pair(2, "a", "b", 100, 10)
	b.pair(1, "b", "c", 100, 10)
	edges := b.g.IterEdges()
	want := []EdgeID{1, -1, 2, -2}
	if len(edges) != len(want) {
		t.Fatalf("expected %d edges, got %d", len(want), len(edges))
	}
	for i, e := range edges {
		if e.ID != want[i] {
			t.Fatalf("edge %d: expected %v, got %v", i, want[i], e.ID)
		}
	}
}

func TestNodePredicates(t *testing.T) {
	b := newBuilder()
	b.pair(1, "a", "b", 100, 10)
	b.pair(2, "b", "c", 100, 10)
	b.pair(3, "b", "d", 100, 10)
	if !b.n("a").IsEnd() {
		t.Fatalf("node a should be an end")
	}
	if !b.n("b").IsBifurcation() {
		t.Fatalf("node b should be a bifurcation")
	}
	if b.n("b").IsEnd() {
		t.Fatalf("node b is not an end")
	}
}

func TestUnbranchingPaths(t *testing.T) {
	b := newBuilder()
	// a -1-> b -2-> c -3-> d with b,c pass-through
	b.pair(1, "a", "b", 100, 10)
	b.pair(2, "b", "c", 200, 20)
	b.pair(3, "c", "d", 100, 10)
	paths := b.g.GetUnbranchingPaths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 unbranching paths, got %d", len(paths))
	}
	var fwd *UnbranchingPath
	for _, up := range paths {
		if up.ID == 1 {
			fwd = up
		}
	}
	if fwd == nil {
		t.Fatalf("forward path not found")
	}
	if len(fwd.Path) != 3 || fwd.Length != 400 {
		t.Fatalf("bad forward path: %s length %d", fwd.EdgesStr(), fwd.Length)
	}
	wantCov := (100*10 + 200*20 + 100*10) / 400
	if fwd.MeanCoverage != wantCov {
		t.Fatalf("expected mean coverage %d, got %d", wantCov, fwd.MeanCoverage)
	}
	if fwd.IsLooped() {
		t.Fatalf("chain must not be looped")
	}
}

func TestUnbranchingLoop(t *testing.T) {
	b := newBuilder()
	e := b.pair(1, "a", "a", 4999, 10)
	paths := b.g.GetUnbranchingPaths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	for _, up := range paths {
		if !up.IsLooped() {
			t.Fatalf("loop path not detected: %s", up.EdgesStr())
		}
	}
	_ = e
}

func TestSeparatePath(t *testing.T) {
	b := newBuilder()
	e1 := b.pair(1, "a", "b", 100, 12)
	er := b.pair(9, "b", "c", 50, 30)
	e2 := b.pair(2, "c", "d", 100, 8)
	er.Repetitive = true
	b.g.GetEdge(-9).Repetitive = true

	newID := b.g.NewEdgeID()
	seq := b.g.AddEdgeSequence(1, 600, 200, 150, "edge_test")
	newEdge := b.g.SeparatePath([]*Edge{e1, er, e2}, seq, newID)

	if newEdge.Length != 150 {
		t.Fatalf("new edge length %d", newEdge.Length)
	}
	if newEdge.MeanCoverage != 10 {
		t.Fatalf("new edge coverage %d, expected anchor mean 10", newEdge.MeanCoverage)
	}
	if !er.Resolved {
		t.Fatalf("interior edge must be marked resolved")
	}
	if e1.Resolved || e2.Resolved {
		t.Fatalf("anchor edges must not be marked resolved")
	}
	if e1.NodeRight != newEdge.NodeLeft || e2.NodeLeft != newEdge.NodeRight {
		t.Fatalf("anchors not rerouted through the new edge")
	}
	if len(b.n("b").InEdges) != 0 {
		t.Fatalf("old junction still receives the first anchor")
	}

	rec := b.g.GetEdgeSequence(seq)
	crec := b.g.GetEdgeSequence(seq.Complement())
	if rec.ReadID != 1 || crec.ReadID != -1 {
		t.Fatalf("bad edge sequence read ids: %d %d", rec.ReadID, crec.ReadID)
	}
	if crec.Start != 600-(200+150) || crec.Len != 150 {
		t.Fatalf("bad complement sequence coords: %d %d", crec.Start, crec.Len)
	}
}

func TestRemoveNode(t *testing.T) {
	b := newBuilder()
	b.pair(1, "a", "b", 100, 10)
	b.pair(2, "b", "c", 100, 10)
	before := b.g.EdgeNum()
	b.g.RemoveNode(b.n("b"))
	// both incident edge pairs disappear
	if b.g.EdgeNum() != before-4 {
		t.Fatalf("expected %d edges, got %d", before-4, b.g.EdgeNum())
	}
	if b.g.GetEdge(1) != nil || b.g.GetEdge(-2) != nil {
		t.Fatalf("removed edges still reachable")
	}
}

func TestGraphIORoundTrip(t *testing.T) {
	b := newBuilder()
	e1 := b.pair(1, "a", "b", 100, 10)
	e2 := b.pair(2, "b", "c", 200, 20)
	e1.Repetitive = true
	b.g.GetEdge(-1).Repetitive = true
	e2.RightLink = e1

	fn := filepath.Join(t.TempDir(), "test.graph.zst")
	WriteGraphToFn(b.g, fn)
	g2 := LoadGraphFromFn(fn)

	if g2.EdgeNum() != b.g.EdgeNum() {
		t.Fatalf("edge count changed: %d vs %d", g2.EdgeNum(), b.g.EdgeNum())
	}
	le1 := g2.GetEdge(1)
	if le1 == nil || !le1.Repetitive || le1.Length != 100 || le1.MeanCoverage != 10 {
		t.Fatalf("edge +1 not restored: %v", le1)
	}
	le2 := g2.GetEdge(2)
	if le2.RightLink == nil || le2.RightLink.ID != 1 {
		t.Fatalf("right link not restored")
	}
	if g2.ComplementEdge(le1).ID != -1 {
		t.Fatalf("complement pairing not restored")
	}
	os.Remove(fn)
}
