package graph

import (
	"fmt"
	"log"
	"sort"
)

// EdgeID is a signed edge identity. The reverse-complement edge of +id
// is -id; a self-complement edge is registered once and GetEdge
// returns it for both signs.
type EdgeID int32

func (id EdgeID) RC() EdgeID { return -id }

// Strand reports whether the id lies on the forward strand.
func (id EdgeID) Strand() bool { return id > 0 }

func (id EdgeID) String() string { return fmt.Sprintf("%+d", int32(id)) }

type NodeID int32

type Node struct {
	ID       NodeID
	InEdges  []*Edge
	OutEdges []*Edge
}

// IsEnd reports a degree-1 endpoint node.
func (n *Node) IsEnd() bool {
	return len(n.InEdges)+len(n.OutEdges) == 1
}

func (n *Node) IsBifurcation() bool {
	return len(n.InEdges) > 1 || len(n.OutEdges) > 1
}

// IsResolved reports a pass-through node whose incident edges have all
// been subsumed by separated paths.
func (n *Node) IsResolved() bool {
	if len(n.InEdges) != 1 || len(n.OutEdges) != 1 {
		return false
	}
	return n.InEdges[0].Resolved && n.OutEdges[0].Resolved
}

func (n *Node) Neighbors() []*Node {
	var nbs []*Node
	seen := make(map[*Node]bool)
	for _, e := range n.OutEdges {
		if e.NodeRight != n && !seen[e.NodeRight] {
			seen[e.NodeRight] = true
			nbs = append(nbs, e.NodeRight)
		}
	}
	for _, e := range n.InEdges {
		if e.NodeLeft != n && !seen[e.NodeLeft] {
			seen[e.NodeLeft] = true
			nbs = append(nbs, e.NodeLeft)
		}
	}
	return nbs
}

type Edge struct {
	ID             EdgeID
	NodeLeft       *Node
	NodeRight      *Node
	Length         int
	MeanCoverage   int
	Repetitive     bool
	Resolved       bool
	SelfComplement bool
	AltHaplotype   bool
	Unreliable     bool
	LeftLink       *Edge // sibling edge flanking an alternative-haplotype bubble
	RightLink      *Edge
	Seqs           []EdgeSeqID
}

func (e *Edge) IsRepetitive() bool { return e.Repetitive }

func (e *Edge) IsLooped() bool { return e.NodeLeft == e.NodeRight }

func (e *Edge) IsRightTerminal() bool { return e.NodeRight.IsEnd() }

func (e *Edge) String() string {
	return fmt.Sprintf("eID:%v l:%d cov:%d rep:%v res:%v", e.ID, e.Length, e.MeanCoverage, e.Repetitive, e.Resolved)
}

// EdgeSeqID addresses a registered edge sequence; its complement is the
// id with the lowest bit flipped, allocated pairwise.
type EdgeSeqID int32

func (sid EdgeSeqID) Complement() EdgeSeqID { return sid ^ 1 }

type EdgeSeqRecord struct {
	Name   string
	ReadID int64 // signed read identity in the sequence store
	Start  int
	Len    int
}

type Graph struct {
	edgeMap    map[EdgeID]*Edge
	nodes      []*Node
	seqsArr    []EdgeSeqRecord
	maxEdgeID  EdgeID
	nextNodeID NodeID
}

func NewGraph() *Graph {
	return &Graph{edgeMap: make(map[EdgeID]*Edge)}
}

func (g *Graph) AddNode() *Node {
	n := &Node{ID: g.nextNodeID}
	g.nextNodeID++
	g.nodes = append(g.nodes, n)
	return n
}

// AddEdge registers an edge under id. The caller adds the
// reverse-complement edge under -id itself; a self-complement edge is
// registered once with selfComplement set and answers for both signs.
func (g *Graph) AddEdge(id EdgeID, left, right *Node, length, meanCoverage int) *Edge {
	if id == 0 {
		log.Fatalf("[AddEdge] edge id 0 is reserved\n")
	}
	if _, ok := g.edgeMap[id]; ok {
		log.Fatalf("[AddEdge] duplicated edge id: %v\n", id)
	}
	e := &Edge{ID: id, NodeLeft: left, NodeRight: right, Length: length, MeanCoverage: meanCoverage}
	g.edgeMap[id] = e
	left.OutEdges = append(left.OutEdges, e)
	right.InEdges = append(right.InEdges, e)
	if id < 0 {
		id = -id
	}
	if id > g.maxEdgeID {
		g.maxEdgeID = id
	}
	return e
}

// NewEdgeID allocates a fresh forward-strand id; -id is implicitly
// reserved for the complement.
func (g *Graph) NewEdgeID() EdgeID {
	g.maxEdgeID++
	return g.maxEdgeID
}

func (g *Graph) GetEdge(id EdgeID) *Edge {
	if e, ok := g.edgeMap[id]; ok {
		return e
	}
	if e, ok := g.edgeMap[id.RC()]; ok && e.SelfComplement {
		return e
	}
	return nil
}

// IterEdges returns every live edge, ascending by absolute id with the
// forward strand first. The order is stable within one call.
func (g *Graph) IterEdges() []*Edge {
	ids := make([]EdgeID, 0, len(g.edgeMap))
	for id := range g.edgeMap {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ai, aj := ids[i], ids[j]
		if ai < 0 {
			ai = -ai
		}
		if aj < 0 {
			aj = -aj
		}
		if ai != aj {
			return ai < aj
		}
		return ids[i] > ids[j]
	})
	edges := make([]*Edge, 0, len(ids))
	for _, id := range ids {
		edges = append(edges, g.edgeMap[id])
	}
	return edges
}

func (g *Graph) IterNodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// ComplementEdge returns the reverse-complement partner of e. A missing
// partner is a defect of the graph construction, not a recoverable
// condition.
func (g *Graph) ComplementEdge(e *Edge) *Edge {
	if e.SelfComplement {
		return e
	}
	ce, ok := g.edgeMap[e.ID.RC()]
	if !ok {
		log.Fatalf("[ComplementEdge] edge %v has no reverse-complement partner\n", e.ID)
	}
	return ce
}

func (g *Graph) ComplementPath(path []*Edge) []*Edge {
	cp := make([]*Edge, len(path))
	for i, e := range path {
		cp[len(path)-1-i] = g.ComplementEdge(e)
	}
	return cp
}

// AddEdgeSequence registers a read substring as an edge sequence and
// returns its handle; the complementary segment is allocated alongside.
func (g *Graph) AddEdgeSequence(readID int64, readLen, start, length int, name string) EdgeSeqID {
	sid := EdgeSeqID(len(g.seqsArr))
	g.seqsArr = append(g.seqsArr, EdgeSeqRecord{Name: name, ReadID: readID, Start: start, Len: length})
	complStart := readLen - (start + length)
	g.seqsArr = append(g.seqsArr, EdgeSeqRecord{Name: name + "_compl", ReadID: -readID, Start: complStart, Len: length})
	return sid
}

func (g *Graph) GetEdgeSequence(sid EdgeSeqID) EdgeSeqRecord {
	return g.seqsArr[sid]
}

func removeEdgeFromSlice(arr []*Edge, e *Edge) []*Edge {
	for i, x := range arr {
		if x == e {
			return append(arr[:i], arr[i+1:]...)
		}
	}
	return arr
}

// SeparatePath detaches the interior of path behind a fresh edge
// carrying seq: the first edge is rerouted into a new node, the new
// edge bridges to a second new node feeding the last edge, and every
// interior edge is marked resolved. The caller runs it once per strand.
func (g *Graph) SeparatePath(path []*Edge, seq EdgeSeqID, newID EdgeID) *Edge {
	if len(path) < 2 {
		log.Fatalf("[SeparatePath] path of %d edges can not be separated\n", len(path))
	}
	first, last := path[0], path[len(path)-1]

	leftNode := g.AddNode()
	first.NodeRight.InEdges = removeEdgeFromSlice(first.NodeRight.InEdges, first)
	first.NodeRight = leftNode
	leftNode.InEdges = append(leftNode.InEdges, first)

	rightNode := g.AddNode()
	last.NodeLeft.OutEdges = removeEdgeFromSlice(last.NodeLeft.OutEdges, last)
	last.NodeLeft = rightNode
	rightNode.OutEdges = append(rightNode.OutEdges, last)

	rec := g.seqsArr[seq]
	cov := (first.MeanCoverage + last.MeanCoverage) / 2
	newEdge := g.AddEdge(newID, leftNode, rightNode, rec.Len, cov)
	newEdge.Seqs = append(newEdge.Seqs, seq)

	for _, e := range path[1 : len(path)-1] {
		e.Resolved = true
	}
	return newEdge
}

// RemoveNode drops the node and every edge incident to it, together
// with the complement edges.
func (g *Graph) RemoveNode(node *Node) {
	var incident []*Edge
	incident = append(incident, node.OutEdges...)
	incident = append(incident, node.InEdges...)
	for _, e := range incident {
		g.removeEdge(e)
		if !e.SelfComplement {
			if ce, ok := g.edgeMap[e.ID.RC()]; ok {
				g.removeEdge(ce)
			}
		}
	}
	for i, n := range g.nodes {
		if n == node {
			g.nodes[i] = nil
			break
		}
	}
}

func (g *Graph) removeEdge(e *Edge) {
	if _, ok := g.edgeMap[e.ID]; !ok {
		return
	}
	e.NodeLeft.OutEdges = removeEdgeFromSlice(e.NodeLeft.OutEdges, e)
	e.NodeRight.InEdges = removeEdgeFromSlice(e.NodeRight.InEdges, e)
	delete(g.edgeMap, e.ID)
}

func (g *Graph) EdgeNum() int { return len(g.edgeMap) }
