package align

import (
	"sort"

	"lra/graph"
	"lra/seqstore"
)

// Overlap places one edge hit inside a read: cur* coordinates index the
// read, ext* coordinates index the edge sequence.
type Overlap struct {
	CurID    seqstore.ReadID
	CurBegin int
	CurEnd   int
	CurLen   int
	ExtBegin int
	ExtEnd   int
	ExtLen   int
}

func (o Overlap) CurRange() int { return o.CurEnd - o.CurBegin }

type EdgeAlignment struct {
	Edge    *graph.Edge
	Overlap Overlap
}

// GraphAlignment is one read's chain of edge hits, ordered along the
// read.
type GraphAlignment []EdgeAlignment

// Aligner materializes read-to-graph alignments and keeps them in sync
// with graph mutations.
type Aligner struct {
	g          *graph.Graph
	alignments []GraphAlignment
}

func NewAligner(g *graph.Graph, alignments []GraphAlignment) *Aligner {
	return &Aligner{g: g, alignments: alignments}
}

func (a *Aligner) GetAlignments() []GraphAlignment {
	return a.alignments
}

// MakeAlignmentIndex maps every edge to the alignments that traverse
// it. An alignment visiting an edge several times is indexed once.
func (a *Aligner) MakeAlignmentIndex() map[*graph.Edge][]GraphAlignment {
	index := make(map[*graph.Edge][]GraphAlignment)
	for _, aln := range a.alignments {
		seen := make(map[*graph.Edge]bool)
		for _, ea := range aln {
			if seen[ea.Edge] {
				continue
			}
			seen[ea.Edge] = true
			index[ea.Edge] = append(index[ea.Edge], aln)
		}
	}
	return index
}

// UpdateAlignments drops hits to edges that left the graph and
// re-splits the surviving chains at the resulting gaps.
func (a *Aligner) UpdateAlignments() {
	var updated []GraphAlignment
	for _, aln := range a.alignments {
		var cur GraphAlignment
		for _, ea := range aln {
			if a.g.GetEdge(ea.Edge.ID) == ea.Edge {
				cur = append(cur, ea)
			} else if len(cur) > 0 {
				updated = append(updated, cur)
				cur = nil
			}
		}
		if len(cur) > 0 {
			updated = append(updated, cur)
		}
	}
	a.alignments = updated
}

// sortAlignments fixes a deterministic order: by read id, then read
// start of the first hit.
func sortAlignments(alns []GraphAlignment) {
	sort.SliceStable(alns, func(i, j int) bool {
		if alns[i][0].Overlap.CurID != alns[j][0].Overlap.CurID {
			return alns[i][0].Overlap.CurID < alns[j][0].Overlap.CurID
		}
		return alns[i][0].Overlap.CurBegin < alns[j][0].Overlap.CurBegin
	})
}
