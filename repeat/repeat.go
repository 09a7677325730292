// Package repeat classifies assembly-graph edges into unique and
// repetitive ones and untangles the repeats with bridging long reads.
package repeat

import (
	"sort"

	"lra/align"
	"lra/graph"
	"lra/seqstore"
	"lra/utils"
)

// ReadSequence addresses the bridging substring [Start, End) of a read.
type ReadSequence struct {
	ReadID seqstore.ReadID
	Start  int
	End    int
}

func (rs ReadSequence) Length() int { return rs.End - rs.Start }

// Connection records one read bridging two unique anchor edges across
// a repeat: the first and last path edges are the anchors, the
// interior is the repeat.
type Connection struct {
	Path       []*graph.Edge
	ReadSeq    ReadSequence
	FlankScore int
}

// Resolver owns the auxiliary state of one repeat-resolution run; the
// graph, read store and aligner are borrowed from the driver.
type Resolver struct {
	g                  *graph.Graph
	store              *seqstore.Store
	aligner            *align.Aligner
	cfg                utils.CfgInfo
	uniqueCovThreshold int
	subtractedCoverage map[*graph.Edge]int
}

func NewResolver(g *graph.Graph, store *seqstore.Store, aligner *align.Aligner, cfg utils.CfgInfo) *Resolver {
	r := &Resolver{
		g: g, store: store, aligner: aligner, cfg: cfg,
		subtractedCoverage: make(map[*graph.Edge]int),
	}
	r.uniqueCovThreshold = estimateUniqueCovThreshold(g)
	return r
}

// SetUniqueCovThreshold overrides the inferred unique-coverage cutoff.
func (r *Resolver) SetUniqueCovThreshold(t int) { r.uniqueCovThreshold = t }

func (r *Resolver) GetUniqueCovThreshold() int { return r.uniqueCovThreshold }

// SubtractedCoverage exposes the deferred coverage adjustments queued
// during resolution. FinalizeGraph applies it without clearing it;
// ResetSubtractedCoverage clears it.
func (r *Resolver) SubtractedCoverage() map[*graph.Edge]int { return r.subtractedCoverage }

// estimateUniqueCovThreshold infers the coverage cutoff above which an
// edge is unlikely to be a single-copy region: twice the
// length-weighted median coverage of the unbranching paths.
func estimateUniqueCovThreshold(g *graph.Graph) int {
	type covLen struct {
		cov, length int
	}
	var arr []covLen
	total := 0
	for _, up := range g.GetUnbranchingPaths() {
		if !up.ID.Strand() {
			continue
		}
		arr = append(arr, covLen{up.MeanCoverage, up.Length})
		total += up.Length
	}
	if total == 0 {
		return 0
	}
	sort.Slice(arr, func(i, j int) bool { return arr[i].cov < arr[j].cov })
	acc := 0
	median := arr[len(arr)-1].cov
	for _, cl := range arr {
		acc += cl.length
		if acc*2 >= total {
			median = cl.cov
			break
		}
	}
	return median * 2
}

// complPathOf resolves the reverse-complement unbranching path; a
// self-complement path maps to itself.
func complPathOf(idToPath map[graph.EdgeID]*graph.UnbranchingPath, up *graph.UnbranchingPath) *graph.UnbranchingPath {
	if cp, ok := idToPath[up.ID.RC()]; ok {
		return cp
	}
	return up
}
