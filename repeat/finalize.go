package repeat

import (
	"fmt"

	"lra/graph"
	"lra/utils"
)

// FinalizeGraph undoes over-aggressive repeat marks on long
// high-confidence paths and applies the coverage subtractions queued
// during resolution.
func (r *Resolver) FinalizeGraph() {
	unbranchingPaths := r.g.GetUnbranchingPaths()
	for _, up := range unbranchingPaths {
		if !up.ID.Strand() {
			continue
		}

		highCoverage := up.MeanCoverage > r.uniqueCovThreshold

		if !up.Path[0].SelfComplement &&
			up.Path[0].Repetitive &&
			up.Length > r.cfg.UniqueEdgeLen &&
			(r.cfg.UnevenCoverage || !highCoverage) {
			for _, e := range up.Path {
				e.Repetitive = false
				r.g.ComplementEdge(e).Repetitive = false
			}
			fmt.Printf("[FinalizeGraph] fixed: %s\t%d\t%d\n", up.EdgesStr(), up.Length, up.MeanCoverage)
		}
	}

	// apply coverage subtractions made during repeat resolution
	for _, up := range unbranchingPaths {
		if up.IsLooped() {
			continue
		}
		for _, e := range up.Path {
			e.MeanCoverage = utils.MaxInt(0, e.MeanCoverage-r.subtractedCoverage[e])
		}
	}
}

// ResetSubtractedCoverage clears the deferred adjustments. The rr
// driver does not call it, so the adjustments queued over all passes
// are applied by its single FinalizeGraph call.
func (r *Resolver) ResetSubtractedCoverage() {
	r.subtractedCoverage = make(map[*graph.Edge]int)
}
