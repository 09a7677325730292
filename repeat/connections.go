package repeat

import (
	"fmt"

	"lra/align"
	"lra/graph"
	"lra/utils"
)

// GetConnections extracts connections between pairs of unique edges
// from read alignments. Every connection is emitted together with its
// reverse-complement twin.
func (r *Resolver) GetConnections() []Connection {
	safeEdge := func(e *graph.Edge) bool {
		return !e.IsRepetitive()
	}

	totalSafe := 0
	for _, e := range r.g.IterEdges() {
		if e.ID.Strand() && safeEdge(e) {
			totalSafe++
		}
	}
	fmt.Printf("[GetConnections] total unique edges: %d\n", totalSafe)

	minSpan := r.cfg.MinBridgeSpan
	var readConnections []Connection
	for _, readPath := range r.aligner.GetAlignments() {
		var currentAln align.GraphAlignment
		readStart := 0
		for _, ea := range readPath {
			if len(currentAln) == 0 {
				if !safeEdge(ea.Edge) {
					continue
				}
				readStart = ea.Overlap.CurEnd + ea.Overlap.ExtLen - ea.Overlap.ExtEnd
				readStart = utils.MinInt(readStart, ea.Overlap.CurLen-minSpan)
			}

			currentAln = append(currentAln, ea)
			if safeEdge(ea.Edge) && currentAln[0].Edge != ea.Edge {
				reliableConnection := true

				// if either edge does not block contig extension there
				// is nothing to resolve
				if !currentAln[0].Edge.NodeRight.IsBifurcation() ||
					!currentAln[len(currentAln)-1].Edge.NodeLeft.IsBifurcation() {
					reliableConnection = false
				}

				// don't connect edges that both were previously
				// repetitive and then became unique
				if currentAln[0].Edge.Resolved && currentAln[len(currentAln)-1].Edge.Resolved {
					reliableConnection = false
				}

				// don't connect edges already linked through an
				// alternative-haplotype structure
				if currentAln[0].Edge.RightLink != nil || currentAln[len(currentAln)-1].Edge.LeftLink != nil {
					reliableConnection = false
				}

				if !reliableConnection {
					currentAln = currentAln[:0]
					currentAln = append(currentAln, ea)
					readStart = ea.Overlap.CurEnd + ea.Overlap.ExtLen - ea.Overlap.ExtEnd
					readStart = utils.MinInt(readStart, ea.Overlap.CurLen-minSpan)
					continue
				}

				flankScore := utils.MinInt(currentAln[0].Overlap.CurRange(),
					currentAln[len(currentAln)-1].Overlap.CurRange())
				currentPath := make([]*graph.Edge, 0, len(currentAln))
				for _, a := range currentAln {
					currentPath = append(currentPath, a.Edge)
				}
				complPath := r.g.ComplementPath(currentPath)

				readEnd := ea.Overlap.CurBegin - ea.Overlap.ExtBegin
				// two consecutive unique edges leave no room for a
				// bridging substring; insert a tiny placeholder span
				readEnd = utils.MaxInt(readStart+minSpan-1, readEnd)
				if readStart < 0 || readEnd >= ea.Overlap.CurLen {
					fmt.Printf("[GetConnections] warning: malformed bridging read sequence: %d %d %d\n",
						readStart, readEnd, ea.Overlap.CurLen)
					break
				}

				readSeq := ReadSequence{ReadID: ea.Overlap.CurID, Start: readStart, End: readEnd}
				complRead := ReadSequence{
					ReadID: ea.Overlap.CurID.RC(),
					Start:  ea.Overlap.CurLen - readEnd - 1,
					End:    ea.Overlap.CurLen - readStart - 1,
				}
				readConnections = append(readConnections, Connection{currentPath, readSeq, flankScore})
				readConnections = append(readConnections, Connection{complPath, complRead, flankScore})

				currentAln = currentAln[:0]
				currentAln = append(currentAln, ea)
				readStart = ea.Overlap.CurEnd + ea.Overlap.ExtLen - ea.Overlap.ExtEnd
				readStart = utils.MinInt(readStart, ea.Overlap.CurLen-minSpan)
			}
		}
	}

	return readConnections
}
