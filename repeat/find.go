package repeat

import (
	"fmt"
	"sort"

	"lra/align"
	"lra/graph"
	"lra/utils"
)

const (
	// reads that must see an edge twice before it counts as tandem
	neededTandemReads = 5
	// loops shorter than this may hide unglued tandem variation
	minReliableLoop = 5000
)

// checkForTandemCopies reports edges that single reads traverse more
// than once, endpoints of the alignment excluded.
func (r *Resolver) checkForTandemCopies(checkEdge *graph.Edge, alignments []align.GraphAlignment) bool {
	readEvidence := 0
	for _, aln := range alignments {
		numCopies := 0
		// only copies fully covered by reads
		for i := 1; i+1 < len(aln); i++ {
			if aln[i].Edge == checkEdge {
				numCopies++
			}
		}
		if numCopies > 1 {
			readEvidence++
		}
	}
	return readEvidence >= neededTandemReads
}

// checkByReadExtension tests whether reads entering checkEdge leave it
// into more than one distinct unique edge, which marks checkEdge as a
// repeat entrance.
func (r *Resolver) checkByReadExtension(checkEdge *graph.Edge, alignments []align.GraphAlignment) bool {
	outFlanks := make(map[*graph.Edge][]int)
	outSpans := make(map[*graph.Edge][]int)
	var outOrder []*graph.Edge
	lowerBound := 0
	for _, aln := range alignments {
		passedStart := false
		leftFlank := 0
		leftCoord := 0
		foundUnique := false
		for i := 0; i < len(aln); i++ {
			if !passedStart && aln[i].Edge == checkEdge {
				passedStart = true
				leftFlank = aln[i].Overlap.CurEnd - aln[0].Overlap.CurBegin
				leftCoord = aln[i].Overlap.CurEnd
				continue
			}
			if passedStart && !aln[i].Edge.Repetitive {
				if aln[i].Edge.ID != checkEdge.ID &&
					aln[i].Edge.ID != checkEdge.ID.RC() {
					rightFlank := aln[len(aln)-1].Overlap.CurEnd - aln[i].Overlap.CurBegin
					alnSpan := aln[i].Overlap.CurBegin - leftCoord
					if _, ok := outFlanks[aln[i].Edge]; !ok {
						outOrder = append(outOrder, aln[i].Edge)
					}
					outFlanks[aln[i].Edge] = append(outFlanks[aln[i].Edge], utils.MinInt(leftFlank, rightFlank))
					outSpans[aln[i].Edge] = append(outSpans[aln[i].Edge], alnSpan)
				}
				foundUnique = true
				break
			}
		}
		if !foundUnique {
			lowerBound = utils.MaxInt(lowerBound, aln[len(aln)-1].Overlap.CurBegin-leftCoord)
		}
	}

	maxSupport := 0
	for _, flanks := range outFlanks {
		if maxSupport < len(flanks) {
			maxSupport = len(flanks)
		}
	}

	minSupport := maxSupport / r.cfg.OutPathsRatio
	// one extension backed by more than one read raises the floor to 1
	if maxSupport > 1 {
		minSupport = utils.MaxInt(minSupport, 1)
	}

	uniqueMult := 0
	for _, flanks := range outFlanks {
		if len(flanks) > minSupport {
			uniqueMult++
		}
	}

	if uniqueMult > 1 {
		fmt.Printf("[checkByReadExtension] starting %v aln:%d minSpan:%d\n",
			checkEdge.ID, len(alignments), lowerBound)
		for _, e := range outOrder {
			flanks := outFlanks[e]
			maxFlank := flanks[0]
			for _, f := range flanks {
				maxFlank = utils.MaxInt(maxFlank, f)
			}
			minSpan := outSpans[e][0]
			for _, s := range outSpans[e] {
				minSpan = utils.MinInt(minSpan, s)
			}
			star, loop, tip := " ", " ", " "
			if e.Repetitive {
				star = "R"
			}
			if e.IsLooped() {
				loop = "L"
			}
			if e.IsRightTerminal() {
				tip = "T"
			}
			fmt.Printf("\t%s %s %s %v\tnum:%d\tflank:%d\tspan:%d\n",
				star, loop, tip, e.ID, len(flanks), maxFlank, minSpan)
		}
		return true
	}
	return false
}

// FindRepeats classifies all edges into unique and repetitive based on
// coverage, topology and read alignments.
func (r *Resolver) FindRepeats() {
	fmt.Printf("[FindRepeats] finding repeats\n")

	alnIndex := r.aligner.MakeAlignmentIndex()

	// all edges are unique at the beginning
	for _, e := range r.g.IterEdges() {
		e.Repetitive = false
	}

	unbranchingPaths := r.g.GetUnbranchingPaths()
	idToPath := make(map[graph.EdgeID]*graph.UnbranchingPath)
	for _, up := range unbranchingPaths {
		idToPath[up.ID] = up
	}
	markRepetitive := func(up *graph.UnbranchingPath) {
		for _, e := range up.Path {
			e.Repetitive = true
		}
	}

	// simpler conditions that need no read alignment
	for _, up := range unbranchingPaths {
		if !up.ID.Strand() {
			continue
		}

		// high coverage paths are collapsed repeat copies
		if !r.cfg.UnevenCoverage && up.MeanCoverage > r.uniqueCovThreshold {
			markRepetitive(up)
			markRepetitive(complPathOf(idToPath, up))
			fmt.Printf("[FindRepeats] high-cov: %s\t%d\t%d\n", up.EdgesStr(), up.Length, up.MeanCoverage)
		}

		// don't trust short loops, they might contain unglued tandem
		// repeat variations
		if up.IsLooped() && up.Length < minReliableLoop {
			markRepetitive(up)
			markRepetitive(complPathOf(idToPath, up))
			fmt.Printf("[FindRepeats] short-loop: %s\n", up.EdgesStr())
		}

		// mask self-complements
		for _, e := range up.Path {
			if e.SelfComplement {
				markRepetitive(up)
				markRepetitive(complPathOf(idToPath, up))
				fmt.Printf("[FindRepeats] self-compl: %s\n", up.EdgesStr())
				break
			}
		}

		// mask haplo-edges so they don't mess up repeat resolution
		for _, e := range up.Path {
			if e.AltHaplotype {
				markRepetitive(up)
				markRepetitive(complPathOf(idToPath, up))
				fmt.Printf("[FindRepeats] haplo-edge: %s\n", up.EdgesStr())
				break
			}
		}

		// mask unreliable edges with low coverage
		for _, e := range up.Path {
			if e.Unreliable {
				markRepetitive(up)
				markRepetitive(complPathOf(idToPath, up))
				fmt.Printf("[FindRepeats] unreliable: %s\n", up.EdgesStr())
				break
			}
		}

		// mask edges that appear multiple times within single reads
		for _, e := range up.Path {
			if !e.Repetitive && r.checkForTandemCopies(e, alnIndex[e]) {
				markRepetitive(up)
				markRepetitive(complPathOf(idToPath, up))
				fmt.Printf("[FindRepeats] tandem: %s\n", up.EdgesStr())
				break
			}
		}
	}

	// finally, using the read alignments; process short paths first
	sortedPaths := make([]*graph.UnbranchingPath, len(unbranchingPaths))
	copy(sortedPaths, unbranchingPaths)
	sort.SliceStable(sortedPaths, func(i, j int) bool {
		return sortedPaths[i].Length < sortedPaths[j].Length
	})

	// with uneven coverage do 2 passes, small edges inside mosaic
	// repeats might not be detected on the first one
	numIters := 1
	if r.cfg.UnevenCoverage {
		numIters = 2
	}
	for iter := 0; iter < numIters; iter++ {
		fmt.Printf("[FindRepeats] repeat detection iteration %d\n", iter+1)
		for _, up := range sortedPaths {
			if !up.ID.Strand() {
				continue
			}
			if up.Path[0].Repetitive {
				continue
			}

			rightAnchor := up.Path[len(up.Path)-1]
			complUp := complPathOf(idToPath, up)
			complAnchor := complUp.Path[len(complUp.Path)-1]
			rightRepeat := r.checkByReadExtension(rightAnchor, alnIndex[rightAnchor])
			leftRepeat := r.checkByReadExtension(complAnchor, alnIndex[complAnchor])
			if rightRepeat || leftRepeat {
				markRepetitive(up)
				markRepetitive(complUp)
				fmt.Printf("[FindRepeats] mult: %s\t%d\t%d\t(%v,%v)\n",
					up.EdgesStr(), up.Length, up.MeanCoverage, leftRepeat, rightRepeat)
			}
		}
	}

	r.propagateRepeatMarks()
}

// propagateRepeatMarks extends repetitiveness through pass-through
// nodes and haplotype-bubble links until a branching or
// already-repetitive neighbor stops the walk.
func (r *Resolver) propagateRepeatMarks() {
	for _, e := range r.g.IterEdges() {
		if !e.Repetitive {
			continue
		}

		cur := e
		for {
			cur.Repetitive = true
			if len(cur.NodeRight.InEdges) == 1 && len(cur.NodeRight.OutEdges) == 1 &&
				!cur.NodeRight.OutEdges[0].Repetitive {
				cur = cur.NodeRight.OutEdges[0]
			} else if cur.RightLink != nil && !cur.RightLink.Repetitive {
				cur = cur.RightLink
			} else {
				break
			}
		}
		cur = e
		for {
			cur.Repetitive = true
			if len(cur.NodeLeft.InEdges) == 1 && len(cur.NodeLeft.OutEdges) == 1 &&
				!cur.NodeLeft.InEdges[0].Repetitive {
				cur = cur.NodeLeft.InEdges[0]
			} else if cur.LeftLink != nil && !cur.LeftLink.Repetitive {
				cur = cur.LeftLink
			} else {
				break
			}
		}
	}
}
