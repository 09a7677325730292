package repeat

import (
	"fmt"
	"sort"

	"lra/graph"
	"lra/utils"
)

// reads that must agree before an input and an output edge are grouped
const minJctSupport = 2

// ResolveSimpleRepeats handles short ambiguous repeats the global
// matching missed: a single unbranching path with as many inputs as
// outputs, untangled by clustering the in/out edges that bridging
// reads connect. Loops (same edge as input and output) are left alone.
func (r *Resolver) ResolveSimpleRepeats() int {
	alnIndex := r.aligner.MakeAlignmentIndex()

	unbranchingPaths := r.g.GetUnbranchingPaths()
	candidateEdges := 0

	var resolvedConnections []Connection
	for _, pathToResolve := range unbranchingPaths {
		if !pathToResolve.ID.Strand() {
			continue
		}
		if pathToResolve.Path[0].SelfComplement {
			continue
		}

		nodeLeft := pathToResolve.NodeLeft()
		nodeRight := pathToResolve.NodeRight()
		inputs := nodeLeft.InEdges
		outputs := nodeRight.OutEdges
		if len(nodeLeft.OutEdges) != 1 || len(nodeRight.InEdges) != 1 ||
			len(inputs) != len(outputs) || len(inputs) <= 1 {
			continue
		}
		outputSet := make(map[*graph.Edge]bool)
		for _, e := range outputs {
			outputSet[e] = true
		}

		candidateEdges++
		connections := make(map[*graph.Edge]map[*graph.Edge]int)
		bridgingReads := make(map[*graph.Edge]map[*graph.Edge]ReadSequence)
		for _, inEdge := range inputs {
			connections[inEdge] = make(map[*graph.Edge]int)
			bridgingReads[inEdge] = make(map[*graph.Edge]ReadSequence)
			for _, aln := range alnIndex[inEdge] {
				for i := 0; i < len(aln); i++ {
					if aln[i].Edge != inEdge {
						continue
					}
					for j := i + 1; j < len(aln); j++ {
						if outputSet[aln[j].Edge] {
							connections[inEdge][aln[j].Edge]++
							bridgingReads[inEdge][aln[j].Edge] = ReadSequence{
								ReadID: aln[i].Overlap.CurID,
								Start:  aln[i].Overlap.CurEnd,
								End:    aln[j].Overlap.CurBegin,
							}
							break
						}
					}
				}
			}
		}

		// cluster inputs and outputs connected by enough reads
		elements := make([]*graph.Edge, 0, len(inputs)+len(outputs))
		elements = append(elements, inputs...)
		elements = append(elements, outputs...)
		edgeToElement := make(map[*graph.Edge]int)
		for i, e := range elements {
			edgeToElement[e] = i
		}
		ds := utils.NewDisjointSet(len(elements))
		for _, inEdge := range inputs {
			for outEdge, count := range connections[inEdge] {
				if count >= minJctSupport {
					ds.Union(edgeToElement[inEdge], edgeToElement[outEdge])
				}
			}
		}

		inputSet := make(map[*graph.Edge]bool)
		for _, e := range inputs {
			inputSet[e] = true
		}
		groups := ds.Groups()
		roots := make([]int, 0, len(groups))
		for root := range groups {
			roots = append(roots, root)
		}
		sort.Ints(roots)
		for _, root := range roots {
			cl := groups[root]
			var inputConn, outputConn *graph.Edge
			if len(cl) == 2 {
				for _, idx := range cl {
					if inputSet[elements[idx]] {
						inputConn = elements[idx]
					}
					if outputSet[elements[idx]] {
						outputConn = elements[idx]
					}
				}
			}
			if inputConn != nil && outputConn != nil && inputConn != outputConn {
				connPath := make([]*graph.Edge, 0, len(pathToResolve.Path)+2)
				connPath = append(connPath, inputConn)
				connPath = append(connPath, pathToResolve.Path...)
				connPath = append(connPath, outputConn)
				resolvedConnections = append(resolvedConnections,
					Connection{connPath, bridgingReads[inputConn][outputConn], 0})
			}
		}
	}

	// separate the repeats on the graph
	for _, conn := range resolvedConnections {
		fmt.Printf("[ResolveSimpleRepeats]\tconnection %v\t%v\n",
			conn.Path[0].ID, conn.Path[len(conn.Path)-1].ID)
		r.separateConnection(conn)
	}

	fmt.Printf("[ResolveSimpleRepeats] resolved %d simple repeats of %d candidates\n",
		len(resolvedConnections), candidateEdges)
	r.aligner.UpdateAlignments()
	return len(resolvedConnections)
}
