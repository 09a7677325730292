package repeat

import (
	"fmt"
	"sort"

	"lra/graph"
	"lra/matching"
)

// separateConnection materializes one resolved connection: a fresh
// edge id, an edge sequence cut from the bridging read, and a path
// separation on both strands. Interior repeat edges get the new edge's
// coverage queued for subtraction at finalization.
func (r *Resolver) separateConnection(conn Connection) {
	edgeID := r.g.NewEdgeID()

	name := fmt.Sprintf("edge_%v_0_%s_%d_%d", edgeID,
		r.store.Description(conn.ReadSeq.ReadID), conn.ReadSeq.Start, conn.ReadSeq.End)
	readLen := r.store.GetLen(conn.ReadSeq.ReadID)
	edgeSeq := r.g.AddEdgeSequence(int64(conn.ReadSeq.ReadID), readLen,
		conn.ReadSeq.Start, conn.ReadSeq.Length(), name)

	newEdge := r.g.SeparatePath(conn.Path, edgeSeq, edgeID)
	complPath := make([]*graph.Edge, len(conn.Path))
	for i, e := range conn.Path {
		complPath[len(conn.Path)-1-i] = r.g.ComplementEdge(e)
	}
	complEdge := r.g.SeparatePath(complPath, edgeSeq.Complement(), edgeID.RC())

	for _, e := range conn.Path[1 : len(conn.Path)-1] {
		r.subtractedCoverage[e] += newEdge.MeanCoverage
	}
	for _, e := range complPath[1 : len(complPath)-1] {
		r.subtractedCoverage[e] += complEdge.MeanCoverage
	}
}

// ResolveConnections formulates the connections as a weighted
// transition graph, solves a maximum-weight matching on it and rewires
// every confidently matched pair. Returns the number of resolved
// repeats.
func (r *Resolver) ResolveConnections(connections []Connection, minSupport float64) int {
	connectIndex := make(map[graph.EdgeID][]*Connection)
	for i := range connections {
		conn := &connections[i]
		frontID := conn.Path[0].ID
		backID := conn.Path[len(conn.Path)-1].ID
		connectIndex[frontID] = append(connectIndex[frontID], conn)
		connectIndex[frontID.RC()] = append(connectIndex[frontID.RC()], conn)
		connectIndex[backID] = append(connectIndex[backID], conn)
		connectIndex[backID.RC()] = append(connectIndex[backID.RC()], conn)
	}

	// transition graph: one node per signed anchor identity, edge
	// weight counts the connections joining the two sides
	leftCoverage := make(map[graph.EdgeID]int)
	rightCoverage := make(map[graph.EdgeID]int)
	asmToNode := make(map[graph.EdgeID]int)
	var nodeToAsm []graph.EdgeID
	var transEdges []matching.WeightedEdge
	edgeIdx := make(map[[2]int]int)

	getNode := func(id graph.EdgeID) int {
		if n, ok := asmToNode[id]; ok {
			return n
		}
		n := len(nodeToAsm)
		asmToNode[id] = n
		nodeToAsm = append(nodeToAsm, id)
		return n
	}

	for i := range connections {
		conn := &connections[i]
		leftEdge := conn.Path[0]
		rightEdge := conn.Path[len(conn.Path)-1]

		if leftEdge.ID == rightEdge.ID || leftEdge.ID == rightEdge.ID.RC() {
			continue
		}

		leftCoverage[leftEdge.ID]++
		rightCoverage[rightEdge.ID.RC()]++

		ln := getNode(leftEdge.ID)
		rn := getNode(rightEdge.ID.RC())
		key := [2]int{ln, rn}
		if ln > rn {
			key = [2]int{rn, ln}
		}
		if idx, ok := edgeIdx[key]; ok {
			transEdges[idx].Weight++
		} else {
			edgeIdx[key] = len(transEdges)
			transEdges = append(transEdges, matching.WeightedEdge{U: ln, V: rn, Weight: 1})
		}
	}

	mate := matching.MaxWeightMatching(len(nodeToAsm), transEdges)

	// convert the matching into resolved paths; nodes are visited in
	// ascending index which fixes the tie-breaking deterministically
	usedEdges := make(map[graph.EdgeID]bool)
	var uniqueConnections []Connection
	unresolvedLinks := 0
	for n := 0; n < len(nodeToAsm); n++ {
		if mate[n] == -1 {
			continue
		}
		leftID := nodeToAsm[n]
		rightID := nodeToAsm[mate[n]]
		key := [2]int{n, mate[n]}
		if n > mate[n] {
			key = [2]int{mate[n], n}
		}
		support := transEdges[edgeIdx[key]].Weight

		if usedEdges[leftID] {
			continue
		}
		usedEdges[rightID] = true

		confidence := float64(support) / float64(leftCoverage[leftID]+rightCoverage[rightID])
		fmt.Printf("[ResolveConnections]\tconnection %v\t%v\t%d\t%f\n",
			leftID, rightID.RC(), support/4, confidence)

		if confidence < minSupport {
			unresolvedLinks++
			continue
		}

		var spanningConnections []Connection
		for _, conn := range connectIndex[leftID] {
			frontID := conn.Path[0].ID
			backID := conn.Path[len(conn.Path)-1].ID
			if (frontID == leftID && backID == rightID.RC()) ||
				(frontID == rightID && backID == leftID.RC()) {
				spanningConnections = append(spanningConnections, *conn)
			}
		}
		if len(spanningConnections) == 0 {
			fmt.Printf("[ResolveConnections] warning: empty spanning connections\n")
			continue
		}
		sort.SliceStable(spanningConnections, func(i, j int) bool {
			return spanningConnections[i].ReadSeq.Length() < spanningConnections[j].ReadSeq.Length()
		})
		uniqueConnections = append(uniqueConnections, spanningConnections[len(spanningConnections)/2])
	}

	for _, conn := range uniqueConnections {
		r.separateConnection(conn)
	}

	fmt.Printf("[ResolveConnections] resolved repeats: %d\n", len(uniqueConnections))
	fmt.Printf("[ResolveConnections] RR links: %d\n", len(connections)/2)
	fmt.Printf("[ResolveConnections] unresolved: %d\n", unresolvedLinks)

	return len(uniqueConnections)
}

// ResolveRepeats runs one round of connection gathering, matching
// resolution and cleanup. The driver decides whether to iterate.
func (r *Resolver) ResolveRepeats() int {
	connections := r.GetConnections()
	resolvedConnections := r.ResolveConnections(connections, r.cfg.MinRepeatResSupport)
	r.ClearResolvedRepeats()
	r.aligner.UpdateAlignments()
	return resolvedConnections
}
