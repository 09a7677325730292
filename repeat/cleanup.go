package repeat

import (
	"lra/graph"
)

// ClearResolvedRepeats removes the nodes whose incident edges were all
// subsumed by separated paths, on both strands.
func (r *Resolver) ClearResolvedRepeats() {
	nextEdge := func(node *graph.Node) *graph.Edge {
		for _, e := range node.OutEdges {
			if !e.IsLooped() {
				return e
			}
		}
		return nil
	}

	shouldRemove := func(e *graph.Edge) bool {
		return e.Resolved
	}

	toRemove := make(map[*graph.Node]bool)

	for _, node := range r.g.IterNodes() {
		// separated nodes
		if len(node.Neighbors()) == 0 {
			resolved := true
			for _, e := range node.OutEdges {
				if !shouldRemove(e) {
					resolved = false
				}
			}
			if resolved {
				toRemove[node] = true
			}
		}

		// other nodes
		if !node.IsEnd() {
			continue
		}

		direction := nextEdge(node)
		if direction == nil {
			continue
		}

		traversed := []*graph.Edge{direction}
		curNode := direction.NodeRight
		for curNode.IsResolved() {
			traversed = append(traversed, nextEdge(curNode))
			curNode = traversed[len(traversed)-1].NodeRight
		}

		removeLast := curNode.IsEnd()
		resolvedRepeat := true
		for _, e := range traversed {
			if !shouldRemove(e) {
				resolvedRepeat = false
			}
		}

		if resolvedRepeat {
			complPath := r.g.ComplementPath(traversed)
			// first-last
			toRemove[traversed[0].NodeLeft] = true
			if removeLast {
				toRemove[complPath[0].NodeLeft] = true
			}
			// middle nodes
			for i := 0; i+1 < len(traversed); i++ {
				toRemove[traversed[i].NodeRight] = true
				toRemove[complPath[i].NodeRight] = true
			}
			// last-first
			if removeLast {
				toRemove[traversed[len(traversed)-1].NodeRight] = true
			}
			toRemove[complPath[len(complPath)-1].NodeRight] = true
		}
	}

	for _, node := range r.g.IterNodes() {
		if toRemove[node] {
			r.g.RemoveNode(node)
		}
	}
	r.aligner.UpdateAlignments()
}
