package graph

import (
	"log"
	"os"
	"strconv"

	"github.com/awalterschulze/gographviz"
)

// GraphvizGraph writes a dot rendering of the assembly graph, coloring
// repetitive edges red and resolved edges gray.
func GraphvizGraph(g *Graph, graphfn string) {
	gv := gographviz.NewGraph()
	gv.SetName("G")
	gv.SetDir(true)
	gv.SetStrict(false)
	for _, n := range g.IterNodes() {
		attr := make(map[string]string)
		attr["shape"] = "point"
		gv.AddNode("G", strconv.Itoa(int(n.ID)), attr)
	}
	for _, e := range g.IterEdges() {
		attr := make(map[string]string)
		attr["label"] = "\"" + e.ID.String() + " l:" + strconv.Itoa(e.Length) + " c:" + strconv.Itoa(e.MeanCoverage) + "\""
		if e.Repetitive {
			attr["color"] = "red"
		} else if e.Resolved {
			attr["color"] = "gray"
		} else {
			attr["color"] = "black"
		}
		gv.AddEdge(strconv.Itoa(int(e.NodeLeft.ID)), strconv.Itoa(int(e.NodeRight.ID)), true, attr)
	}
	gfp, err := os.Create(graphfn)
	if err != nil {
		log.Fatalf("[GraphvizGraph] create file: %s failed, err: %v\n", graphfn, err)
	}
	defer gfp.Close()
	gfp.WriteString(gv.String())
}
