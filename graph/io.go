package graph

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	flagRepetitive = 1 << iota
	flagResolved
	flagSelfComplement
	flagAltHaplotype
	flagUnreliable
)

func edgeFlags(e *Edge) int {
	f := 0
	if e.Repetitive {
		f |= flagRepetitive
	}
	if e.Resolved {
		f |= flagResolved
	}
	if e.SelfComplement {
		f |= flagSelfComplement
	}
	if e.AltHaplotype {
		f |= flagAltHaplotype
	}
	if e.Unreliable {
		f |= flagUnreliable
	}
	return f
}

// WriteGraphToFn serializes the graph as zstd-compressed edge lines:
// E <id> <leftNode> <rightNode> <length> <cov> <flags> <leftLink> <rightLink>
func WriteGraphToFn(g *Graph, graphfn string) {
	graphfp, err := os.Create(graphfn)
	if err != nil {
		log.Fatalf("[WriteGraphToFn] create file: %s failed, err: %v\n", graphfn, err)
	}
	defer graphfp.Close()
	fp, err1 := zstd.NewWriter(graphfp, zstd.WithEncoderCRC(false), zstd.WithEncoderConcurrency(1), zstd.WithEncoderLevel(1))
	if err1 != nil {
		log.Fatalf("[WriteGraphToFn] create zstd writer err: %v\n", err1)
	}
	defer fp.Close()
	buffp := bufio.NewWriter(fp)
	defer buffp.Flush()
	for _, e := range g.IterEdges() {
		var ll, rl EdgeID
		if e.LeftLink != nil {
			ll = e.LeftLink.ID
		}
		if e.RightLink != nil {
			rl = e.RightLink.ID
		}
		fmt.Fprintf(buffp, "E\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			e.ID, e.NodeLeft.ID, e.NodeRight.ID, e.Length, e.MeanCoverage,
			edgeFlags(e), ll, rl)
	}
}

// LoadGraphFromFn rebuilds a graph written by WriteGraphToFn.
func LoadGraphFromFn(graphfn string) *Graph {
	graphfp, err := os.Open(graphfn)
	if err != nil {
		log.Fatalf("[LoadGraphFromFn] open file: %s failed, err: %v\n", graphfn, err)
	}
	defer graphfp.Close()
	fp, err1 := zstd.NewReader(graphfp)
	if err1 != nil {
		log.Fatalf("[LoadGraphFromFn] create zstd reader err: %v\n", err1)
	}
	defer fp.Close()

	g := NewGraph()
	nodeMap := make(map[int]*Node)
	getNode := func(id int) *Node {
		if n, ok := nodeMap[id]; ok {
			return n
		}
		n := g.AddNode()
		nodeMap[id] = n
		return n
	}
	type linkInfo struct {
		eID, left, right EdgeID
	}
	var links []linkInfo

	buffp := bufio.NewReader(fp)
	eof := false
	for !eof {
		line, err := buffp.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				eof = true
			} else {
				log.Fatalf("[LoadGraphFromFn] read err: %v\n", err)
			}
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] != "E" || len(fields) != 9 {
			log.Fatalf("[LoadGraphFromFn] malformed line: %s\n", line)
		}
		var v [8]int
		for i := 1; i < 9; i++ {
			if v[i-1], err = strconv.Atoi(fields[i]); err != nil {
				log.Fatalf("[LoadGraphFromFn] field: %s convert error\n", fields[i])
			}
		}
		e := g.AddEdge(EdgeID(v[0]), getNode(v[1]), getNode(v[2]), v[3], v[4])
		f := v[5]
		e.Repetitive = f&flagRepetitive != 0
		e.Resolved = f&flagResolved != 0
		e.SelfComplement = f&flagSelfComplement != 0
		e.AltHaplotype = f&flagAltHaplotype != 0
		e.Unreliable = f&flagUnreliable != 0
		if v[6] != 0 || v[7] != 0 {
			links = append(links, linkInfo{EdgeID(v[0]), EdgeID(v[6]), EdgeID(v[7])})
		}
	}
	for _, li := range links {
		e := g.GetEdge(li.eID)
		if li.left != 0 {
			e.LeftLink = g.GetEdge(li.left)
		}
		if li.right != 0 {
			e.RightLink = g.GetEdge(li.right)
		}
	}
	return g
}
