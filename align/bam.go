package align

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"lra/graph"
	"lra/seqstore"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// GetSamRecord streams mapped records from a BAM file, one batch per
// read name, preserving file order inside a batch.
func GetSamRecord(bamfn string, rc chan []sam.Record, numCPU int) {
	fp, err := os.Open(bamfn)
	if err != nil {
		log.Fatalf("[GetSamRecord] open file: %s failed, err: %v\n", bamfn, err)
	}
	defer fp.Close()
	bamfp, err := bam.NewReader(fp, numCPU/5+1)
	if err != nil {
		log.Fatalf("[GetSamRecord] create bam.NewReader err: %v\n", err)
	}
	defer bamfp.Close()
	var rArr []sam.Record
	for {
		r, err := bamfp.Read()
		if err != nil {
			break
		}
		if r.Flags&sam.Unmapped != 0 {
			continue
		}
		if len(rArr) > 0 && rArr[0].Name != r.Name {
			rc <- rArr
			rArr = nil
		}
		rArr = append(rArr, *r)
	}
	if len(rArr) > 0 {
		rc <- rArr
	}
	close(rc)
}

// AccumulateCigar sums match/insert/delete/clip lengths of a cigar.
func AccumulateCigar(cigar sam.Cigar) (Mnum, Inum, Dnum, SHnumLeft, SHnumRight int) {
	for i, co := range cigar {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			Mnum += co.Len()
		case sam.CigarInsertion:
			Inum += co.Len()
		case sam.CigarDeletion:
			Dnum += co.Len()
		case sam.CigarSoftClipped, sam.CigarHardClipped:
			if i == 0 {
				SHnumLeft += co.Len()
			} else {
				SHnumRight += co.Len()
			}
		}
	}
	return
}

// refEdgeID extracts the signed edge id from a reference name of the
// form "edge_-5" or plain "-5".
func refEdgeID(name string) (graph.EdgeID, bool) {
	s := name
	if idx := strings.LastIndexByte(s, '_'); idx >= 0 {
		s = s[idx+1:]
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return graph.EdgeID(v), true
}

// LoadAlignmentsFromBam converts the BAM records into one
// GraphAlignment chain per read. Reverse-strand hits are projected onto the
// complement edge so that every chain runs along the read forward
// strand.
func LoadAlignmentsFromBam(bamfn string, g *graph.Graph, store *seqstore.Store, numCPU int) []GraphAlignment {
	rc := make(chan []sam.Record, numCPU)
	go GetSamRecord(bamfn, rc, numCPU)

	var alignments []GraphAlignment
	var skipped int
	for rArr := range rc {
		readID, ok := store.LookupName(rArr[0].Name)
		if !ok {
			skipped++
			continue
		}
		readLen := store.GetLen(readID)
		var aln GraphAlignment
		for i := range rArr {
			r := &rArr[i]
			eID, ok := refEdgeID(r.Ref.Name())
			if !ok {
				continue
			}
			_, _, _, shl, shr := AccumulateCigar(r.Cigar)
			curBegin := shl
			curEnd := readLen - shr
			extBegin := r.Start()
			extEnd := r.End()
			if r.Flags&sam.Reverse != 0 {
				eID = eID.RC()
				curBegin, curEnd = readLen-curEnd, readLen-curBegin
			}
			edge := g.GetEdge(eID)
			if edge == nil {
				continue
			}
			extLen := edge.Length
			if r.Flags&sam.Reverse != 0 {
				extBegin, extEnd = extLen-extEnd, extLen-extBegin
			}
			ov := Overlap{
				CurID: readID, CurBegin: curBegin, CurEnd: curEnd, CurLen: readLen,
				ExtBegin: extBegin, ExtEnd: extEnd, ExtLen: extLen,
			}
			aln = append(aln, EdgeAlignment{Edge: edge, Overlap: ov})
		}
		if len(aln) == 0 {
			continue
		}
		sort.SliceStable(aln, func(i, j int) bool {
			return aln[i].Overlap.CurBegin < aln[j].Overlap.CurBegin
		})
		alignments = append(alignments, aln)
	}
	if skipped > 0 {
		fmt.Printf("[LoadAlignmentsFromBam] %d alignments skipped, read name not in store\n", skipped)
	}
	sortAlignments(alignments)
	fmt.Printf("[LoadAlignmentsFromBam] loaded %d read alignments from %s\n", len(alignments), bamfn)
	return alignments
}
