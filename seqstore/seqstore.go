package seqstore

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/cespare/xxhash"
	"github.com/klauspost/compress/gzip"
)

// ReadID is a signed read identity; -id addresses the
// reverse-complement strand of read +id.
type ReadID int64

func (id ReadID) RC() ReadID { return -id }

func (id ReadID) Strand() bool { return id > 0 }

type Read struct {
	ID   ReadID
	Name string
	Seq  []byte
}

// Store keeps the raw read sequences the resolver borrows bridging
// substrings from. Reads are stored on the forward strand only; minus
// ids are served by complementing on the fly.
type Store struct {
	readsArr []Read
	nameMap  map[uint64]ReadID // xxhash of read name -> id
}

func NewStore() *Store {
	return &Store{nameMap: make(map[uint64]ReadID)}
}

var complTable [256]byte

func init() {
	for i := 0; i < 256; i++ {
		complTable[i] = 'N'
	}
	complTable['A'], complTable['C'], complTable['G'], complTable['T'] = 'T', 'G', 'C', 'A'
	complTable['a'], complTable['c'], complTable['g'], complTable['t'] = 't', 'g', 'c', 'a'
}

func ReverseComplement(seq []byte) []byte {
	rc := make([]byte, len(seq))
	for i, b := range seq {
		rc[len(seq)-1-i] = complTable[b]
	}
	return rc
}

// AddRead registers a read and returns its forward-strand id. Ids
// start from 1, so every read has a distinct minus partner.
func (st *Store) AddRead(name string, seq []byte) ReadID {
	id := ReadID(len(st.readsArr) + 1)
	st.readsArr = append(st.readsArr, Read{ID: id, Name: name, Seq: seq})
	h := xxhash.Sum64String(name)
	if _, ok := st.nameMap[h]; ok {
		log.Fatalf("[AddRead] read name: %s duplicated\n", name)
	}
	st.nameMap[h] = id
	return id
}

func (st *Store) NumReads() int { return len(st.readsArr) }

func (st *Store) GetRecord(id ReadID) Read {
	if id < 0 {
		id = -id
	}
	if id < 1 || int(id) > len(st.readsArr) {
		log.Fatalf("[GetRecord] read id: %d out of range\n", id)
	}
	return st.readsArr[id-1]
}

// GetSeq returns the read sequence on the strand addressed by id.
func (st *Store) GetSeq(id ReadID) []byte {
	r := st.GetRecord(id)
	if id > 0 {
		return r.Seq
	}
	return ReverseComplement(r.Seq)
}

func (st *Store) GetLen(id ReadID) int {
	return len(st.GetRecord(id).Seq)
}

func (st *Store) LookupName(name string) (ReadID, bool) {
	id, ok := st.nameMap[xxhash.Sum64String(name)]
	return id, ok
}

// Description is the record tag used when naming new edge sequences
// derived from a bridging read.
func (st *Store) Description(id ReadID) string {
	return st.GetRecord(id).Name
}

// LoadReads fills the store from a fasta/fastq file, gzipped or not.
func (st *Store) LoadReads(fn string) {
	infile, err := os.Open(fn)
	if err != nil {
		log.Fatalf("[LoadReads] open file: %s failed, err: %v\n", fn, err)
	}
	defer infile.Close()
	var reader io.Reader = infile
	base := fn
	if strings.HasSuffix(fn, ".gz") {
		gzfp, err := gzip.NewReader(infile)
		if err != nil {
			log.Fatalf("[LoadReads] create gzip reader err: %v\n", err)
		}
		defer gzfp.Close()
		reader = gzfp
		base = strings.TrimSuffix(fn, ".gz")
	}

	if strings.HasSuffix(base, ".fq") || strings.HasSuffix(base, ".fastq") {
		fqfp := fastq.NewReader(reader, linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger))
		for {
			s, err := fqfp.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				log.Fatalf("[LoadReads] read file: %s error: %v\n", fn, err)
			}
			l := s.(*linear.QSeq)
			seq := make([]byte, l.Len())
			for j := 0; j < l.Len(); j++ {
				seq[j] = byte(l.Seq[j].L)
			}
			st.AddRead(l.ID, seq)
		}
	} else {
		fafp := fasta.NewReader(reader, linear.NewSeq("", nil, alphabet.DNA))
		for {
			s, err := fafp.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				log.Fatalf("[LoadReads] read file: %s error: %v\n", fn, err)
			}
			l := s.(*linear.Seq)
			seq := make([]byte, len(l.Seq))
			for j, v := range l.Seq {
				seq[j] = byte(v)
			}
			st.AddRead(l.ID, seq)
		}
	}
	fmt.Printf("[LoadReads] loaded %d reads from %s\n", st.NumReads(), fn)
}
