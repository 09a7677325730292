package seqstore

import (
	"testing"

	"lra/utils"
)

func TestReverseComplement(t *testing.T) {
	rc := ReverseComplement([]byte("ACGTT"))
	if !utils.BytesEqual(rc, []byte("AACGT")) {
		t.Fatalf("expected AACGT, got %s", rc)
	}
}

func TestStoreStrands(t *testing.T) {
	st := NewStore()
	id := st.AddRead("read1", []byte("ACGTT"))
	if id != 1 {
		t.Fatalf("first read id must be 1, got %d", id)
	}
	if !utils.BytesEqual(st.GetSeq(id), []byte("ACGTT")) {
		t.Fatalf("forward strand mismatch")
	}
	if !utils.BytesEqual(st.GetSeq(id.RC()), []byte("AACGT")) {
		t.Fatalf("minus strand mismatch")
	}
	if st.GetLen(id.RC()) != 5 {
		t.Fatalf("length must be strand independent")
	}
}

func TestLookupName(t *testing.T) {
	st := NewStore()
	st.AddRead("read1", []byte("ACGT"))
	id2 := st.AddRead("read2", []byte("GGGG"))
	got, ok := st.LookupName("read2")
	if !ok || got != id2 {
		t.Fatalf("lookup read2 = %d,%v", got, ok)
	}
	if _, ok := st.LookupName("absent"); ok {
		t.Fatalf("absent name must not resolve")
	}
}
