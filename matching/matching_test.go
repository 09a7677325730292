package matching

import (
	"reflect"
	"testing"
)

func TestEmpty(t *testing.T) {
	mate := MaxWeightMatching(0, nil)
	if len(mate) != 0 {
		t.Fatalf("expected empty mate array, got %v", mate)
	}
	mate = MaxWeightMatching(3, nil)
	if !reflect.DeepEqual(mate, []int{-1, -1, -1}) {
		t.Fatalf("expected all free, got %v", mate)
	}
}

func TestSingleEdge(t *testing.T) {
	mate := MaxWeightMatching(2, []WeightedEdge{{0, 1, 1}})
	if !reflect.DeepEqual(mate, []int{1, 0}) {
		t.Fatalf("expected [1 0], got %v", mate)
	}
}

// maximum weight beats maximum cardinality
func TestWeightOverCardinality(t *testing.T) {
	mate := MaxWeightMatching(4, []WeightedEdge{{1, 2, 10}, {2, 3, 11}})
	if !reflect.DeepEqual(mate, []int{-1, -1, 3, 2}) {
		t.Fatalf("expected [-1 -1 3 2], got %v", mate)
	}

	mate = MaxWeightMatching(5, []WeightedEdge{{1, 2, 5}, {2, 3, 11}, {3, 4, 5}})
	if !reflect.DeepEqual(mate, []int{-1, -1, 3, 2, -1}) {
		t.Fatalf("expected [-1 -1 3 2 -1], got %v", mate)
	}
}

func TestPath(t *testing.T) {
	mate := MaxWeightMatching(4, []WeightedEdge{{0, 1, 5}, {1, 2, 8}, {2, 3, 5}})
	if !reflect.DeepEqual(mate, []int{1, 0, 3, 2}) {
		t.Fatalf("expected [1 0 3 2], got %v", mate)
	}
}

// create an S-blossom and use it for augmentation
func TestSBlossom(t *testing.T) {
	mate := MaxWeightMatching(5, []WeightedEdge{{1, 2, 8}, {1, 3, 9}, {2, 3, 10}, {3, 4, 7}})
	if !reflect.DeepEqual(mate, []int{-1, 2, 1, 4, 3}) {
		t.Fatalf("expected [-1 2 1 4 3], got %v", mate)
	}
}

// create an S-blossom, relabel as T-blossom, use for augmentation
func TestSTBlossom(t *testing.T) {
	mate := MaxWeightMatching(7, []WeightedEdge{
		{1, 2, 9}, {1, 3, 8}, {2, 3, 10}, {1, 4, 5}, {4, 5, 4}, {1, 6, 3}})
	if !reflect.DeepEqual(mate, []int{-1, 6, 3, 2, 5, 4, 1}) {
		t.Fatalf("expected [-1 6 3 2 5 4 1], got %v", mate)
	}
}

// create nested S-blossom, use for augmentation
func TestNestedSBlossom(t *testing.T) {
	mate := MaxWeightMatching(7, []WeightedEdge{
		{1, 2, 9}, {1, 3, 9}, {2, 3, 10}, {2, 4, 8}, {3, 5, 8}, {4, 5, 10}, {5, 6, 6}})
	if !reflect.DeepEqual(mate, []int{-1, 3, 4, 1, 2, 6, 5}) {
		t.Fatalf("expected [-1 3 4 1 2 6 5], got %v", mate)
	}
}

// create S-blossom, relabel as S, include in nested S-blossom
func TestNestedSBlossomRelabel(t *testing.T) {
	mate := MaxWeightMatching(9, []WeightedEdge{
		{1, 2, 10}, {1, 7, 10}, {2, 3, 12}, {3, 4, 20}, {3, 5, 20},
		{4, 5, 25}, {5, 6, 10}, {6, 7, 10}, {7, 8, 8}})
	if !reflect.DeepEqual(mate, []int{-1, 2, 1, 4, 3, 6, 5, 8, 7}) {
		t.Fatalf("expected [-1 2 1 4 3 6 5 8 7], got %v", mate)
	}
}

// create nested S-blossom, augment, expand recursively
func TestNestedSBlossomExpand(t *testing.T) {
	mate := MaxWeightMatching(9, []WeightedEdge{
		{1, 2, 8}, {1, 3, 8}, {2, 3, 10}, {2, 4, 12}, {3, 5, 12},
		{4, 5, 14}, {4, 6, 12}, {5, 7, 12}, {6, 7, 14}, {7, 8, 12}})
	if !reflect.DeepEqual(mate, []int{-1, 2, 1, 5, 6, 3, 4, 8, 7}) {
		t.Fatalf("expected [-1 2 1 5 6 3 4 8 7], got %v", mate)
	}
}

func TestDeterministic(t *testing.T) {
	edges := []WeightedEdge{{0, 1, 3}, {2, 3, 3}, {0, 2, 3}, {1, 3, 3}}
	first := MaxWeightMatching(4, edges)
	for i := 0; i < 10; i++ {
		again := MaxWeightMatching(4, edges)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("matching not deterministic: %v vs %v", first, again)
		}
	}
}

func TestParallelEdges(t *testing.T) {
	mate := MaxWeightMatching(2, []WeightedEdge{{0, 1, 1}, {0, 1, 1}, {0, 1, 1}})
	if !reflect.DeepEqual(mate, []int{1, 0}) {
		t.Fatalf("expected [1 0], got %v", mate)
	}
}
