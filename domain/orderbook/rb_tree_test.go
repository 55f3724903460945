package orderbook

import "testing"

func TestRBTreeGetOrCreateIsIdempotent(t *testing.T) {
	tree := NewRBTree()
	a := tree.GetOrCreate(10.5)
	b := tree.GetOrCreate(10.5)
	if a != b {
		t.Fatal("GetOrCreate should return the same level for the same price")
	}
	if tree.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tree.Len())
	}
}

func TestRBTreeFindMissing(t *testing.T) {
	tree := NewRBTree()
	tree.GetOrCreate(1)
	if tree.Find(2) != nil {
		t.Fatal("Find should return nil for a price never inserted")
	}
}

func TestRBTreeBestMinMax(t *testing.T) {
	tree := NewRBTree()
	prices := []float64{50, 10, 90, 30, 70, 20, 80, 40, 60}
	for _, p := range prices {
		tree.GetOrCreate(p)
	}
	minPrice, _, ok := tree.BestMinPrice()
	if !ok || minPrice != 10 {
		t.Fatalf("BestMinPrice = %v %v, want 10 true", minPrice, ok)
	}
	maxPrice, _, ok := tree.BestMaxPrice()
	if !ok || maxPrice != 90 {
		t.Fatalf("BestMaxPrice = %v %v, want 90 true", maxPrice, ok)
	}
}

func TestRBTreeAscendingWalkIsSorted(t *testing.T) {
	tree := NewRBTree()
	prices := []float64{5, 3, 8, 1, 4, 7, 9, 2, 6}
	for _, p := range prices {
		tree.GetOrCreate(p)
	}
	var walked []float64
	tree.walkAsc(func(price float64, _ *PriceLevel) {
		walked = append(walked, price)
	})
	for i := 1; i < len(walked); i++ {
		if walked[i-1] >= walked[i] {
			t.Fatalf("walkAsc not sorted at index %d: %v", i, walked)
		}
	}
	if len(walked) != len(prices) {
		t.Fatalf("walkAsc visited %d nodes, want %d", len(walked), len(prices))
	}
}

func TestRBTreeDeleteThenLookupFails(t *testing.T) {
	tree := NewRBTree()
	tree.GetOrCreate(5)
	tree.GetOrCreate(3)
	tree.GetOrCreate(8)
	tree.Delete(5)
	if tree.Find(5) != nil {
		t.Fatal("Find should fail after Delete")
	}
	if tree.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tree.Len())
	}
}

func TestRBTreeDeleteAllPreservesOrder(t *testing.T) {
	tree := NewRBTree()
	prices := []float64{15, 6, 18, 3, 7, 17, 20, 2, 4, 13, 9}
	for _, p := range prices {
		tree.GetOrCreate(p)
	}
	// Delete in a different order than insertion, checking the tree stays
	// internally consistent (in-order walk always sorted) after each step.
	toDelete := []float64{18, 2, 15, 9, 7}
	for _, d := range toDelete {
		tree.Delete(d)
		var walked []float64
		tree.walkAsc(func(price float64, _ *PriceLevel) {
			walked = append(walked, price)
		})
		for i := 1; i < len(walked); i++ {
			if walked[i-1] >= walked[i] {
				t.Fatalf("after deleting %v, walkAsc not sorted: %v", d, walked)
			}
		}
	}
	if tree.Len() != len(prices)-len(toDelete) {
		t.Fatalf("Len() = %d, want %d", tree.Len(), len(prices)-len(toDelete))
	}
}

func TestRBTreeDeleteNonexistentIsNoop(t *testing.T) {
	tree := NewRBTree()
	tree.GetOrCreate(1)
	tree.Delete(999)
	if tree.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after deleting a price never inserted", tree.Len())
	}
}
