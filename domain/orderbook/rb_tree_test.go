package orderbook

import (
	"math/rand"
	"sort"
	"testing"
)

func TestRBTreeInsertFindDelete(t *testing.T) {
	tree := NewRBTree()
	pl1 := tree.UpsertLevel(185.50)
	if pl1 == nil {
		t.Fatal("UpsertLevel failed")
	}
	if pl2 := tree.FindLevel(185.50); pl2 != pl1 {
		t.Error("FindLevel did not return same PriceLevel")
	}

	tree.UpsertLevel(185.60)
	if tree.MinLevel().Price != 185.50 {
		t.Error("expected min=185.50")
	}
	if tree.MaxLevel().Price != 185.60 {
		t.Error("expected max=185.60")
	}

	if !tree.DeleteLevel(185.50) {
		t.Error("DeleteLevel failed")
	}
	if tree.FindLevel(185.50) != nil {
		t.Error("expected level 185.50 to be gone")
	}
}

// --- Edge Cases ---

func TestDeleteNonExistentLevel(t *testing.T) {
	tree := NewRBTree()
	if tree.DeleteLevel(123) {
		t.Error("expected false when deleting non-existent level")
	}
}

func TestEmptyTreeMinMax(t *testing.T) {
	tree := NewRBTree()
	if tree.MinLevel() != nil || tree.MaxLevel() != nil {
		t.Error("expected nil for min/max on empty tree")
	}
}

func TestUpsertDuplicateLevel(t *testing.T) {
	tree := NewRBTree()
	pl1 := tree.UpsertLevel(150)
	pl2 := tree.UpsertLevel(150)
	if pl1 != pl2 {
		t.Error("Upsert should return the same node for duplicate level")
	}
	if tree.Size() != 1 {
		t.Errorf("expected size 1, got %d", tree.Size())
	}
}

func TestRandomizedInsertDelete(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tree := NewRBTree()

	prices := rng.Perm(500)
	for _, p := range prices {
		tree.UpsertLevel(float64(p) / 100)
	}
	if tree.Size() != 500 {
		t.Fatalf("expected 500 levels, got %d", tree.Size())
	}

	// Delete every other level.
	kept := make([]float64, 0, 250)
	for i, p := range prices {
		price := float64(p) / 100
		if i%2 == 0 {
			if !tree.DeleteLevel(price) {
				t.Fatalf("delete %v failed", price)
			}
		} else {
			kept = append(kept, price)
		}
	}
	sort.Float64s(kept)

	if tree.Size() != len(kept) {
		t.Fatalf("expected %d levels, got %d", len(kept), tree.Size())
	}
	if tree.MinLevel().Price != kept[0] {
		t.Errorf("min: expected %v got %v", kept[0], tree.MinLevel().Price)
	}
	if tree.MaxLevel().Price != kept[len(kept)-1] {
		t.Errorf("max: expected %v got %v", kept[len(kept)-1], tree.MaxLevel().Price)
	}

	var walked []float64
	tree.ForEachAscending(func(lvl *PriceLevel) bool {
		walked = append(walked, lvl.Price)
		return true
	})
	if len(walked) != len(kept) {
		t.Fatalf("walk visited %d levels, expected %d", len(walked), len(kept))
	}
	for i := range walked {
		if walked[i] != kept[i] {
			t.Fatalf("walk out of order at %d: got %v want %v", i, walked[i], kept[i])
		}
	}
}
