package random

import "testing"

func TestSeedValueStable(t *testing.T) {
	a := SeedValue("root", "map")
	b := SeedValue("root", "map")
	if a != b {
		t.Fatalf("expected stable seed, got %d and %d", a, b)
	}
	if a == SeedValue("root", "loot") {
		t.Fatalf("expected labels to produce different seeds")
	}
}

func TestWeightedPickHonoursBoundaries(t *testing.T) {
	table := NewWeighted(
		Entry[string]{Value: "a", Weight: 1},
		Entry[string]{Value: "b", Weight: 3},
		Entry[string]{Value: "skip", Weight: 0},
	)
	if table.Len() != 2 {
		t.Fatalf("expected zero-weight entry to be dropped, got %d entries", table.Len())
	}

	cases := []struct {
		roll float64
		want string
	}{
		{0, "a"},
		{0.24, "a"},
		{0.25, "b"},
		{0.99, "b"},
	}
	for _, tc := range cases {
		got, ok := table.Pick(NewSequence(tc.roll))
		if !ok || got != tc.want {
			t.Fatalf("roll %.2f: expected %q, got %q (ok=%v)", tc.roll, tc.want, got, ok)
		}
	}
}

func TestWeightedPickEmpty(t *testing.T) {
	var table Weighted[int]
	if _, ok := table.Pick(NewSequence(0.5)); ok {
		t.Fatalf("expected empty table to report no pick")
	}
}

func TestPickDistinctNeverRepeats(t *testing.T) {
	table := NewWeighted(
		Entry[int]{Value: 1, Weight: 10},
		Entry[int]{Value: 2, Weight: 10},
		Entry[int]{Value: 3, Weight: 10},
		Entry[int]{Value: 4, Weight: 10},
	)
	picked := table.PickDistinct(NewSequence(0, 0, 0, 0), 3)
	if len(picked) != 3 {
		t.Fatalf("expected three picks, got %v", picked)
	}
	seen := map[int]bool{}
	for _, v := range picked {
		if seen[v] {
			t.Fatalf("duplicate pick %d in %v", v, picked)
		}
		seen[v] = true
	}
}

func TestChanceEdges(t *testing.T) {
	src := NewSequence(0.5)
	if Chance(src, 0) {
		t.Fatalf("zero probability must never pass")
	}
	if !Chance(src, 1) {
		t.Fatalf("probability one must always pass")
	}
	if !Chance(NewSequence(0.49), 0.5) {
		t.Fatalf("draw below p should pass")
	}
	if Chance(NewSequence(0.5), 0.5) {
		t.Fatalf("draw equal to p should fail")
	}
}
