package interval

import (
	"math/rand"
	"sort"
	"testing"
)

func TestFindOverlappingBasic(t *testing.T) {
	tree := NewTree([]Interval[string]{
		{Start: 10, Stop: 19, Value: "a"},
		{Start: 20, Stop: 29, Value: "b"},
		{Start: 25, Stop: 40, Value: "c"},
	})

	got := names(tree.FindOverlapping(19, 20))
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected overlap result: %v", got)
	}

	got = names(tree.FindOverlapping(26, 26))
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("unexpected overlap result: %v", got)
	}

	if out := tree.FindOverlapping(41, 100); len(out) != 0 {
		t.Fatalf("expected no overlaps past all intervals, got %v", out)
	}
}

func TestFindOverlappingInvertedQueryIsEmpty(t *testing.T) {
	tree := NewTree([]Interval[string]{{Start: 1, Stop: 100, Value: "a"}})
	// An empty mask is expressed as [stop+1, stop]; querying it must match
	// nothing.
	if out := tree.FindOverlapping(101, 100); len(out) != 0 {
		t.Fatalf("inverted query should be empty, got %v", out)
	}
}

func TestFindContained(t *testing.T) {
	tree := NewTree([]Interval[string]{
		{Start: 25, Stop: 29, Value: "rbs"},
		{Start: 59, Stop: 60, Value: "stop"},
		{Start: 5, Stop: 30, Value: "wide"},
	})

	got := names(tree.FindContained(19, 100))
	if len(got) != 2 || got[0] != "rbs" || got[1] != "stop" {
		t.Fatalf("unexpected containment result: %v", got)
	}

	if out := tree.FindContained(26, 28); len(out) != 0 {
		t.Fatalf("expected nothing fully contained in [26,28], got %v", out)
	}
}

func TestEmptyTree(t *testing.T) {
	tree := NewTree[string](nil)
	if tree.Len() != 0 {
		t.Fatalf("empty tree has %d intervals", tree.Len())
	}
	if out := tree.FindOverlapping(1, 100); len(out) != 0 {
		t.Fatalf("empty tree returned %v", out)
	}
}

func TestAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(40)
		intervals := make([]Interval[int], n)
		for i := range intervals {
			start := rng.Intn(200)
			intervals[i] = Interval[int]{Start: start, Stop: start + rng.Intn(30), Value: i}
		}
		tree := NewTree(intervals)

		for q := 0; q < 20; q++ {
			qStart := rng.Intn(220)
			qStop := qStart + rng.Intn(40)

			var wantOverlap, wantContained []int
			for _, iv := range intervals {
				if iv.Start <= qStop && iv.Stop >= qStart {
					wantOverlap = append(wantOverlap, iv.Value)
				}
				if iv.Start >= qStart && iv.Stop <= qStop {
					wantContained = append(wantContained, iv.Value)
				}
			}

			gotOverlap := values(tree.FindOverlapping(qStart, qStop))
			if !sameSet(gotOverlap, wantOverlap) {
				t.Fatalf("trial %d query [%d,%d]: overlap got %v want %v",
					trial, qStart, qStop, gotOverlap, wantOverlap)
			}
			gotContained := values(tree.FindContained(qStart, qStop))
			if !sameSet(gotContained, wantContained) {
				t.Fatalf("trial %d query [%d,%d]: contained got %v want %v",
					trial, qStart, qStop, gotContained, wantContained)
			}
		}
	}
}

func names(ivs []Interval[string]) []string {
	out := make([]string, len(ivs))
	for i, iv := range ivs {
		out[i] = iv.Value
	}
	sort.Strings(out)
	return out
}

func values(ivs []Interval[int]) []int {
	out := make([]int, len(ivs))
	for i, iv := range ivs {
		out[i] = iv.Value
	}
	return out
}

func sameSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	sort.Ints(a)
	sort.Ints(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
