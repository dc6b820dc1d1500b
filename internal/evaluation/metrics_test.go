package evaluation

import (
	"math"
	"testing"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestRecallAtK_AllRelevantInTop10(t *testing.T) {
	relevant := []string{"a", "b", "c"}
	retrieved := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	got := RecallAtK(relevant, retrieved, 10)
	if !almostEqual(got, 1.0) {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestRecallAtK_SomeRelevantMissing(t *testing.T) {
	relevant := []string{"a", "b", "c", "d"}
	retrieved := []string{"a", "b", "x", "y", "z", "w", "v", "u", "t", "s"}
	got := RecallAtK(relevant, retrieved, 10)
	// 2 of 4 relevant found
	if !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestRecallAtK_EmptyResults(t *testing.T) {
	relevant := []string{"a", "b"}
	retrieved := []string{}
	got := RecallAtK(relevant, retrieved, 10)
	if !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0, got %f", got)
	}
}

func TestRecallAtK_NoRelevantDocs(t *testing.T) {
	relevant := []string{}
	retrieved := []string{"a", "b", "c"}
	got := RecallAtK(relevant, retrieved, 10)
	// Nothing expected means nothing was missed
	if !almostEqual(got, 1.0) {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestRecallAtK_KSmallerThanRetrieved(t *testing.T) {
	relevant := []string{"a", "b", "c"}
	// "c" is at position 5 (index 4), but k=3 so we only look at first 3
	retrieved := []string{"a", "b", "x", "y", "c"}
	got := RecallAtK(relevant, retrieved, 3)
	// Only "a" and "b" in top 3
	if !almostEqual(got, 2.0/3.0) {
		t.Errorf("expected %f, got %f", 2.0/3.0, got)
	}
}

func TestRecallAtK_RetrievedShorterThanK(t *testing.T) {
	relevant := []string{"a", "b"}
	retrieved := []string{"a"} // only 1 result, k=10
	got := RecallAtK(relevant, retrieved, 10)
	if !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestRecallAtK_DuplicateRetrievedCountOnce(t *testing.T) {
	relevant := []string{"a", "b"}
	retrieved := []string{"a", "a"}
	got := RecallAtK(relevant, retrieved, 10)
	if !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestSameSet(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want bool
	}{
		{"same order", []string{"MRI", "X-Ray"}, []string{"MRI", "X-Ray"}, true},
		{"different order", []string{"MRI", "X-Ray"}, []string{"X-Ray", "MRI"}, true},
		{"both empty", nil, []string{}, true},
		{"extra item", []string{"MRI"}, []string{"MRI", "X-Ray"}, false},
		{"missing item", []string{"MRI", "X-Ray"}, []string{"MRI"}, false},
		{"duplicates ignored", []string{"MRI"}, []string{"MRI", "MRI"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameSet(tt.a, tt.b); got != tt.want {
				t.Errorf("SameSet(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
