package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestNewIDOrdering checks that v7 IDs sort by creation order
func TestNewIDOrdering(t *testing.T) {
	prev := NewComparisonID()
	for i := 0; i < 100; i++ {
		next := NewComparisonID()
		if next.String() <= prev.String() {
			t.Fatalf("Expected %s to sort after %s", next, prev)
		}
		prev = next
	}
}

// TestParseComparisonID tests comparison ID parsing
func TestParseComparisonID(t *testing.T) {
	tests := []struct {
		input    string
		expected ComparisonID
		hasError bool
	}{
		{"cmp-1", ComparisonID("cmp-1"), false},
		{"  cmp-2 ", ComparisonID("cmp-2"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseComparisonID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestComputeScheduleHash(t *testing.T) {
	a := ComputeScheduleHash([][]int{{0, 1}, {2}})
	b := ComputeScheduleHash([][]int{{0}, {1, 2}})
	if a == b {
		t.Error("Expected resample boundaries to change the hash")
	}
	if a != ComputeScheduleHash([][]int{{0, 1}, {2}}) {
		t.Error("Expected hash to be stable for identical schedules")
	}
}

func TestErrorHelpers(t *testing.T) {
	if !IsContractError(NewSizeError("corpus size", 0)) {
		t.Error("size error should be a contract error")
	}
	if !IsContractError(NewLengthMismatchError("trace", 3, 2)) {
		t.Error("length mismatch should be a contract error")
	}
	scorerErr := NewScorerError("sys-a", errors.New("exit status 1"))
	if !IsScorerError(scorerErr) || IsContractError(scorerErr) {
		t.Error("scorer error misclassified")
	}
	if !IsNotFoundError(ErrComparisonNotFound) {
		t.Error("comparison not found should be a not found error")
	}
}
