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

func TestNewSourceID(t *testing.T) {
	id := NewSourceID("sheet-abc", "0")
	if id.String() != "sheet-abc#0" {
		t.Errorf("Expected 'sheet-abc#0', got '%s'", id)
	}
}

func TestComputeTableHash(t *testing.T) {
	a := ComputeTableHash([]string{"Código", "Total"}, [][]string{{"A1", "10"}})
	b := ComputeTableHash([]string{"Código", "Total"}, [][]string{{"A1", "10"}})
	c := ComputeTableHash([]string{"Código", "Total"}, [][]string{{"A1", "11"}})

	if !a.Equals(b) {
		t.Errorf("Expected identical tables to hash equal")
	}
	if a.Equals(c) {
		t.Errorf("Expected different tables to hash differently")
	}
	if len(a.Short()) != 12 {
		t.Errorf("Expected short hash of 12 chars, got %q", a.Short())
	}
}

func TestErrorHelpers(t *testing.T) {
	err := NewSourceStatusError(404, "http://example")
	if !IsSourceUnreachable(err) {
		t.Errorf("Expected status error to unwrap to ErrSourceUnreachable")
	}
	if !IsNonTabular(NewNonTabularError("text/html")) {
		t.Errorf("Expected non-tabular error to be detected")
	}
	if !errors.Is(NewStatusTableError("order", "bad"), ErrInvalidStatusTable) {
		t.Errorf("Expected status table error to unwrap")
	}
	if IsEmptySource(err) {
		t.Errorf("Status error must not be an empty-source error")
	}
}
