package core

import (
	"fmt"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	LoadID   ID
	SourceID ID
)

func NewLoadID() LoadID { return LoadID(NewID()) }

func (id LoadID) String() string   { return ID(id).String() }
func (id SourceID) String() string { return ID(id).String() }

// NewSourceID builds the identifier of one sheet inside one spreadsheet.
// It doubles as the dataset cache key.
func NewSourceID(spreadsheetID, sheetID string) SourceID {
	return SourceID(fmt.Sprintf("%s#%s", spreadsheetID, sheetID))
}
