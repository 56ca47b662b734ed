package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// v7 keeps stored records sortable by creation time
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
	ComparisonID ID
	RecordID     ID
)

func NewComparisonID() ComparisonID { return ComparisonID(NewID()) }
func NewRecordID() RecordID         { return RecordID(NewID()) }

func (id ComparisonID) String() string { return ID(id).String() }
func (id RecordID) String() string     { return ID(id).String() }

// ParseComparisonID parses a string into ComparisonID
func ParseComparisonID(s string) (ComparisonID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("comparison ID cannot be empty")
	}
	return ComparisonID(strings.TrimSpace(s)), nil
}

// RecordKind tags the persisted result documents.
type RecordKind string

const (
	RecordComparison RecordKind = "compared"
	RecordLabeling   RecordKind = "cld-label"
	RecordHighlight  RecordKind = "highlight-guesses"
)
