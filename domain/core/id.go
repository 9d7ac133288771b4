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

// Short returns the last 8 characters, enough to tell log lines apart
func (id ID) Short() string {
	s := string(id)
	if len(s) <= 8 {
		return s
	}
	return s[len(s)-8:]
}

// Domain-specific ID types
type (
	SessionID ID
	RenderID  ID
)

func (id SessionID) String() string { return ID(id).String() }
func (id RenderID) String() string  { return ID(id).String() }
func (id SessionID) Short() string  { return ID(id).Short() }
func (id RenderID) Short() string   { return ID(id).Short() }

// NewSessionID creates an identifier for one query session
func NewSessionID() SessionID {
	return SessionID(NewID())
}

// NewRenderID creates an identifier for one page render
func NewRenderID() RenderID {
	return RenderID(NewID())
}

// ParseSessionID parses a string into SessionID
func ParseSessionID(s string) (SessionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	return SessionID(s), nil
}
