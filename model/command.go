package model

import (
	"time"
)

// CommandType constants
const (
	CommandCreate = "CREATE"
	CommandUpdate = "UPDATE"
	CommandDelete = "DELETE"
)

// Command is a reversible unit of work. Execute and Undo are paired closures;
// Undo must be the semantic inverse of Execute given BeforeState. Commands
// live only in per-user in-process history and are never persisted.
type Command struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // CREATE, UPDATE, DELETE
	Description string    `json:"description"`
	UserID      string    `json:"user_id"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	Timestamp   time.Time `json:"timestamp"`
	BeforeState any       `json:"before_state,omitempty"`
	AfterState  any       `json:"after_state,omitempty"`

	Execute func() (any, error) `json:"-"`
	Undo    func() error        `json:"-"`
}

// CommandDescriptor is the serializable view of a command returned by the
// undo-redo endpoints.
type CommandDescriptor struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// Descriptor returns the serializable view of the command
func (c *Command) Descriptor() CommandDescriptor {
	return CommandDescriptor{
		ID:          c.ID,
		Type:        c.Type,
		Description: c.Description,
		EntityType:  c.EntityType,
		EntityID:    c.EntityID,
		Timestamp:   c.Timestamp,
	}
}
