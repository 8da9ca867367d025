// Package repository defines the reference-data store interfaces and their
// in-memory and sqlite implementations.
package repository

import (
	"context"

	"github.com/relaydesk/agentrouter/internal/domain/model"
)

// AgentStore provides read access to the agent pool. List order is stable
// and meaningful: it is the tie-break order for equal skill scores.
type AgentStore interface {
	// List returns all agents in store order.
	List(ctx context.Context) ([]model.Agent, error)

	// Get returns one agent. Returns ErrAgentNotFound for unknown ids.
	Get(ctx context.Context, agentID int) (model.Agent, error)
}

// ContactStore provides read access to customer records.
type ContactStore interface {
	// Get returns one contact. Returns ErrContactNotFound for unknown ids.
	Get(ctx context.Context, contactID int) (model.Contact, error)
}

// HistoryStore provides read access to recorded interactions, the training
// data source. Records are immutable once recorded.
type HistoryStore interface {
	// List returns all historical interactions in store order.
	List(ctx context.Context) ([]model.HistoricalInteraction, error)
}
