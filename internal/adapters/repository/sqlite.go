package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/relaydesk/agentrouter/internal/domain/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS agents (
	id       INTEGER PRIMARY KEY,
	position INTEGER NOT NULL,
	name     TEXT    NOT NULL,
	en       REAL    NOT NULL,
	es       REAL    NOT NULL,
	sales    REAL    NOT NULL,
	support  REAL    NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts (
	id          INTEGER PRIMARY KEY,
	name        TEXT    NOT NULL,
	age         REAL    NOT NULL,
	postal_code TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	contact_id INTEGER NOT NULL,
	agent_id   INTEGER NOT NULL,
	language   TEXT    NOT NULL,
	sentiment  REAL    NOT NULL,
	intent     TEXT    NOT NULL,
	score      REAL    NOT NULL
);
`

// SQLiteStore backs the three store interfaces with a sqlite database. Agent
// order is an explicit position column so tie-break order survives restarts.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Seed replaces the database contents with the given dataset. Used at
// startup to load the demo fixtures into a fresh database.
func (s *SQLiteStore) Seed(ctx context.Context, agents []model.Agent, contacts []model.Contact, history []model.HistoricalInteraction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"agents", "contacts", "history"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, a := range agents {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO agents (id, position, name, en, es, sales, support) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, i, a.Name, a.Skills.English, a.Skills.Spanish, a.Skills.Sales, a.Skills.Support)
		if err != nil {
			return fmt.Errorf("seed agent %d: %w", a.ID, err)
		}
	}
	for _, c := range contacts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contacts (id, name, age, postal_code) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, c.Age, c.PostalCode)
		if err != nil {
			return fmt.Errorf("seed contact %d: %w", c.ID, err)
		}
	}
	for _, h := range history {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO history (contact_id, agent_id, language, sentiment, intent, score) VALUES (?, ?, ?, ?, ?, ?)`,
			h.ContactID, h.AgentID, string(h.Language), h.Sentiment, string(h.Intent), h.OutcomeScore)
		if err != nil {
			return fmt.Errorf("seed history row: %w", err)
		}
	}

	return tx.Commit()
}

// SeedDemo loads the demo contact-center dataset.
func (s *SQLiteStore) SeedDemo(ctx context.Context) error {
	return s.Seed(ctx, seedAgents(), seedContacts(), seedHistory())
}

// List returns all agents ordered by position.
func (s *SQLiteStore) List(ctx context.Context) ([]model.Agent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, en, es, sales, support FROM agents ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []model.Agent
	for rows.Next() {
		var a model.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Skills.English, &a.Skills.Spanish, &a.Skills.Sales, &a.Skills.Support); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return agents, nil
}

// Get returns one agent by id.
func (s *SQLiteStore) Get(ctx context.Context, agentID int) (model.Agent, error) {
	var a model.Agent
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, en, es, sales, support FROM agents WHERE id = ?`, agentID).
		Scan(&a.ID, &a.Name, &a.Skills.English, &a.Skills.Spanish, &a.Skills.Sales, &a.Skills.Support)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Agent{}, fmt.Errorf("agent %d: %w", agentID, ErrAgentNotFound)
	}
	if err != nil {
		return model.Agent{}, fmt.Errorf("get agent %d: %w", agentID, err)
	}
	return a, nil
}

// GetContact returns one contact by id.
func (s *SQLiteStore) GetContact(ctx context.Context, contactID int) (model.Contact, error) {
	var c model.Contact
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, age, postal_code FROM contacts WHERE id = ?`, contactID).
		Scan(&c.ID, &c.Name, &c.Age, &c.PostalCode)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Contact{}, fmt.Errorf("contact %d: %w", contactID, ErrContactNotFound)
	}
	if err != nil {
		return model.Contact{}, fmt.Errorf("get contact %d: %w", contactID, err)
	}
	return c, nil
}

// ListHistory returns all recorded interactions in insertion order.
func (s *SQLiteStore) ListHistory(ctx context.Context) ([]model.HistoricalInteraction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT contact_id, agent_id, language, sentiment, intent, score FROM history ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var history []model.HistoricalInteraction
	for rows.Next() {
		var h model.HistoricalInteraction
		var lang, intent string
		if err := rows.Scan(&h.ContactID, &h.AgentID, &lang, &h.Sentiment, &intent, &h.OutcomeScore); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		h.Language = model.Language(lang)
		h.Intent = model.Intent(intent)
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return history, nil
}

// RecordInteraction appends an interaction to the history.
func (s *SQLiteStore) RecordInteraction(ctx context.Context, h model.HistoricalInteraction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (contact_id, agent_id, language, sentiment, intent, score) VALUES (?, ?, ?, ?, ?, ?)`,
		h.ContactID, h.AgentID, string(h.Language), h.Sentiment, string(h.Intent), h.OutcomeScore)
	if err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

// Contacts adapts the store to the ContactStore interface.
func (s *SQLiteStore) Contacts() ContactStore { return sqliteContactView{s} }

// History adapts the store to the HistoryStore interface.
func (s *SQLiteStore) History() HistoryStore { return sqliteHistoryView{s} }

type sqliteContactView struct{ s *SQLiteStore }

func (v sqliteContactView) Get(ctx context.Context, contactID int) (model.Contact, error) {
	return v.s.GetContact(ctx, contactID)
}

type sqliteHistoryView struct{ s *SQLiteStore }

func (v sqliteHistoryView) List(ctx context.Context) ([]model.HistoricalInteraction, error) {
	return v.s.ListHistory(ctx)
}
