package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/relaydesk/agentrouter/internal/domain/model"
)

// MemoryStore is an in-memory implementation of all three store interfaces,
// optionally pre-seeded with the demo contact-center dataset. Safe for
// concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	agents   []model.Agent
	contacts map[int]model.Contact
	history  []model.HistoricalInteraction
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contacts: make(map[int]model.Contact)}
}

// NewSeededMemoryStore creates a store pre-loaded with the demo agent pool,
// contacts and interaction history.
func NewSeededMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	s.agents = seedAgents()
	for _, c := range seedContacts() {
		s.contacts[c.ID] = c
	}
	s.history = seedHistory()
	return s
}

// List returns all agents in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Agent(nil), s.agents...), nil
}

// Get returns one agent by id.
func (s *MemoryStore) Get(_ context.Context, agentID int) (model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.agents {
		if a.ID == agentID {
			return a, nil
		}
	}
	return model.Agent{}, fmt.Errorf("agent %d: %w", agentID, ErrAgentNotFound)
}

// GetContact returns one contact by id.
func (s *MemoryStore) GetContact(_ context.Context, contactID int) (model.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[contactID]
	if !ok {
		return model.Contact{}, fmt.Errorf("contact %d: %w", contactID, ErrContactNotFound)
	}
	return c, nil
}

// ListHistory returns all recorded interactions in insertion order.
func (s *MemoryStore) ListHistory(_ context.Context) ([]model.HistoricalInteraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.HistoricalInteraction(nil), s.history...), nil
}

// AddAgent appends an agent to the pool.
func (s *MemoryStore) AddAgent(agent model.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents = append(s.agents, agent)
}

// AddContact registers a contact.
func (s *MemoryStore) AddContact(contact model.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[contact.ID] = contact
}

// RecordInteraction appends an interaction to the history.
func (s *MemoryStore) RecordInteraction(h model.HistoricalInteraction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, h)
}

// Contacts adapts the store to the ContactStore interface, whose method name
// differs from AgentStore's.
func (s *MemoryStore) Contacts() ContactStore { return contactView{s} }

// History adapts the store to the HistoryStore interface.
func (s *MemoryStore) History() HistoryStore { return historyView{s} }

type contactView struct{ s *MemoryStore }

func (v contactView) Get(ctx context.Context, contactID int) (model.Contact, error) {
	return v.s.GetContact(ctx, contactID)
}

type historyView struct{ s *MemoryStore }

func (v historyView) List(ctx context.Context) ([]model.HistoricalInteraction, error) {
	return v.s.ListHistory(ctx)
}

func seedAgents() []model.Agent {
	return []model.Agent{
		{ID: 0, Name: "Mike", Skills: model.SkillVector{English: 0.75, Spanish: 0.75, Support: 1.00, Sales: 0.00}},
		{ID: 1, Name: "Sandra", Skills: model.SkillVector{English: 0.50, Spanish: 1.00, Support: 1.00, Sales: 0.00}},
		{ID: 2, Name: "John", Skills: model.SkillVector{English: 1.00, Spanish: 0.00, Support: 0.00, Sales: 1.00}},
		{ID: 3, Name: "Betty", Skills: model.SkillVector{English: 0.50, Spanish: 0.50, Support: 0.00, Sales: 1.00}},
		{ID: 4, Name: "Harry", Skills: model.SkillVector{English: 0.75, Spanish: 0.00, Support: 1.00, Sales: 1.00}},
		{ID: 5, Name: "Chris", Skills: model.SkillVector{English: 0.20, Spanish: 0.75, Support: 1.00, Sales: 1.00}},
	}
}

func seedContacts() []model.Contact {
	return []model.Contact{
		{ID: 0, Name: "Mary", Age: 26, PostalCode: "WC2N-5DU"},
		{ID: 1, Name: "Arnold", Age: 41, PostalCode: "10005"},
		{ID: 2, Name: "Ferdinand", Age: 35, PostalCode: "28000-070"},
	}
}

func seedHistory() []model.HistoricalInteraction {
	return []model.HistoricalInteraction{
		{ContactID: 0, AgentID: 0, Language: model.LanguageEnglish, Sentiment: 0.50, Intent: model.IntentSupport, OutcomeScore: 0.70},
		{ContactID: 0, AgentID: 1, Language: model.LanguageEnglish, Sentiment: 0.20, Intent: model.IntentSupport, OutcomeScore: 0.90},
		{ContactID: 1, AgentID: 5, Language: model.LanguageEnglish, Sentiment: 0.10, Intent: model.IntentSupport, OutcomeScore: 0.30},
		{ContactID: 2, AgentID: 3, Language: model.LanguageSpanish, Sentiment: 0.50, Intent: model.IntentSales, OutcomeScore: 0.85},
		{ContactID: 2, AgentID: 5, Language: model.LanguageSpanish, Sentiment: 0.30, Intent: model.IntentSupport, OutcomeScore: 0.70},
		{ContactID: 2, AgentID: 1, Language: model.LanguageSpanish, Sentiment: 0.90, Intent: model.IntentSales, OutcomeScore: 0.00},
		{ContactID: 1, AgentID: 4, Language: model.LanguageEnglish, Sentiment: 0.20, Intent: model.IntentSupport, OutcomeScore: 0.00},
		{ContactID: 1, AgentID: 5, Language: model.LanguageEnglish, Sentiment: 0.00, Intent: model.IntentSupport, OutcomeScore: 0.85},
		{ContactID: 0, AgentID: 1, Language: model.LanguageEnglish, Sentiment: 0.50, Intent: model.IntentSupport, OutcomeScore: 0.75},
		{ContactID: 0, AgentID: 2, Language: model.LanguageEnglish, Sentiment: 1.00, Intent: model.IntentSales, OutcomeScore: 0.20},
		{ContactID: 0, AgentID: 3, Language: model.LanguageEnglish, Sentiment: 0.80, Intent: model.IntentSales, OutcomeScore: 0.00},
		{ContactID: 1, AgentID: 2, Language: model.LanguageEnglish, Sentiment: 0.50, Intent: model.IntentSales, OutcomeScore: 0.80},
		{ContactID: 1, AgentID: 3, Language: model.LanguageEnglish, Sentiment: 0.60, Intent: model.IntentSales, OutcomeScore: 0.00},
		{ContactID: 2, AgentID: 5, Language: model.LanguageSpanish, Sentiment: 0.90, Intent: model.IntentSales, OutcomeScore: 1.00},
		{ContactID: 1, AgentID: 4, Language: model.LanguageEnglish, Sentiment: 0.10, Intent: model.IntentSupport, OutcomeScore: 0.90},
		{ContactID: 2, AgentID: 5, Language: model.LanguageSpanish, Sentiment: 1.00, Intent: model.IntentSales, OutcomeScore: 1.00},
		{ContactID: 0, AgentID: 0, Language: model.LanguageEnglish, Sentiment: 0.40, Intent: model.IntentSupport, OutcomeScore: 0.60},
		{ContactID: 1, AgentID: 4, Language: model.LanguageEnglish, Sentiment: 0.20, Intent: model.IntentSupport, OutcomeScore: 1.00},
		{ContactID: 2, AgentID: 3, Language: model.LanguageSpanish, Sentiment: 0.90, Intent: model.IntentSales, OutcomeScore: 1.00},
	}
}
