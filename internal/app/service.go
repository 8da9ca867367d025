// Package service provides the core routing service that implements the
// dependencies required by the HTTP API: a two-stage recommender that
// shortlists agents by rule-based skill match, then orders the shortlist
// with a learned ranking model.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/relaydesk/agentrouter/internal/adapters/geocode"
	"github.com/relaydesk/agentrouter/internal/adapters/repository"
	"github.com/relaydesk/agentrouter/internal/adapters/textanalytics"
	"github.com/relaydesk/agentrouter/internal/domain/candidate"
	"github.com/relaydesk/agentrouter/internal/domain/feature"
	"github.com/relaydesk/agentrouter/internal/domain/model"
	"github.com/relaydesk/agentrouter/internal/domain/ranking"
	"github.com/relaydesk/agentrouter/pkg/logger"
	"github.com/relaydesk/agentrouter/pkg/metrics"
)

// DefaultTrainEpochs is the training duration when a request does not name
// one.
const DefaultTrainEpochs = 500

// Routing outcome labels used in logs and metrics.
const (
	outcomeRouted   = "routed"
	outcomeNoIntent = "no_intent"
	outcomeAllBusy  = "all_busy"
)

// Decision is the result of routing one question.
type Decision struct {
	DecisionID string         `json:"decision_id"`
	Message    string         `json:"message"`
	Outcome    string         `json:"outcome"`
	AgentID    *int           `json:"agent_id,omitempty"`
	AgentName  string         `json:"agent_name,omitempty"`
	Language   model.Language `json:"language"`
	Sentiment  float64        `json:"sentiment"`
	Intent     model.Intent   `json:"intent"`
}

// TrainReport summarizes one completed training run.
type TrainReport struct {
	Epochs   int           `json:"epochs"`
	Samples  int           `json:"samples"`
	Loss     float64       `json:"loss"`
	Duration time.Duration `json:"duration"`
}

// Service implements the API dependencies for the routing system.
type Service struct {
	mu sync.RWMutex

	// Core components
	agents    repository.AgentStore
	contacts  repository.ContactStore
	history   repository.HistoryStore
	analytics textanalytics.Service
	coords    feature.CoordinateSource
	generator *candidate.Generator
	encoder   *feature.Encoder
	network   *ranking.Network
	ranker    *ranking.Ranker

	// Configuration
	maxCandidates int
	trainEpochs   int
	artifactPath  string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithAgentStore sets the agent pool backend.
func WithAgentStore(store repository.AgentStore) Option {
	return func(s *Service) {
		if store != nil {
			s.agents = store
		}
	}
}

// WithContactStore sets the contact backend.
func WithContactStore(store repository.ContactStore) Option {
	return func(s *Service) {
		if store != nil {
			s.contacts = store
		}
	}
}

// WithHistoryStore sets the interaction-history backend.
func WithHistoryStore(store repository.HistoryStore) Option {
	return func(s *Service) {
		if store != nil {
			s.history = store
		}
	}
}

// WithAnalytics sets the text-analytics backend.
func WithAnalytics(svc textanalytics.Service) Option {
	return func(s *Service) {
		if svc != nil {
			s.analytics = svc
		}
	}
}

// WithCoordinateSource sets the contact-location source.
func WithCoordinateSource(src feature.CoordinateSource) Option {
	return func(s *Service) {
		if src != nil {
			s.coords = src
		}
	}
}

// WithMaxCandidates bounds the ranking shortlist.
func WithMaxCandidates(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxCandidates = n
		}
	}
}

// WithTrainEpochs sets the default epoch count for training runs.
func WithTrainEpochs(epochs int) Option {
	return func(s *Service) {
		if epochs > 0 {
			s.trainEpochs = epochs
		}
	}
}

// WithModelArtifactPath sets where trained parameters are persisted.
func WithModelArtifactPath(path string) Option {
	return func(s *Service) {
		s.artifactPath = path
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		maxCandidates: candidate.DefaultMaxCandidates,
		trainEpochs:   DefaultTrainEpochs,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components. Missing backends fall back to
// self-contained defaults (seeded in-memory stores, keyword analytics, a
// static origin geocoder), so a bare Service is fully functional. If a
// parameter artifact exists at the configured path it is loaded; an
// incompatible artifact is logged and ignored, leaving the cold-start
// initialization in place.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting routing service...")

	if s.agents == nil || s.contacts == nil || s.history == nil {
		seeded := repository.NewSeededMemoryStore()
		if s.agents == nil {
			s.agents = seeded
		}
		if s.contacts == nil {
			s.contacts = seeded.Contacts()
		}
		if s.history == nil {
			s.history = seeded.History()
		}
		s.logger.Info(ctx, "using seeded in-memory stores")
	}
	if s.analytics == nil {
		s.analytics = textanalytics.NewKeyword()
		s.logger.Info(ctx, "using keyword text analytics")
	}
	if s.coords == nil {
		s.coords = geocode.NewCache(geocode.Static{})
		s.logger.Info(ctx, "using static geocoding")
	}

	s.generator = candidate.NewGenerator(candidate.WithMaxCandidates(s.maxCandidates))
	s.encoder = feature.NewEncoder(s.coords)
	s.network = ranking.NewNetwork(ranking.WithArtifactPath(s.artifactPath))
	s.ranker = ranking.NewRanker(s.encoder, s.network)

	if err := s.network.Load(); err != nil {
		if !errors.Is(err, ranking.ErrIncompatibleArtifact) {
			return fmt.Errorf("load model artifact: %w", err)
		}
		s.logger.Warn(ctx, "ignoring incompatible model artifact, cold starting",
			logger.String("path", s.artifactPath),
			logger.Error(err),
		)
	}

	s.started = true
	s.logger.Info(ctx, "routing service started",
		logger.Int("maxCandidates", s.maxCandidates),
		logger.Any("modelTrained", s.network.Trained()),
	)

	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "routing service stopped")
}

// GenerateCandidates returns the skill-matched shortlist for a language and
// intent, best first. An empty result means no agent has any skill for the
// job.
func (s *Service) GenerateCandidates(ctx context.Context, lang model.Language, intent model.Intent) ([]model.Candidate, error) {
	agents, err := s.agents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}

	candidates := s.generator.Generate(ctx, agents, lang, intent)
	metrics.RecordCandidatesGenerated(len(candidates))
	if len(candidates) == 0 {
		metrics.RecordEmptyCandidateSet()
	}
	return candidates, nil
}

// RankCandidates orders the given agent ids by predicted interaction
// success, best first. Unknown contact or agent ids surface as not-found
// errors.
func (s *Service) RankCandidates(ctx context.Context, contactID int, ictx model.InteractionContext, agentIDs []int) ([]model.RankedCandidate, error) {
	contact, err := s.contacts.Get(ctx, contactID)
	if err != nil {
		return nil, err
	}

	agents := make([]model.Agent, 0, len(agentIDs))
	for _, id := range agentIDs {
		agent, err := s.agents.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}

	start := time.Now()
	ranked, err := s.ranker.Rank(ctx, contact, ictx, agents)
	if err != nil {
		metrics.RecordPredictError()
		return nil, fmt.Errorf("rank candidates: %w", err)
	}
	metrics.RecordPredictLatency(float64(time.Since(start).Milliseconds()))

	return ranked, nil
}

// Route handles one customer question end to end: analyse the text,
// shortlist agents, rank them and phrase the outcome in the customer's
// language. The returned decision always carries a user-ready message; an
// error is returned only for hard failures (unknown contact, model
// failure).
func (s *Service) Route(ctx context.Context, contactID int, question string) (Decision, error) {
	decisionID := uuid.NewString()

	contact, err := s.contacts.Get(ctx, contactID)
	if err != nil {
		return Decision{}, err
	}

	lang := s.analytics.DetectLanguage(ctx, question)
	sentiment := s.analytics.DetectSentiment(ctx, question, lang)
	intent := s.analytics.DetectIntent(ctx, question, lang)

	decision := Decision{
		DecisionID: decisionID,
		Language:   lang,
		Sentiment:  sentiment,
		Intent:     intent,
	}

	s.logger.Info(ctx, "routing question",
		logger.String("decisionID", decisionID),
		logger.Int("contactID", contactID),
		logger.String("language", string(lang)),
		logger.Float64("sentiment", sentiment),
		logger.String("intent", string(intent)),
	)

	// No recognized intent, nothing to route. The shortlist stage is
	// skipped entirely.
	if intent == model.IntentOther {
		decision.Outcome = outcomeNoIntent
		decision.Message = noUnderstandMessage(lang, contact.Name)
		metrics.RecordRoutingDecision(outcomeNoIntent, string(lang))
		return decision, nil
	}

	candidates, err := s.GenerateCandidates(ctx, lang, intent)
	if err != nil {
		return Decision{}, err
	}

	if len(candidates) == 0 {
		decision.Outcome = outcomeAllBusy
		decision.Message = allBusyMessage(lang)
		metrics.RecordRoutingDecision(outcomeAllBusy, string(lang))
		s.logger.Info(ctx, "no candidates for interaction",
			logger.String("decisionID", decisionID),
			logger.String("language", string(lang)),
			logger.String("intent", string(intent)),
		)
		return decision, nil
	}

	ids := make([]int, len(candidates))
	for i, c := range candidates {
		ids[i] = c.AgentID
	}

	ictx := model.InteractionContext{Language: lang, Sentiment: sentiment, Intent: intent}
	ranked, err := s.RankCandidates(ctx, contactID, ictx, ids)
	if err != nil {
		return Decision{}, err
	}

	best := ranked[0]
	agent, err := s.agents.Get(ctx, best.AgentID)
	if err != nil {
		return Decision{}, err
	}

	decision.Outcome = outcomeRouted
	decision.AgentID = &agent.ID
	decision.AgentName = agent.Name
	decision.Message = transferMessage(lang, agent.Name, intent)
	metrics.RecordRoutingDecision(outcomeRouted, string(lang))

	s.logger.Info(ctx, "routed to agent",
		logger.String("decisionID", decisionID),
		logger.Int("agentID", agent.ID),
		logger.String("agentName", agent.Name),
		logger.Float64("predictedScore", best.Score),
	)

	return decision, nil
}

// Train rebuilds the ranking model from the full interaction history.
// Serving continues on the previous parameters for the whole run; the new
// set is swapped in only after it has been persisted. epochs <= 0 selects
// the configured default. History rows referencing unknown contacts or
// agents are skipped with a warning rather than aborting the run.
func (s *Service) Train(ctx context.Context, epochs int) (TrainReport, error) {
	if epochs <= 0 {
		epochs = s.trainEpochs
	}

	history, err := s.history.List(ctx)
	if err != nil {
		metrics.RecordTrainingFailure()
		return TrainReport{}, fmt.Errorf("list history: %w", err)
	}

	dataset := make([]ranking.Sample, 0, len(history))
	for _, h := range history {
		contact, err := s.contacts.Get(ctx, h.ContactID)
		if err != nil {
			s.logger.Warn(ctx, "skipping history row with unknown contact",
				logger.Int("contactID", h.ContactID),
				logger.Error(err),
			)
			continue
		}
		agent, err := s.agents.Get(ctx, h.AgentID)
		if err != nil {
			s.logger.Warn(ctx, "skipping history row with unknown agent",
				logger.Int("agentID", h.AgentID),
				logger.Error(err),
			)
			continue
		}

		ictx := model.InteractionContext{Language: h.Language, Sentiment: h.Sentiment, Intent: h.Intent}
		dataset = append(dataset, ranking.Sample{
			Features: s.encoder.Encode(ctx, contact, ictx, agent),
			Outcome:  h.OutcomeScore,
		})
	}

	s.logger.Info(ctx, "training ranking model",
		logger.Int("samples", len(dataset)),
		logger.Int("epochs", epochs),
	)

	start := time.Now()
	result, err := s.network.Train(dataset, epochs)
	if err != nil {
		metrics.RecordTrainingFailure()
		return TrainReport{}, fmt.Errorf("train ranking model: %w", err)
	}
	duration := time.Since(start)
	metrics.RecordTrainingRun(duration, result.Loss)

	s.logger.Info(ctx, "training completed",
		logger.Int("samples", result.Samples),
		logger.Int("epochs", result.Epochs),
		logger.Float64("loss", result.Loss),
		logger.Any("duration", duration),
	)

	return TrainReport{
		Epochs:   result.Epochs,
		Samples:  result.Samples,
		Loss:     result.Loss,
		Duration: duration,
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"maxCandidates": s.maxCandidates,
		"trainEpochs":   s.trainEpochs,
	}

	if s.started {
		stats["modelTrained"] = s.network.Trained()
		if agents, err := s.agents.List(context.Background()); err == nil {
			stats["agentCount"] = len(agents)
		}
	}

	return stats
}
