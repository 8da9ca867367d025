package textanalytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/relaydesk/agentrouter/internal/domain/model"
	"github.com/relaydesk/agentrouter/pkg/logger"
	"github.com/relaydesk/agentrouter/pkg/metrics"
)

const (
	defaultTimeout = 5 * time.Second

	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"
)

// HTTPService talks to Azure-style text-analytics endpoints for language
// and sentiment, and a LUIS-style endpoint per language for intent.
type HTTPService struct {
	analyticsBaseURL string
	intentEnURL      string
	intentEsURL      string
	apiKey           string
	http             *http.Client
	log              logger.Logger
}

// HTTPOption applies a configuration option to the HTTPService.
type HTTPOption func(*HTTPService)

// WithAnalyticsBaseURL sets the language/sentiment endpoint base.
func WithAnalyticsBaseURL(baseURL string) HTTPOption {
	return func(s *HTTPService) {
		s.analyticsBaseURL = baseURL
	}
}

// WithIntentEndpoints sets the per-language intent endpoints.
func WithIntentEndpoints(enURL, esURL string) HTTPOption {
	return func(s *HTTPService) {
		s.intentEnURL = enURL
		s.intentEsURL = esURL
	}
}

// WithAPIKey sets the subscription key sent with each request.
func WithAPIKey(key string) HTTPOption {
	return func(s *HTTPService) {
		s.apiKey = key
	}
}

// WithTimeout bounds each detection request.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(s *HTTPService) {
		if timeout > 0 {
			s.http.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(s *HTTPService) {
		if hc != nil {
			s.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) HTTPOption {
	return func(s *HTTPService) {
		if log != nil {
			s.log = log
		}
	}
}

// NewHTTPService creates an HTTP-backed analytics service.
func NewHTTPService(opts ...HTTPOption) *HTTPService {
	s := &HTTPService{
		http: &http.Client{Timeout: defaultTimeout},
		log:  logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type document struct {
	ID       string `json:"id"`
	Language string `json:"language,omitempty"`
	Text     string `json:"text"`
}

type documentsRequest struct {
	Documents []document `json:"documents"`
}

type languageResponse struct {
	Documents []struct {
		DetectedLanguages []struct {
			ISO6391Name string `json:"iso6391Name"`
		} `json:"detectedLanguages"`
	} `json:"documents"`
}

type sentimentResponse struct {
	Documents []struct {
		Score float64 `json:"score"`
	} `json:"documents"`
}

type intentResponse struct {
	TopScoringIntent struct {
		Intent string  `json:"intent"`
		Score  float64 `json:"score"`
	} `json:"topScoringIntent"`
}

// DetectLanguage guesses the message language. Detection failures default
// to English.
func (s *HTTPService) DetectLanguage(ctx context.Context, text string) model.Language {
	var payload languageResponse
	err := s.postDocuments(ctx, s.analyticsBaseURL+"/languages", document{ID: "1", Text: text}, &payload)
	if err != nil {
		metrics.RecordTextAnalyticsFallback("language")
		s.log.Warn(ctx, "language detection failed, defaulting to en", logger.Error(err))
		return model.LanguageEnglish
	}
	if len(payload.Documents) == 0 || len(payload.Documents[0].DetectedLanguages) == 0 {
		metrics.RecordTextAnalyticsFallback("language")
		return model.LanguageEnglish
	}
	return normalizeLanguage(payload.Documents[0].DetectedLanguages[0].ISO6391Name)
}

// DetectSentiment scores the message sentiment. Detection failures default
// to the neutral midpoint.
func (s *HTTPService) DetectSentiment(ctx context.Context, text string, lang model.Language) float64 {
	var payload sentimentResponse
	doc := document{ID: "1", Language: string(lang), Text: text}
	err := s.postDocuments(ctx, s.analyticsBaseURL+"/sentiment", doc, &payload)
	if err != nil || len(payload.Documents) == 0 {
		metrics.RecordTextAnalyticsFallback("sentiment")
		s.log.Warn(ctx, "sentiment detection failed, defaulting to neutral", logger.Error(err))
		return neutralSentiment
	}
	return payload.Documents[0].Score
}

// DetectIntent classifies the message intent through the language-matched
// endpoint. Low-confidence and failed detections are "other".
func (s *HTTPService) DetectIntent(ctx context.Context, text string, lang model.Language) model.Intent {
	endpoint := s.intentEnURL
	if lang == model.LanguageSpanish {
		endpoint = s.intentEsURL
	}

	payload, err := s.queryIntent(ctx, endpoint, text)
	if err != nil {
		metrics.RecordTextAnalyticsFallback("intent")
		s.log.Warn(ctx, "intent detection failed, defaulting to other", logger.Error(err))
		return model.IntentOther
	}

	top := payload.TopScoringIntent
	if top.Score < minIntentConfidence {
		return model.IntentOther
	}
	switch top.Intent {
	case "Sales", "Ventas":
		return model.IntentSales
	case "Support", "Soporte":
		return model.IntentSupport
	default:
		return model.IntentOther
	}
}

func (s *HTTPService) postDocuments(ctx context.Context, endpoint string, doc document, out any) error {
	body, err := json.Marshal(documentsRequest{Documents: []document{doc}})
	if err != nil {
		return fmt.Errorf("marshal analytics request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build analytics request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(subscriptionKeyHeader, s.apiKey)

	return s.do(req, out)
}

func (s *HTTPService) queryIntent(ctx context.Context, endpoint, text string) (*intentResponse, error) {
	query := url.Values{}
	query.Set("q", text)
	query.Set("verbose", "true")
	query.Set("spellCheck", "false")
	query.Set("staging", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build intent request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, s.apiKey)

	var payload intentResponse
	if err := s.do(req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (s *HTTPService) do(req *http.Request, out any) error {
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("analytics request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analytics request: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode analytics response: %w", err)
	}
	return nil
}
