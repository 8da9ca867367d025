package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/relaydesk/agentrouter/pkg/logger"
)

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// submitQuestions posts the questions to /route concurrently and tallies the
// outcomes. A response counts as failed when the request errors, the status
// is not 200, or the decision fails verification.
func submitQuestions(ctx context.Context, config *Config, questions []Question, stats *Stats) error {
	logger.Get().Info(ctx, "submitting routing requests",
		logger.Int("count", len(questions)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/route"

	var (
		submitted    int64
		routed       int64
		noIntent     int64
		allBusy      int64
		failed       int64
		verifyFailed int64
	)

	questionChan := make(chan Question, config.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for q := range questionChan {
				select {
				case <-ctx.Done():
					return
				default:
					decision, err := routeSingleQuestion(ctx, client, url, q)
					atomic.AddInt64(&submitted, 1)
					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							logger.Get().Warn(ctx, "routing request failed", logger.Error(err))
						}
						continue
					}

					if err := verifyDecision(decision); err != nil {
						atomic.AddInt64(&verifyFailed, 1)
						logger.Get().Warn(ctx, "decision failed verification",
							logger.String("decisionID", decision.DecisionID),
							logger.Error(err))
						continue
					}

					switch decision.Outcome {
					case outcomeRouted:
						atomic.AddInt64(&routed, 1)
					case outcomeNoIntent:
						atomic.AddInt64(&noIntent, 1)
					case outcomeAllBusy:
						atomic.AddInt64(&allBusy, 1)
					}
				}
			}
		}()
	}

	go func() {
		defer close(questionChan)
		for _, q := range questions {
			select {
			case <-ctx.Done():
				return
			case questionChan <- q:
			}
		}
	}()

	wg.Wait()

	stats.RequestsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.RequestsRouted = int(atomic.LoadInt64(&routed))
	stats.RequestsNoIntent = int(atomic.LoadInt64(&noIntent))
	stats.RequestsAllBusy = int(atomic.LoadInt64(&allBusy))
	stats.RequestsFailed = int(atomic.LoadInt64(&failed))
	stats.VerifyFailures = int(atomic.LoadInt64(&verifyFailed))

	return nil
}

// routeSingleQuestion posts one question and decodes the decision.
func routeSingleQuestion(ctx context.Context, client *HTTPClient, url string, q Question) (*Decision, error) {
	resp, err := client.Post(ctx, url, q)
	if err != nil {
		return nil, fmt.Errorf("post failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != statusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var decision Decision
	if err := json.Unmarshal(body, &decision); err != nil {
		return nil, fmt.Errorf("failed to decode decision: %w", err)
	}
	return &decision, nil
}
