package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/relaydesk/agentrouter/pkg/logger"
)

// Run executes a complete routing simulation: health check, question
// generation, concurrent submission with verification, and a final report.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting routing simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.NumRequests),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("verbose", config.Verbose))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	questions := generateQuestions(ctx, config, stats)

	if err := submitQuestions(ctx, config, questions, stats); err != nil {
		return fmt.Errorf("request submission failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	if stats.RequestsFailed > 0 || stats.VerifyFailures > 0 {
		return fmt.Errorf("simulation finished with %d failed requests and %d verification failures",
			stats.RequestsFailed, stats.VerifyFailures)
	}

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != statusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var successRate, requestsPerSecond float64

	verified := stats.RequestsSubmitted - stats.RequestsFailed - stats.VerifyFailures
	if stats.RequestsSubmitted > 0 {
		successRate = float64(verified) / float64(stats.RequestsSubmitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.RequestsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("requestsGenerated", stats.RequestsGenerated),
		logger.Int("requestsSubmitted", stats.RequestsSubmitted),
		logger.Int("routed", stats.RequestsRouted),
		logger.Int("noIntent", stats.RequestsNoIntent),
		logger.Int("allBusy", stats.RequestsAllBusy),
		logger.Int("failed", stats.RequestsFailed),
		logger.Int("verifyFailures", stats.VerifyFailures),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
