package simulator

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/relaydesk/agentrouter/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "sim_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the routing simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Agent Router Simulation Tool
============================

A concurrent tool for load-testing and verifying the agent routing service.
It generates synthetic contact questions in English and Spanish across the
sales, support, and unrecognized intent pools, posts them to /route, and
verifies that every decision carries a consistent localized message.

Usage:
  go run cmd/route-sim/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -requests int
        Number of routing requests to generate and submit (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for simulation output (default: sim_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate with default settings
  go run cmd/route-sim/main.go

  # Simulate with custom parameters
  go run cmd/route-sim/main.go -requests 5000 -workers 16 -url http://localhost:8080

  # Simulate with verbose output
  go run cmd/route-sim/main.go -verbose -requests 1000
`)
}
