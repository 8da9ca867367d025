package simulator

import "time"

// Config holds configuration for a routing simulation run.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumRequests int           // Number of routing requests to generate
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	LogFile     string        // Log file for simulation output
	Verbose     bool          // Enable verbose logging
}

// Question is a synthetic contact question to be routed.
type Question struct {
	ContactID int    `json:"contact_id"`
	Text      string `json:"question"`
}

// Decision mirrors the service's routing decision payload.
type Decision struct {
	DecisionID string  `json:"decision_id"`
	Message    string  `json:"message"`
	Outcome    string  `json:"outcome"`
	AgentID    *int    `json:"agent_id,omitempty"`
	AgentName  string  `json:"agent_name,omitempty"`
	Language   string  `json:"language"`
	Sentiment  float64 `json:"sentiment"`
	Intent     string  `json:"intent"`
}

// Stats holds simulation statistics.
type Stats struct {
	RequestsGenerated int
	RequestsSubmitted int
	RequestsRouted    int
	RequestsNoIntent  int
	RequestsAllBusy   int
	RequestsFailed    int
	VerifyFailures    int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
