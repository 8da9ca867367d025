// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file and environment.
// - External errors must be wrapped via this package's error helpers.
package config

// Store backend names accepted by the Store field.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the backing store: memory (seeded fixtures) or sqlite.
	Store string `koanf:"store"`

	// SQLitePath locates the sqlite database file when Store is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// ModelArtifactPath is where trained ranking parameters are persisted.
	// Empty disables persistence.
	ModelArtifactPath string `koanf:"model_artifact_path"`

	// MaxCandidates bounds the ranking shortlist.
	MaxCandidates int `koanf:"max_candidates"`

	// TrainEpochs is the default epoch count for training runs.
	TrainEpochs int `koanf:"train_epochs"`

	// GeocodeBaseURL and GeocodeAPIKey configure postal-code resolution.
	// An empty base URL selects the static origin resolver.
	GeocodeBaseURL   string `koanf:"geocode_base_url"`
	GeocodeAPIKey    string `koanf:"geocode_api_key"`
	GeocodeTimeoutMS int    `koanf:"geocode_timeout_ms"`

	// AnalyticsBaseURL configures external language/sentiment detection.
	// Empty selects the built-in keyword analytics.
	AnalyticsBaseURL   string `koanf:"analytics_base_url"`
	AnalyticsAPIKey    string `koanf:"analytics_api_key"`
	AnalyticsTimeoutMS int    `koanf:"analytics_timeout_ms"`

	// IntentEndpointEN and IntentEndpointES are the per-language intent
	// detection endpoints.
	IntentEndpointEN string `koanf:"intent_endpoint_en"`
	IntentEndpointES string `koanf:"intent_endpoint_es"`
}

// New creates a Config with defaults. The defaults run the service fully
// self-contained: seeded in-memory stores, keyword analytics, no geocoding
// endpoint and no parameter persistence.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		Store:              StoreMemory,
		SQLitePath:         "agentrouter.db",
		MaxCandidates:      3,
		TrainEpochs:        500,
		GeocodeTimeoutMS:   5_000,
		AnalyticsTimeoutMS: 5_000,
	}
}
