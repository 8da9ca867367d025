package simulator

// HTTP status code constants.
const (
	statusOK = 200
)

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
)

// Routing outcome labels used by the service.
const (
	outcomeRouted   = "routed"
	outcomeNoIntent = "no_intent"
	outcomeAllBusy  = "all_busy"
)

// Percentage multiplier for success rate reporting.
const percentageMultiplier = 100
