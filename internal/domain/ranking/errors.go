package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	// ErrDimensionMismatch reports a feature vector whose length differs
	// from the network input dimension. Fatal for the request; retrying a
	// pure computation with the same malformed input cannot succeed.
	ErrDimensionMismatch = errors.New("feature vector dimension mismatch")

	// ErrEmptyDataset reports a training run invoked with no samples.
	ErrEmptyDataset = errors.New("empty training dataset")

	// ErrInvalidEpochs reports a non-positive epoch count.
	ErrInvalidEpochs = errors.New("epochs must be positive")

	// ErrIncompatibleArtifact reports a persisted parameter artifact whose
	// layout hash does not match this process. The artifact is ignored, not
	// partially loaded.
	ErrIncompatibleArtifact = errors.New("incompatible model artifact")
)
