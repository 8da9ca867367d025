// Package ranking implements the trainable scoring function that predicts the
// success of an agent handling an interaction, and the ranker built on it.
package ranking

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/relaydesk/agentrouter/internal/domain/feature"
)

// Reference architecture and training constants. The topology is
// implementation-defined; the input/output contract is not.
const (
	defaultSeed = 42

	dropoutRate   = 0.15
	dropoutLayer  = 1 // applied after the second hidden layer's activation
	miniBatchSize = 32

	adamLearningRate = 1e-3
	adamBeta1        = 0.9
	adamBeta2        = 0.999
	adamEpsilon      = 1e-8

	// Small positive bias avoids dead ReLU units at initialization.
	initialBias = 0.01
)

// defaultHiddenLayers is the reference 50/35/20 topology.
var defaultHiddenLayers = []int{50, 35, 20}

// Sample is one training example: an encoded feature vector and the observed
// outcome score in [0,1].
type Sample struct {
	Features feature.Vector
	Outcome  float64
}

// TrainResult summarizes a completed training run.
type TrainResult struct {
	Epochs  int     `json:"epochs"`
	Samples int     `json:"samples"`
	Loss    float64 `json:"loss"`
}

// Option applies a configuration option to the Network.
type Option func(*Network)

// WithHiddenLayers overrides the reference hidden topology.
func WithHiddenLayers(sizes []int) Option {
	return func(n *Network) {
		if len(sizes) > 0 {
			n.hidden = append([]int(nil), sizes...)
		}
	}
}

// WithArtifactPath sets where trained parameters are persisted.
func WithArtifactPath(path string) Option {
	return func(n *Network) {
		if path != "" {
			n.artifactPath = path
		}
	}
}

// WithSeed sets the seed used for parameter initialization, dataset
// shuffling and dropout masks.
func WithSeed(seed int64) Option {
	return func(n *Network) {
		n.seed = seed
	}
}

// Network is a small fully connected regression network over the fixed
// feature layout. Serving reads parameters under a read lock and never
// mutates them; Train computes a fresh parameter set, persists it, and swaps
// it in atomically.
type Network struct {
	mu sync.RWMutex

	inputDim     int
	hidden       []int
	weights      []*mat.Dense // weights[l] has shape (out_l, in_l)
	biases       []*mat.Dense // biases[l] has shape (out_l, 1)
	trained      bool
	artifactPath string
	seed         int64
}

// NewNetwork creates a network with freshly initialized parameters. Call
// Load afterwards to pick up a persisted artifact if one exists.
func NewNetwork(opts ...Option) *Network {
	n := &Network{
		inputDim: feature.Dim,
		hidden:   append([]int(nil), defaultHiddenLayers...),
		seed:     defaultSeed,
	}

	for _, opt := range opts {
		opt(n)
	}

	n.weights, n.biases = initParameters(n.layerSizes(), rand.New(rand.NewSource(n.seed))) //nolint:gosec // deterministic cold start

	return n
}

// layerSizes returns [input, hidden..., 1].
func (n *Network) layerSizes() []int {
	sizes := append([]int{n.inputDim}, n.hidden...)
	return append(sizes, 1)
}

// Trained reports whether the current parameters came from a completed
// training run (or a loaded artifact) rather than cold-start initialization.
func (n *Network) Trained() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.trained
}

// initParameters builds He-initialized weights and small positive biases.
func initParameters(sizes []int, rng *rand.Rand) ([]*mat.Dense, []*mat.Dense) {
	weights := make([]*mat.Dense, len(sizes)-1)
	biases := make([]*mat.Dense, len(sizes)-1)

	for l := 0; l < len(sizes)-1; l++ {
		in, out := sizes[l], sizes[l+1]

		scale := math.Sqrt(2.0 / float64(in))
		w := make([]float64, out*in)
		for i := range w {
			w[i] = scale * gaussian(rng)
		}
		weights[l] = mat.NewDense(out, in, w)

		b := make([]float64, out)
		for i := range b {
			b[i] = initialBias
		}
		biases[l] = mat.NewDense(out, 1, b)
	}

	return weights, biases
}

// gaussian draws a standard normal value via the Box-Muller transform.
func gaussian(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1+1e-12)) * math.Cos(2*math.Pi*u2)
}

// Predict scores a batch of feature vectors. Scores are returned in input
// order; the call is read-only and deterministic for fixed parameters.
func (n *Network) Predict(batch []feature.Vector) ([]float64, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	x, err := batchMatrix(batch, n.inputDim)
	if err != nil {
		return nil, err
	}

	n.mu.RLock()
	out := forward(x, n.weights, n.biases, nil)
	n.mu.RUnlock()

	rows, _ := out.Dims()
	scores := make([]float64, rows)
	for i := range scores {
		scores[i] = out.At(i, 0)
	}
	return scores, nil
}

// batchMatrix validates dimensions and flattens the batch into an n x dim
// matrix.
func batchMatrix(batch []feature.Vector, dim int) (*mat.Dense, error) {
	flat := make([]float64, 0, len(batch)*dim)
	for i, v := range batch {
		if len(v) != dim {
			return nil, fmt.Errorf("sample %d has %d features, want %d: %w", i, len(v), dim, ErrDimensionMismatch)
		}
		flat = append(flat, v...)
	}
	return mat.NewDense(len(batch), dim, flat), nil
}

// forward runs the batch through the network. Hidden layers use ReLU, the
// output layer is linear. masks, when non-nil, holds per-layer inverted
// dropout masks (training only); activations and pre-activations are
// returned through it for the backward pass.
func forward(x *mat.Dense, weights, biases []*mat.Dense, trace *forwardTrace) *mat.Dense {
	a := x
	if trace != nil {
		trace.activations[0] = x
	}

	for l := range weights {
		rows, _ := a.Dims()
		out, _ := weights[l].Dims()

		z := mat.NewDense(rows, out, nil)
		z.Mul(a, weights[l].T())
		// Broadcast the bias across the batch.
		b := biases[l]
		z.Apply(func(_, j int, v float64) float64 { return v + b.At(j, 0) }, z)

		next := mat.NewDense(rows, out, nil)
		if l < len(weights)-1 {
			next.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, z)
			if trace != nil && trace.masks[l] != nil {
				next.MulElem(next, trace.masks[l])
			}
		} else {
			next.Copy(z)
		}

		if trace != nil {
			trace.preActivations[l] = z
			trace.activations[l+1] = next
		}
		a = next
	}

	return a
}

// forwardTrace captures intermediate values needed by backpropagation.
type forwardTrace struct {
	activations    []*mat.Dense // activations[l] feeds layer l; last is the output
	preActivations []*mat.Dense // preActivations[l] is z of layer l
	masks          []*mat.Dense // inverted dropout masks, nil where unused
}

func newForwardTrace(layers int) *forwardTrace {
	return &forwardTrace{
		activations:    make([]*mat.Dense, layers+1),
		preActivations: make([]*mat.Dense, layers),
		masks:          make([]*mat.Dense, layers),
	}
}
