package ranking

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Train fits the network to the dataset by minimizing mean squared error
// with minibatch Adam, running the requested number of full passes.
//
// Training never touches the serving parameters: it works on a copy, and
// only after the run completes and the new parameters are persisted does it
// swap them in. A failed run leaves both the artifact and the serving
// parameters exactly as they were.
func (n *Network) Train(dataset []Sample, epochs int) (TrainResult, error) {
	if len(dataset) == 0 {
		return TrainResult{}, ErrEmptyDataset
	}
	if epochs <= 0 {
		return TrainResult{}, ErrInvalidEpochs
	}
	for i, s := range dataset {
		if len(s.Features) != n.inputDim {
			return TrainResult{}, fmt.Errorf("sample %d has %d features, want %d: %w", i, len(s.Features), n.inputDim, ErrDimensionMismatch)
		}
	}

	// Continue from the current parameters, as a refit over the full
	// history would.
	n.mu.RLock()
	weights := cloneMatrices(n.weights)
	biases := cloneMatrices(n.biases)
	n.mu.RUnlock()

	rng := rand.New(rand.NewSource(n.seed)) //nolint:gosec // deterministic shuffling and dropout
	opt := newAdamState(weights, biases)

	order := make([]int, len(dataset))
	for i := range order {
		order[i] = i
	}

	var lastLoss float64
	for epoch := 0; epoch < epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var epochSquaredErr float64
		for start := 0; start < len(order); start += miniBatchSize {
			end := start + miniBatchSize
			if end > len(order) {
				end = len(order)
			}
			batch := order[start:end]

			x, y := trainingBatch(dataset, batch, n.inputDim)
			trace := newForwardTrace(len(weights))
			trace.masks[dropoutLayer] = dropoutMask(len(batch), hiddenSize(weights, dropoutLayer), rng)

			pred := forward(x, weights, biases, trace)
			epochSquaredErr += backward(weights, biases, trace, pred, y, opt)
		}
		lastLoss = epochSquaredErr / float64(len(dataset))
	}

	// Replace-on-success: persist first, then swap the serving parameters.
	if n.artifactPath != "" {
		if err := saveArtifact(n.artifactPath, n.artifact(weights, biases)); err != nil {
			return TrainResult{}, fmt.Errorf("persist trained parameters: %w", err)
		}
	}

	n.mu.Lock()
	n.weights = weights
	n.biases = biases
	n.trained = true
	n.mu.Unlock()

	return TrainResult{Epochs: epochs, Samples: len(dataset), Loss: lastLoss}, nil
}

// trainingBatch assembles the input matrix and label column for the selected
// sample indices.
func trainingBatch(dataset []Sample, batch []int, dim int) (*mat.Dense, *mat.Dense) {
	flat := make([]float64, 0, len(batch)*dim)
	labels := make([]float64, len(batch))
	for i, idx := range batch {
		flat = append(flat, dataset[idx].Features...)
		labels[i] = dataset[idx].Outcome
	}
	return mat.NewDense(len(batch), dim, flat), mat.NewDense(len(batch), 1, labels)
}

// hiddenSize returns the output width of weight layer l.
func hiddenSize(weights []*mat.Dense, l int) int {
	out, _ := weights[l].Dims()
	return out
}

// dropoutMask builds an inverted dropout mask: zero with probability
// dropoutRate, 1/(1-rate) otherwise, so activations keep their expectation.
func dropoutMask(rows, cols int, rng *rand.Rand) *mat.Dense {
	keep := 1.0 - dropoutRate
	data := make([]float64, rows*cols)
	for i := range data {
		if rng.Float64() < keep {
			data[i] = 1.0 / keep
		}
	}
	return mat.NewDense(rows, cols, data)
}

// backward runs backpropagation for one minibatch and applies the Adam
// update in place. It returns the batch's summed squared error.
func backward(weights, biases []*mat.Dense, trace *forwardTrace, pred, y *mat.Dense, opt *adamState) float64 {
	rows, _ := pred.Dims()

	// d(MSE)/d(output) = 2*(pred - y)/batch
	var sumSquared float64
	delta := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		diff := pred.At(i, 0) - y.At(i, 0)
		sumSquared += diff * diff
		delta.Set(i, 0, 2*diff/float64(rows))
	}

	numLayers := len(weights)
	gradW := make([]*mat.Dense, numLayers)
	gradB := make([]*mat.Dense, numLayers)

	for l := numLayers - 1; l >= 0; l-- {
		out, in := weights[l].Dims()

		gw := mat.NewDense(out, in, nil)
		gw.Mul(delta.T(), trace.activations[l])
		gradW[l] = gw

		gb := mat.NewDense(out, 1, nil)
		for j := 0; j < out; j++ {
			var sum float64
			for i := 0; i < rows; i++ {
				sum += delta.At(i, j)
			}
			gb.Set(j, 0, sum)
		}
		gradB[l] = gb

		if l == 0 {
			break
		}

		// delta for the previous layer, through ReLU (and dropout mask).
		prev := mat.NewDense(rows, in, nil)
		prev.Mul(delta, weights[l])
		z := trace.preActivations[l-1]
		prev.Apply(func(i, j int, v float64) float64 {
			if z.At(i, j) <= 0 {
				return 0
			}
			return v
		}, prev)
		if mask := trace.masks[l-1]; mask != nil {
			prev.MulElem(prev, mask)
		}
		delta = prev
	}

	opt.step(weights, biases, gradW, gradB)

	return sumSquared
}

// adamState carries first and second moment estimates per parameter.
type adamState struct {
	t  int
	mW []*mat.Dense
	vW []*mat.Dense
	mB []*mat.Dense
	vB []*mat.Dense
}

func newAdamState(weights, biases []*mat.Dense) *adamState {
	s := &adamState{
		mW: make([]*mat.Dense, len(weights)),
		vW: make([]*mat.Dense, len(weights)),
		mB: make([]*mat.Dense, len(biases)),
		vB: make([]*mat.Dense, len(biases)),
	}
	for l := range weights {
		r, c := weights[l].Dims()
		s.mW[l] = mat.NewDense(r, c, nil)
		s.vW[l] = mat.NewDense(r, c, nil)
		r, c = biases[l].Dims()
		s.mB[l] = mat.NewDense(r, c, nil)
		s.vB[l] = mat.NewDense(r, c, nil)
	}
	return s
}

// step applies one Adam update to every parameter.
func (s *adamState) step(weights, biases, gradW, gradB []*mat.Dense) {
	s.t++
	c1 := 1 - math.Pow(adamBeta1, float64(s.t))
	c2 := 1 - math.Pow(adamBeta2, float64(s.t))

	for l := range weights {
		applyAdam(weights[l], gradW[l], s.mW[l], s.vW[l], c1, c2)
		applyAdam(biases[l], gradB[l], s.mB[l], s.vB[l], c1, c2)
	}
}

func applyAdam(param, grad, m, v *mat.Dense, c1, c2 float64) {
	rows, cols := param.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			g := grad.At(i, j)
			mv := adamBeta1*m.At(i, j) + (1-adamBeta1)*g
			vv := adamBeta2*v.At(i, j) + (1-adamBeta2)*g*g
			m.Set(i, j, mv)
			v.Set(i, j, vv)
			update := adamLearningRate * (mv / c1) / (math.Sqrt(vv/c2) + adamEpsilon)
			param.Set(i, j, param.At(i, j)-update)
		}
	}
}

// cloneMatrices deep-copies a parameter list.
func cloneMatrices(src []*mat.Dense) []*mat.Dense {
	dst := make([]*mat.Dense, len(src))
	for i, m := range src {
		dst[i] = mat.DenseCopyOf(m)
	}
	return dst
}
