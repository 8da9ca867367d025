package ranking

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/relaydesk/agentrouter/internal/domain/feature"
)

// artifactSchemaVersion guards the JSON shape of the artifact itself.
const artifactSchemaVersion = 1

const artifactFilePermission = 0o600

// artifact is the persisted parameter set. LayoutHash keys the artifact to
// the network topology and feature layout so a serving process can detect
// and ignore an incompatible file instead of silently loading mismatched
// parameters.
type artifact struct {
	SchemaVersion int           `json:"schema_version"`
	LayoutHash    string        `json:"layout_hash"`
	InputDim      int           `json:"input_dim"`
	HiddenLayers  []int         `json:"hidden_layers"`
	Weights       [][][]float64 `json:"weights"`
	Biases        [][]float64   `json:"biases"`
	SavedAt       time.Time     `json:"saved_at"`
}

// layoutHash fingerprints everything a parameter set depends on.
func (n *Network) layoutHash() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "features=%s dim=%d hidden=", feature.LayoutVersion, n.inputDim)
	for _, h := range n.hidden {
		fmt.Fprintf(&sb, "%d,", h)
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:8])
}

// artifact serializes the given parameters.
func (n *Network) artifact(weights, biases []*mat.Dense) artifact {
	a := artifact{
		SchemaVersion: artifactSchemaVersion,
		LayoutHash:    n.layoutHash(),
		InputDim:      n.inputDim,
		HiddenLayers:  append([]int(nil), n.hidden...),
		Weights:       make([][][]float64, len(weights)),
		Biases:        make([][]float64, len(biases)),
		SavedAt:       time.Now().UTC(),
	}

	for l, w := range weights {
		rows, _ := w.Dims()
		a.Weights[l] = make([][]float64, rows)
		for i := 0; i < rows; i++ {
			a.Weights[l][i] = append([]float64(nil), w.RawRowView(i)...)
		}
	}
	for l, b := range biases {
		rows, _ := b.Dims()
		a.Biases[l] = make([]float64, rows)
		for i := 0; i < rows; i++ {
			a.Biases[l][i] = b.At(i, 0)
		}
	}

	return a
}

// saveArtifact writes the artifact atomically: a temp file in the target
// directory, then rename. A crash mid-write leaves the previous artifact
// intact.
func saveArtifact(path string, a artifact) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Chmod(tmpName, artifactFilePermission); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}

// Load reads the persisted artifact, if any, and installs its parameters.
// A missing file is not an error: the network keeps its cold-start
// initialization. An incompatible artifact returns ErrIncompatibleArtifact
// and leaves the current parameters untouched.
func (n *Network) Load() error {
	if n.artifactPath == "" {
		return nil
	}

	data, err := os.ReadFile(n.artifactPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", ErrIncompatibleArtifact, err)
	}
	if a.SchemaVersion != artifactSchemaVersion {
		return fmt.Errorf("%w: schema version %d, want %d", ErrIncompatibleArtifact, a.SchemaVersion, artifactSchemaVersion)
	}
	if a.LayoutHash != n.layoutHash() {
		return fmt.Errorf("%w: layout hash %q, want %q", ErrIncompatibleArtifact, a.LayoutHash, n.layoutHash())
	}

	sizes := n.layerSizes()
	if len(a.Weights) != len(sizes)-1 || len(a.Biases) != len(sizes)-1 {
		return fmt.Errorf("%w: %d weight layers, want %d", ErrIncompatibleArtifact, len(a.Weights), len(sizes)-1)
	}

	weights := make([]*mat.Dense, len(a.Weights))
	biases := make([]*mat.Dense, len(a.Biases))
	for l := range a.Weights {
		out, in := sizes[l+1], sizes[l]
		if len(a.Weights[l]) != out || len(a.Biases[l]) != out {
			return fmt.Errorf("%w: layer %d has %d rows, want %d", ErrIncompatibleArtifact, l, len(a.Weights[l]), out)
		}
		flat := make([]float64, 0, out*in)
		for _, row := range a.Weights[l] {
			if len(row) != in {
				return fmt.Errorf("%w: layer %d row width %d, want %d", ErrIncompatibleArtifact, l, len(row), in)
			}
			flat = append(flat, row...)
		}
		weights[l] = mat.NewDense(out, in, flat)
		biases[l] = mat.NewDense(out, 1, append([]float64(nil), a.Biases[l]...))
	}

	n.mu.Lock()
	n.weights = weights
	n.biases = biases
	n.trained = true
	n.mu.Unlock()

	return nil
}
