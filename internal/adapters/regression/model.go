package regression

import (
	"fmt"

	"github.com/okian/playervalue/internal/domain/features"
)

// Model evaluates a validated artifact. It is immutable and safe for
// concurrent use.
type Model struct {
	artifact Artifact
	known    map[string]struct{}
}

// New validates a and returns a Model over it.
func New(a Artifact) (*Model, error) {
	if a.Kind == KindTreeEnsemble {
		if a.Aggregation == "" {
			a.Aggregation = AggregateSum
		}
		if a.LearningRate == 0 {
			a.LearningRate = 1
		}
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	m := &Model{artifact: a, known: make(map[string]struct{}, len(a.Features))}
	for _, f := range a.Features {
		m.known[f] = struct{}{}
	}
	return m, nil
}

// Kind returns the artifact kind.
func (m *Model) Kind() string { return m.artifact.Kind }

// Features returns the feature names the model was trained on.
func (m *Model) Features() []string {
	out := make([]string, len(m.artifact.Features))
	copy(out, m.artifact.Features)
	return out
}

// Contract returns the training-time contract declared by the artifact.
func (m *Model) Contract() features.Contract { return m.artifact.Contract }

// Predict returns one raw output per row. Rows are addressed by name; column
// order is irrelevant but every trained feature must be present and nothing
// else may be.
func (m *Model) Predict(rows []features.Vector) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if err := m.checkRow(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		switch m.artifact.Kind {
		case KindLinear:
			out[i] = m.linear(row)
		default:
			y, err := m.ensemble(row)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			out[i] = y
		}
	}
	return out, nil
}

func (m *Model) checkRow(row features.Vector) error {
	for _, f := range m.artifact.Features {
		if _, ok := row[f]; !ok {
			return fmt.Errorf("%w: missing %q", ErrRowShape, f)
		}
	}
	if len(row) != len(m.known) {
		for name := range row {
			if _, ok := m.known[name]; !ok {
				return fmt.Errorf("%w: unexpected %q", ErrRowShape, name)
			}
		}
	}
	return nil
}

func (m *Model) linear(row features.Vector) float64 {
	// Summed in trained feature order so repeated calls agree bit for bit.
	y := m.artifact.Intercept
	for _, name := range m.artifact.Features {
		y += m.artifact.Coefficients[name] * row[name]
	}
	return y
}

func (m *Model) ensemble(row features.Vector) (float64, error) {
	var sum float64
	for i, t := range m.artifact.Trees {
		v, err := t.eval(row)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += v
	}
	if m.artifact.Aggregation == AggregateMean {
		return m.artifact.BaseScore + sum/float64(len(m.artifact.Trees)), nil
	}
	return m.artifact.BaseScore + m.artifact.LearningRate*sum, nil
}

// eval walks from the root. Children always have larger indices than their
// parent (checked at load), so the walk terminates.
func (t Tree) eval(row features.Vector) (float64, error) {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value, nil
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
		if i >= len(t.Nodes) {
			return 0, fmt.Errorf("node index %d out of range", i)
		}
	}
}
