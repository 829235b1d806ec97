// Package valuation turns a feature vector into a market value estimate by
// delegating to an opaque regression model and inverting its log-space target.
package valuation

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/playervalue/internal/domain/features"
)

// Model is the opaque regression collaborator. It returns one raw output per
// row, in the log domain of the market value in millions.
type Model interface {
	Predict(rows []features.Vector) ([]float64, error)
}

// ContractReporter is implemented by models that declare the training-time
// contract they were built under.
type ContractReporter interface {
	Contract() features.Contract
}

// Result is a single estimate.
type Result struct {
	// Raw is the model output in log space.
	Raw float64
	// Value is the market value in millions of euro.
	Value float64
}

var printer = message.NewPrinter(language.English)

// String renders the estimate the way the collection surface displays it,
// e.g. "€40.12 million".
func (r Result) String() string {
	return printer.Sprintf("€%.2f million", r.Value)
}

// Predictor wraps a Model and applies the inverse target transform.
type Predictor struct {
	model Model
}

// NewPredictor returns a Predictor over m.
func NewPredictor(m Model) *Predictor {
	return &Predictor{model: m}
}

// Model returns the wrapped model.
func (p *Predictor) Model() Model { return p.model }

// Predict estimates the market value for v. Vectors that do not carry the
// expected feature names fail with features.ErrFeatureMismatch before the
// model is consulted; anything the model rejects fails with ErrInference.
func (p *Predictor) Predict(v features.Vector) (Result, error) {
	if err := features.Validate(v); err != nil {
		return Result{}, err
	}
	out, err := p.model.Predict([]features.Vector{v})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInference, err)
	}
	if len(out) == 0 {
		return Result{}, fmt.Errorf("%w: model returned no output", ErrInference)
	}
	raw := out[0]
	value := math.Exp(raw)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Result{}, fmt.Errorf("%w: raw output %v has no finite inverse", ErrInference, raw)
	}
	return Result{Raw: raw, Value: value}, nil
}
