// Package regression loads a pre-trained market value regression artifact and
// evaluates it on name-addressed rows. The artifact is treated as opaque by
// the rest of the service: it is only ever asked to Predict.
package regression

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/playervalue/internal/domain/features"
)

// Artifact kinds.
const (
	KindLinear       = "linear"
	KindTreeEnsemble = "tree_ensemble"
)

// Tree ensemble aggregation modes.
const (
	AggregateSum  = "sum"
	AggregateMean = "mean"
)

// Artifact is the serialized form of a model.
type Artifact struct {
	Kind     string            `koanf:"kind"`
	Features []string          `koanf:"features"`
	Contract features.Contract `koanf:"contract"`

	// linear
	Intercept    float64            `koanf:"intercept"`
	Coefficients map[string]float64 `koanf:"coefficients"`

	// tree_ensemble
	Trees        []Tree  `koanf:"trees"`
	Aggregation  string  `koanf:"aggregation"`
	BaseScore    float64 `koanf:"base_score"`
	LearningRate float64 `koanf:"learning_rate"`
}

// Tree is a binary regression tree stored as a flat node list; node 0 is the
// root.
type Tree struct {
	Nodes []Node `koanf:"nodes"`
}

// Node is a split or a leaf. Rows with Feature <= Threshold go Left.
type Node struct {
	Feature   string  `koanf:"feature"`
	Threshold float64 `koanf:"threshold"`
	Left      int     `koanf:"left"`
	Right     int     `koanf:"right"`
	Leaf      bool    `koanf:"leaf"`
	Value     float64 `koanf:"value"`
}

// Load reads a YAML (.yaml/.yml) or JSON artifact from path.
func Load(path string) (*Model, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: model path is empty", ErrResourceLoad)
	}
	var parser koanf.Parser = json.Parser()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("%w: read model %s: %v", ErrResourceLoad, path, err)
	}
	a := Artifact{LearningRate: 1, Aggregation: AggregateSum}
	if err := k.UnmarshalWithConf("", &a, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode model %s: %v", ErrResourceLoad, path, err)
	}
	m, err := New(a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// validate checks the artifact is internally consistent.
func (a *Artifact) validate() error {
	if len(a.Features) == 0 {
		return fmt.Errorf("%w: artifact declares no features", ErrResourceLoad)
	}
	known := make(map[string]struct{}, len(a.Features))
	for _, f := range a.Features {
		if _, dup := known[f]; dup {
			return fmt.Errorf("%w: duplicate feature %q", ErrResourceLoad, f)
		}
		known[f] = struct{}{}
	}

	switch a.Kind {
	case KindLinear:
		if len(a.Coefficients) == 0 {
			return fmt.Errorf("%w: linear artifact has no coefficients", ErrResourceLoad)
		}
		for name := range a.Coefficients {
			if _, ok := known[name]; !ok {
				return fmt.Errorf("%w: coefficient for undeclared feature %q", ErrResourceLoad, name)
			}
		}
	case KindTreeEnsemble:
		if len(a.Trees) == 0 {
			return fmt.Errorf("%w: tree ensemble has no trees", ErrResourceLoad)
		}
		if a.Aggregation != AggregateSum && a.Aggregation != AggregateMean {
			return fmt.Errorf("%w: unknown aggregation %q", ErrResourceLoad, a.Aggregation)
		}
		for i, t := range a.Trees {
			if err := t.validate(known); err != nil {
				return fmt.Errorf("%w: tree %d: %v", ErrResourceLoad, i, err)
			}
		}
	default:
		return fmt.Errorf("%w: unknown model kind %q", ErrResourceLoad, a.Kind)
	}
	return nil
}

func (t Tree) validate(known map[string]struct{}) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("no nodes")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			continue
		}
		if _, ok := known[n.Feature]; !ok {
			return fmt.Errorf("node %d splits on undeclared feature %q", i, n.Feature)
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has children outside (%d, %d)", i, i, len(t.Nodes))
		}
	}
	return nil
}
