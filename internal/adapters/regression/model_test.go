package regression_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/playervalue/internal/adapters/regression"
	"github.com/okian/playervalue/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

const linearYAML = `
kind: linear
contract:
  version: v1
  wage_transform: log1p
  target_transform: log
features: [a, b, "Sprint speed"]
intercept: 0.5
coefficients:
  a: 2
  "Sprint speed": -1
`

const ensembleJSON = `{
  "kind": "tree_ensemble",
  "aggregation": "mean",
  "base_score": 1,
  "features": ["a", "b"],
  "trees": [
    {"nodes": [
      {"feature": "a", "threshold": 10, "left": 1, "right": 2},
      {"leaf": true, "value": 2},
      {"leaf": true, "value": 4}
    ]},
    {"nodes": [
      {"feature": "b", "threshold": 0, "left": 1, "right": 2},
      {"leaf": true, "value": -2},
      {"leaf": true, "value": 6}
    ]}
  ]
}`

func writeArtifact(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestLoad_Linear(t *testing.T) {
	Convey("Given a linear YAML artifact", t, func() {
		m, err := regression.Load(writeArtifact(t, "model.yaml", linearYAML))
		So(err, ShouldBeNil)

		Convey("Then its metadata is exposed", func() {
			So(m.Kind(), ShouldEqual, regression.KindLinear)
			So(m.Features(), ShouldResemble, []string{"a", "b", "Sprint speed"})
			So(m.Contract(), ShouldResemble, features.Contract{Version: "v1", WageTransform: "log1p", TargetTransform: "log"})
		})

		Convey("When predicting a well formed row", func() {
			out, err := m.Predict([]features.Vector{{"Sprint speed": 3, "b": 100, "a": 4}})

			Convey("Then it returns intercept plus weighted sum", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, []float64{0.5 + 8 - 3})
			})
		})

		Convey("When a row misses a trained feature", func() {
			_, err := m.Predict([]features.Vector{{"a": 1, "b": 2}})
			So(errors.Is(err, regression.ErrRowShape), ShouldBeTrue)
		})

		Convey("When a row carries an unknown feature", func() {
			_, err := m.Predict([]features.Vector{{"a": 1, "b": 2, "Sprint speed": 3, "c": 4}})
			So(errors.Is(err, regression.ErrRowShape), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, `"c"`)
		})

		Convey("When predicting several rows", func() {
			out, err := m.Predict([]features.Vector{
				{"a": 0, "b": 0, "Sprint speed": 0},
				{"a": 1, "b": 0, "Sprint speed": 1},
			})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []float64{0.5, 1.5})
		})
	})
}

func TestLoad_TreeEnsemble(t *testing.T) {
	Convey("Given a JSON tree ensemble averaging two trees", t, func() {
		m, err := regression.Load(writeArtifact(t, "model.json", ensembleJSON))
		So(err, ShouldBeNil)
		So(m.Kind(), ShouldEqual, regression.KindTreeEnsemble)

		Convey("Then each row follows its own path", func() {
			out, err := m.Predict([]features.Vector{
				{"a": 10, "b": 0},  // 2, -2
				{"a": 11, "b": 1},  // 4, 6
				{"a": -5, "b": 10}, // 2, 6
			})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []float64{1, 6, 5})
		})
	})

	Convey("Given a boosted ensemble built in memory", t, func() {
		m, err := regression.New(regression.Artifact{
			Kind:         regression.KindTreeEnsemble,
			Features:     []string{"a"},
			BaseScore:    3,
			LearningRate: 0.5,
			Trees: []regression.Tree{
				{Nodes: []regression.Node{{Leaf: true, Value: 2}}},
				{Nodes: []regression.Node{{Leaf: true, Value: 4}}},
			},
		})
		So(err, ShouldBeNil)

		out, err := m.Predict([]features.Vector{{"a": 0}})
		So(err, ShouldBeNil)
		So(out[0], ShouldEqual, 6)
	})
}

func TestLoad_Errors(t *testing.T) {
	Convey("Given broken artifacts", t, func() {
		cases := []struct {
			name string
			body string
		}{
			{"unknown-kind.yaml", "kind: forest\nfeatures: [a]\n"},
			{"no-features.yaml", "kind: linear\ncoefficients: {a: 1}\n"},
			{"dup-features.yaml", "kind: linear\nfeatures: [a, a]\ncoefficients: {a: 1}\n"},
			{"undeclared.yaml", "kind: linear\nfeatures: [a]\ncoefficients: {b: 1}\n"},
			{"no-coefficients.yaml", "kind: linear\nfeatures: [a]\n"},
			{"no-trees.yaml", "kind: tree_ensemble\nfeatures: [a]\n"},
			{"bad-child.json", `{"kind":"tree_ensemble","features":["a"],"trees":[{"nodes":[{"feature":"a","left":0,"right":5}]}]}`},
			{"bad-split.json", `{"kind":"tree_ensemble","features":["a"],"trees":[{"nodes":[{"feature":"z","left":1,"right":2},{"leaf":true},{"leaf":true}]}]}`},
			{"bad-aggregation.yaml", "kind: tree_ensemble\naggregation: median\nfeatures: [a]\ntrees: [{nodes: [{leaf: true, value: 1}]}]\n"},
			{"garbage.json", "{not json"},
		}
		for _, c := range cases {
			_, err := regression.Load(writeArtifact(t, c.name, c.body))
			So(errors.Is(err, regression.ErrResourceLoad), ShouldBeTrue)
		}

		_, err := regression.Load(filepath.Join(t.TempDir(), "missing.yaml"))
		So(errors.Is(err, regression.ErrResourceLoad), ShouldBeTrue)

		_, err = regression.Load(" ")
		So(errors.Is(err, regression.ErrResourceLoad), ShouldBeTrue)
	})
}

func TestPredict_Repeatable(t *testing.T) {
	Convey("Given the shipped linear model and a full feature row", t, func() {
		m, err := regression.Load(filepath.Join("..", "..", "..", "assets", "model.yaml"))
		So(err, ShouldBeNil)

		row := features.Vector{}
		for i, name := range features.Names() {
			row[name] = 0.37*float64(i+1) + 11.13
		}
		first, err := m.Predict([]features.Vector{row})
		So(err, ShouldBeNil)

		Convey("Then every call returns the same raw output", func() {
			for i := 0; i < 2000; i++ {
				out, err := m.Predict([]features.Vector{row})
				So(err, ShouldBeNil)
				if out[0] != first[0] {
					So(out[0], ShouldEqual, first[0])
				}
			}
		})
	})
}
