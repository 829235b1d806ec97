// Package encoding holds the team target encoding table: an immutable mapping
// from team name to the numeric code the regression model was trained on.
package encoding

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Table maps team names to encoding values. It is never mutated after
// construction and is safe for concurrent reads.
type Table struct {
	codes map[string]float64
	teams []string
}

// New builds a Table from an in-memory mapping. The map is copied.
func New(codes map[string]float64) *Table {
	t := &Table{
		codes: make(map[string]float64, len(codes)),
		teams: make([]string, 0, len(codes)),
	}
	for team, code := range codes {
		t.codes[team] = code
		t.teams = append(t.teams, team)
	}
	sort.Strings(t.teams)
	return t
}

// Load reads a team -> number mapping from a JSON or YAML file. Files ending
// in .yaml or .yml are parsed as YAML, everything else as JSON.
func Load(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: team encoding path is empty", ErrResourceLoad)
	}
	b, err := file.Provider(path).ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrResourceLoad, path, err)
	}

	// Unmarshal directly rather than through koanf.Load: team names such as
	// "St. Pauli" must not be split on the key delimiter.
	raw, err := parserFor(path).Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrResourceLoad, path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s has no teams", ErrResourceLoad, path)
	}

	codes := make(map[string]float64, len(raw))
	for team, v := range raw {
		code, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s: team %q has non-numeric encoding %v", ErrResourceLoad, path, team, v)
		}
		codes[team] = code
	}
	return New(codes), nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return json.Parser()
	}
}

func toFloat(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Lookup returns the encoding value for team.
func (t *Table) Lookup(team string) (float64, error) {
	code, ok := t.codes[team]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTeam, team)
	}
	return code, nil
}

// Has reports whether team is present.
func (t *Table) Has(team string) bool {
	_, ok := t.codes[team]
	return ok
}

// Teams returns the team names in sorted order. Collection surfaces populate
// their choices from this list only.
func (t *Table) Teams() []string {
	out := make([]string, len(t.teams))
	copy(out, t.teams)
	return out
}

// Len returns the number of teams.
func (t *Table) Len() int { return len(t.teams) }
