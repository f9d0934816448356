// Package catalog loads the roster of draftable algorithms from YAML or a SQL store.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/DoyleJ11/algo-battle-backend/internal/engine"
)

//go:embed algorithms.yaml
var defaultRoster []byte

var ErrEmptyRoster = errors.New("catalog: roster is empty")

// Provider hands out the full roster a draft pool is sampled from.
type Provider interface {
	Templates(ctx context.Context) ([]engine.Template, error)
}

// Static is an in-memory roster.
type Static []engine.Template

func (s Static) Templates(context.Context) ([]engine.Template, error) {
	out := make([]engine.Template, len(s))
	copy(out, s)
	return out, nil
}

type rosterFile struct {
	Algorithms []entry `yaml:"algorithms"`
}

type entry struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Stats       struct {
		HP      int `yaml:"hp"`
		Attack  int `yaml:"attack"`
		Defense int `yaml:"defense"`
		Speed   int `yaml:"speed"`
	} `yaml:"stats"`
}

func (e entry) template() engine.Template {
	return engine.Template{
		ID:          e.ID,
		Name:        e.Name,
		Type:        engine.Type(e.Type),
		Description: e.Description,
		Stats: engine.Stats{
			HP:      e.Stats.HP,
			Attack:  e.Stats.Attack,
			Defense: e.Stats.Defense,
			Speed:   e.Stats.Speed,
		},
	}
}

// Parse decodes a roster document and validates every entry.
func Parse(data []byte) ([]engine.Template, error) {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parsing roster: %w", err)
	}
	out := make([]engine.Template, 0, len(f.Algorithms))
	for _, e := range f.Algorithms {
		out = append(out, e.template())
	}
	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func LoadFile(path string) ([]engine.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the embedded roster.
func Default() ([]engine.Template, error) {
	return Parse(defaultRoster)
}

// Validate reports every invalid entry: missing id or name, duplicate id, unknown type, non-positive stats.
func Validate(templates []engine.Template) error {
	if len(templates) == 0 {
		return ErrEmptyRoster
	}
	var err error
	seen := make(map[string]bool, len(templates))
	for i, t := range templates {
		if t.ID == "" {
			err = multierr.Append(err, fmt.Errorf("catalog: entry %d: id must not be empty", i))
			continue
		}
		if seen[t.ID] {
			err = multierr.Append(err, fmt.Errorf("catalog: duplicate id %q", t.ID))
		}
		seen[t.ID] = true
		if t.Name == "" {
			err = multierr.Append(err, fmt.Errorf("catalog %q: name must not be empty", t.ID))
		}
		if !t.Type.Valid() {
			err = multierr.Append(err, fmt.Errorf("catalog %q: unknown type %q", t.ID, t.Type))
		}
		if t.Stats.HP < 1 || t.Stats.Attack < 1 || t.Stats.Defense < 1 || t.Stats.Speed < 1 {
			err = multierr.Append(err, fmt.Errorf("catalog %q: stats must be positive, got %+v", t.ID, t.Stats))
		}
	}
	return err
}
