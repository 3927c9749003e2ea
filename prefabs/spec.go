package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/hexskirmish/ecs/component"
	"github.com/milk9111/hexskirmish/hex"
)

// DefaultScenario is the scenario shipped with the binary.
const DefaultScenario = "skirmish.yaml"

var ErrInvalidScenario = errors.New("prefabs: invalid scenario")

type ScenarioSpec struct {
	Name    string       `yaml:"name"`
	Board   BoardSpec    `yaml:"board"`
	Figures []FigureSpec `yaml:"figures"`
	// Script names the tengo script that plays the monsters, if any.
	Script string `yaml:"script"`
}

type BoardSpec struct {
	Radius int `yaml:"radius"`
}

type FigureSpec struct {
	Name       string     `yaml:"name"`
	Team       string     `yaml:"team"`
	Health     int        `yaml:"health"`
	Range      int        `yaml:"range"`
	Attack     int        `yaml:"attack"`
	Q          int        `yaml:"q"`
	R          int        `yaml:"r"`
	Immunities []string   `yaml:"immunities"`
	Conditions []string   `yaml:"conditions"`
	Tray       [][]string `yaml:"tray"`
	Color      *YAMLColor `yaml:"color"`
}

func (f FigureSpec) Coord() hex.Coord {
	return hex.Coord{Q: f.Q, R: f.R}
}

// AttackRange defaults to melee.
func (f FigureSpec) AttackRange() int {
	if f.Range <= 0 {
		return 1
	}
	return f.Range
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadScenario loads and validates a scenario. A file under prefabs/ on disk
// shadows the embedded copy of the same name.
func LoadScenario(name string) (ScenarioSpec, error) {
	if name == "" {
		name = DefaultScenario
	}
	spec, err := LoadSpec[ScenarioSpec](name)
	if err != nil {
		return ScenarioSpec{}, err
	}
	if err := spec.Validate(); err != nil {
		return ScenarioSpec{}, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	return spec, nil
}

// ParseScenario decodes and validates raw YAML.
func ParseScenario(data []byte) (ScenarioSpec, error) {
	var spec ScenarioSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return ScenarioSpec{}, fmt.Errorf("prefabs: unmarshal scenario: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return ScenarioSpec{}, err
	}
	return spec, nil
}

// Validate reports every problem in the scenario at once.
func (s ScenarioSpec) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidScenario, fmt.Sprintf(format, args...)))
	}

	if s.Board.Radius < 0 {
		fail("negative board radius %d", s.Board.Radius)
	}
	names := make(map[string]bool, len(s.Figures))
	cells := make(map[hex.Coord]string, len(s.Figures))
	for i, f := range s.Figures {
		if f.Name == "" {
			fail("figure %d has no name", i)
		} else if names[f.Name] {
			fail("duplicate figure %q", f.Name)
		}
		names[f.Name] = true

		if f.Health <= 0 {
			fail("figure %q needs positive health, got %d", f.Name, f.Health)
		}
		if _, err := component.ParseTeam(f.Team); err != nil {
			errs = append(errs, fmt.Errorf("%w: figure %q: %w", ErrInvalidScenario, f.Name, err))
		}
		if hex.Distance(hex.Coord{}, f.Coord()) > s.Board.Radius {
			fail("figure %q at %s is off the board", f.Name, f.Coord())
		}
		if other, ok := cells[f.Coord()]; ok {
			fail("figures %q and %q share %s", other, f.Name, f.Coord())
		}
		cells[f.Coord()] = f.Name

		for _, c := range append(append([]string{}, f.Immunities...), f.Conditions...) {
			if _, err := component.ParseConditionKind(c); err != nil {
				errs = append(errs, fmt.Errorf("%w: figure %q: %w", ErrInvalidScenario, f.Name, err))
			}
		}
		if _, err := ParseTray(f.Tray); err != nil {
			errs = append(errs, fmt.Errorf("%w: figure %q: %w", ErrInvalidScenario, f.Name, err))
		}
	}
	return errors.Join(errs...)
}

// YAMLColor decodes "#rrggbb" or "#rrggbbaa".
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
