// Package script lets a tengo script decide what the monsters do. A script
// defines turn(engine); the engine map exposes the figures on the board and
// builtins that queue commands.
package script

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.uber.org/zap"

	"github.com/milk9111/hexskirmish/command"
	"github.com/milk9111/hexskirmish/ecs"
	"github.com/milk9111/hexskirmish/ecs/component"
	"github.com/milk9111/hexskirmish/hex"
	"github.com/milk9111/hexskirmish/prefabs"
	"github.com/milk9111/hexskirmish/scenario"
)

var ErrNotCallable = errors.New("script: turn is not a function")

// dispatch is appended to every script; a script without turn fails to
// compile.
const dispatch = `
__callable := is_callable(turn)
if __callable {
	turn(__engine)
}
`

// Producer runs a compiled script against a session and collects the
// commands it asks for.
type Producer struct {
	name     string
	compiled *tengo.Compiled
	logger   *zap.Logger
}

type Option func(*Producer)

func WithLogger(l *zap.Logger) Option {
	return func(p *Producer) {
		if l != nil {
			p.logger = l
		}
	}
}

// Load compiles the named script from prefabs/scripts.
func Load(name string, opts ...Option) (*Producer, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("script: load %s: %w", name, err)
	}
	return New(name, src, opts...)
}

func New(name string, src []byte, opts ...Option) (*Producer, error) {
	script := tengo.NewScript([]byte(string(src) + "\n" + dispatch))
	_ = script.Add("__engine", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}

	p := &Producer{name: name, compiled: compiled, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Producer) Name() string { return p.name }

// Produce runs turn(engine) once and returns the commands it requested, in
// call order. Nothing is queued on the session.
func (p *Producer) Produce(ctx context.Context, s *scenario.Session) ([]command.Command, error) {
	t := &turn{session: s, reserved: map[hex.Coord]bool{}}
	engine, err := t.engine()
	if err != nil {
		return nil, err
	}

	compiled := p.compiled.Clone()
	if err := compiled.Set("__engine", engine); err != nil {
		return nil, err
	}
	if err := compiled.RunContext(ctx); err != nil {
		return nil, fmt.Errorf("script: run %s: %w", p.name, err)
	}
	if !compiled.Get("__callable").Bool() {
		return nil, fmt.Errorf("%w in %s", ErrNotCallable, p.name)
	}
	if t.err != nil {
		return nil, fmt.Errorf("script: %s: %w", p.name, t.err)
	}

	p.logger.Debug("script produced commands",
		zap.String("script", p.name),
		zap.Int("commands", len(t.cmds)),
	)
	return t.cmds, nil
}

// turn is the state behind one run's builtins.
type turn struct {
	session  *scenario.Session
	cmds     []command.Command
	reserved map[hex.Coord]bool
	err      error
}

func (t *turn) engine() (*tengo.ImmutableMap, error) {
	figures := make([]any, 0)
	for _, name := range t.session.Figures() {
		v, ok := t.session.FigureView(name)
		if !ok {
			continue
		}
		conds := make([]any, 0, len(v.Conditions))
		for _, c := range v.Conditions {
			conds = append(conds, c)
		}
		figures = append(figures, map[string]any{
			"name":       v.Name,
			"team":       v.Team,
			"q":          v.Q,
			"r":          v.R,
			"health":     v.Health,
			"max_health": v.MaxHealth,
			"range":      v.Range,
			"attack":     v.Attack,
			"conditions": conds,
		})
	}
	figs, err := tengo.FromInterface(figures)
	if err != nil {
		return nil, err
	}

	values := map[string]tengo.Object{
		"figures": figs,
		"round":   &tengo.Int{Value: int64(t.session.Round())},
	}
	values["move"] = t.builtin("move", 3, func(args []tengo.Object) error {
		return t.intent(scenario.Intent{
			Kind:   command.KindMove,
			Figure: objectAsString(args[0]),
			Q:      objectAsInt(args[1]),
			R:      objectAsInt(args[2]),
		})
	})
	values["attack"] = t.builtin("attack", 3, func(args []tengo.Object) error {
		return t.intent(scenario.Intent{
			Kind:   command.KindAttack,
			Figure: objectAsString(args[0]),
			Target: objectAsString(args[1]),
			Value:  objectAsInt(args[2]),
		})
	})
	values["heal"] = t.builtin("heal", 3, func(args []tengo.Object) error {
		return t.intent(scenario.Intent{
			Kind:   command.KindHeal,
			Figure: objectAsString(args[0]),
			Target: objectAsString(args[1]),
			Value:  objectAsInt(args[2]),
		})
	})
	values["add_condition"] = t.builtin("add_condition", 2, func(args []tengo.Object) error {
		return t.intent(scenario.Intent{
			Kind:      command.KindAddCondition,
			Figure:    objectAsString(args[0]),
			Condition: objectAsString(args[1]),
		})
	})
	values["remove_condition"] = t.builtin("remove_condition", 2, func(args []tengo.Object) error {
		return t.intent(scenario.Intent{
			Kind:      command.KindRemoveCondition,
			Figure:    objectAsString(args[0]),
			Condition: objectAsString(args[1]),
		})
	})
	values["step_toward"] = t.builtin("step_toward", 2, func(args []tengo.Object) error {
		return t.stepToward(objectAsString(args[0]), objectAsString(args[1]))
	})
	values["distance"] = &tengo.UserFunction{Name: "distance", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 4 {
			return nil, tengo.ErrWrongNumArguments
		}
		a := hex.Coord{Q: objectAsInt(args[0]), R: objectAsInt(args[1])}
		b := hex.Coord{Q: objectAsInt(args[2]), R: objectAsInt(args[3])}
		return &tengo.Int{Value: int64(hex.Distance(a, b))}, nil
	}}

	return &tengo.ImmutableMap{Value: values}, nil
}

// builtin wraps fn so a bad call is remembered and reported after the run
// instead of aborting the script midway.
func (t *turn) builtin(name string, arity int, fn func([]tengo.Object) error) *tengo.UserFunction {
	return &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != arity {
			return nil, tengo.ErrWrongNumArguments
		}
		if err := fn(args); err != nil {
			if t.err == nil {
				t.err = fmt.Errorf("%s: %w", name, err)
			}
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}
}

func (t *turn) intent(in scenario.Intent) error {
	c, err := t.session.Resolve(in)
	if err != nil {
		return err
	}
	t.cmds = append(t.cmds, c)
	return nil
}

// stepToward moves name one hex closer to target, onto a board cell no
// figure holds or was already promised this turn.
func (t *turn) stepToward(name, target string) error {
	s := t.session
	from, err := t.position(name)
	if err != nil {
		return err
	}
	to, err := t.position(target)
	if err != nil {
		return err
	}

	grid := s.World().Grid()
	best, bestDist := from, hex.Distance(from, to)
	for _, n := range from.Neighbors() {
		if _, board := grid.Lookup(n, hex.Ground); !board {
			continue
		}
		if _, taken := grid.Lookup(n, hex.Figure); taken || t.reserved[n] {
			continue
		}
		if d := hex.Distance(n, to); d < bestDist {
			best, bestDist = n, d
		}
	}
	if best == from {
		return nil
	}
	t.reserved[best] = true
	return t.intent(scenario.Intent{Kind: command.KindMove, Figure: name, Q: best.Q, R: best.R})
}

func (t *turn) position(name string) (hex.Coord, error) {
	e, ok := t.session.Figure(name)
	if !ok {
		return hex.Coord{}, fmt.Errorf("%w: %q", scenario.ErrUnknownFigure, name)
	}
	pos, ok := ecs.Get(t.session.World(), e, component.HexPositionComponent.Kind())
	if !ok {
		return hex.Coord{}, fmt.Errorf("%w: %q has no position", scenario.ErrUnknownFigure, name)
	}
	return pos.Coord, nil
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectAsInt(obj tengo.Object) int {
	if v, ok := tengo.ToInt(obj); ok {
		return v
	}
	return 0
}
