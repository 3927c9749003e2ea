// Package scenario builds a playable world from a scenario spec and exposes
// the engine to drivers: enqueue, step, undo and inspect.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/milk9111/hexskirmish/command"
	"github.com/milk9111/hexskirmish/ecs"
	"github.com/milk9111/hexskirmish/ecs/component"
	"github.com/milk9111/hexskirmish/hex"
	"github.com/milk9111/hexskirmish/prefabs"
)

// Session is one running scenario. It is not safe for concurrent use.
type Session struct {
	spec   prefabs.ScenarioSpec
	world  *ecs.World
	queue  *command.Queue
	round  *fsm.FSM
	rounds int
	logger *zap.Logger

	order   []string
	figures map[string]ecs.Entity
	names   map[ecs.Entity]string
}

type options struct {
	rules  command.Rules
	logger *zap.Logger
}

type Option func(*options)

func WithRules(r command.Rules) Option {
	return func(o *options) {
		o.rules = r
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New validates spec and spawns its board and figures.
func New(spec prefabs.ScenarioSpec, opts ...Option) (*Session, error) {
	o := options{rules: command.DefaultRules(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		spec:    spec,
		world:   ecs.NewWorld(),
		queue:   command.NewQueue(command.WithRules(o.rules), command.WithLogger(o.logger)),
		logger:  o.logger.With(zap.String("scenario", spec.Name)),
		figures: make(map[string]ecs.Entity, len(spec.Figures)),
		names:   make(map[ecs.Entity]string, len(spec.Figures)),
	}
	s.round = newRoundFSM(func() {
		s.rounds++
		s.logger.Info("round started", zap.Int("round", s.rounds))
	})

	if err := s.spawnBoard(); err != nil {
		return nil, err
	}
	for _, f := range spec.Figures {
		if err := s.spawnFigure(f); err != nil {
			return nil, fmt.Errorf("scenario: spawn %q: %w", f.Name, err)
		}
	}

	s.logger.Info("scenario loaded",
		zap.Int("figures", len(s.order)),
		zap.Int("radius", spec.Board.Radius),
	)
	return s, nil
}

func (s *Session) spawnBoard() error {
	for _, c := range hex.Spiral(hex.Coord{}, s.spec.Board.Radius) {
		tile := ecs.CreateEntity(s.world)
		if err := ecs.Add(s.world, tile, component.HexPositionComponent.Kind(), &component.HexPosition{Coord: c, Layer: hex.Ground}); err != nil {
			return err
		}
		if err := s.world.Grid().Insert(c, hex.Ground, uint64(tile)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) spawnFigure(f prefabs.FigureSpec) error {
	team, err := component.ParseTeam(f.Team)
	if err != nil {
		return err
	}
	var immunities []component.ConditionKind
	for _, name := range f.Immunities {
		k, err := component.ParseConditionKind(name)
		if err != nil {
			return err
		}
		immunities = append(immunities, k)
	}
	cond := component.NewConditions(immunities...)
	for _, name := range f.Conditions {
		k, err := component.ParseConditionKind(name)
		if err != nil {
			return err
		}
		cond.Add(k)
	}
	tray := component.DefaultModifierTray()
	rows, err := prefabs.ParseTray(f.Tray)
	if err != nil {
		return err
	}
	if rows != nil {
		tray = component.NewModifierTray(rows)
	}

	w := s.world
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.FigureComponent.Kind(), &component.Figure{
		Name:   f.Name,
		Team:   team,
		Range:  f.AttackRange(),
		Attack: f.Attack,
	}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.HealthComponent.Kind(), component.NewHealth(f.Health)); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.ConditionsComponent.Kind(), cond); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.ModifierTrayComponent.Kind(), tray); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.PendingAttackComponent.Kind(), &component.PendingAttack{}); err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.HexPositionComponent.Kind(), &component.HexPosition{Coord: f.Coord(), Layer: hex.Figure}); err != nil {
		return err
	}
	if err := w.Grid().Insert(f.Coord(), hex.Figure, uint64(e)); err != nil {
		return err
	}

	s.order = append(s.order, f.Name)
	s.figures[f.Name] = e
	s.names[e] = f.Name
	return nil
}

func (s *Session) Spec() prefabs.ScenarioSpec { return s.spec }

func (s *Session) World() *ecs.World { return s.world }

// Enqueue appends commands to the back of the pending queue.
func (s *Session) Enqueue(cmds ...command.Command) {
	s.queue.Enqueue(cmds...)
}

// ErrCommandFailed wraps the failure of a command that could not run against
// the current world, such as a move onto a cell taken since it was queued.
var ErrCommandFailed = errors.New("scenario: command failed")

// Step executes the next pending command. It reports false if nothing ran.
// A command that fails is dropped from the front of the queue and reported
// as an ErrCommandFailed; the world is left as it was before the step.
func (s *Session) Step() (ran bool, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		cause, ok := r.(error)
		if !ok {
			cause = fmt.Errorf("%v", r)
		}
		dropped := s.queue.DropFront()
		s.logger.Error("command failed",
			zap.Stringer("command", dropped),
			zap.Error(cause),
		)
		ran = false
		err = fmt.Errorf("%w: %s: %w", ErrCommandFailed, dropped, cause)
	}()
	return s.queue.Execute(s.world), nil
}

// Run steps until the queue is empty or the front command stays pending,
// returning the number of commands that completed. It stops at the first
// failed command.
func (s *Session) Run() (int, error) {
	n := 0
	for s.queue.PendingLen() > 0 {
		before := s.queue.HistoryLen()
		if _, err := s.Step(); err != nil {
			return n, err
		}
		if s.queue.HistoryLen() == before {
			break
		}
		n++
	}
	return n, nil
}

// Undo reverts the most recent command. It reports false if history is empty.
func (s *Session) Undo() bool {
	return s.queue.Undo(s.world)
}

func (s *Session) History() iter.Seq[command.Command] {
	return s.queue.History()
}

func (s *Session) Pending() []command.Command {
	return s.queue.Pending()
}

func (s *Session) HistoryLen() int { return s.queue.HistoryLen() }

// Events drains the step events the engine published since the last call.
func (s *Session) Events() []ecs.Event {
	return s.world.Events().Drain()
}

// Figure returns the entity spawned for name.
func (s *Session) Figure(name string) (ecs.Entity, bool) {
	e, ok := s.figures[name]
	return e, ok
}

// Name is the inverse of Figure.
func (s *Session) Name(e ecs.Entity) string {
	return s.names[e]
}

// Figures returns figure names in spawn order.
func (s *Session) Figures() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Session) lookup(name string) (ecs.Entity, error) {
	e, ok := s.figures[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFigure, name)
	}
	return e, nil
}

// Round is the number of rounds started so far.
func (s *Session) Round() int { return s.rounds }

// Phase is the current round phase.
func (s *Session) Phase() string { return s.round.Current() }

// Advance moves the round flow to its next phase.
func (s *Session) Advance(ctx context.Context) error {
	from := s.round.Current()
	if err := s.round.Event(ctx, eventAdvance); err != nil {
		return fmt.Errorf("scenario: advance from %s: %w", from, err)
	}
	s.logger.Debug("phase changed", zap.String("from", from), zap.String("to", s.round.Current()))
	return nil
}
