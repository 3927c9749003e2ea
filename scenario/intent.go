package scenario

import (
	"errors"
	"fmt"
	"strings"

	"github.com/milk9111/hexskirmish/command"
	"github.com/milk9111/hexskirmish/ecs"
	"github.com/milk9111/hexskirmish/ecs/component"
	"github.com/milk9111/hexskirmish/hex"
)

var (
	ErrUnknownFigure = errors.New("scenario: unknown figure")
	ErrBadIntent     = errors.New("scenario: bad intent")
)

// Intent is a command addressed by figure names, the form drivers, scripts
// and HTTP clients use. Resolve turns it into an engine command.
type Intent struct {
	Kind      command.Kind `json:"kind"`
	Figure    string       `json:"figure"`
	Target    string       `json:"target,omitempty"`
	Value     int          `json:"value,omitempty"`
	Q         int          `json:"q,omitempty"`
	R         int          `json:"r,omitempty"`
	Movement  string       `json:"movement,omitempty"`
	Condition string       `json:"condition,omitempty"`
}

// Resolve maps an intent onto a command. Only Move, Attack, Heal and the
// condition commands can be requested; the rest are follow-ups the engine
// schedules itself.
func (s *Session) Resolve(in Intent) (command.Command, error) {
	fig, err := s.lookup(in.Figure)
	if err != nil {
		return nil, err
	}

	switch in.Kind {
	case command.KindMove:
		kind, err := parseMovement(in.Movement)
		if err != nil {
			return nil, err
		}
		to := hex.Coord{Q: in.Q, R: in.R}
		if err := s.checkDestination(fig, to); err != nil {
			return nil, err
		}
		return command.Move(fig, to).WithMovement(kind), nil
	case command.KindAttack:
		target, err := s.lookup(in.Target)
		if err != nil {
			return nil, err
		}
		return command.Attack(fig, target, in.Value), nil
	case command.KindHeal:
		target := fig
		if in.Target != "" {
			if target, err = s.lookup(in.Target); err != nil {
				return nil, err
			}
		}
		return command.Heal(fig, target, in.Value), nil
	case command.KindAddCondition, command.KindRemoveCondition:
		cond, err := component.ParseConditionKind(in.Condition)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadIntent, err)
		}
		if in.Kind == command.KindAddCondition {
			return command.AddCondition(fig, cond), nil
		}
		return command.RemoveCondition(fig, cond), nil
	}
	return nil, fmt.Errorf("%w: kind %q cannot be requested", ErrBadIntent, in.Kind)
}

// EnqueueIntents resolves every intent before queueing any, so a bad batch
// leaves the queue untouched.
func (s *Session) EnqueueIntents(intents ...Intent) error {
	cmds := make([]command.Command, 0, len(intents))
	for i, in := range intents {
		c, err := s.Resolve(in)
		if err != nil {
			return fmt.Errorf("intent %d: %w", i, err)
		}
		cmds = append(cmds, c)
	}
	s.Enqueue(cmds...)
	return nil
}

// checkDestination rejects a move off the board or onto a cell another
// figure holds. The state can still change before the move runs.
func (s *Session) checkDestination(fig ecs.Entity, to hex.Coord) error {
	grid := s.world.Grid()
	if _, ok := grid.Lookup(to, hex.Ground); !ok {
		return fmt.Errorf("%w: %s is off the board", ErrBadIntent, to)
	}
	if id, ok := grid.Lookup(to, hex.Figure); ok && ecs.Entity(id) != fig {
		return fmt.Errorf("%w: %s is held by %s", ErrBadIntent, to, s.names[ecs.Entity(id)])
	}
	return nil
}

func parseMovement(s string) (command.MovementKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return command.MoveDefault, nil
	case "jump":
		return command.MoveJump, nil
	case "fly":
		return command.MoveFly, nil
	}
	return 0, fmt.Errorf("%w: movement %q", ErrBadIntent, s)
}

// IntentAt is what pointing figure at cell c asks for: an attack with the
// figure's attack value on a figure of another team, or a move onto a free
// board cell. Anything else yields false.
func (s *Session) IntentAt(figure string, c hex.Coord) (Intent, bool) {
	e, err := s.lookup(figure)
	if err != nil {
		return Intent{}, false
	}
	grid := s.world.Grid()
	if _, ok := grid.Lookup(c, hex.Ground); !ok {
		return Intent{}, false
	}

	id, occupied := grid.Lookup(c, hex.Figure)
	if !occupied {
		return Intent{Kind: command.KindMove, Figure: figure, Q: c.Q, R: c.R}, true
	}
	target := ecs.Entity(id)
	if target == e {
		return Intent{}, false
	}
	self := ecs.MustGet(s.world, e, component.FigureComponent.Kind())
	other, ok := ecs.Get(s.world, target, component.FigureComponent.Kind())
	if !ok || other.Team == self.Team {
		return Intent{}, false
	}
	return Intent{Kind: command.KindAttack, Figure: figure, Target: s.names[target], Value: self.Attack}, true
}
