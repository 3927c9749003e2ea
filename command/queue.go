package command

import (
	"iter"

	"go.uber.org/zap"

	"github.com/milk9111/hexskirmish/ecs"
)

const (
	EventExecuted = "command.executed"
	EventUndone   = "command.undone"
)

// StepEvent is pushed onto the world's event queue after every execute and
// undo so drivers can react without polling the queue.
type StepEvent struct {
	Command Command
	Status  Status
	// FollowUps is the number of commands the step scheduled.
	FollowUps int
}

// Queue holds the commands waiting to run and the history of commands that
// ran. It is not safe for concurrent use.
type Queue struct {
	history []Command
	pending []Command
	rules   Rules
	logger  *zap.Logger
}

type Option func(*Queue)

// WithRules replaces the default draw policy and shield hook.
func WithRules(r Rules) Option {
	return func(q *Queue) {
		q.rules = r
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}

func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		rules:  DefaultRules(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends cmds to the back of the pending sequence.
func (q *Queue) Enqueue(cmds ...Command) {
	for _, c := range cmds {
		if c == nil {
			continue
		}
		q.pending = append(q.pending, c)
	}
}

// Execute runs the front pending command. It reports false when nothing was
// pending. Follow-ups of a completed command run before anything that was
// already pending.
func (q *Queue) Execute(w *ecs.World) bool {
	if q == nil || len(q.pending) == 0 {
		return false
	}
	front := q.pending[0]
	rest := q.pending[1:]

	ran, res := execute(w, &q.rules, front)

	switch res.Status {
	case StatusPending:
		q.pending = append([]Command{ran}, rest...)
		q.logger.Debug("command pending",
			zap.String("kind", string(ran.Kind())),
			zap.Stringer("command", ran),
		)
	default:
		q.history = append(q.history, ran)
		next := make([]Command, 0, len(res.FollowUp)+len(rest))
		for _, c := range res.FollowUp {
			if c != nil {
				next = append(next, c)
			}
		}
		q.pending = append(next, rest...)
		q.logger.Debug("command executed",
			zap.String("kind", string(ran.Kind())),
			zap.Stringer("command", ran),
			zap.Int("follow_ups", len(res.FollowUp)),
			zap.Int("history", len(q.history)),
		)
	}

	w.Events().Push(ecs.Event{
		Type: EventExecuted,
		Data: StepEvent{Command: ran, Status: res.Status, FollowUps: len(res.FollowUp)},
	})
	return true
}

// Undo reverts the most recent command in history. Whatever was pending is
// discarded and the undone command becomes the only pending command, so the
// next Execute redoes it. It reports false when history is empty.
func (q *Queue) Undo(w *ecs.World) bool {
	if q == nil || len(q.history) == 0 {
		return false
	}
	last := q.history[len(q.history)-1]
	q.history[len(q.history)-1] = nil
	q.history = q.history[:len(q.history)-1]

	fresh := undo(w, last)
	dropped := len(q.pending)
	q.pending = []Command{fresh}

	q.logger.Debug("command undone",
		zap.String("kind", string(fresh.Kind())),
		zap.Stringer("command", last),
		zap.Int("dropped_pending", dropped),
	)
	w.Events().Push(ecs.Event{
		Type: EventUndone,
		Data: StepEvent{Command: fresh, Status: StatusDone},
	})
	return true
}

// History yields executed commands, most recent first.
func (q *Queue) History() iter.Seq[Command] {
	return func(yield func(Command) bool) {
		if q == nil {
			return
		}
		for i := len(q.history) - 1; i >= 0; i-- {
			if !yield(q.history[i]) {
				return
			}
		}
	}
}

// Pending returns a copy of the commands waiting to execute, front first.
func (q *Queue) Pending() []Command {
	if q == nil {
		return nil
	}
	out := make([]Command, len(q.pending))
	copy(out, q.pending)
	return out
}

func (q *Queue) HistoryLen() int {
	if q == nil {
		return 0
	}
	return len(q.history)
}

func (q *Queue) PendingLen() int {
	if q == nil {
		return 0
	}
	return len(q.pending)
}

// Rules returns the rules the queue resolves combat with.
func (q *Queue) Rules() Rules {
	return q.rules
}

// DropFront removes the front pending command without running it and returns
// it, or nil when nothing is pending.
func (q *Queue) DropFront() Command {
	if q == nil || len(q.pending) == 0 {
		return nil
	}
	front := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	return front
}

// Clear drops both history and pending commands without touching the world.
func (q *Queue) Clear() {
	q.history = nil
	q.pending = nil
}
