package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/hexskirmish/command"
	"github.com/milk9111/hexskirmish/ecs/component"
	"github.com/milk9111/hexskirmish/hex"
	"github.com/milk9111/hexskirmish/prefabs"
	"github.com/milk9111/hexskirmish/scenario"
)

func session(t *testing.T, name string) *scenario.Session {
	t.Helper()
	spec, err := prefabs.LoadScenario(name)
	require.NoError(t, err)
	s, err := scenario.New(spec)
	require.NoError(t, err)
	return s
}

func TestMonstersAttackAdjacentEnemy(t *testing.T) {
	s := session(t, "duel.yaml")
	p, err := Load("monsters.tengo")
	require.NoError(t, err)

	cmds, err := p.Produce(context.Background(), s)
	require.NoError(t, err)

	a, _ := s.Figure("a")
	b, _ := s.Figure("b")
	assert.Equal(t, []command.Command{command.Attack(b, a, 2)}, cmds)
}

func TestMonstersStepTowardDistantEnemies(t *testing.T) {
	s := session(t, "skirmish.yaml")
	p, err := Load(s.Spec().Script)
	require.NoError(t, err)

	cmds, err := p.Produce(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, cmds, 2)

	seen := map[hex.Coord]bool{}
	for _, c := range cmds {
		mv, ok := c.(command.MoveCommand)
		require.True(t, ok, "got %s", c)
		assert.False(t, seen[mv.To], "two monsters promised %s", mv.To)
		seen[mv.To] = true
	}

	s.Enqueue(cmds...)
	n, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	guard, ok := s.FigureView("guard")
	require.True(t, ok)
	assert.Equal(t, 3, hex.Distance(hex.Coord{Q: guard.Q, R: guard.R}, hex.Coord{Q: -2}))
}

func TestBuiltinsProduceCommandsInCallOrder(t *testing.T) {
	s := session(t, "duel.yaml")
	src := []byte(`
turn := func(engine) {
	engine.add_condition("a", "poison")
	engine.heal("b", "a", 2)
	engine.remove_condition("b", "poison")
	engine.move("a", 0, 1)
}
`)
	p, err := New("inline", src)
	require.NoError(t, err)
	assert.Equal(t, "inline", p.Name())

	cmds, err := p.Produce(context.Background(), s)
	require.NoError(t, err)

	a, _ := s.Figure("a")
	b, _ := s.Figure("b")
	assert.Equal(t, []command.Command{
		command.AddCondition(a, component.Poison),
		command.Heal(b, a, 2),
		command.RemoveCondition(b, component.Poison),
		command.Move(a, hex.Coord{R: 1}),
	}, cmds)
	assert.Empty(t, s.Pending(), "producing never queues")
}

func TestScriptSeesFigures(t *testing.T) {
	s := session(t, "duel.yaml")
	src := []byte(`
turn := func(engine) {
	for f in engine.figures {
		if len(f.conditions) > 0 && f.conditions[0] == "poison" {
			engine.attack("a", f.name, f.health)
		}
	}
}
`)
	p, err := New("inspect", src)
	require.NoError(t, err)
	cmds, err := p.Produce(context.Background(), s)
	require.NoError(t, err)

	a, _ := s.Figure("a")
	b, _ := s.Figure("b")
	assert.Equal(t, []command.Command{command.Attack(a, b, 12)}, cmds)
}

func TestScriptErrors(t *testing.T) {
	s := session(t, "duel.yaml")

	p, err := New("ghost", []byte(`turn := func(engine) { engine.attack("a", "ghost", 1) }`))
	require.NoError(t, err)
	_, err = p.Produce(context.Background(), s)
	assert.ErrorIs(t, err, scenario.ErrUnknownFigure)

	p, err = New("cond", []byte(`turn := func(engine) { engine.add_condition("a", "sleepy") }`))
	require.NoError(t, err)
	_, err = p.Produce(context.Background(), s)
	assert.ErrorIs(t, err, component.ErrUnknownCondition)

	p, err = New("value", []byte(`turn := 5`))
	require.NoError(t, err)
	_, err = p.Produce(context.Background(), s)
	assert.ErrorIs(t, err, ErrNotCallable)

	_, err = New("empty", []byte(`x := 1`))
	assert.Error(t, err)

	_, err = Load("missing.tengo")
	assert.Error(t, err)
}

func TestPlayRound(t *testing.T) {
	s := session(t, "duel.yaml")
	p, err := Load("monsters.tengo")
	require.NoError(t, err)
	ctx := context.Background()

	n, err := p.PlayRound(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, scenario.PhaseEndOfRound, s.Phase())
	a, _ := s.FigureView("a")
	assert.Equal(t, 10, a.Health)

	_, err = p.PlayRound(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Round())
	a, _ = s.FigureView("a")
	assert.Equal(t, 8, a.Health)
}
