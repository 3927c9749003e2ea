package ecs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/hexskirmish/ecs/component"
)

func TestSparseWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			require.Len(t, Entities(w), c.create)
			if c.destroyIndex >= 0 {
				require.True(t, DestroyEntity(w, ents[c.destroyIndex]))
				assert.False(t, IsAlive(w, ents[c.destroyIndex]))
				assert.False(t, DestroyEntity(w, ents[c.destroyIndex]), "double destroy")
				assert.Len(t, Entities(w), c.create-1)
			}
		})
	}
}

func TestRecycledSlotGetsNewGeneration(t *testing.T) {
	w := NewWorld()
	e1 := CreateEntity(w)
	require.True(t, DestroyEntity(w, e1))
	e2 := CreateEntity(w)

	assert.Equal(t, e1.id(), e2.id())
	assert.NotEqual(t, e1, e2)
	assert.False(t, IsAlive(w, e1))
	assert.True(t, IsAlive(w, e2))
	assert.False(t, Entity(0).Valid())
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func TestSparseWorldComponentsAndQueries(t *testing.T) {
	w := NewWorld()

	h1 := component.NewComponent[int]("count")
	h2 := component.NewComponent[string]("label")

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int_to_e1",
			setup: func() error { return Add(w, e1, h1.Kind(), intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, h1.Kind())
				require.True(t, ok)
				assert.Equal(t, 10, *v)
				assert.False(t, Has(w, e2, h1.Kind()))
			},
			teardown: func() bool { return Remove(w, e1, h1.Kind()) },
		},
		{
			name: "add_str_to_e1_and_e2",
			setup: func() error {
				if err := Add(w, e1, h2.Kind(), stringPtr("a")); err != nil {
					return err
				}
				return Add(w, e2, h2.Kind(), stringPtr("b"))
			},
			check: func(t *testing.T) {
				assert.True(t, Has(w, e1, h2.Kind()))
				assert.True(t, Has(w, e2, h2.Kind()))
			},
			teardown: func() bool { return Remove(w, e1, h2.Kind()) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.setup())
			tc.check(t)
			require.True(t, tc.teardown(), "teardown failed for %s", tc.name)
		})
	}
}

func TestAddErrors(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]("count")
	e := CreateEntity(w)

	assert.ErrorIs(t, Add(w, e, h.Kind(), nil), component.ErrNilComponent)
	assert.ErrorIs(t, Add(w, e, component.ComponentKind[int]{}, intPtr(1)), component.ErrInvalidComponentKind)

	require.True(t, DestroyEntity(w, e))
	assert.ErrorIs(t, Add(w, e, h.Kind(), intPtr(1)), component.ErrEntityNotAlive)
}

func TestMustGetPanicsOnMissing(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]("count")
	e := CreateEntity(w)

	assertPanicsWith := func(t *testing.T, target error, fn func()) {
		t.Helper()
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected panic")
			err, ok := r.(error)
			require.True(t, ok, "panic value should be an error, got %T", r)
			assert.True(t, errors.Is(err, target), "got %v", err)
			assert.Contains(t, err.Error(), "count")
		}()
		fn()
	}

	assertPanicsWith(t, component.ErrMissingComponent, func() { MustGet(w, e, h.Kind()) })

	require.NoError(t, Add(w, e, h.Kind(), intPtr(4)))
	assert.Equal(t, 4, *MustGet(w, e, h.Kind()))

	require.True(t, DestroyEntity(w, e))
	assertPanicsWith(t, component.ErrEntityNotAlive, func() { MustGet(w, e, h.Kind()) })
}

func TestDestroyDropsComponents(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]("count")
	e := CreateEntity(w)
	require.NoError(t, Add(w, e, h.Kind(), intPtr(1)))
	require.True(t, DestroyEntity(w, e))

	reused := CreateEntity(w)
	assert.False(t, Has(w, reused, h.Kind()), "recycled slot must not inherit components")
}

func TestForEach(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]("count")

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)

	require.NoError(t, Add(w, e1, h.Kind(), intPtr(1)))
	require.NoError(t, Add(w, e3, h.Kind(), intPtr(3)))

	var ents []Entity
	ForEach(w, h.Kind(), func(e Entity, _ *int) { ents = append(ents, e) })

	assert.ElementsMatch(t, []Entity{e1, e3}, ents)
	assert.NotContains(t, ents, e2)
}

func TestForEach2(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "intersection",
			run: func(t *testing.T) {
				w := NewWorld()
				e1 := CreateEntity(w)
				e2 := CreateEntity(w)
				e3 := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[string]()

				require.NoError(t, Add(w, e1, ka, intPtr(1)))
				require.NoError(t, Add(w, e2, ka, intPtr(2)))
				require.NoError(t, Add(w, e2, kb, stringPtr("two")))
				require.NoError(t, Add(w, e3, kb, stringPtr("three")))

				var res []Entity
				ForEach2(w, ka, kb, func(e Entity, a *int, b *string) {
					assert.Equal(t, 2, *a)
					assert.Equal(t, "two", *b)
					res = append(res, e)
				})
				assert.Equal(t, []Entity{e2}, res)
			},
		},
		{
			name: "ignores_dead_entities",
			run: func(t *testing.T) {
				w := NewWorld()
				e := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				require.NoError(t, Add(w, e, ka, intPtr(1)))
				require.NoError(t, Add(w, e, kb, intPtr(2)))
				require.True(t, DestroyEntity(w, e))

				var res []Entity
				ForEach2(w, ka, kb, func(e Entity, _ *int, _ *int) { res = append(res, e) })
				assert.Empty(t, res)
			},
		},
		{
			name: "missing_store",
			run: func(t *testing.T) {
				w := NewWorld()
				e := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				require.NoError(t, Add(w, e, ka, intPtr(1)))

				var res []Entity
				ForEach2(w, ka, kb, func(e Entity, _ *int, _ *int) { res = append(res, e) })
				assert.Empty(t, res)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.run)
	}
}

func TestEventQueueDrain(t *testing.T) {
	w := NewWorld()
	w.Events().Push(Event{Type: "a"})
	w.Events().Push(Event{Type: "b"})
	assert.Equal(t, 2, w.Events().Len())

	got := w.Events().Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Type)
	assert.Nil(t, w.Events().Drain())
}

func TestEventQueueKeepsNewest(t *testing.T) {
	q := &EventQueue{Limit: 3}
	for _, typ := range []string{"a", "b", "c", "d", "e"} {
		q.Push(Event{Type: typ})
	}
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 2, q.Dropped())

	got := q.Drain()
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].Type)
	assert.Equal(t, "e", got[2].Type)
	assert.Equal(t, 0, q.Dropped())
}

func TestComponentKindNames(t *testing.T) {
	assert.Equal(t, "health", component.HealthComponent.Kind().Name())
	assert.Equal(t, "int", component.NewComponentKind[int]().Name())
	assert.Equal(t, "invalid", component.ComponentKind[int]{}.Name())
}
