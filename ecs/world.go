package ecs

import (
	"github.com/milk9111/hexskirmish/ecs/component"
	"github.com/milk9111/hexskirmish/hex"
)

// World owns entities, their components and the board index. It is not safe
// for concurrent use; callers serialise access.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]componentStore
	events   EventQueue
	grid     *hex.Grid
}

// NewWorld creates an empty world with an empty grid attached.
func NewWorld() *World {
	return &World{
		stores: make(map[component.ComponentID]componentStore),
		grid:   hex.NewGrid(),
	}
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity drops every component of e and retires its handle.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.remove(e.id())
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func IsAlive(w *World, e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns the live entities in creation-slot order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, w.entities.count)
	w.entities.each(func(e Entity) { out = append(out, e) })
	return out
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// SetGrid attaches a board index to this world.
func (w *World) SetGrid(g *hex.Grid) {
	if w == nil {
		return
	}
	w.grid = g
}

// Grid returns the attached board index.
func (w *World) Grid() *hex.Grid {
	if w == nil {
		return nil
	}
	return w.grid
}
