package ecs

import (
	"fmt"

	"github.com/milk9111/hexskirmish/ecs/component"
)

func storeFor[T any](w *World, kind component.ComponentKind[T], create bool) *sparseSet[T] {
	if w.stores == nil {
		if !create {
			return nil
		}
		w.stores = make(map[component.ComponentID]componentStore)
	}
	s, ok := w.stores[kind.ID()]
	if !ok {
		if !create {
			return nil
		}
		set := &sparseSet[T]{}
		w.stores[kind.ID()] = set
		return set
	}
	return s.(*sparseSet[T])
}

// Add attaches value to e, replacing any existing component of the same kind.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !IsAlive(w, e) {
		return fmt.Errorf("%w: %s", component.ErrEntityNotAlive, e)
	}
	storeFor(w, kind, true).set(e, value)
	return nil
}

// Get returns e's component of the given kind.
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) || !kind.Valid() {
		return nil, false
	}
	s := storeFor(w, kind, false)
	if s == nil {
		return nil, false
	}
	return s.get(e)
}

// MustGet is Get for callers that treat a missing entity or component as a
// programming error. It panics with an error wrapping ErrEntityNotAlive or
// ErrMissingComponent.
func MustGet[T any](w *World, e Entity, kind component.ComponentKind[T]) *T {
	if !IsAlive(w, e) {
		panic(fmt.Errorf("%w: %s reading %s", component.ErrEntityNotAlive, e, kind.Name()))
	}
	v, ok := Get(w, e, kind)
	if !ok {
		panic(fmt.Errorf("%w: %s on entity %s", component.ErrMissingComponent, kind.Name(), e))
	}
	return v
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	_, ok := Get(w, e, kind)
	return ok
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) || !kind.Valid() {
		return false
	}
	s := storeFor(w, kind, false)
	if s == nil {
		return false
	}
	return s.remove(e.id())
}

// ForEach visits every live entity that has a component of kind.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	if w == nil || fn == nil {
		return
	}
	s := storeFor(w, kind, false)
	if s == nil {
		return
	}
	ents := append([]Entity(nil), s.denseEntities...)
	vals := append([]*T(nil), s.denseValues...)
	for i, e := range ents {
		if !IsAlive(w, e) {
			continue
		}
		fn(e, vals[i])
	}
}

// ForEach2 visits entities that have both kinds, iterating the smaller store.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	if w == nil || fn == nil {
		return
	}
	sa := storeFor(w, ka, false)
	sb := storeFor(w, kb, false)
	if sa == nil || sb == nil {
		return
	}
	if sa.len() <= sb.len() {
		ForEach(w, ka, func(e Entity, a *A) {
			if b, ok := sb.get(e); ok {
				fn(e, a, b)
			}
		})
		return
	}
	ForEach(w, kb, func(e Entity, b *B) {
		if a, ok := sa.get(e); ok {
			fn(e, a, b)
		}
	})
}
