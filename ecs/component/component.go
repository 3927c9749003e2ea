package component

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Engine preconditions. Commands panic with these wrapped when an entity is
// not in the state they require.
var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
	ErrMissingComponent     = errors.New("ecs: missing component")
)

// ComponentKind addresses one component store. Kinds compare by id, so two
// kinds of the same Go type are separate stores.
type ComponentKind[T any] struct {
	id   ComponentID
	name string
}

// NewComponentKind allocates an anonymous kind, named after T in errors.
func NewComponentKind[T any]() ComponentKind[T] {
	return newKind[T]("")
}

func newKind[T any](name string) ComponentKind[T] {
	if name == "" {
		var zero T
		name = fmt.Sprintf("%T", zero)
	}
	return ComponentKind[T]{id: ComponentID(nextComponentID.Add(1)), name: name}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

func (k ComponentKind[T]) Name() string {
	if !k.Valid() {
		return "invalid"
	}
	return k.name
}

// ComponentHandle is what each component file declares at package level.
type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

// NewComponent registers a component type. name shows up in engine errors.
func NewComponent[T any](name string) ComponentHandle[T] {
	return ComponentHandle[T]{kind: newKind[T](name)}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}

type ComponentID uint32

var nextComponentID atomic.Uint32
