package ecs

import "reflect"

// Guard is a scoped dynamic borrow into one entity's component cell,
// returned by Get/GetMut. The column's borrow count arbitrates only between
// Get and GetMut; structural operations (Spawn, Insert, Remove, Despawn,
// Clear, Reserve) do not check it, so they can grow or rearrange the owning
// column while a guard is outstanding, and the guard's pointer is valid only
// until the next such operation. Callers must call Release when done.
type Guard[T any] struct {
	ptr *T
	col *column
}

// Value returns the borrowed pointer. For a shared guard, the pointee must
// not be written through; nothing here prevents it, matching Go's general
// absence of const pointers — the discipline is the caller's.
func (g Guard[T]) Value() *T { return g.ptr }

// Release gives up the borrow, decrementing the column's dynamic borrow
// count.
func (g Guard[T]) Release() {
	if g.col != nil {
		g.col.release()
	}
}

// Get acquires a shared borrow on entity's component of type T.
func Get[T any](w *World, e Entity) (Guard[T], error) {
	return borrow[T](w, e, false)
}

// GetMut acquires an exclusive borrow on entity's component of type T.
func GetMut[T any](w *World, e Entity) (Guard[T], error) {
	return borrow[T](w, e, true)
}

func borrow[T any](w *World, e Entity, exclusive bool) (Guard[T], error) {
	loc, ok := w.directory.locate(e)
	if !ok {
		return Guard[T]{}, NoSuchEntity{Entity: e}
	}
	arch := w.archetypes[loc.archetype]
	info := w.registry.lookup(reflect.TypeFor[T]())
	idx, ok := arch.columnIndex(info.ID)
	if !ok {
		return Guard[T]{}, MissingComponentError{Type: info.Type}
	}
	c := arch.columns[idx]
	if exclusive {
		c.acquireExclusive()
	} else {
		c.acquireShared()
	}
	ptr := c.get(loc.row, info.Size)
	return Guard[T]{ptr: (*T)(ptr), col: c}, nil
}
