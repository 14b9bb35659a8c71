/*
Package ecs is an archetype-based storage engine for an Entity-Component-System.

It groups entities sharing an identical component set into a single
column-major archetype, so iterating over entities matching a pattern walks
contiguous, cache-friendly buffers rather than chasing pointers. Component
types are ordinary Go values registered at runtime; no interface or base
type is required of them.

Core Concepts:

  - Entity: an opaque (id, generation) handle.
  - Archetype: a column store for every entity sharing one exact component-set.
  - Bundle: the set of components passed to Spawn or Insert together.
  - Borrow guard: a scoped reference into a component cell, returned by Get/GetMut.

Basic Usage:

	w := ecs.NewWorld()

	e := w.Spawn(Position{X: 1}, Velocity{X: 2})

	guard, err := ecs.GetMut[Position](w, e)
	if err == nil {
		guard.Value().X += 1
		guard.Release()
	}

	for entity, view := range w.Iter() {
		pos, ok := ecs.Component[Position](view)
		_ = entity
		_ = pos
		_ = ok
	}
*/
package ecs
