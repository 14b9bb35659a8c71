package ecs

import "reflect"

// resources holds at most one value per component type at the world level,
// outside any archetype — for singleton state (a clock, a camera, an input
// snapshot) that does not belong to any one entity. Adapted from
// plus3-ooftn's singleton.go (one slot per type, set/get by generic type
// parameter) and broadened with delaneyj-arche/ecs/resources.go's
// has/remove pair.
type resources struct {
	byType map[reflect.Type]any
}

func newResources() *resources {
	return &resources{byType: make(map[reflect.Type]any)}
}

// SetResource installs or replaces the world's single value of type T.
func SetResource[T any](w *World, value T) {
	w.resources.byType[reflect.TypeFor[T]()] = value
}

// Resource returns the world's value of type T, if one has been set.
func Resource[T any](w *World) (T, bool) {
	v, ok := w.resources.byType[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// RemoveResource deletes the world's value of type T, if any.
func RemoveResource[T any](w *World) {
	delete(w.resources.byType, reflect.TypeFor[T]())
}

// HasResource reports whether a value of type T is currently set.
func HasResource[T any](w *World) bool {
	_, ok := w.resources.byType[reflect.TypeFor[T]()]
	return ok
}
