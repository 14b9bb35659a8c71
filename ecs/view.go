package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// View is a typed accessor for a fixed combination of component types: T
// must be a struct whose fields are pointers to component types. Embedded
// fields are required; named fields tagged `ecs:"optional"` may be absent.
// Adapted from plus3-ooftn's View[T] (struct-tag reflection over field
// offsets, populated via direct unsafe writes) onto this package's
// Archetype/World rather than the teacher's Storage/EntityId pair.
type View[T any] struct {
	world       *World
	types       []reflect.Type
	ids         []TypeID
	optional    []bool
	fieldOffset []uintptr
}

// NewView builds a view over World for struct type T.
func NewView[T any](w *World) *View[T] {
	var zero T
	structType := reflect.TypeOf(zero)
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	n := structType.NumField()
	types := make([]reflect.Type, 0, n)
	ids := make([]TypeID, 0, n)
	optional := make([]bool, 0, n)
	fieldOffset := make([]uintptr, 0, n)

	for i := 0; i < n; i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}
		componentType := field.Type.Elem()
		info := w.registry.lookup(componentType)

		isOptional := false
		if !field.Anonymous {
			switch tag := field.Tag.Get("ecs"); tag {
			case "":
			case "optional":
				isOptional = true
			default:
				panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
			}
		}

		types = append(types, componentType)
		ids = append(ids, info.ID)
		optional = append(optional, isOptional)
		fieldOffset = append(fieldOffset, field.Offset)
	}

	return &View[T]{world: w, types: types, ids: ids, optional: optional, fieldOffset: fieldOffset}
}

// matchesArchetype reports whether a carries every required (non-optional)
// component type this view names.
func (v *View[T]) matchesArchetype(a *Archetype) bool {
	for i, id := range v.ids {
		if v.optional[i] {
			continue
		}
		if !a.Has(id) {
			return false
		}
	}
	return true
}

// fill populates result's fields from archetype a at row, returning false
// if a required component is absent.
func (v *View[T]) fill(a *Archetype, row int, result *T) bool {
	resultPtr := unsafe.Pointer(result)
	for i, id := range v.ids {
		info := v.world.registry.infoByID(id)
		fieldPtr := unsafe.Pointer(uintptr(resultPtr) + v.fieldOffset[i])

		ptr, ok := a.getDynamic(row, id, info.Size)
		if !ok {
			if v.optional[i] {
				*(*unsafe.Pointer)(fieldPtr) = nil
				continue
			}
			return false
		}
		*(*unsafe.Pointer)(fieldPtr) = ptr
	}
	return true
}

// Get returns a populated view for entity, or nil if it lacks a required
// component.
func (v *View[T]) Get(e Entity) *T {
	loc, ok := v.world.directory.locate(e)
	if !ok {
		return nil
	}
	a := v.world.archetypes[loc.archetype]
	var result T
	if !v.fill(a, loc.row, &result) {
		return nil
	}
	return &result
}

// Iter yields every (Entity, T) pair across archetypes matching this
// view's required component set.
func (v *View[T]) Iter() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		for _, a := range v.world.archetypes {
			if !v.matchesArchetype(a) {
				continue
			}
			for row := 0; row < a.Len(); row++ {
				var result T
				if !v.fill(a, row, &result) {
					continue
				}
				if !yield(a.EntityAt(row), result) {
					return
				}
			}
		}
	}
}

// Values returns an iterator over just the view structs, without entity
// ids, for callers that only need the component data.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Spawn creates a new entity from data's non-nil pointer fields.
func (v *View[T]) Spawn(data T) Entity {
	structPtr := unsafe.Pointer(&data)
	components := make([]any, 0, len(v.types))
	for i, componentType := range v.types {
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])
		componentPtr := *(*unsafe.Pointer)(fieldPtr)
		if componentPtr == nil {
			if !v.optional[i] {
				panic("required component is nil in View.Spawn")
			}
			continue
		}
		value := reflect.NewAt(componentType, componentPtr).Elem().Interface()
		components = append(components, value)
	}
	return v.world.Spawn(components...)
}
