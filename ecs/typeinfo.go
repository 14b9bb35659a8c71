package ecs

import (
	"reflect"
	"sync/atomic"
	"unsafe"
)

// TypeID is a stable, totally ordered identifier for a component type.
// It is unique for the lifetime of the Registry that issued it and is the
// sort key that defines column order inside an archetype and the membership
// key of the archetype index.
type TypeID uint32

// Destroyer is implemented by component types that hold resources which must
// be released before the value's bytes are overwritten or discarded. The
// world calls Destroy exactly once: on despawn, clear, or insert-overwrite.
// A component taken out by Remove is handed to the caller and is not
// destroyed.
type Destroyer interface {
	Destroy()
}

// TypeInfo describes a component type at runtime.
type TypeInfo struct {
	ID    TypeID
	Type  reflect.Type
	Size  uintptr
	Align uintptr
	drop  func(ptr unsafe.Pointer)
}

// Registry lazily assigns TypeInfo to component types the first time they
// are observed. Registration is idempotent: registering the same type twice
// returns the same TypeInfo.
type Registry struct {
	byType map[reflect.Type]*TypeInfo
	byID   []*TypeInfo
	nextID uint32
}

// NewRegistry creates an empty TypeInfo registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]*TypeInfo),
	}
}

// RegisterComponent pre-warms the registry with T, returning its TypeInfo.
// Types registered this way receive TypeIDs in registration order;
// lookup(reflect.TypeOf(v)) otherwise registers lazily on first sight. A
// World creates and owns its own Registry, so registering types in a
// separately created Registry does not affect the TypeIDs or column order
// of any World.
func RegisterComponent[T any](r *Registry) *TypeInfo {
	return r.lookup(reflect.TypeFor[T]())
}

// lookup returns the TypeInfo for t, registering it on first sight.
func (r *Registry) lookup(t reflect.Type) *TypeInfo {
	if info, ok := r.byType[t]; ok {
		return info
	}
	info := &TypeInfo{
		ID:    TypeID(atomic.AddUint32(&r.nextID, 1) - 1),
		Type:  t,
		Size:  t.Size(),
		Align: uintptr(t.Align()),
		drop:  dropFuncFor(t),
	}
	r.byType[t] = info
	r.byID = append(r.byID, info)
	return info
}

// infoByID returns the TypeInfo for a stable id.
func (r *Registry) infoByID(id TypeID) *TypeInfo {
	return r.byID[id]
}

// dropFuncFor builds the drop function for t: it invokes Destroy if t
// implements Destroyer, then zeroes the cell so any held pointers, slices,
// or maps become collectible and a stray re-read after drop yields a zero
// value rather than stale data.
func dropFuncFor(t reflect.Type) func(ptr unsafe.Pointer) {
	destroyer := reflect.TypeOf((*Destroyer)(nil)).Elem()
	implementsDestroy := reflect.PointerTo(t).Implements(destroyer)
	size := t.Size()
	return func(p unsafe.Pointer) {
		if implementsDestroy {
			v := reflect.NewAt(t, p).Interface().(Destroyer)
			v.Destroy()
		}
		zeroBytes(p, size)
	}
}
