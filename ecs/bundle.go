package ecs

import (
	"reflect"
	"sort"
	"unsafe"
)

// bundle resolves the TypeInfo for each boxed component value and sorts
// them into canonical (ascending TypeID) order, then drives the storage
// layer through each component's address, TypeInfo, and declared size —
// the dynamic-typing bridge spec §9 calls for in place of a common
// component supertype.
type bundle struct {
	infos  []*TypeInfo
	values []any
}

func newBundle(r *Registry, components []any) *bundle {
	infos := make([]*TypeInfo, len(components))
	for i, v := range components {
		infos[i] = r.lookup(reflect.TypeOf(v))
	}
	b := &bundle{infos: infos, values: components}
	sort.Sort(b)
	return b
}

func (b *bundle) Len() int { return len(b.infos) }

func (b *bundle) Swap(i, j int) {
	b.infos[i], b.infos[j] = b.infos[j], b.infos[i]
	b.values[i], b.values[j] = b.values[j], b.values[i]
}

func (b *bundle) Less(i, j int) bool { return b.infos[i].ID < b.infos[j].ID }

// typeIDs returns the sorted TypeID vector that keys the archetype index.
func (b *bundle) typeIDs() []TypeID {
	ids := make([]TypeID, len(b.infos))
	for i, info := range b.infos {
		ids[i] = info.ID
	}
	return ids
}

// drive hands each component's TypeInfo and address to fn, in canonical
// order.
func (b *bundle) drive(fn func(info *TypeInfo, ptr unsafe.Pointer)) {
	for i, info := range b.infos {
		fn(info, valuePointer(b.values[i]))
	}
}

// unionSortedTypeIDs returns the sorted union of two ascending TypeID
// vectors.
func unionSortedTypeIDs(a, b []TypeID) []TypeID {
	out := make([]TypeID, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// subtractSortedTypeIDs returns a \ b, both ascending.
func subtractSortedTypeIDs(a, b []TypeID) []TypeID {
	out := make([]TypeID, 0, len(a))
	j := 0
	for _, id := range a {
		for j < len(b) && b[j] < id {
			j++
		}
		if j < len(b) && b[j] == id {
			continue
		}
		out = append(out, id)
	}
	return out
}

// containsTypeID reports whether the ascending vector s contains id.
func containsTypeID(s []TypeID, id TypeID) bool {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := (lo + hi) / 2
		if s[mid] < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(s) && s[lo] == id
}
