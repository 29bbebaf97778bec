package gfx

import (
	"math"
	"weak"
)

// ResourceID indexes a sparse registry slot. IDs are stable for a resource's
// life and recycled once the slot is reclaimed.
type ResourceID uint32

const IDNone ResourceID = math.MaxUint32

type registrySlot[T any] struct {
	ref  weak.Pointer[T]
	live bool
}

// registry is a sparse table of weak references. It never keeps a resource
// alive: once the caller drops the last strong handle, the next RemoveUnused
// scan reclaims the slot and reports the ID for deferred GPU teardown.
type registry[T any] struct {
	slots []registrySlot[T]
	free  []ResourceID
}

func (r *registry[T]) Insert(strong *T) ResourceID {
	slot := registrySlot[T]{ref: weak.Make(strong), live: true}
	if n := len(r.free); n > 0 {
		id := r.free[n-1]
		r.free = r.free[:n-1]
		r.slots[id] = slot
		return id
	}
	r.slots = append(r.slots, slot)
	return ResourceID(len(r.slots) - 1)
}

// Get resolves an ID to a strong reference, or nil when the resource has been
// collected or the slot is vacant.
func (r *registry[T]) Get(id ResourceID) *T {
	if int(id) >= len(r.slots) || !r.slots[id].live {
		return nil
	}
	return r.slots[id].ref.Value()
}

// RemoveUnused scans every slot once and reclaims those whose weak reference
// has collapsed. Returns the reclaimed IDs so their GPU objects can be queued
// for destruction. O(n) over live+freed slots; called once per frame.
func (r *registry[T]) RemoveUnused() []ResourceID {
	var removed []ResourceID
	for i := range r.slots {
		if r.slots[i].live && r.slots[i].ref.Value() == nil {
			r.slots[i] = registrySlot[T]{}
			id := ResourceID(i)
			r.free = append(r.free, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Len reports the number of occupied slots.
func (r *registry[T]) Len() int {
	n := 0
	for i := range r.slots {
		if r.slots[i].live {
			n++
		}
	}
	return n
}
