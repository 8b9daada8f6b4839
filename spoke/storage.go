package spoke

import (
	"github.com/oliverbestmann/spindle/internal/assert"
)

// View is the read only part of a Storage.
type View[T any] interface {
	Get(idx Index) (T, bool)

	// GetUnchecked returns the value at idx. Calling it with an index that
	// is not contained in Indices panics.
	GetUnchecked(idx Index) T

	// Indices returns the set of indices that currently hold a value.
	// The set must not be modified by the caller.
	Indices() *IndexSet

	Len() int
}

// Storage maps an Index to a component value.
//
// Pointers returned by GetMut or GetUncheckedMut are only valid until the next
// Insert or Remove on the same storage.
type Storage[T any] interface {
	View[T]

	// Insert stores the item at idx, overwriting any previous value.
	Insert(idx Index, item T)

	// Remove deletes the value at idx and returns it.
	Remove(idx Index) (T, bool)

	GetMut(idx Index) (*T, bool)

	// GetUncheckedMut is the exclusive version of GetUnchecked.
	GetUncheckedMut(idx Index) *T
}

// ReadOnly wraps the storage into a View. The storage can not be
// recovered from the View, not even using a type assertion.
func ReadOnly[T any](storage Storage[T]) View[T] {
	return readOnly[T]{storage: storage}
}

type readOnly[T any] struct {
	storage Storage[T]
}

func (r readOnly[T]) Get(idx Index) (T, bool) {
	return r.storage.Get(idx)
}

func (r readOnly[T]) GetUnchecked(idx Index) T {
	return r.storage.GetUnchecked(idx)
}

func (r readOnly[T]) Indices() *IndexSet {
	return r.storage.Indices()
}

func (r readOnly[T]) Len() int {
	return r.storage.Len()
}

// identityOf returns the value identifying the storage behind a view.
func identityOf[T any](view View[T]) any {
	if ro, ok := view.(readOnly[T]); ok {
		return ro.storage
	}

	return view
}

var _ Storage[int] = &VecStorage[int]{}

// VecStorage keeps values in a slice indexed by Index directly.
// It is a good fit for components that most entities have.
type VecStorage[T any] struct {
	values  []T
	indices IndexSet
}

func NewVecStorage[T any]() *VecStorage[T] {
	return &VecStorage[T]{}
}

func (s *VecStorage[T]) Insert(idx Index, item T) {
	if int(idx) >= len(s.values) {
		s.values = append(s.values, make([]T, int(idx)-len(s.values)+1)...)
	}

	s.values[idx] = item
	s.indices.Insert(idx)
}

func (s *VecStorage[T]) Remove(idx Index) (T, bool) {
	var zero T

	if !s.indices.Remove(idx) {
		return zero, false
	}

	value := s.values[idx]
	s.values[idx] = zero

	return value, true
}

func (s *VecStorage[T]) Get(idx Index) (T, bool) {
	if !s.indices.Has(idx) {
		var zero T
		return zero, false
	}

	return s.values[idx], true
}

func (s *VecStorage[T]) GetMut(idx Index) (*T, bool) {
	if !s.indices.Has(idx) {
		return nil, false
	}

	return &s.values[idx], true
}

func (s *VecStorage[T]) GetUnchecked(idx Index) T {
	return *s.GetUncheckedMut(idx)
}

func (s *VecStorage[T]) GetUncheckedMut(idx Index) *T {
	assert.That(s.indices.Has(idx), "vec storage has no value at index %d", idx)
	return &s.values[idx]
}

func (s *VecStorage[T]) Indices() *IndexSet {
	return &s.indices
}

func (s *VecStorage[T]) Len() int {
	return s.indices.Len()
}

var _ Storage[int] = &DenseStorage[int]{}

// DenseStorage is a sparse set: values are packed into a dense slice and
// an index table maps from Index to the position within that slice.
// Removing a value moves the last value into the free position.
type DenseStorage[T any] struct {
	// position+1 of the value of each index, zero if absent
	sparse  []uint32
	dense   []Index
	values  []T
	indices IndexSet
}

func NewDenseStorage[T any]() *DenseStorage[T] {
	return &DenseStorage[T]{}
}

func (s *DenseStorage[T]) Insert(idx Index, item T) {
	if pos, ok := s.position(idx); ok {
		s.values[pos] = item
		return
	}

	if int(idx) >= len(s.sparse) {
		s.sparse = append(s.sparse, make([]uint32, int(idx)-len(s.sparse)+1)...)
	}

	s.dense = append(s.dense, idx)
	s.values = append(s.values, item)
	s.sparse[idx] = uint32(len(s.dense))
	s.indices.Insert(idx)
}

func (s *DenseStorage[T]) Remove(idx Index) (T, bool) {
	pos, ok := s.position(idx)
	if !ok {
		var zero T
		return zero, false
	}

	value := s.values[pos]

	last := len(s.dense) - 1
	lastIdx := s.dense[last]

	// move the last value into the now free position
	s.dense[pos] = lastIdx
	s.values[pos] = s.values[last]
	s.sparse[lastIdx] = uint32(pos + 1)

	var zero T
	s.values[last] = zero

	s.dense = s.dense[:last]
	s.values = s.values[:last]
	s.sparse[idx] = 0
	s.indices.Remove(idx)

	return value, true
}

func (s *DenseStorage[T]) Get(idx Index) (T, bool) {
	pos, ok := s.position(idx)
	if !ok {
		var zero T
		return zero, false
	}

	return s.values[pos], true
}

func (s *DenseStorage[T]) GetMut(idx Index) (*T, bool) {
	pos, ok := s.position(idx)
	if !ok {
		return nil, false
	}

	return &s.values[pos], true
}

func (s *DenseStorage[T]) GetUnchecked(idx Index) T {
	return *s.GetUncheckedMut(idx)
}

func (s *DenseStorage[T]) GetUncheckedMut(idx Index) *T {
	pos, ok := s.position(idx)
	assert.That(ok, "dense storage has no value at index %d", idx)

	return &s.values[pos]
}

func (s *DenseStorage[T]) Indices() *IndexSet {
	return &s.indices
}

func (s *DenseStorage[T]) Len() int {
	return len(s.dense)
}

func (s *DenseStorage[T]) position(idx Index) (int, bool) {
	if int(idx) >= len(s.sparse) || s.sparse[idx] == 0 {
		return 0, false
	}

	return int(s.sparse[idx]) - 1, true
}

var _ Storage[int] = &MapStorage[int]{}

// MapStorage keeps each value in its own allocation.
// Use it for rare components, pointers to its values stay valid until
// the value is removed.
type MapStorage[T any] struct {
	values  map[Index]*T
	indices IndexSet
}

func NewMapStorage[T any]() *MapStorage[T] {
	return &MapStorage[T]{values: map[Index]*T{}}
}

func (s *MapStorage[T]) Insert(idx Index, item T) {
	if existing, ok := s.values[idx]; ok {
		*existing = item
		return
	}

	if s.values == nil {
		s.values = map[Index]*T{}
	}

	value := new(T)
	*value = item

	s.values[idx] = value
	s.indices.Insert(idx)
}

func (s *MapStorage[T]) Remove(idx Index) (T, bool) {
	value, ok := s.values[idx]
	if !ok {
		var zero T
		return zero, false
	}

	delete(s.values, idx)
	s.indices.Remove(idx)

	return *value, true
}

func (s *MapStorage[T]) Get(idx Index) (T, bool) {
	value, ok := s.values[idx]
	if !ok {
		var zero T
		return zero, false
	}

	return *value, true
}

func (s *MapStorage[T]) GetMut(idx Index) (*T, bool) {
	value, ok := s.values[idx]
	return value, ok
}

func (s *MapStorage[T]) GetUnchecked(idx Index) T {
	return *s.GetUncheckedMut(idx)
}

func (s *MapStorage[T]) GetUncheckedMut(idx Index) *T {
	value, ok := s.values[idx]
	assert.That(ok, "map storage has no value at index %d", idx)

	return value
}

func (s *MapStorage[T]) Indices() *IndexSet {
	return &s.indices
}

func (s *MapStorage[T]) Len() int {
	return len(s.values)
}
