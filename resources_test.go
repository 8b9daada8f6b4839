package spindle

import (
	"testing"

	"github.com/oliverbestmann/spindle/spoke"
	"github.com/stretchr/testify/require"
)

type Gravity struct {
	Y float64
}

type Score int

func TestResources_InsertRemoveContains(t *testing.T) {
	res := NewResources()

	require.False(t, Contains[Gravity](res))

	Insert(res, Gravity{Y: -9.81})
	require.True(t, Contains[Gravity](res))
	require.Equal(t, 1, res.Len())

	// inserting again replaces the value
	Insert(res, Gravity{Y: -1})

	guard := Read[Gravity](res)
	require.Equal(t, Gravity{Y: -1}, guard.Get())
	guard.Release()

	value, ok := Remove[Gravity](res)
	require.True(t, ok)
	require.Equal(t, Gravity{Y: -1}, value)
	require.False(t, Contains[Gravity](res))

	_, ok = Remove[Gravity](res)
	require.False(t, ok)
}

func TestResources_SharedBorrows(t *testing.T) {
	res := NewResources()
	Insert(res, Score(10))

	a := Read[Score](res)
	b := Read[Score](res)
	require.Equal(t, Score(10), a.Get())
	require.Equal(t, Score(10), b.Get())

	_, err := TryWrite[Score](res)
	require.ErrorIs(t, err, ErrBorrowConflict)

	var borrowErr *BorrowError
	require.ErrorAs(t, err, &borrowErr)
	require.True(t, borrowErr.Exclusive)
	require.Equal(t, 2, borrowErr.HeldShared)

	a.Release()
	b.Release()

	score := Write[Score](res)
	*score.Get() += 5
	score.Release()

	require.Equal(t, Score(15), Read[Score](res).Get())
}

func TestResources_ExclusiveBorrow(t *testing.T) {
	res := NewResources()
	Insert(res, Score(1))

	guard := Write[Score](res)

	_, err := TryRead[Score](res)
	require.ErrorIs(t, err, ErrBorrowConflict)

	_, err = TryWrite[Score](res)
	require.ErrorIs(t, err, ErrBorrowConflict)

	// the panicking versions fail fast
	require.Panics(t, func() { Read[Score](res) })
	require.Panics(t, func() { Write[Score](res) })

	// structural changes are not allowed while borrowed
	require.Panics(t, func() { Insert(res, Score(2)) })
	require.Panics(t, func() { Remove[Score](res) })
	require.Panics(t, func() { res.Clear() })

	guard.Release()

	_, err = TryRead[Score](res)
	require.NoError(t, err)
}

func TestResources_Missing(t *testing.T) {
	res := NewResources()

	_, err := TryRead[Score](res)
	require.ErrorIs(t, err, ErrResourceMissing)

	_, err = TryWrite[Score](res)
	require.ErrorIs(t, err, ErrResourceMissing)

	require.Panics(t, func() { Read[Score](res) })
}

func TestResources_GuardUseAfterRelease(t *testing.T) {
	res := NewResources()
	Insert(res, Score(1))

	ref := Read[Score](res)
	ref.Release()
	require.Panics(t, func() { ref.Get() })
	require.Panics(t, func() { ref.Release() })

	mut := Write[Score](res)
	mut.Release()
	require.Panics(t, func() { mut.Get() })
}

func TestResources_Storages(t *testing.T) {
	res := NewResources()

	InsertStorage[Position](res)
	require.True(t, Contains[spoke.Storage[Position]](res))

	positions, guard := WriteStorage[Position](res)
	positions.Insert(3, Position{X: 1})
	guard.Release()

	// inserting a second time keeps the existing storage
	InsertStorage[Position](res)

	positions, shared := ReadStorage[Position](res)
	defer shared.Release()

	value, ok := positions.Get(3)
	require.True(t, ok)
	require.Equal(t, 1.0, value.X)

	// a second shared guard is allowed, neither of them can write
	other, otherShared := ReadStorage[Position](res)
	defer otherShared.Release()

	for _, view := range []spoke.View[Position]{positions, other} {
		_, isStorage := view.(spoke.Storage[Position])
		require.False(t, isStorage)
	}

	// both views may take part in the same join
	require.Equal(t, 1, spoke.Join2(spoke.Read(positions), spoke.Read(other)).Len())

	// an exclusive borrow is rejected while the views are live
	_, err := TryWrite[spoke.Storage[Position]](res)
	require.ErrorIs(t, err, ErrBorrowConflict)

	// different component types live in different resources
	InsertStorage[Velocity](res)

	_, velGuard := WriteStorage[Velocity](res)
	velGuard.Release()
}

func TestResources_Clear(t *testing.T) {
	res := NewResources()
	Insert(res, Score(1))
	Insert(res, Gravity{})

	require.Len(t, res.Types(), 2)

	res.Clear()
	require.Equal(t, 0, res.Len())
	require.Panics(t, func() { Read[Score](res) })
}
