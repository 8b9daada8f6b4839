package spindle

import (
	"fmt"
	"reflect"

	"github.com/oliverbestmann/spindle/spoke"
)

type resourceCell struct {
	typ reflect.Type

	// holds a *R
	value any

	// number of live shared guards, or -1 if an exclusive guard is live
	borrows int
}

func (c *resourceCell) tryRead() error {
	if c.borrows < 0 {
		return &BorrowError{Type: c.typ, Exclusive: false, HeldExclusive: true}
	}

	c.borrows += 1
	return nil
}

func (c *resourceCell) tryWrite() error {
	if c.borrows != 0 {
		return &BorrowError{
			Type:          c.typ,
			Exclusive:     true,
			HeldExclusive: c.borrows < 0,
			HeldShared:    max(c.borrows, 0),
		}
	}

	c.borrows = -1
	return nil
}

// Resources holds at most one value per type. Values are borrowed either
// shared using Read or exclusively using Write. Borrowing a resource in a way
// that conflicts with a live guard is a programming error and panics.
//
// Resources is not safe for concurrent use.
type Resources struct {
	_ noCopy

	cells map[reflect.Type]*resourceCell
}

func NewResources() *Resources {
	return &Resources{
		cells: map[reflect.Type]*resourceCell{},
	}
}

func cellOf[R any](res *Resources) (*resourceCell, bool) {
	cell, ok := res.cells[reflect.TypeFor[R]()]
	return cell, ok
}

// Insert stores the value as the resource of type R.
// An existing value is replaced, which is not allowed while it is borrowed.
func Insert[R any](res *Resources, value R) {
	ty := reflect.TypeFor[R]()

	if cell, ok := res.cells[ty]; ok {
		if cell.borrows != 0 {
			panic(fmt.Sprintf("can not replace resource %s while it is borrowed", ty))
		}

		*cell.value.(*R) = value
		return
	}

	ptr := new(R)
	*ptr = value

	res.cells[ty] = &resourceCell{typ: ty, value: ptr}
}

// Remove removes the resource of type R and returns its value.
func Remove[R any](res *Resources) (R, bool) {
	cell, ok := cellOf[R](res)
	if !ok {
		var zero R
		return zero, false
	}

	if cell.borrows != 0 {
		panic(fmt.Sprintf("can not remove resource %s while it is borrowed", cell.typ))
	}

	delete(res.cells, cell.typ)

	return *cell.value.(*R), true
}

// Contains reports whether a resource of type R exists.
func Contains[R any](res *Resources) bool {
	_, ok := cellOf[R](res)
	return ok
}

// Ref is a shared guard of a resource. The guard must be released
// once the resource is no longer used.
type Ref[R any] struct {
	cell  *resourceCell
	value *R
}

// Get returns a copy of the resource value.
func (r *Ref[R]) Get() R {
	r.assertLive()
	return *r.value
}

// Release gives up the borrow. Releasing a guard twice panics.
func (r *Ref[R]) Release() {
	r.assertLive()

	r.cell.borrows -= 1
	r.cell = nil
}

func (r *Ref[R]) assertLive() {
	if r.cell == nil {
		panic(fmt.Sprintf("shared guard of %s used after release", reflect.TypeFor[R]()))
	}
}

// Mut is an exclusive guard of a resource.
type Mut[R any] struct {
	cell  *resourceCell
	value *R
}

// Get returns a pointer to the resource value. The pointer must not be
// used after the guard was released.
func (m *Mut[R]) Get() *R {
	m.assertLive()
	return m.value
}

func (m *Mut[R]) Release() {
	m.assertLive()

	m.cell.borrows = 0
	m.cell = nil
}

func (m *Mut[R]) assertLive() {
	if m.cell == nil {
		panic(fmt.Sprintf("exclusive guard of %s used after release", reflect.TypeFor[R]()))
	}
}

// TryRead borrows the resource of type R in shared mode. It fails if the
// resource does not exist or is borrowed exclusively.
func TryRead[R any](res *Resources) (*Ref[R], error) {
	cell, ok := cellOf[R](res)
	if !ok {
		return nil, &MissingResourceError{Type: reflect.TypeFor[R]()}
	}

	if err := cell.tryRead(); err != nil {
		return nil, err
	}

	return &Ref[R]{cell: cell, value: cell.value.(*R)}, nil
}

// TryWrite borrows the resource of type R exclusively. It fails if the
// resource does not exist or any other guard is live.
func TryWrite[R any](res *Resources) (*Mut[R], error) {
	cell, ok := cellOf[R](res)
	if !ok {
		return nil, &MissingResourceError{Type: reflect.TypeFor[R]()}
	}

	if err := cell.tryWrite(); err != nil {
		return nil, err
	}

	return &Mut[R]{cell: cell, value: cell.value.(*R)}, nil
}

// Read is like TryRead but panics on failure.
func Read[R any](res *Resources) *Ref[R] {
	guard, err := TryRead[R](res)
	if err != nil {
		panic(err)
	}

	return guard
}

// Write is like TryWrite but panics on failure.
func Write[R any](res *Resources) *Mut[R] {
	guard, err := TryWrite[R](res)
	if err != nil {
		panic(err)
	}

	return guard
}

// ReadStorage borrows the storage of the component type C in shared mode.
// The returned View can only be joined using spoke.Read.
func ReadStorage[C spoke.IsComponent[C]](res *Resources) (spoke.View[C], *Ref[spoke.Storage[C]]) {
	guard := Read[spoke.Storage[C]](res)
	return spoke.ReadOnly(guard.Get()), guard
}

// WriteStorage borrows the storage of the component type C exclusively.
func WriteStorage[C spoke.IsComponent[C]](res *Resources) (spoke.Storage[C], *Mut[spoke.Storage[C]]) {
	guard := Write[spoke.Storage[C]](res)
	return *guard.Get(), guard
}

// InsertStorage creates the storage for component type C if it does not exist yet.
func InsertStorage[C spoke.IsComponent[C]](res *Resources) {
	if !Contains[spoke.Storage[C]](res) {
		Insert(res, spoke.NewStorageFor[C]())
	}
}

// Len returns the number of resources.
func (res *Resources) Len() int {
	return len(res.cells)
}

// Types returns the types of all resources in no particular order.
func (res *Resources) Types() []reflect.Type {
	types := make([]reflect.Type, 0, len(res.cells))
	for ty := range res.cells {
		types = append(types, ty)
	}

	return types
}

// Clear removes all resources. No resource may be borrowed.
func (res *Resources) Clear() {
	for ty, cell := range res.cells {
		if cell.borrows != 0 {
			panic(fmt.Sprintf("can not clear resources, %s is still borrowed", ty))
		}
	}

	clear(res.cells)
}
