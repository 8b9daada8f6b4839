package spoke

import (
	"fmt"
	"iter"

	"github.com/oliverbestmann/spindle/internal/assert"
	"github.com/oliverbestmann/spindle/internal/set"
	"github.com/oliverbestmann/spindle/internal/typedpool"
)

// Fetch describes how a join accesses one of its storages.
// Values are created using Read or Write.
type Fetch[T any] interface {
	access() access
	fetch(idx Index) T
}

type access struct {
	storage   any
	indices   *IndexSet
	exclusive bool
}

type readFetch[T any] struct {
	storage View[T]
}

// Read joins the storage in shared mode, the join yields copies of the values.
func Read[T any](storage View[T]) Fetch[T] {
	return readFetch[T]{storage: storage}
}

func (f readFetch[T]) access() access {
	return access{storage: identityOf(f.storage), indices: f.storage.Indices()}
}

func (f readFetch[T]) fetch(idx Index) T {
	return f.storage.GetUnchecked(idx)
}

type writeFetch[T any] struct {
	storage Storage[T]
}

// Write joins the storage in exclusive mode, the join yields pointers into the storage.
// A storage joined with Write must not take part in the same join a second time.
func Write[T any](storage Storage[T]) Fetch[*T] {
	return writeFetch[T]{storage: storage}
}

func (f writeFetch[T]) access() access {
	return access{storage: f.storage, indices: f.storage.Indices(), exclusive: true}
}

func (f writeFetch[T]) fetch(idx Index) *T {
	return f.storage.GetUncheckedMut(idx)
}

// AliasError is the panic value of a join that requests exclusive access to
// a storage that is also requested by another role of the same join.
type AliasError struct {
	Storage any
}

func (e AliasError) Error() string {
	return fmt.Sprintf("storage %T joined more than once with exclusive access", e.Storage)
}

// checkAliasing panics if one storage is accessed exclusively while also being
// accessed by any other role.
func checkAliasing(accesses []access) {
	var shared, exclusive set.Set[any]

	for _, acc := range accesses {
		assert.Comparable(acc.storage)

		if exclusive.Has(acc.storage) {
			panic(AliasError{Storage: acc.storage})
		}

		if acc.exclusive {
			if shared.Has(acc.storage) {
				panic(AliasError{Storage: acc.storage})
			}

			exclusive.Insert(acc.storage)
		} else {
			shared.Insert(acc.storage)
		}
	}
}

var indexBuffers = typedpool.New(func(buf *[]Index) { *buf = (*buf)[:0] })

// cursor walks the intersection of the index sets of all joined storages.
// The intersection is computed once when the join is constructed.
type cursor struct {
	buffer  *[]Index
	indices []Index
	pos     int
	sets    []*IndexSet

	// set if any storage is joined with Write
	exclusive bool

	// the last index yielded, valid if started is set
	last    Index
	started bool
}

func newCursor(accesses ...access) cursor {
	checkAliasing(accesses)

	var exclusive bool

	sets := make([]*IndexSet, len(accesses))
	for idx, acc := range accesses {
		sets[idx] = acc.indices
		exclusive = exclusive || acc.exclusive
	}

	buffer := indexBuffers.Get()
	*buffer = Intersect(*buffer, sets...)

	return cursor{buffer: buffer, indices: *buffer, sets: sets, exclusive: exclusive}
}

func (c *cursor) next() (Index, bool) {
	if c.pos >= len(c.indices) {
		c.release()
		return 0, false
	}

	idx := c.indices[c.pos]
	c.pos += 1

	c.last = idx
	c.started = true

	return idx, true
}

// Close ends the iteration early and returns the index buffer to the pool.
// A join that is iterated to its end is closed automatically.
func (c *cursor) Close() {
	c.release()
}

func (c *cursor) release() {
	if c.buffer == nil {
		return
	}

	*c.buffer = c.indices
	indexBuffers.Put(c.buffer)

	c.buffer = nil
	c.indices = nil
	c.pos = 0
}

// lookup reports whether Get may return the row at idx. A join with exclusive
// access panics on rows it has already yielded, as the caller might still hold
// pointers into them.
func (c *cursor) lookup(idx Index) bool {
	for _, set := range c.sets {
		if !set.Has(idx) {
			return false
		}
	}

	assert.That(!c.exclusive || !c.started || idx > c.last,
		"row %d was already yielded by a join with exclusive access", idx)

	return true
}

// Len returns the exact number of rows the join will still yield.
func (c *cursor) Len() int {
	return len(c.indices) - c.pos
}

// Row2 holds the values of one row of a Joined2.
type Row2[A, B any] struct {
	First  A
	Second B
}

// Row3 holds the values of one row of a Joined3.
type Row3[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Joined1 iterates the values of a single storage in index order.
// A join is consumed by iterating it and can not be restarted.
type Joined1[A any] struct {
	cursor
	a Fetch[A]
}

func Join1[A any](a Fetch[A]) *Joined1[A] {
	return &Joined1[A]{
		cursor: newCursor(a.access()),
		a:      a,
	}
}

func (j *Joined1[A]) Next() (A, bool) {
	_, a, ok := j.NextIndexed()
	return a, ok
}

func (j *Joined1[A]) NextIndexed() (Index, A, bool) {
	idx, ok := j.next()
	if !ok {
		var a A
		return 0, a, false
	}

	return idx, j.a.fetch(idx), true
}

// Items yields the remaining rows of the join.
func (j *Joined1[A]) Items() iter.Seq[A] {
	return func(yield func(A) bool) {
		for _, a := range j.Indexed() {
			if !yield(a) {
				return
			}
		}
	}
}

// Indexed yields the remaining rows of the join together with their index.
func (j *Joined1[A]) Indexed() iter.Seq2[Index, A] {
	return func(yield func(Index, A) bool) {
		for {
			idx, ok := j.next()
			if !ok {
				return
			}

			if !yield(idx, j.a.fetch(idx)) {
				return
			}
		}
	}
}

// Get looks up the row at idx directly. If the join has exclusive access,
// the pointers of a row returned by Get must not be used once iteration
// reaches that row, and Get must not be called for rows that iteration
// already yielded.
func (j *Joined1[A]) Get(idx Index) (A, bool) {
	if !j.lookup(idx) {
		var a A
		return a, false
	}

	return j.a.fetch(idx), true
}

// Joined2 iterates the rows present in both of its storages.
type Joined2[A, B any] struct {
	cursor
	a Fetch[A]
	b Fetch[B]
}

func Join2[A, B any](a Fetch[A], b Fetch[B]) *Joined2[A, B] {
	return &Joined2[A, B]{
		cursor: newCursor(a.access(), b.access()),
		a:      a,
		b:      b,
	}
}

func (j *Joined2[A, B]) Next() (A, B, bool) {
	idx, ok := j.next()
	if !ok {
		var a A
		var b B
		return a, b, false
	}

	return j.a.fetch(idx), j.b.fetch(idx), true
}

func (j *Joined2[A, B]) Items() iter.Seq2[A, B] {
	return func(yield func(A, B) bool) {
		for {
			a, b, ok := j.Next()
			if !ok {
				return
			}

			if !yield(a, b) {
				return
			}
		}
	}
}

func (j *Joined2[A, B]) Indexed() iter.Seq2[Index, Row2[A, B]] {
	return func(yield func(Index, Row2[A, B]) bool) {
		for {
			idx, ok := j.next()
			if !ok {
				return
			}

			if !yield(idx, j.row(idx)) {
				return
			}
		}
	}
}

// Get follows the rules of Joined1.Get.
func (j *Joined2[A, B]) Get(idx Index) (Row2[A, B], bool) {
	if !j.lookup(idx) {
		return Row2[A, B]{}, false
	}

	return j.row(idx), true
}

func (j *Joined2[A, B]) row(idx Index) Row2[A, B] {
	return Row2[A, B]{First: j.a.fetch(idx), Second: j.b.fetch(idx)}
}

// Joined3 iterates the rows present in all three of its storages.
type Joined3[A, B, C any] struct {
	cursor
	a Fetch[A]
	b Fetch[B]
	c Fetch[C]
}

func Join3[A, B, C any](a Fetch[A], b Fetch[B], c Fetch[C]) *Joined3[A, B, C] {
	return &Joined3[A, B, C]{
		cursor: newCursor(a.access(), b.access(), c.access()),
		a:      a,
		b:      b,
		c:      c,
	}
}

func (j *Joined3[A, B, C]) Next() (Row3[A, B, C], bool) {
	idx, ok := j.next()
	if !ok {
		return Row3[A, B, C]{}, false
	}

	return j.row(idx), true
}

func (j *Joined3[A, B, C]) Items() iter.Seq[Row3[A, B, C]] {
	return func(yield func(Row3[A, B, C]) bool) {
		for {
			row, ok := j.Next()
			if !ok {
				return
			}

			if !yield(row) {
				return
			}
		}
	}
}

func (j *Joined3[A, B, C]) Indexed() iter.Seq2[Index, Row3[A, B, C]] {
	return func(yield func(Index, Row3[A, B, C]) bool) {
		for {
			idx, ok := j.next()
			if !ok {
				return
			}

			if !yield(idx, j.row(idx)) {
				return
			}
		}
	}
}

// Get follows the rules of Joined1.Get.
func (j *Joined3[A, B, C]) Get(idx Index) (Row3[A, B, C], bool) {
	if !j.lookup(idx) {
		return Row3[A, B, C]{}, false
	}

	return j.row(idx), true
}

func (j *Joined3[A, B, C]) row(idx Index) Row3[A, B, C] {
	return Row3[A, B, C]{
		First:  j.a.fetch(idx),
		Second: j.b.fetch(idx),
		Third:  j.c.fetch(idx),
	}
}
