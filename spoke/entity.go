package spoke

import (
	"cmp"
	"fmt"
	"iter"
	"log/slog"
	"math"

	"github.com/oliverbestmann/spindle/internal/assert"
)

// Index is a dense slot number identifying a row in every storage.
// Indices are reused after the entity owning them was destroyed.
type Index uint32

// Generation counts activations and deactivations of an Index slot.
// An odd generation marks a live slot, an even one a dead or never issued slot.
type Generation uint32

// Alive reports whether the generation belongs to a live slot.
func (g Generation) Alive() bool {
	return g%2 == 1
}

// Entity identifies a live object by its slot and the generation of that slot.
// An Entity is a weak reference, it does not own any data. It becomes stale the
// moment the generation of its slot changes.
type Entity struct {
	Index      Index
	Generation Generation
}

func (e Entity) String() string {
	return fmt.Sprintf("%d#%d", e.Index, e.Generation)
}

func (e Entity) LogValue() slog.Value {
	return slog.StringValue(e.String())
}

// Compare orders entities by their Index only.
func (e Entity) Compare(other Entity) int {
	return cmp.Compare(e.Index, other.Index)
}

// Entities allocates entity identities and recycles the slots of destroyed entities.
// The zero value is an empty allocator ready to use.
type Entities struct {
	// the next slot that was never issued
	maxIdx      Index
	free        []Index
	generations []Generation
	alive       int
}

// Create issues a new entity. A previously destroyed slot is reused if one exists.
func (e *Entities) Create() Entity {
	var idx Index

	if n := len(e.free); n > 0 {
		idx = e.free[n-1]
		e.free = e.free[:n-1]
	} else {
		assert.That(e.maxIdx < math.MaxUint32, "entity index space exhausted")

		idx = e.maxIdx
		e.maxIdx += 1
		e.generations = append(e.generations, 0)
	}

	e.generations[idx] += 1
	e.alive += 1

	return Entity{Index: idx, Generation: e.generations[idx]}
}

// Destroy kills the entity living in slot idx and makes the slot available for reuse.
// The slot must be alive, destroying it twice or destroying a slot that was never
// issued panics.
func (e *Entities) Destroy(idx Index) {
	assert.That(int(idx) < len(e.generations), "destroy of never issued entity index %d", idx)
	assert.That(e.generations[idx].Alive(), "destroy of dead entity index %d", idx)

	e.generations[idx] += 1
	e.alive -= 1

	e.free = append(e.free, idx)
}

// Get returns the current entity of slot idx, whether it is alive or not.
// Comparing the result with a stored Entity tells if the stored value is stale.
func (e *Entities) Get(idx Index) (Entity, bool) {
	if int(idx) >= len(e.generations) {
		return Entity{}, false
	}

	return Entity{Index: idx, Generation: e.generations[idx]}, true
}

// IsAlive reports whether the entity is current and its slot is alive.
func (e *Entities) IsAlive(entity Entity) bool {
	current, ok := e.Get(entity.Index)
	return ok && current == entity && current.Generation.Alive()
}

// Len returns the number of live entities.
func (e *Entities) Len() int {
	return e.alive
}

// All iterates all live entities in ascending index order.
func (e *Entities) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for idx, generation := range e.generations {
			if !generation.Alive() {
				continue
			}

			if !yield(Entity{Index: Index(idx), Generation: generation}) {
				return
			}
		}
	}
}
