package spoke

import (
	"iter"
	"math/bits"
)

// IndexSet is an ordered set of indices backed by a bitset.
// Iteration always yields indices in ascending order.
type IndexSet struct {
	words []uint64
	len   int
}

func (s *IndexSet) Has(idx Index) bool {
	word := int(idx / 64)
	if word >= len(s.words) {
		return false
	}

	return s.words[word]&(1<<(idx%64)) != 0
}

// Insert adds idx and reports whether it was not yet part of the set.
func (s *IndexSet) Insert(idx Index) bool {
	word := int(idx / 64)
	if word >= len(s.words) {
		s.words = append(s.words, make([]uint64, word-len(s.words)+1)...)
	}

	mask := uint64(1) << (idx % 64)
	if s.words[word]&mask != 0 {
		return false
	}

	s.words[word] |= mask
	s.len += 1

	return true
}

// Remove removes idx and reports whether it was part of the set.
func (s *IndexSet) Remove(idx Index) bool {
	if !s.Has(idx) {
		return false
	}

	s.words[idx/64] &^= 1 << (idx % 64)
	s.len -= 1

	return true
}

func (s *IndexSet) Len() int {
	return s.len
}

func (s *IndexSet) Clear() {
	clear(s.words)
	s.len = 0
}

// All iterates the indices of the set in ascending order.
func (s *IndexSet) All() iter.Seq[Index] {
	return func(yield func(Index) bool) {
		for wordIdx, word := range s.words {
			for word != 0 {
				bit := bits.TrailingZeros64(word)
				word &^= 1 << bit

				if !yield(Index(wordIdx*64 + bit)) {
					return
				}
			}
		}
	}
}

// AppendTo appends all indices in ascending order to dst.
func (s *IndexSet) AppendTo(dst []Index) []Index {
	for idx := range s.All() {
		dst = append(dst, idx)
	}

	return dst
}

// Intersect appends the indices contained in all sets to dst.
// The smallest set is walked and each of its indices is tested against the
// other sets, so the result is in ascending order.
func Intersect(dst []Index, sets ...*IndexSet) []Index {
	if len(sets) == 0 {
		return dst
	}

	smallest := 0
	for idx, set := range sets {
		if set.Len() < sets[smallest].Len() {
			smallest = idx
		}
	}

	if sets[smallest].Len() == 0 {
		return dst
	}

outer:
	for idx := range sets[smallest].All() {
		for other, set := range sets {
			if other != smallest && !set.Has(idx) {
				continue outer
			}
		}

		dst = append(dst, idx)
	}

	return dst
}
