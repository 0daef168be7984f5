package docset

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap implements Set on top of a 32-bit Roaring Bitmap.
// It wraps the official roaring implementation.
// Iteration is in ascending docid order.
//
// The read methods treat a nil *Bitmap as an empty set.
type Bitmap struct {
	rb *roaring.Bitmap
}

// NewBitmap creates a new bitmap holding ids.
func NewBitmap(ids ...uint32) *Bitmap {
	return &Bitmap{
		rb: roaring.BitmapOf(ids...),
	}
}

// Wrap adopts rb without copying it.
func Wrap(rb *roaring.Bitmap) *Bitmap {
	if rb == nil {
		rb = roaring.New()
	}
	return &Bitmap{rb: rb}
}

// Roaring returns the underlying bitmap.
func (b *Bitmap) Roaring() *roaring.Bitmap {
	return b.rb
}

// Add adds a docid to the bitmap.
func (b *Bitmap) Add(docid uint32) {
	b.rb.Add(docid)
}

// Remove removes a docid from the bitmap.
func (b *Bitmap) Remove(docid uint32) {
	b.rb.Remove(docid)
}

// Contains checks if a docid is in the bitmap.
func (b *Bitmap) Contains(docid uint32) bool {
	if b == nil {
		return false
	}
	return b.rb.Contains(docid)
}

// Len returns the number of elements in the bitmap.
func (b *Bitmap) Len() int {
	if b == nil {
		return 0
	}
	return int(b.rb.GetCardinality())
}

// IsEmpty returns true if the bitmap is empty.
func (b *Bitmap) IsEmpty() bool {
	if b == nil {
		return true
	}
	return b.rb.IsEmpty()
}

// Clone returns a deep copy of the bitmap.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{
		rb: b.rb.Clone(),
	}
}

// All returns an iterator over the bitmap in ascending order.
func (b *Bitmap) All() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		if b == nil {
			return
		}
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// ToSlice returns the members in ascending order.
func (b *Bitmap) ToSlice() []uint32 {
	if b == nil {
		return nil
	}
	return b.rb.ToArray()
}

// And computes the intersection of two bitmaps in place.
func (b *Bitmap) And(other *Bitmap) {
	b.rb.And(other.rb)
}

// Or computes the union of two bitmaps in place.
func (b *Bitmap) Or(other *Bitmap) {
	b.rb.Or(other.rb)
}

// AndNot removes every member of other in place.
func (b *Bitmap) AndNot(other *Bitmap) {
	b.rb.AndNot(other.rb)
}
