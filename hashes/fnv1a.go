// Package hashes provides the two case-insensitive string hashes used by the
// bin property format: 32-bit FNV-1a and 64-bit XXH64.
//
// Both identifier types carry the numeric hash together with an optional
// recovered pre-image.  Equality is by hash; the string is advisory metadata
// attached at construction or by an unhasher.  The hash is never recomputed
// from the string outside of construction and assignment.
package hashes

const (
	fnvOffset uint32 = 0x811C9DC5
	fnvPrime  uint32 = 0x01000193
)

// FNV1a is a 32-bit FNV-1a hash of an ASCII-lowercased string.
type FNV1a struct {
	hash uint32
	str  string
}

// NewFNV1a hashes str after folding ASCII A-Z to a-z and keeps the original
// string alongside the hash.
func NewFNV1a(str string) FNV1a {
	return FNV1a{hash: fnv1a(str), str: str}
}

// FNV1aFrom wraps a raw hash with no known pre-image.
func FNV1aFrom(hash uint32) FNV1a {
	return FNV1a{hash: hash}
}

func (f FNV1a) Hash() uint32 { return f.hash }

// Str returns the recovered pre-image, or "" when only the hash is known.
func (f FNV1a) Str() string { return f.str }

// SetHash assigns a raw hash.  The recovered string is cleared iff the new
// hash differs from the current one.
func (f *FNV1a) SetHash(hash uint32) {
	if f.hash != hash {
		f.hash = hash
		f.str = ""
	}
}

// SetStr assigns a pre-image and recomputes the hash from it.
func (f *FNV1a) SetStr(str string) {
	f.hash = fnv1a(str)
	f.str = str
}

// Equal reports hash equality; recovered strings do not participate.
func (f FNV1a) Equal(o FNV1a) bool { return f.hash == o.hash }

func fnv1a(str string) uint32 {
	h := fnvOffset
	for i := 0; i < len(str); i++ {
		h ^= uint32(lower(str[i]))
		h *= fnvPrime
	}
	return h
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
