package hashes

import "github.com/cespare/xxhash/v2"

// XXH64 is a 64-bit xxHash (seed 0) of an ASCII-lowercased string.
type XXH64 struct {
	hash uint64
	str  string
}

// NewXXH64 hashes str after folding ASCII A-Z to a-z and keeps the original
// string alongside the hash.
func NewXXH64(str string) XXH64 {
	return XXH64{hash: xxh64(str), str: str}
}

// XXH64From wraps a raw hash with no known pre-image.
func XXH64From(hash uint64) XXH64 {
	return XXH64{hash: hash}
}

func (x XXH64) Hash() uint64 { return x.hash }

// Str returns the recovered pre-image, or "" when only the hash is known.
func (x XXH64) Str() string { return x.str }

// SetHash assigns a raw hash.  The recovered string is cleared iff the new
// hash differs from the current one.
func (x *XXH64) SetHash(hash uint64) {
	if x.hash != hash {
		x.hash = hash
		x.str = ""
	}
}

// SetStr assigns a pre-image and recomputes the hash from it.
func (x *XXH64) SetStr(str string) {
	x.hash = xxh64(str)
	x.str = str
}

// Equal reports hash equality; recovered strings do not participate.
func (x XXH64) Equal(o XXH64) bool { return x.hash == o.hash }

func xxh64(str string) uint64 {
	folded := make([]byte, len(str))
	for i := 0; i < len(str); i++ {
		folded[i] = lower(str[i])
	}
	return xxhash.Sum64(folded)
}
