// Package unhash substitutes known pre-images for the hash identifiers in a
// value tree, using dictionaries loaded from CDTB-style hash lists.
package unhash

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/prop-tools/propbin/bin"
	"github.com/prop-tools/propbin/hashes"
)

// DefaultDepth bounds recursion so a cyclic tree cannot hang the walk.
const DefaultDepth = 100

// Unhasher owns the two dictionaries: FNV-1a for names and fields, XXH64
// for paths.  After loading it is read-only and safe to share across
// concurrent walks of disjoint trees.
type Unhasher struct {
	fnv1a map[uint32]string
	xxh64 map[uint64]string
}

func New() *Unhasher {
	return &Unhasher{
		fnv1a: map[uint32]string{},
		xxh64: map[uint64]string{},
	}
}

// LoadFNV1a loads a dictionary file plus its numbered shards (path.0,
// path.1, ...) until one fails to open.  It reports whether at least one
// file was loaded.
func (u *Unhasher) LoadFNV1a(path string) bool {
	return loadDict(path, func(hex, str string) {
		h, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return
		}
		u.fnv1a[uint32(h)] = str
	})
}

// LoadXXH64 is LoadFNV1a for the 64-bit dictionary.
func (u *Unhasher) LoadXXH64(path string) bool {
	return loadDict(path, func(hex, str string) {
		h, err := strconv.ParseUint(hex, 16, 64)
		if err != nil {
			return
		}
		u.xxh64[h] = str
	})
}

func loadDict(path string, add func(hex, str string)) bool {
	loaded := loadDictFile(path, add)
	for i := 0; ; i++ {
		if !loadDictFile(path+"."+strconv.Itoa(i), add) {
			break
		}
		loaded = true
	}
	return loaded
}

// loadDictFile reads "<hex> <string>" records, one per line; a blank line
// ends the file logically.
func loadDictFile(path string, add func(hex, str string)) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		hex, str, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		add(hex, str)
	}
	return true
}

// FNV1a replaces a bare hash with its dictionary entry when one exists.
func (u *Unhasher) FNV1a(h *hashes.FNV1a) {
	if h.Str() != "" || h.Hash() == 0 {
		return
	}
	if str, ok := u.fnv1a[h.Hash()]; ok {
		*h = hashes.NewFNV1a(str)
	}
}

// XXH64 replaces a bare hash with its dictionary entry when one exists.
func (u *Unhasher) XXH64(h *hashes.XXH64) {
	if h.Str() != "" || h.Hash() == 0 {
		return
	}
	if str, ok := u.xxh64[h.Hash()]; ok {
		*h = hashes.NewXXH64(str)
	}
}

// Value walks v recursively, visiting keys and nested values, decrementing
// maxDepth at every level.
func (u *Unhasher) Value(v bin.Value, maxDepth int) {
	if maxDepth <= 0 {
		return
	}
	switch v := v.(type) {
	case *bin.Hash:
		u.FNV1a(&v.Value)
	case *bin.Link:
		u.FNV1a(&v.Value)
	case *bin.File:
		u.XXH64(&v.Value)
	case *bin.List:
		for _, item := range v.Items {
			u.Value(item, maxDepth-1)
		}
	case *bin.List2:
		for _, item := range v.Items {
			u.Value(item, maxDepth-1)
		}
	case *bin.Option:
		for _, item := range v.Items {
			u.Value(item, maxDepth-1)
		}
	case *bin.Map:
		for i := range v.Items {
			u.Value(v.Items[i].Key, maxDepth-1)
			u.Value(v.Items[i].Value, maxDepth-1)
		}
	case *bin.Embed:
		u.FNV1a(&v.Name)
		for i := range v.Items {
			u.FNV1a(&v.Items[i].Key)
			u.Value(v.Items[i].Value, maxDepth-1)
		}
	case *bin.Pointer:
		u.FNV1a(&v.Name)
		for i := range v.Items {
			u.FNV1a(&v.Items[i].Key)
			u.Value(v.Items[i].Value, maxDepth-1)
		}
	}
}

// Bin walks every section of b with the default depth bound.
func (u *Unhasher) Bin(b *bin.Bin) {
	for i := range b.Sections {
		u.Value(b.Sections[i].Value, DefaultDepth)
	}
}
