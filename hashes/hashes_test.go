package hashes

import (
	"testing"
)

func TestFNV1aKnownVectors(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"", 0x811C9DC5},
		{"a", 0xE40C292C},
		{"A", 0xE40C292C},
	}
	for _, tt := range tests {
		if got := NewFNV1a(tt.in).Hash(); got != tt.want {
			t.Errorf("NewFNV1a(%q).Hash() = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestFNV1aCaseFolding(t *testing.T) {
	a, b, c := NewFNV1a("Foo"), NewFNV1a("foo"), NewFNV1a("FOO")
	if a.Hash() != b.Hash() || b.Hash() != c.Hash() {
		t.Errorf("case folding broken: %#x %#x %#x", a.Hash(), b.Hash(), c.Hash())
	}
	if a.Str() != "Foo" {
		t.Errorf("Str() = %q, want the original casing", a.Str())
	}
}

func TestFNV1aSetHash(t *testing.T) {
	f := NewFNV1a("hello")
	same := f.Hash()
	f.SetHash(same)
	if f.Str() != "hello" {
		t.Errorf("assigning the same hash must keep the string, got %q", f.Str())
	}
	f.SetHash(same + 1)
	if f.Str() != "" {
		t.Errorf("assigning a different hash must clear the string, got %q", f.Str())
	}
}

func TestFNV1aEqual(t *testing.T) {
	a := NewFNV1a("hello")
	b := FNV1aFrom(a.Hash())
	if !a.Equal(b) {
		t.Error("identifiers with equal hashes must compare equal")
	}
	if a.Str() == b.Str() {
		t.Error("strings are advisory and differ here")
	}
}

func TestXXH64KnownVectors(t *testing.T) {
	if got := NewXXH64("").Hash(); got != 0xEF46DB3751D8E999 {
		t.Errorf("NewXXH64(\"\").Hash() = %#x, want 0xEF46DB3751D8E999", got)
	}
	if a, b := NewXXH64("ASSETS/File.bin"), NewXXH64("assets/file.bin"); a.Hash() != b.Hash() {
		t.Errorf("case folding broken: %#x != %#x", a.Hash(), b.Hash())
	}
}

func TestXXH64SetHash(t *testing.T) {
	x := NewXXH64("path")
	x.SetHash(x.Hash())
	if x.Str() != "path" {
		t.Errorf("assigning the same hash must keep the string, got %q", x.Str())
	}
	x.SetHash(1)
	if x.Str() != "" {
		t.Errorf("assigning a different hash must clear the string, got %q", x.Str())
	}
}
