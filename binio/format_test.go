package binio

import (
	"errors"
	"testing"

	"github.com/prop-tools/propbin/bin"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"bin", "bin-legacy1", "text", "json", "info"} {
		f, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		if f.Name() != name {
			t.Errorf("Lookup(%q).Name() = %q", name, f.Name())
		}
	}
	if _, err := Lookup("yaml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("unknown name must return ErrUnknownFormat, got %v", err)
	}
}

func TestGuess(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		fileName string
		want     string
	}{
		{"prop magic", "PROP\x01\x00\x00\x00", "whatever", "bin"},
		{"ptch magic", "PTCH junk", "whatever", "bin"},
		{"bin extension", "junk", "file.bin", "bin"},
		{"text magic", "#PROP_text\n", "whatever", "text"},
		{"ptch text magic", "#PTCH_text\n", "whatever", "text"},
		{"txt extension", "junk", "file.txt", "text"},
		{"py extension", "junk", "file.py", "text"},
		{"json brace", `{"type": {}}`, "whatever", "json"},
		{"json extension", "junk", "file.json", "json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Guess([]byte(tt.data), tt.fileName)
			if err != nil {
				t.Fatalf("Guess: %v", err)
			}
			if f.Name() != tt.want {
				t.Errorf("Guess = %q, want %q", f.Name(), tt.want)
			}
		})
	}
	if _, err := Guess([]byte("mystery"), "file.dat"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("unguessable input must return ErrUnknownFormat, got %v", err)
	}
}

func TestFormatProperties(t *testing.T) {
	tests := []struct {
		name         string
		opposite     string
		ext          string
		alwaysHashed bool
	}{
		{"bin", "text", ".bin", true},
		{"bin-legacy1", "text", ".bin", true},
		{"text", "bin", ".py", false},
		{"json", "bin", ".json", false},
		{"info", "", ".json", false},
	}
	for _, tt := range tests {
		f, err := Lookup(tt.name)
		if err != nil {
			t.Fatal(err)
		}
		if f.OppositeName() != tt.opposite {
			t.Errorf("%s opposite = %q, want %q", tt.name, f.OppositeName(), tt.opposite)
		}
		if f.DefaultExtension() != tt.ext {
			t.Errorf("%s extension = %q, want %q", tt.name, f.DefaultExtension(), tt.ext)
		}
		if f.OutputAlwaysHashed() != tt.alwaysHashed {
			t.Errorf("%s alwaysHashed = %v", tt.name, f.OutputAlwaysHashed())
		}
	}
}

// Writing the tree as text or as json and reading it back gives the same
// binary bytes as writing the original tree.
func TestFormatPipeline(t *testing.T) {
	binFmt, _ := Lookup("bin")
	textFmt, _ := Lookup("text")
	jsonFmt, _ := Lookup("json")

	src := sampleBin()
	wire, err := binFmt.Write(src)
	if err != nil {
		t.Fatal(err)
	}
	for _, step := range []Format{textFmt, jsonFmt} {
		through, err := step.Write(src)
		if err != nil {
			t.Fatalf("%s write: %v", step.Name(), err)
		}
		back := &bin.Bin{}
		if err := step.Read(back, through); err != nil {
			t.Fatalf("%s read: %v", step.Name(), err)
		}
		wire2, err := binFmt.Write(back)
		if err != nil {
			t.Fatalf("bin write after %s: %v", step.Name(), err)
		}
		if string(wire) != string(wire2) {
			t.Errorf("%s does not preserve the wire bytes", step.Name())
		}
	}
}
