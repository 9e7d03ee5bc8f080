// Package binio implements the four serializations of the bin property
// tree: the little-endian binary form (two wire generations), the braced
// textual form, and the lossless and lossy JSON projections, together with
// the named format registry used to pick between them.
package binio

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/prop-tools/propbin/bin"
)

// Format is one named serialization in the registry.
type Format interface {
	Name() string
	// OppositeName is the format conventionally converted to when none is
	// requested; empty for write-only formats.
	OppositeName() string
	DefaultExtension() string
	// OutputAlwaysHashed reports whether unhashing is pointless before
	// writing, as for the binary form which stores hashes either way.
	OutputAlwaysHashed() bool
	Read(b *bin.Bin, data []byte) error
	Write(b *bin.Bin) ([]byte, error)
	TryGuess(data []byte, fileName string) bool
}

type binFormat struct {
	tm TypeMap
}

func (f *binFormat) Name() string             { return f.tm.Name() }
func (f *binFormat) OppositeName() string     { return "text" }
func (f *binFormat) DefaultExtension() string { return ".bin" }
func (f *binFormat) OutputAlwaysHashed() bool { return true }

func (f *binFormat) Read(b *bin.Bin, data []byte) error {
	return ReadBinary(b, data, f.tm)
}

func (f *binFormat) Write(b *bin.Bin) ([]byte, error) {
	return WriteBinary(b, f.tm)
}

func (f *binFormat) TryGuess(data []byte, fileName string) bool {
	if bytes.HasPrefix(data, []byte("PTCH")) || bytes.HasPrefix(data, []byte("PROP")) {
		return true
	}
	return strings.HasSuffix(fileName, ".bin")
}

type textFormat struct{}

func (textFormat) Name() string             { return "text" }
func (textFormat) OppositeName() string     { return "bin" }
func (textFormat) DefaultExtension() string { return ".py" }
func (textFormat) OutputAlwaysHashed() bool { return false }

func (textFormat) Read(b *bin.Bin, data []byte) error {
	return ReadText(b, data)
}

func (textFormat) Write(b *bin.Bin) ([]byte, error) {
	return WriteText(b, WriteIndent(4))
}

func (textFormat) TryGuess(data []byte, fileName string) bool {
	if bytes.HasPrefix(data, []byte("#PROP_text")) || bytes.HasPrefix(data, []byte("#PTCH_text")) {
		return true
	}
	return strings.HasSuffix(fileName, ".txt") || strings.HasSuffix(fileName, ".py")
}

type jsonFormat struct{}

func (jsonFormat) Name() string             { return "json" }
func (jsonFormat) OppositeName() string     { return "bin" }
func (jsonFormat) DefaultExtension() string { return ".json" }
func (jsonFormat) OutputAlwaysHashed() bool { return false }

func (jsonFormat) Read(b *bin.Bin, data []byte) error {
	return ReadJSON(b, data)
}

func (jsonFormat) Write(b *bin.Bin) ([]byte, error) {
	return WriteJSON(b, 2)
}

func (jsonFormat) TryGuess(data []byte, fileName string) bool {
	if bytes.HasPrefix(data, []byte("{")) {
		return true
	}
	return strings.HasSuffix(fileName, ".json")
}

type infoFormat struct{}

func (infoFormat) Name() string             { return "info" }
func (infoFormat) OppositeName() string     { return "" }
func (infoFormat) DefaultExtension() string { return ".json" }
func (infoFormat) OutputAlwaysHashed() bool { return false }

func (infoFormat) Read(b *bin.Bin, data []byte) error {
	return fmt.Errorf("%w: json info files can't be read", ErrFormat)
}

func (infoFormat) Write(b *bin.Bin) ([]byte, error) {
	return WriteJSONInfo(b, 2)
}

func (infoFormat) TryGuess(data []byte, fileName string) bool {
	return false
}

// formats is the process-wide registry; ordering is the guess order.
var formats = []Format{
	textFormat{},
	jsonFormat{},
	infoFormat{},
	&binFormat{tm: Latest},
	&binFormat{tm: Legacy1},
}

// Formats lists the registered formats in stable order.
func Formats() []Format {
	return formats
}

// Lookup resolves a format by registry name.
func Lookup(name string) (Format, error) {
	for _, f := range formats {
		if f.Name() == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Guess walks the registry in declaration order and returns the first
// format whose heuristic accepts the content prefix or file name.
func Guess(data []byte, fileName string) (Format, error) {
	for _, f := range formats {
		if f.TryGuess(data, fileName) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: could not guess format of %q", ErrUnknownFormat, fileName)
}
