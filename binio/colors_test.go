package binio

import (
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/prop-tools/propbin/bin"
)

func TestWriteTextColors(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	b := &bin.Bin{}
	b.Set("type", &bin.String{Value: "PROP"})
	b.Set("version", &bin.U32{Value: 1})
	b.Set("entries", &bin.Map{KeyType: bin.HashType, ValueType: bin.EmbedType})

	plain, err := WriteText(b)
	if err != nil {
		t.Fatal(err)
	}
	colored, err := WriteText(b, WriteColors(NewColors()))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(colored), "\x1b[") {
		t.Error("colored output has no escape sequences")
	}
	if strings.Contains(string(plain), "\x1b[") {
		t.Error("plain output must not contain escape sequences")
	}

	// Colorization never changes the underlying text.
	got := &bin.Bin{}
	stripped := stripANSI(string(colored))
	if err := ReadText(got, []byte(stripped)); err != nil {
		t.Fatalf("stripped colored output does not parse: %v\n%s", err, stripped)
	}
	if string(plain) != stripped {
		t.Errorf("stripped text differs:\n%q\n%q", plain, stripped)
	}
}

func stripANSI(s string) string {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			i += 2
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		out.WriteByte(s[i])
	}
	return out.String()
}

func TestColorsFallback(t *testing.T) {
	c := NewColors()
	if got := c.Get(bin.U32Type, ColorAttr(99)); got == nil {
		t.Fatal("unknown attr must fall back to identity")
	}
	if got := c.Color(bin.U32Type, ColorAttr(99), "x"); got != "x" {
		t.Errorf("fallback must be identity, got %q", got)
	}
}
