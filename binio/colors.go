package binio

import (
	"strings"

	"github.com/fatih/color"

	"github.com/prop-tools/propbin/bin"
)

// ColorAttr selects which syntactic role of a value is being painted.
type ColorAttr int

const (
	FieldColor ColorAttr = iota
	TypeColor
	ValueColor
)

// Colorable keys the color table by value type and syntactic role.
type Colorable struct {
	Type bin.Type
	Attr ColorAttr
}

// Colors maps value types and attributes to sprint functions for terminal
// output.
type Colors struct {
	Default func(string, ...any) string
	Map     map[Colorable]func(string, ...any) string
}

// NewColors builds the default palette.
func NewColors() *Colors {
	colors := &Colors{
		Default: colorDefault,
		Map:     map[Colorable]func(string, ...any) string{},
	}
	for _, t := range bin.Types() {
		colors.Map[Colorable{Type: t, Attr: TypeColor}] = color.RGB(74, 92, 138).SprintfFunc()
		colors.Map[Colorable{Type: t, Attr: FieldColor}] = color.RGB(196, 96, 16).SprintfFunc()
		switch t.Category() {
		case bin.NumberCategory, bin.VectorCategory:
			colors.Map[Colorable{Type: t, Attr: ValueColor}] = color.RGB(128, 216, 236).SprintfFunc()
		case bin.StringCategory:
			colors.Map[Colorable{Type: t, Attr: ValueColor}] = color.RGB(8, 196, 16).SprintfFunc()
		case bin.HashCategory:
			colors.Map[Colorable{Type: t, Attr: ValueColor}] = color.RGB(198, 198, 46).SprintfFunc()
		case bin.NoneCategory:
			colors.Map[Colorable{Type: t, Attr: ValueColor}] = color.RGB(168, 0, 196).SprintfFunc()
		}
	}
	colors.Map[Colorable{Type: bin.BoolType, Attr: ValueColor}] = color.CyanString
	colors.Map[Colorable{Type: bin.FlagType, Attr: ValueColor}] = color.CyanString
	for k, f := range colors.Map {
		colors.Map[k] = func(v string, _ ...any) string {
			return f(strings.Replace(v, "%", "%%", -1))
		}
	}
	return colors
}

func colorDefault(v string, _ ...any) string { return v }

// Color paints s according to the table, falling back to identity.
func (c *Colors) Color(t bin.Type, a ColorAttr, s string) string {
	return c.Get(t, a)(s)
}

func (c *Colors) Get(t bin.Type, a ColorAttr) func(string, ...any) string {
	f := c.Map[Colorable{Type: t, Attr: a}]
	if f == nil {
		return c.Default
	}
	return f
}
