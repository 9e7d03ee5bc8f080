package bin

// Section is one named top-level value of a Bin.
type Section struct {
	Name  string
	Value Value
}

// Bin is an ordered mapping from section name to value.  Order is the wire
// order; a hashed map here would silently reorder sections and break
// round-tripping.
//
// Known sections: "type" (String "PROP" or "PTCH"), "version" (U32),
// "linked" (List of String, present iff version >= 2), "entries"
// (Map[Hash]Embed), and for patches "patches" (Map[Hash]Embed).
type Bin struct {
	Sections []Section
}

// Get returns the named section value, or nil.
func (b *Bin) Get(name string) Value {
	for i := range b.Sections {
		if b.Sections[i].Name == name {
			return b.Sections[i].Value
		}
	}
	return nil
}

// Set replaces the named section or appends it in iteration order.
func (b *Bin) Set(name string, v Value) {
	for i := range b.Sections {
		if b.Sections[i].Name == name {
			b.Sections[i].Value = v
			return
		}
	}
	b.Sections = append(b.Sections, Section{Name: name, Value: v})
}

// Reset drops all sections.
func (b *Bin) Reset() {
	b.Sections = b.Sections[:0]
}
