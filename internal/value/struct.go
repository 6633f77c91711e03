package value

import "strings"

// Struct is an immutable descriptor: an optional name, an ordered list
// of unique field names, and a name->index map for O(1) lookup.
// Grounded on original_source/include/hook/struct.h's hk_struct_t.
type Struct struct {
	header
	name   string
	hasName bool
	fields []string
	index  map[string]int
}

// NewStruct creates an empty, unnamed-or-named struct descriptor ready
// for DefineField calls.
func NewStruct(name string, hasName bool) *Struct {
	return &Struct{name: name, hasName: hasName, index: make(map[string]int)}
}

func (s *Struct) Type() Type { return TypeStruct }

func (s *Struct) Release() {
	if s.releaseSelf() {
		// field names are plain strings, not Values; no owned Values to release
	}
}

func (s *Struct) Print(quoted bool) string {
	_ = quoted
	var b strings.Builder
	if s.hasName {
		b.WriteString(s.name)
		b.WriteByte(' ')
	}
	b.WriteString("{")
	b.WriteString(strings.Join(s.fields, ", "))
	b.WriteString("}")
	return b.String()
}

// Name returns the struct's name and whether one was given.
func (s *Struct) Name() (string, bool) { return s.name, s.hasName }

// Len returns the number of declared fields.
func (s *Struct) Len() int { return len(s.fields) }

// Fields returns the field names in declaration order.
func (s *Struct) Fields() []string { return s.fields }

// DefineField appends name to the field list. Returns false without
// modifying the struct if name is already declared (spec.md: "field
// names are unique").
func (s *Struct) DefineField(name string) bool {
	if _, dup := s.index[name]; dup {
		return false
	}
	s.index[name] = len(s.fields)
	s.fields = append(s.fields, name)
	return true
}

// IndexOf returns the field's position, or -1 if undeclared.
func (s *Struct) IndexOf(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}
