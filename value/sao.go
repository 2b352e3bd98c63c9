package value

import "fmt"

// Reserved SAO field names.
const (
	FieldID     = "__id__"
	FieldSource = "__source__"
	FieldTypes  = "__types__"
)

// SAO is a semantic aggregate object: an immutable map carrying the three
// reserved identity fields plus arbitrary user fields. SAOs are never
// mutated in place once constructed; operators that need a modified copy
// (select's field projection) build a new *SAO.
type SAO struct {
	ID     string
	Source string
	Types  []string
	Fields *Map // user fields only, reserved keys excluded
}

func (*SAO) Kind() Kind { return KindSAO }

func (o *SAO) String() string {
	return fmt.Sprintf("%s#%s@%s", typesLabel(o.Types), o.ID, o.Source)
}

func typesLabel(types []string) string {
	if len(types) == 0 {
		return "?"
	}
	s := types[0]
	for _, t := range types[1:] {
		s += "|" + t
	}
	return s
}

// HasType reports whether t is one of o's declared types.
func (o *SAO) HasType(t string) bool {
	for _, ot := range o.Types {
		if ot == t {
			return true
		}
	}
	return false
}

// Key is the fully qualified (type, id, source) identity triple. The
// store's by_key index does not use this type: it keys each SAO once per
// declared type (see store.Store.ReplaceProvider).
type Key struct {
	Type   string
	ID     string
	Source string
}

func (k Key) String() string { return fmt.Sprintf("%s#%s@%s", k.Type, k.ID, k.Source) }

// LogicalKey is the (type, id) pair identifying a CSAO across sources.
type LogicalKey struct {
	Type string
	ID   string
}

func (k LogicalKey) String() string { return fmt.Sprintf("%s#%s", k.Type, k.ID) }

// Field looks up a user field by name, returning AbsorbingNone if absent.
// Reserved fields are accessible under their dunder names for get_field.
func (o *SAO) Field(name string) Value {
	switch name {
	case FieldID:
		return String(o.ID)
	case FieldSource:
		return String(o.Source)
	case FieldTypes:
		types := make(List, len(o.Types))
		for i, t := range o.Types {
			types[i] = String(t)
		}
		return types
	}
	if v, ok := o.Fields.Get(name); ok {
		return v
	}
	return AbsorbingNone
}

// HasField reports whether name is a reserved identity field or present
// among the user fields.
func (o *SAO) HasField(name string) bool {
	switch name {
	case FieldID, FieldSource, FieldTypes:
		return true
	}
	_, ok := o.Fields.Get(name)
	return ok
}

// Select returns a shallow copy of o retaining only the named user fields,
// always keeping the three reserved identity fields.
func (o *SAO) Select(fields []string) *SAO {
	n := &SAO{ID: o.ID, Source: o.Source, Types: o.Types, Fields: NewMap()}
	for _, f := range fields {
		if v, ok := o.Fields.Get(f); ok {
			n.Fields.Set(f, v)
		}
	}
	return n
}

// Clone returns a shallow, independent copy of o safe to further mutate
// (e.g. for select projections), without mutating o itself.
func (o *SAO) Clone() *SAO {
	return &SAO{ID: o.ID, Source: o.Source, Types: append([]string(nil), o.Types...), Fields: o.Fields.Clone()}
}
