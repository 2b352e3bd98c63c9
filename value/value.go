// Package value implements the closed value model shared by the parser, the
// operator runtime and the object store: a small sum of primitive kinds plus
// the semantic-object-specific kinds (SAO, ObjectList, ObjectGrouping, Chain)
// and the AbsorbingNone sentinel.
//
// Dispatch is by concrete Go type (a type switch): a closed sum of literal
// kinds plus the engine's own structured kinds (SAO, ObjectList,
// ObjectGrouping, Chain).
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type of a Value without a type switch.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
	KindSAO
	KindObjectList
	KindGrouping
	KindChain
	KindAbsorbingNone
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindSAO:
		return "sao"
	case KindObjectList:
		return "object_list"
	case KindGrouping:
		return "object_grouping"
	case KindChain:
		return "chain"
	case KindAbsorbingNone:
		return "absorbing_none"
	default:
		return "unknown"
	}
}

// Value is implemented only by the concrete types below, making the set
// closed: Null, Bool, Int, Float, String, List, *Map, *SAO, *ObjectList,
// *ObjectGrouping, *Chain and the absorbingNone singleton.
type Value interface {
	Kind() Kind
	String() string
}

// Null is the JSON null primitive. It is distinct from AbsorbingNone: Null is
// a concrete value a field can legitimately hold, AbsorbingNone means the
// field (or its containing path) doesn't exist at all.
type Null struct{}

func (Null) Kind() Kind     { return KindNull }
func (Null) String() string { return "null" }

type Bool bool

func (Bool) Kind() Kind       { return KindBool }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

type Int int64

func (Int) Kind() Kind       { return KindInt }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

type Float float64

func (Float) Kind() Kind       { return KindFloat }
func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

type String string

func (String) Kind() Kind       { return KindString }
func (s String) String() string { return string(s) }

// List is an ordered, finite sequence of values.
type List []Value

func (List) Kind() Kind { return KindList }
func (l List) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// absorbingNoneType is the sentinel "missing" value. Every operator must
// propagate it unless it's an iterating operator (filter/select/grouped_filter),
// which instead skips AbsorbingNone elements of an ObjectList.
type absorbingNoneType struct{}

func (absorbingNoneType) Kind() Kind     { return KindAbsorbingNone }
func (absorbingNoneType) String() string { return "AbsorbingNone" }

// AbsorbingNone is the single shared instance of the absorbing-none sentinel.
var AbsorbingNone Value = absorbingNoneType{}

// IsAbsorbingNone reports whether v is the AbsorbingNone sentinel.
func IsAbsorbingNone(v Value) bool {
	_, ok := v.(absorbingNoneType)
	return ok
}

// IsPrimitive reports whether v is one of Null, Bool, Int, Float or String.
func IsPrimitive(v Value) bool {
	switch v.(type) {
	case Null, Bool, Int, Float, String:
		return true
	default:
		return false
	}
}

func fmtKV(k string, v Value) string {
	return fmt.Sprintf("%s: %s", k, v.String())
}
