package value

import "strings"

// ObjectList is an ordered, finite collection of SAOs — the primary context
// type that filter/select/count/lowest/etc. operate over.
type ObjectList struct {
	Items []*SAO
}

// NewObjectList wraps items, which must not be mutated by the caller
// afterward (ObjectList does not copy the slice).
func NewObjectList(items []*SAO) *ObjectList {
	return &ObjectList{Items: items}
}

func (*ObjectList) Kind() Kind { return KindObjectList }

func (l *ObjectList) String() string {
	if l == nil || len(l.Items) == 0 {
		return "ObjectList()"
	}
	parts := make([]string, len(l.Items))
	for i, o := range l.Items {
		parts[i] = o.String()
	}
	return "ObjectList(" + strings.Join(parts, ", ") + ")"
}

// Len returns the number of elements.
func (l *ObjectList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}
