package value

import "strings"

// GroupKey is a tuple of primitive values identifying one group produced by
// grouped_lowest/grouped_filter.
type GroupKey struct {
	Parts []Value
}

func (k GroupKey) String() string {
	parts := make([]string, len(k.Parts))
	for i, p := range k.Parts {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// canon returns a string that's stable and unique for a given GroupKey,
// used as the map key backing ObjectGrouping's insertion-ordered storage.
func (k GroupKey) canon() string {
	parts := make([]string, len(k.Parts))
	for i, p := range k.Parts {
		parts[i] = string(p.Kind()) + ":" + p.String()
	}
	return strings.Join(parts, "\x1f")
}

// ObjectGrouping maps a grouping key to the ObjectList of members sharing
// that key, preserving the order in which groups were first encountered.
type ObjectGrouping struct {
	order  []string
	keys   map[string]GroupKey
	groups map[string]*ObjectList
}

// NewObjectGrouping returns an empty, ready-to-use ObjectGrouping.
func NewObjectGrouping() *ObjectGrouping {
	return &ObjectGrouping{keys: map[string]GroupKey{}, groups: map[string]*ObjectList{}}
}

func (*ObjectGrouping) Kind() Kind { return KindGrouping }

func (g *ObjectGrouping) String() string {
	if g == nil || len(g.order) == 0 {
		return "ObjectGrouping()"
	}
	parts := make([]string, len(g.order))
	for i, c := range g.order {
		parts[i] = g.keys[c].String() + ": " + g.groups[c].String()
	}
	return "ObjectGrouping(" + strings.Join(parts, ", ") + ")"
}

// Add appends o to the group identified by key, creating the group (in
// insertion order) if this is its first member.
func (g *ObjectGrouping) Add(key GroupKey, o *SAO) {
	c := key.canon()
	if _, ok := g.groups[c]; !ok {
		g.order = append(g.order, c)
		g.keys[c] = key
		g.groups[c] = NewObjectList(nil)
	}
	g.groups[c].Items = append(g.groups[c].Items, o)
}

// Set replaces the ObjectList stored for key (used by grouped_lowest, which
// collapses each group to its single lowest member before storing it back
// as a one-element ObjectList so rendering stays uniform).
func (g *ObjectGrouping) Set(key GroupKey, list *ObjectList) {
	c := key.canon()
	if _, ok := g.groups[c]; !ok {
		g.order = append(g.order, c)
		g.keys[c] = key
	}
	g.groups[c] = list
}

// Keys returns the group keys in insertion order.
func (g *ObjectGrouping) Keys() []GroupKey {
	res := make([]GroupKey, len(g.order))
	for i, c := range g.order {
		res[i] = g.keys[c]
	}
	return res
}

// Get returns the ObjectList for a given group key's canonical form.
func (g *ObjectGrouping) Get(key GroupKey) *ObjectList {
	return g.groups[key.canon()]
}

// Len returns the number of distinct groups.
func (g *ObjectGrouping) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}
