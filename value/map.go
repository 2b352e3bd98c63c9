package value

import "strings"

// Map is an insertion-order string-keyed mapping.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap returns an empty, ready-to-use Map.
func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

func (*Map) Kind() Kind { return KindMap }

func (m *Map) String() string {
	if m == nil {
		return "{}"
	}
	parts := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		parts = append(parts, fmtKV(k, m.vals[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Get returns the value at key and whether it was present.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.vals[key]
	return v, ok
}

// Set inserts or overwrites key. New keys are appended to the iteration order.
func (m *Map) Set(key string, v Value) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Keys returns the keys in insertion order. The slice must not be mutated.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns a shallow copy with its own key order/backing map.
func (m *Map) Clone() *Map {
	n := NewMap()
	if m == nil {
		return n
	}
	for _, k := range m.keys {
		n.Set(k, m.vals[k])
	}
	return n
}
