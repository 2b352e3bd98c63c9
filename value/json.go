package value

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FromJSON converts a decoded JSON value (as produced by a json.Decoder with
// UseNumber enabled) into the value model. A json.Number whose text parses
// as an int64 becomes Int and any other number ("1.0", "1e3") becomes
// Float; a plain float64 becomes Int when it holds a whole number. This is
// a best-effort classification, not a guarantee the provider intended an
// integer.
func FromJSON(v interface{}) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t, err)
		}
		return Float(f), nil
	case float64:
		if i := int64(t); float64(i) == t {
			return Int(i), nil
		}
		return Float(t), nil
	case []interface{}:
		out := make(List, len(t))
		for i, e := range t {
			ev, err := FromJSON(e)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case map[string]interface{}:
		m := NewMap()
		for _, k := range orderedKeys(t) {
			ev, err := FromJSON(t[k])
			if err != nil {
				return nil, err
			}
			m.Set(k, ev)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value of type %T", v)
	}
}

// orderedKeys returns m's keys; map iteration order isn't stable, but JSON
// objects have no inherent field order once decoded into a Go map, so
// alphabetical is as good a deterministic choice as any for rendering.
func orderedKeys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortStrings(out)
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// SAOFromJSON decodes a single provider object: it must
// carry __id__ (non-empty string), __source__ (string) and __types__ (a
// non-empty array of non-empty strings; repeated entries are dropped,
// keeping the first); everything else becomes a
// user field. source overrides __source__ if the provider's own field is
// empty or absent, since the poller always knows the configured provider
// name.
func SAOFromJSON(raw map[string]interface{}, source string) (*SAO, error) {
	id, _ := raw[FieldID].(string)
	if id == "" {
		return nil, fmt.Errorf("object missing non-empty %s", FieldID)
	}
	src, _ := raw[FieldSource].(string)
	if src == "" {
		src = source
	}
	if src == "" {
		return nil, fmt.Errorf("object %q missing %s", id, FieldSource)
	}
	rawTypes, ok := raw[FieldTypes].([]interface{})
	if !ok || len(rawTypes) == 0 {
		return nil, fmt.Errorf("object %q missing non-empty %s", id, FieldTypes)
	}
	seen := make(map[string]bool, len(rawTypes))
	types := make([]string, 0, len(rawTypes))
	for _, t := range rawTypes {
		ts, ok := t.(string)
		if !ok || ts == "" {
			return nil, fmt.Errorf("object %q has a non-string entry in %s", id, FieldTypes)
		}
		if seen[ts] {
			continue
		}
		seen[ts] = true
		types = append(types, ts)
	}

	fields := NewMap()
	for _, k := range orderedKeys(raw) {
		if k == FieldID || k == FieldSource || k == FieldTypes {
			continue
		}
		fv, err := FromJSON(raw[k])
		if err != nil {
			return nil, fmt.Errorf("object %q field %q: %w", id, k, err)
		}
		fields.Set(k, fv)
	}
	return &SAO{ID: id, Source: src, Types: types, Fields: fields}, nil
}

// DecodeAllData decodes a provider's /all_data body (a JSON array of SAO
// maps) into SAOs, preserving array order. A decode error anywhere aborts
// the whole batch: the poller treats the provider's contribution as
// malformed rather than applying a partial one.
func DecodeAllData(data []byte, source string) ([]*SAO, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raws []map[string]interface{}
	if err := dec.Decode(&raws); err != nil {
		return nil, fmt.Errorf("decode /all_data: %w", err)
	}
	out := make([]*SAO, 0, len(raws))
	for _, raw := range raws {
		o, err := SAOFromJSON(raw, source)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
