// Supplemental list/utility operators not covered by operators.go: flatten,
// unique, any, to_json, and describe. See SPEC_FULL.md §4.3 for
// per-operator grounding.
package qry

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sebitommy123/SA/errs"
	"github.com/sebitommy123/SA/value"
)

// flattenOp flattens one level of nesting: List-of-Lists → List, or an
// ObjectGrouping → ObjectList concatenating groups in key order.
func flattenOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	switch c := ctx.(type) {
	case value.List:
		out := make(value.List, 0, len(c))
		for _, v := range c {
			if sub, ok := v.(value.List); ok {
				out = append(out, sub...)
			} else {
				out = append(out, v)
			}
		}
		return out, nil
	case *value.ObjectGrouping:
		var out []*value.SAO
		for _, k := range c.Keys() {
			out = append(out, c.Get(k).Items...)
		}
		return value.NewObjectList(out), nil
	default:
		return nil, typeErr("flatten", pos, ctx, "list", "object_grouping")
	}
}

// uniqueOp de-duplicates a List by value.Equal, preserving first-seen order.
func uniqueOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	list, ok := ctx.(value.List)
	if !ok {
		return nil, typeErr("unique", pos, ctx, "list")
	}
	var out value.List
	for _, v := range list {
		dup := false
		for _, seen := range out {
			if value.Equal(seen, v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out, nil
}

// anyOp reports non-emptiness of a collection, or applies a predicate over
// an ObjectList like filter but short-circuits on the first match.
func anyOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	if len(args) == 1 {
		list, ok := ctx.(*value.ObjectList)
		if !ok {
			return nil, typeErr("any", pos, ctx, "object_list")
		}
		for _, o := range list.Items {
			result, err := ev.Eval(args[0], o)
			if err != nil {
				return nil, err
			}
			if value.IsAbsorbingNone(result) {
				continue
			}
			b, ok := result.(value.Bool)
			if !ok {
				return nil, typeErr("any", pos, result, "bool")
			}
			if bool(b) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	}
	switch c := ctx.(type) {
	case *value.ObjectList:
		return value.Bool(c.Len() > 0), nil
	case value.List:
		return value.Bool(len(c) > 0), nil
	case value.Bool:
		return c, nil
	default:
		return nil, typeErr("any", pos, ctx, "object_list", "list", "bool")
	}
}

// toJSONOp renders ctx as its JSON-safe projection.
func toJSONOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	j, err := toJSONValue(ctx)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, errs.NewParseError("", pos, "to_json: %v", err)
	}
	return value.String(b), nil
}

func toJSONValue(v value.Value) (interface{}, error) {
	switch c := v.(type) {
	case value.Null, nil:
		return nil, nil
	case value.Bool:
		return bool(c), nil
	case value.Int:
		return int64(c), nil
	case value.Float:
		return float64(c), nil
	case value.String:
		return string(c), nil
	case value.List:
		out := make([]interface{}, len(c))
		for i, e := range c {
			jv, err := toJSONValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = jv
		}
		return out, nil
	case *value.Map:
		out := map[string]interface{}{}
		for _, k := range c.Keys() {
			val, _ := c.Get(k)
			jv, err := toJSONValue(val)
			if err != nil {
				return nil, err
			}
			out[k] = jv
		}
		return out, nil
	case *value.SAO:
		out := map[string]interface{}{
			value.FieldID:     c.ID,
			value.FieldSource: c.Source,
			value.FieldTypes:  c.Types,
		}
		for _, k := range c.Fields.Keys() {
			val, _ := c.Fields.Get(k)
			jv, err := toJSONValue(val)
			if err != nil {
				return nil, err
			}
			out[k] = jv
		}
		return out, nil
	case *value.ObjectList:
		out := make([]interface{}, len(c.Items))
		for i, o := range c.Items {
			jv, err := toJSONValue(o)
			if err != nil {
				return nil, err
			}
			out[i] = jv
		}
		return out, nil
	case *value.ObjectGrouping:
		out := map[string]interface{}{}
		for _, k := range c.Keys() {
			jv, err := toJSONValue(c.Get(k))
			if err != nil {
				return nil, err
			}
			out[k.String()] = jv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("to_json: unsupported value kind %s", v.Kind())
	}
}

// describeOp summarizes an ObjectList's schema: declared types and the set
// of field names observed across its elements, sorted for stable output.
func describeOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	list, ok := ctx.(*value.ObjectList)
	if !ok {
		return nil, typeErr("describe", pos, ctx, "object_list")
	}
	types := map[string]bool{}
	fields := map[string]bool{}
	for _, o := range list.Items {
		for _, t := range o.Types {
			types[t] = true
		}
		for _, f := range o.Fields.Keys() {
			fields[f] = true
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d objects\n", list.Len())
	fmt.Fprintf(&b, "types: %s\n", strings.Join(sortedKeys(types), ", "))
	fmt.Fprintf(&b, "fields: %s\n", strings.Join(sortedKeys(fields), ", "))
	return value.String(b.String()), nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
