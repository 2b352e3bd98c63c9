// Package render formats query results into their textual display forms:
// a single SAO's header-plus-fields block, a same-(type,id) ObjectList
// grouped by source (fields all sources agree on rendered once, fields
// that disagree rendered per source), a flat type#id@source listing for an
// ObjectList spanning multiple ids, an ObjectGrouping's per-key sections,
// and primitives printed as-is. Every form writes directly to an
// io.Writer rather than building an intermediate string.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sebitommy123/SA/value"
)

// Value renders any evaluated query result to w, dispatching on v's
// dynamic kind.
func Value(w io.Writer, v value.Value) error {
	switch c := v.(type) {
	case *value.SAO:
		return SAO(w, c)
	case *value.ObjectList:
		return ObjectList(w, c)
	case *value.ObjectGrouping:
		return Grouping(w, c)
	case nil:
		_, err := fmt.Fprintln(w, "null")
		return err
	default:
		_, err := fmt.Fprintln(w, c.String())
		return err
	}
}

// SAO renders a single object: a header line "#<id> (types @source)" followed
// by indented "key: value" lines for its user fields in declaration order.
// Reserved fields are omitted from the body.
func SAO(w io.Writer, o *value.SAO) error {
	if _, err := fmt.Fprintf(w, "#%s (%s @%s)\n", o.ID, strings.Join(o.Types, ", "), o.Source); err != nil {
		return err
	}
	for _, k := range o.Fields.Keys() {
		v, _ := o.Fields.Get(k)
		if _, err := fmt.Fprintf(w, "    %s: %s\n", k, v.String()); err != nil {
			return err
		}
	}
	return nil
}

// ObjectList renders l: if every element shares the same logical (type,id)
// — the CSAO case — it renders as one grouped-by-source block (Grouped);
// otherwise as one "type#id@source" line per element.
func ObjectList(w io.Writer, l *value.ObjectList) error {
	if l == nil || l.Len() == 0 {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}
	if sameLogicalIdentity(l.Items) {
		return Grouped(w, l.Items)
	}
	for _, o := range l.Items {
		if _, err := fmt.Fprintf(w, "%s#%s@%s\n", strings.Join(o.Types, "|"), o.ID, o.Source); err != nil {
			return err
		}
	}
	return nil
}

func sameLogicalIdentity(items []*value.SAO) bool {
	if len(items) < 2 {
		return false
	}
	id := items[0].ID
	common := append([]string(nil), items[0].Types...)
	for _, o := range items[1:] {
		if o.ID != id {
			return false
		}
		kept := common[:0]
		for _, t := range common {
			if o.HasType(t) {
				kept = append(kept, t)
			}
		}
		common = kept
	}
	return len(common) > 0
}

// Grouped renders items — all sharing one logical id across one or more
// sources — as a single header naming every type and source, followed by
// one line per distinct field: a shared value if every source agrees, or
// one "field@source: value" line per source when they disagree.
func Grouped(w io.Writer, items []*value.SAO) error {
	if len(items) == 0 {
		return nil
	}
	types := map[string]bool{}
	sources := make([]string, 0, len(items))
	for _, o := range items {
		for _, t := range o.Types {
			types[t] = true
		}
		sources = append(sources, o.Source)
	}
	if _, err := fmt.Fprintf(w, "#%s (%s @%s)\n", items[0].ID, strings.Join(sortedKeys(types), ", "), strings.Join(sources, "@")); err != nil {
		return err
	}

	fields := map[string]bool{}
	for _, o := range items {
		for _, k := range o.Fields.Keys() {
			fields[k] = true
		}
	}
	for _, field := range sortedKeys(fields) {
		type sv struct {
			source string
			val    value.Value
		}
		var vals []sv
		for _, o := range items {
			if v, ok := o.Fields.Get(field); ok {
				vals = append(vals, sv{o.Source, v})
			}
		}
		if len(vals) == 0 {
			continue
		}
		agree := true
		for _, v := range vals[1:] {
			if !value.Equal(v.val, vals[0].val) {
				agree = false
				break
			}
		}
		if agree {
			if _, err := fmt.Fprintf(w, "    %s: %s\n", field, vals[0].val.String()); err != nil {
				return err
			}
			continue
		}
		for _, v := range vals {
			if _, err := fmt.Fprintf(w, "    %s@%s: %s\n", field, v.source, v.val.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Grouping renders an ObjectGrouping as one header per key, each followed by
// the indented rendering of its member ObjectList.
func Grouping(w io.Writer, g *value.ObjectGrouping) error {
	if g == nil || g.Len() == 0 {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}
	var buf strings.Builder
	for _, k := range g.Keys() {
		fmt.Fprintf(&buf, "%s:\n", k.String())
		var inner strings.Builder
		if err := ObjectList(&inner, g.Get(k)); err != nil {
			return err
		}
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			fmt.Fprintf(&buf, "    %s\n", line)
		}
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
