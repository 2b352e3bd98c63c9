package qry

import (
	"regexp"

	"github.com/sebitommy123/SA/errs"
	"github.com/sebitommy123/SA/value"
)

func typeErr(op string, pos int, got value.Value, expected ...string) error {
	return errs.NewTypeError(op, pos, got.Kind().String(), expected...)
}

// getField implements field access: SAO field lookup with link resolution,
// per-element projection over an ObjectList (dropping elements missing the
// field), and Map lookup.
func getField(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	nameVal, err := ev.evalArg(args[0], ctx)
	if err != nil {
		return nil, err
	}
	if value.IsAbsorbingNone(nameVal) {
		return value.AbsorbingNone, nil
	}
	name, ok := nameVal.(value.String)
	if !ok {
		return nil, typeErr("get_field", pos, nameVal, "string")
	}

	switch c := ctx.(type) {
	case *value.SAO:
		return resolveFieldValue(ev, c.Field(string(name)))
	case *value.Map:
		v, ok := c.Get(string(name))
		if !ok {
			return value.AbsorbingNone, nil
		}
		return v, nil
	case *value.ObjectList:
		out := make(value.List, 0, len(c.Items))
		for _, o := range c.Items {
			v, err := resolveFieldValue(ev, o.Field(string(name)))
			if err != nil {
				return nil, err
			}
			if value.IsAbsorbingNone(v) {
				continue
			}
			out = append(out, v)
		}
		return out, nil
	default:
		return nil, typeErr("get_field", pos, ctx, "sao", "object_list", "map")
	}
}

// resolveFieldValue resolves v if it is structurally a link, otherwise
// returns it unchanged.
func resolveFieldValue(ev *Evaluator, v value.Value) (value.Value, error) {
	if link, ok := value.AsLink(v); ok {
		return ev.resolveLink(link)
	}
	return v, nil
}

// filterOp keeps only the ObjectList elements for which the predicate
// chain evaluates to Bool true. AbsorbingNone drops the element; any other
// non-Bool result is a type error.
func filterOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	list, ok := ctx.(*value.ObjectList)
	if !ok {
		return nil, typeErr("filter", pos, ctx, "object_list")
	}
	var kept []*value.SAO
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
			return nil, typeErr("filter", pos, result, "bool")
		}
		if bool(b) {
			kept = append(kept, o)
		}
	}
	return value.NewObjectList(kept), nil
}

// selectOp projects each chain's leading get_field name, keeping reserved
// identity fields automatically (value.SAO.Select already does this).
func selectOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	fields := make([]string, len(args))
	for i, a := range args {
		if len(a.Steps) == 0 || a.Steps[0].Op != "get_field" {
			return nil, typeErr("select", pos, ctx, "get_field chain")
		}
		lit, ok := a.Steps[0].Args[0].Steps[0].Lit.(value.String)
		if !ok {
			return nil, typeErr("select", pos, ctx, "get_field chain with literal field name")
		}
		fields[i] = string(lit)
	}
	switch c := ctx.(type) {
	case *value.SAO:
		return c.Select(fields), nil
	case *value.ObjectList:
		out := make([]*value.SAO, len(c.Items))
		for i, o := range c.Items {
			out[i] = o.Select(fields)
		}
		return value.NewObjectList(out), nil
	default:
		return nil, typeErr("select", pos, ctx, "sao", "object_list")
	}
}

func countOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	list, ok := ctx.(*value.ObjectList)
	if !ok {
		return nil, typeErr("count", pos, ctx, "object_list")
	}
	return value.Int(list.Len()), nil
}

func equalsOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	a, err := ev.evalArg(args[0], ctx)
	if err != nil {
		return nil, err
	}
	b, err := ev.evalArg(args[1], ctx)
	if err != nil {
		return nil, err
	}
	if value.IsAbsorbingNone(a) || value.IsAbsorbingNone(b) {
		return value.AbsorbingNone, nil
	}
	return value.Bool(value.Equal(a, b)), nil
}

func andOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	a, err := ev.evalArg(args[0], ctx)
	if err != nil {
		return nil, err
	}
	if value.IsAbsorbingNone(a) {
		return value.AbsorbingNone, nil
	}
	ab, ok := a.(value.Bool)
	if !ok {
		return nil, typeErr("and", pos, a, "bool")
	}
	if !bool(ab) {
		return value.Bool(false), nil
	}
	b, err := ev.evalArg(args[1], ctx)
	if err != nil {
		return nil, err
	}
	if value.IsAbsorbingNone(b) {
		return value.AbsorbingNone, nil
	}
	bb, ok := b.(value.Bool)
	if !ok {
		return nil, typeErr("and", pos, b, "bool")
	}
	return value.Bool(bb), nil
}

func orOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	a, err := ev.evalArg(args[0], ctx)
	if err != nil {
		return nil, err
	}
	if value.IsAbsorbingNone(a) {
		return value.AbsorbingNone, nil
	}
	ab, ok := a.(value.Bool)
	if !ok {
		return nil, typeErr("or", pos, a, "bool")
	}
	if bool(ab) {
		return value.Bool(true), nil
	}
	b, err := ev.evalArg(args[1], ctx)
	if err != nil {
		return nil, err
	}
	if value.IsAbsorbingNone(b) {
		return value.AbsorbingNone, nil
	}
	bb, ok := b.(value.Bool)
	if !ok {
		return nil, typeErr("or", pos, b, "bool")
	}
	return value.Bool(bb), nil
}

func notOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	a, err := ev.evalArg(args[0], ctx)
	if err != nil {
		return nil, err
	}
	if value.IsAbsorbingNone(a) {
		return value.AbsorbingNone, nil
	}
	ab, ok := a.(value.Bool)
	if !ok {
		return nil, typeErr("not", pos, a, "bool")
	}
	return value.Bool(!bool(ab)), nil
}

func containsOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	list, ok := ctx.(value.List)
	if !ok {
		return nil, typeErr("contains", pos, ctx, "list")
	}
	needle, err := ev.evalArg(args[0], ctx)
	if err != nil {
		return nil, err
	}
	if value.IsAbsorbingNone(needle) {
		return value.AbsorbingNone, nil
	}
	for _, v := range list {
		if value.Equal(v, needle) {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func regexMatchOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	s, ok := ctx.(value.String)
	if !ok {
		return nil, typeErr("regex_match", pos, ctx, "string")
	}
	patVal, err := ev.evalArg(args[0], ctx)
	if err != nil {
		return nil, err
	}
	if value.IsAbsorbingNone(patVal) {
		return value.AbsorbingNone, nil
	}
	pat, ok := patVal.(value.String)
	if !ok {
		return nil, typeErr("regex_match", pos, patVal, "string")
	}
	re, err := regexp.Compile(string(pat))
	if err != nil {
		return nil, errs.NewParseError(string(pat), pos, "invalid regex: %v", err)
	}
	return value.Bool(re.MatchString(string(s))), nil
}

func lowestOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	list, ok := ctx.(*value.ObjectList)
	if !ok {
		return nil, typeErr("lowest", pos, ctx, "object_list")
	}
	if len(list.Items) == 0 {
		return value.AbsorbingNone, nil
	}
	var best *value.SAO
	var bestKey value.Value
	for _, o := range list.Items {
		k, err := ev.Eval(args[0], o)
		if err != nil {
			return nil, err
		}
		if value.IsAbsorbingNone(k) {
			continue
		}
		if best == nil {
			best, bestKey = o, k
			continue
		}
		cmp, err := compareValues(bestKey, k)
		if err != nil {
			return nil, err
		}
		if cmp > 0 {
			best, bestKey = o, k
		}
	}
	if best == nil {
		return value.AbsorbingNone, nil
	}
	return best, nil
}

// groupBy evaluates keys against each element, returning one GroupKey per
// element, index-aligned with list.Items.
func groupBy(ev *Evaluator, list *value.ObjectList, keys *value.Chain) ([]value.GroupKey, error) {
	out := make([]value.GroupKey, len(list.Items))
	for i, o := range list.Items {
		k, err := ev.Eval(keys, o)
		if err != nil {
			return nil, err
		}
		out[i] = value.GroupKey{Parts: []value.Value{k}}
	}
	return out, nil
}

func groupedLowestOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	list, ok := ctx.(*value.ObjectList)
	if !ok {
		return nil, typeErr("grouped_lowest", pos, ctx, "object_list")
	}
	groupKeys, err := groupBy(ev, list, args[1])
	if err != nil {
		return nil, err
	}
	grouping := value.NewObjectGrouping()
	for i, o := range list.Items {
		grouping.Add(groupKeys[i], o)
	}
	out := value.NewObjectGrouping()
	for _, k := range grouping.Keys() {
		sub := grouping.Get(k)
		lowest, err := lowestOp(ev, sub, args[:1], pos)
		if err != nil {
			return nil, err
		}
		if value.IsAbsorbingNone(lowest) {
			continue
		}
		out.Set(k, value.NewObjectList([]*value.SAO{lowest.(*value.SAO)}))
	}
	return out, nil
}

func groupedFilterOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	list, ok := ctx.(*value.ObjectList)
	if !ok {
		return nil, typeErr("grouped_filter", pos, ctx, "object_list")
	}
	groupKeys, err := groupBy(ev, list, args[1])
	if err != nil {
		return nil, err
	}
	grouping := value.NewObjectGrouping()
	for i, o := range list.Items {
		grouping.Add(groupKeys[i], o)
	}
	var kept []*value.SAO
	for _, k := range grouping.Keys() {
		sub := grouping.Get(k)
		result, err := ev.Eval(args[0], sub)
		if err != nil {
			return nil, err
		}
		if value.IsAbsorbingNone(result) {
			continue
		}
		b, ok := result.(value.Bool)
		if !ok {
			return nil, typeErr("grouped_filter", pos, result, "bool")
		}
		if bool(b) {
			kept = append(kept, sub.Items...)
		}
	}
	return value.NewObjectList(kept), nil
}

func singleOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	switch c := ctx.(type) {
	case value.List:
		if len(c) == 0 {
			return value.AbsorbingNone, nil
		}
		first := c[0]
		for _, v := range c[1:] {
			if !value.Equal(first, v) {
				return nil, &errs.SingleDisagreementError{A: first.String(), B: v.String(), Pos: pos}
			}
		}
		return first, nil
	case *value.ObjectList:
		if len(c.Items) == 0 {
			return value.AbsorbingNone, nil
		}
		first := c.Items[0]
		for _, o := range c.Items[1:] {
			if first.String() != o.String() {
				return nil, &errs.SingleDisagreementError{A: first.String(), B: o.String(), Pos: pos}
			}
		}
		return first, nil
	default:
		return nil, typeErr("single", pos, ctx, "list", "object_list")
	}
}

func valueOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	switch c := ctx.(type) {
	case value.List:
		switch len(c) {
		case 0:
			return value.AbsorbingNone, nil
		case 1:
			return c[0], nil
		default:
			return nil, typeErr("value", pos, ctx, "one-element list")
		}
	case *value.ObjectList:
		switch len(c.Items) {
		case 0:
			return value.AbsorbingNone, nil
		case 1:
			return c.Items[0], nil
		default:
			return nil, typeErr("value", pos, ctx, "one-element object_list")
		}
	default:
		return nil, typeErr("value", pos, ctx, "list", "object_list")
	}
}

// indexOp implements the "[n]" postfix: bounds-checked, always a hard error
// out of range), negative n indexes from the end.
func indexOp(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error) {
	list, ok := ctx.(*value.ObjectList)
	if !ok {
		return nil, typeErr("index", pos, ctx, "object_list")
	}
	n, err := ev.evalArg(args[0], ctx)
	if err != nil {
		return nil, err
	}
	iv, ok := n.(value.Int)
	if !ok {
		return nil, typeErr("index", pos, n, "int")
	}
	idx := int(iv)
	if idx < 0 {
		idx += len(list.Items)
	}
	if idx < 0 || idx >= len(list.Items) {
		return nil, &errs.IndexOutOfRangeError{Index: int(iv), Len: len(list.Items), Pos: pos}
	}
	return list.Items[idx], nil
}
