// Package starlark runs pattern rules written in Starlark.
//
// A pattern script defines check(program, options) and returns a list of
// values built with match(line, text, severity=""). The program argument is a
// read-only struct:
//
//	program.name        string
//	program.tests       bool, true when the program declares +tests
//	program.metas       list of struct(line, head, tail, parts)
//	program.comments    list of struct(line, text)
//	program.objects     list of struct(name, base, line, pos, children)
//	program.root        struct(name, attrs, text, children), the raw tree
//
// options is a dict of the rule options from configuration.
package starlark

import (
	"fmt"
	"maps"
	"slices"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/leapstack-labs/xmirlint/pkg/xmir"
)

// ProgramToStarlark converts a parsed program to the struct scripts see.
func ProgramToStarlark(p *xmir.Program) starlark.Value {
	metas := make([]starlark.Value, 0, len(p.Metas()))
	for _, m := range p.Metas() {
		metas = append(metas, starlarkstruct.FromStringDict(starlark.String("meta"), starlark.StringDict{
			"line":  starlark.MakeInt(m.Line),
			"head":  starlark.String(m.Head),
			"tail":  starlark.String(m.Tail),
			"parts": stringList(m.Parts),
		}))
	}

	comments := make([]starlark.Value, 0, len(p.Comments()))
	for _, c := range p.Comments() {
		comments = append(comments, starlarkstruct.FromStringDict(starlark.String("comment"), starlark.StringDict{
			"line": starlark.MakeInt(c.Line),
			"text": starlark.String(c.Text),
		}))
	}

	return starlarkstruct.FromStringDict(starlark.String("program"), starlark.StringDict{
		"name":     starlark.String(p.Name()),
		"tests":    starlark.Bool(p.IsTests()),
		"metas":    starlark.NewList(metas),
		"comments": starlark.NewList(comments),
		"objects":  objectList(p.Objects()),
		"root":     nodeToStarlark(p.Root()),
	})
}

func objectList(objects []*xmir.Object) *starlark.List {
	out := make([]starlark.Value, len(objects))
	for i, o := range objects {
		out[i] = starlarkstruct.FromStringDict(starlark.String("object"), starlark.StringDict{
			"name":     starlark.String(o.Name),
			"base":     starlark.String(o.Base),
			"line":     starlark.MakeInt(o.Line),
			"pos":      starlark.MakeInt(o.Pos),
			"children": objectList(o.Children),
		})
	}
	return starlark.NewList(out)
}

func nodeToStarlark(n *xmir.Node) starlark.Value {
	if n == nil {
		return starlark.None
	}
	attrs := starlark.NewDict(len(n.Attrs))
	for _, k := range slices.Sorted(maps.Keys(n.Attrs)) {
		_ = attrs.SetKey(starlark.String(k), starlark.String(n.Attrs[k]))
	}
	children := make([]starlark.Value, len(n.Children))
	for i, c := range n.Children {
		children[i] = nodeToStarlark(c)
	}
	return starlarkstruct.FromStringDict(starlark.String("node"), starlark.StringDict{
		"name":     starlark.String(n.Name),
		"attrs":    attrs,
		"text":     starlark.String(n.Text),
		"children": starlark.NewList(children),
	})
}

func stringList(ss []string) *starlark.List {
	list := make([]starlark.Value, len(ss))
	for i, s := range ss {
		list[i] = starlark.String(s)
	}
	return starlark.NewList(list)
}

// GoToStarlark converts a Go value to a Starlark value.
// Supported types: string, int, int64, uint64, float64, bool, []string, []any,
// map[string]any and map[string]string.
func GoToStarlark(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case string:
		return starlark.String(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case uint64:
		return starlark.MakeUint64(val), nil
	case float64:
		return starlark.Float(val), nil
	case bool:
		return starlark.Bool(val), nil
	case []string:
		return stringList(val), nil
	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := GoToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil
	case map[string]string:
		dict := starlark.NewDict(len(val))
		for k, s := range val {
			if err := dict.SetKey(starlark.String(k), starlark.String(s)); err != nil {
				return nil, fmt.Errorf("dict setkey %q: %w", k, err)
			}
		}
		return dict, nil
	case map[string]any:
		dict := starlark.NewDict(len(val))
		for k, item := range val {
			sv, err := GoToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", k, err)
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("dict setkey %q: %w", k, err)
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ToGo converts a Starlark value back to a Go value.
// Returns: string, int64, float64, bool, []any, map[string]any, or nil.
// Other values are returned as their string representation.
func ToGo(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return string(val), nil
	case starlark.Int:
		i64, ok := val.Int64()
		if !ok {
			return val.String(), nil
		}
		return i64, nil
	case starlark.Float:
		return float64(val), nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Indexable:
		result := make([]any, val.Len())
		for i := range val.Len() {
			gv, err := ToGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			result[i] = gv
		}
		return result, nil
	case *starlark.Dict:
		result := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %s", item[0].Type())
			}
			gv, err := ToGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", key, err)
			}
			result[string(key)] = gv
		}
		return result, nil
	case *starlarkstruct.Struct:
		d := make(starlark.StringDict)
		val.ToStringDict(d)
		result := make(map[string]any, len(d))
		for k, item := range d {
			gv, err := ToGo(item)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			result[k] = gv
		}
		return result, nil
	default:
		return val.String(), nil
	}
}
