package policy

import (
	"fmt"
	"strings"
)

// Binding names injected into every evaluation. Nothing else is reachable
// from a condition.
const (
	bindingUser        = "user"
	bindingResource    = "resource"
	bindingEnvironment = "environment"
)

// Input carries the three evaluation bindings. Nil maps behave as empty
// objects: reading a missing leaf yields null, traversing through one fails.
type Input struct {
	User        map[string]any
	Resource    map[string]any
	Environment map[string]any
}

// Expr is a compiled condition.
type Expr struct {
	root   node
	source string
}

// Source returns the original condition text.
func (e Expr) Source() string {
	return e.source
}

// Eval runs the compiled condition against the input. The result must be a
// boolean; anything else is an evaluation error.
func (e Expr) Eval(in Input) (bool, error) {
	if e.root == nil {
		return false, fmt.Errorf("expression not compiled")
	}
	v, err := e.root.eval(in)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("condition result is %T, want bool", v)
	}
	return b, nil
}

func (n literalNode) eval(Input) (any, error) {
	return n.value, nil
}

func (n listNode) eval(in Input) (any, error) {
	items := make([]any, len(n.items))
	for i, item := range n.items {
		v, err := item.eval(in)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return items, nil
}

// eval resolves a dotted path. A missing leaf resolves to null so equality
// against null works; descending through a missing or non-object field is an
// error, mirroring how the evaluator fails closed on malformed conditions.
func (n pathNode) eval(in Input) (any, error) {
	var current any
	switch n.segments[0] {
	case bindingUser:
		current = normalizeBinding(in.User)
	case bindingResource:
		current = normalizeBinding(in.Resource)
	case bindingEnvironment:
		current = normalizeBinding(in.Environment)
	default:
		return nil, fmt.Errorf("unknown binding %q", n.segments[0])
	}

	for i, seg := range n.segments[1:] {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("cannot read %q of %s", seg, strings.Join(n.segments[:i+1], "."))
		}
		current = obj[seg]
	}
	return current, nil
}

func normalizeBinding(m map[string]any) any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func (n unaryNode) eval(in Input) (any, error) {
	v, err := n.x.eval(in)
	if err != nil {
		return nil, err
	}
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("operand of ! is %T, want bool", v)
	}
	return !b, nil
}

func (n binaryNode) eval(in Input) (any, error) {
	// Short-circuit the connectives before evaluating the right side.
	if n.op == "&&" || n.op == "||" {
		lv, err := n.left.eval(in)
		if err != nil {
			return nil, err
		}
		lb, ok := lv.(bool)
		if !ok {
			return nil, fmt.Errorf("operand of %s is %T, want bool", n.op, lv)
		}
		if n.op == "&&" && !lb {
			return false, nil
		}
		if n.op == "||" && lb {
			return true, nil
		}
		rv, err := n.right.eval(in)
		if err != nil {
			return nil, err
		}
		rb, ok := rv.(bool)
		if !ok {
			return nil, fmt.Errorf("operand of %s is %T, want bool", n.op, rv)
		}
		return rb, nil
	}

	lv, err := n.left.eval(in)
	if err != nil {
		return nil, err
	}
	rv, err := n.right.eval(in)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "==":
		return looseEqual(lv, rv), nil
	case "!=":
		return !looseEqual(lv, rv), nil
	case "<", "<=", ">", ">=":
		return compareOrdered(n.op, lv, rv)
	case "in":
		return membership(lv, rv)
	default:
		return nil, fmt.Errorf("unknown operator %q", n.op)
	}
}

// looseEqual compares scalars, normalizing numeric types to float64 so JSON
// payloads and literal numbers compare cleanly.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, aok := asFloat(a); aok {
		if fb, bok := asFloat(b); bok {
			return fa == fb
		}
		return false
	}
	return a == b
}

func compareOrdered(op string, a, b any) (any, error) {
	if fa, aok := asFloat(a); aok {
		fb, bok := asFloat(b)
		if !bok {
			return nil, fmt.Errorf("cannot compare number with %T", b)
		}
		switch op {
		case "<":
			return fa < fb, nil
		case "<=":
			return fa <= fb, nil
		case ">":
			return fa > fb, nil
		default:
			return fa >= fb, nil
		}
	}
	sa, aok := a.(string)
	sb, bok := b.(string)
	if aok && bok {
		switch op {
		case "<":
			return sa < sb, nil
		case "<=":
			return sa <= sb, nil
		case ">":
			return sa > sb, nil
		default:
			return sa >= sb, nil
		}
	}
	return nil, fmt.Errorf("cannot order %T and %T", a, b)
}

func membership(needle, haystack any) (any, error) {
	switch hs := haystack.(type) {
	case []any:
		for _, item := range hs {
			if looseEqual(needle, item) {
				return true, nil
			}
		}
		return false, nil
	case []string:
		for _, item := range hs {
			if looseEqual(needle, item) {
				return true, nil
			}
		}
		return false, nil
	default:
		// 'in' is list membership only. A string right-hand side is an eval
		// error rather than substring containment, which would silently widen
		// matches ('tax' in 'taxation').
		return nil, fmt.Errorf("right side of 'in' is %T, want list", haystack)
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
