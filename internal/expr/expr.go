// Package expr evaluates task guard expressions against a namespace.
//
// Guards are either literal booleans or small expressions over namespace
// variables ("x > 5", "env == 'prod' and count >= 3"). The grammar is a
// fixed set of literal, comparison, arithmetic and boolean forms with
// identifiers resolved strictly against the supplied Namespace. This is
// a security boundary: there are no function calls, no member access,
// and no way for a playbook author to reach arbitrary code.
package expr

import (
	"fmt"
	"math"

	"github.com/up-stack/up/internal/errors"
)

// Namespace maps variable names to values. It is owned by one processor
// for its lifetime and only read, never written, during evaluation.
type Namespace map[string]any

// Eval evaluates a guard. Booleans pass through unchanged; strings are
// parsed and evaluated against ns. Any other input type is rejected.
func Eval(input any, ns Namespace) (bool, error) {
	switch v := input.(type) {
	case bool:
		return v, nil
	case string:
		return evalString(v, ns)
	default:
		return false, errors.EvalInputType(input)
	}
}

// Check verifies that a guard is well-formed without evaluating it.
// Unbound names are not detected; they depend on the run's namespace.
func Check(input any) error {
	switch v := input.(type) {
	case bool:
		return nil
	case string:
		if _, err := parse(v); err != nil {
			return errors.EvalSyntax(v, err.Error())
		}
		return nil
	default:
		return errors.EvalInputType(input)
	}
}

func evalString(expression string, ns Namespace) (bool, error) {
	root, err := parse(expression)
	if err != nil {
		return false, errors.EvalSyntax(expression, err.Error())
	}

	ev := &evaluator{expr: expression, ns: ns}
	result, err := ev.eval(root)
	if err != nil {
		return false, err
	}

	b, ok := result.(bool)
	if !ok {
		return false, errors.EvalTypeMismatch(expression,
			fmt.Sprintf("guard evaluates to %s, not bool", typeName(result)))
	}
	return b, nil
}

// evaluator walks a parsed guard tree. Values are normalized to int64,
// float64, string, or bool.
type evaluator struct {
	expr string
	ns   Namespace
}

func (e *evaluator) eval(n node) (any, error) {
	switch n := n.(type) {
	case *litNode:
		return n.value, nil

	case *identNode:
		raw, ok := e.ns[n.name]
		if !ok {
			return nil, errors.EvalUnboundName(e.expr, n.name)
		}
		return e.normalize(n.name, raw)

	case *unaryNode:
		return e.evalUnary(n)

	case *binaryNode:
		return e.evalBinary(n)

	default:
		return nil, errors.EvalSyntax(e.expr, fmt.Sprintf("unknown node %T", n))
	}
}

func (e *evaluator) evalUnary(n *unaryNode) (any, error) {
	child, err := e.eval(n.child)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case tokNot:
		b, ok := child.(bool)
		if !ok {
			return nil, errors.EvalTypeMismatch(e.expr,
				fmt.Sprintf("not requires bool, got %s", typeName(child)))
		}
		return !b, nil

	case tokMinus:
		switch v := child.(type) {
		case int64:
			return -v, nil
		case float64:
			return -v, nil
		}
		return nil, errors.EvalTypeMismatch(e.expr,
			fmt.Sprintf("unary minus requires a number, got %s", typeName(child)))
	}
	return nil, errors.EvalSyntax(e.expr, "unknown unary operator")
}

func (e *evaluator) evalBinary(n *binaryNode) (any, error) {
	// Boolean operators short-circuit like the source language they
	// imitate; the right side is not evaluated when the left decides.
	if n.op == tokAnd || n.op == tokOr {
		left, err := e.eval(n.left)
		if err != nil {
			return nil, err
		}
		lb, ok := left.(bool)
		if !ok {
			return nil, errors.EvalTypeMismatch(e.expr,
				fmt.Sprintf("boolean operator requires bool operands, got %s", typeName(left)))
		}
		if n.op == tokAnd && !lb {
			return false, nil
		}
		if n.op == tokOr && lb {
			return true, nil
		}
		right, err := e.eval(n.right)
		if err != nil {
			return nil, err
		}
		rb, ok := right.(bool)
		if !ok {
			return nil, errors.EvalTypeMismatch(e.expr,
				fmt.Sprintf("boolean operator requires bool operands, got %s", typeName(right)))
		}
		return rb, nil
	}

	left, err := e.eval(n.left)
	if err != nil {
		return nil, err
	}
	right, err := e.eval(n.right)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case tokEq, tokNe, tokLt, tokLe, tokGt, tokGe:
		return e.compare(n.op, left, right)
	case tokPlus, tokMinus, tokStar, tokSlash, tokPct:
		return e.arith(n.op, left, right)
	}
	return nil, errors.EvalSyntax(e.expr, "unknown binary operator")
}

func (e *evaluator) compare(op tokenKind, left, right any) (any, error) {
	// Numbers compare across int/float; strings compare
	// lexicographically; bools support only equality.
	if ln, lok := asFloat(left); lok {
		rn, rok := asFloat(right)
		if !rok {
			return nil, errors.EvalTypeMismatch(e.expr,
				fmt.Sprintf("cannot compare number with %s", typeName(right)))
		}
		return compareOrdered(op, ln, rn), nil
	}

	if ls, ok := left.(string); ok {
		rs, rok := right.(string)
		if !rok {
			return nil, errors.EvalTypeMismatch(e.expr,
				fmt.Sprintf("cannot compare string with %s", typeName(right)))
		}
		return compareOrdered(op, ls, rs), nil
	}

	if lb, ok := left.(bool); ok {
		rb, rok := right.(bool)
		if !rok {
			return nil, errors.EvalTypeMismatch(e.expr,
				fmt.Sprintf("cannot compare bool with %s", typeName(right)))
		}
		switch op {
		case tokEq:
			return lb == rb, nil
		case tokNe:
			return lb != rb, nil
		}
		return nil, errors.EvalTypeMismatch(e.expr, "bools support only == and !=")
	}

	return nil, errors.EvalTypeMismatch(e.expr,
		fmt.Sprintf("cannot compare %s values", typeName(left)))
}

func compareOrdered[T int64 | float64 | string](op tokenKind, a, b T) bool {
	switch op {
	case tokEq:
		return a == b
	case tokNe:
		return a != b
	case tokLt:
		return a < b
	case tokLe:
		return a <= b
	case tokGt:
		return a > b
	case tokGe:
		return a >= b
	}
	return false
}

func (e *evaluator) arith(op tokenKind, left, right any) (any, error) {
	// String concatenation is the one non-numeric arithmetic form.
	if ls, ok := left.(string); ok && op == tokPlus {
		rs, rok := right.(string)
		if !rok {
			return nil, errors.EvalTypeMismatch(e.expr,
				fmt.Sprintf("cannot add string and %s", typeName(right)))
		}
		return ls + rs, nil
	}

	li, lInt := left.(int64)
	ri, rInt := right.(int64)
	if lInt && rInt {
		switch op {
		case tokPlus:
			return li + ri, nil
		case tokMinus:
			return li - ri, nil
		case tokStar:
			return li * ri, nil
		case tokSlash:
			if ri == 0 {
				return nil, errors.EvalTypeMismatch(e.expr, "division by zero")
			}
			return float64(li) / float64(ri), nil
		case tokPct:
			if ri == 0 {
				return nil, errors.EvalTypeMismatch(e.expr, "modulo by zero")
			}
			return li % ri, nil
		}
	}

	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, errors.EvalTypeMismatch(e.expr,
			fmt.Sprintf("arithmetic requires numbers, got %s and %s", typeName(left), typeName(right)))
	}

	switch op {
	case tokPlus:
		return lf + rf, nil
	case tokMinus:
		return lf - rf, nil
	case tokStar:
		return lf * rf, nil
	case tokSlash:
		if rf == 0 {
			return nil, errors.EvalTypeMismatch(e.expr, "division by zero")
		}
		return lf / rf, nil
	case tokPct:
		if rf == 0 {
			return nil, errors.EvalTypeMismatch(e.expr, "modulo by zero")
		}
		return math.Mod(lf, rf), nil
	}
	return nil, errors.EvalSyntax(e.expr, "unknown arithmetic operator")
}

// normalize converts a namespace value into one of the evaluator's
// value types.
func (e *evaluator) normalize(name string, raw any) (any, error) {
	switch v := raw.(type) {
	case bool, string, int64, float64:
		return v, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float32:
		return float64(v), nil
	default:
		return nil, errors.EvalTypeMismatch(e.expr,
			fmt.Sprintf("variable %q has unsupported type %T", name, raw))
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func typeName(v any) string {
	switch v.(type) {
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	default:
		return fmt.Sprintf("%T", v)
	}
}
