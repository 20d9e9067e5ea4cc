package runtime

import (
	"strconv"
	"sync/atomic"

	"github.com/microsoft/schemy/lang"
)

// InstallPrimitives defines the mandatory built-in set (spec.md §4.4) in
// env: arithmetic, comparisons, identity/equality, type predicates, list
// construction and access, assert/not/apply, and the null constant. load
// and other accessor-mediated primitives are wired separately by the
// Interpreter constructor, which alone holds the Accessor and the full
// read-expand-eval pipeline load needs (see SPEC_FULL.md).
func InstallPrimitives(env *lang.Env) {
	define := func(name string, arity int, fn func(inv lang.Invoker, args []lang.Value) (lang.Value, error)) {
		wrapped := fn
		if arity >= 0 {
			wrapped = func(inv lang.Invoker, args []lang.Value) (lang.Value, error) {
				if len(args) != arity {
					return lang.Value{}, lang.Errorf(lang.ArityError, "%s: expected %d arguments, got %d", name, arity, len(args))
				}
				return fn(inv, args)
			}
		}
		env.Define(lang.Intern(name), lang.Native(&lang.NativeProcedure{Name: name, Arity: arity, Fn: wrapped}))
	}

	define("+", -1, primAdd)
	define("-", -1, primSub)
	define("*", -1, primMul)
	define("/", -1, primDiv)

	define("=", 2, numCompare(func(a, b float64) bool { return a == b }))
	define("<", 2, numCompare(func(a, b float64) bool { return a < b }))
	define("<=", 2, numCompare(func(a, b float64) bool { return a <= b }))
	define(">", 2, numCompare(func(a, b float64) bool { return a > b }))
	define(">=", 2, numCompare(func(a, b float64) bool { return a >= b }))

	define("eq?", 2, primEq)
	define("equal?", 2, primEqual)

	define("boolean?", 1, typePredicate(lang.TypeBool))
	define("num?", 1, primNumP)
	define("string?", 1, typePredicate(lang.TypeString))
	define("symbol?", 1, typePredicate(lang.TypeSymbol))
	define("list?", 1, typePredicate(lang.TypeList))
	define("null?", 1, primNullP)

	define("list", -1, primList)
	define("cons", 2, primCons)
	define("append", 2, primAppend)
	define("car", 1, primCar)
	define("cdr", 1, primCdr)
	define("list-ref", 2, primListRef)
	define("length", 1, primLength)
	define("reverse", 1, primReverse)
	define("map", -1, primMap)
	define("range", -1, primRange)

	define("assert", -1, primAssert)
	define("not", 1, primNot)
	define("apply", -1, primApply)

	define("gensym", -1, primGensym)

	env.Define(lang.Intern("null"), lang.EmptyList)
}

func requireList(name string, v lang.Value) ([]lang.Value, error) {
	if v.Type != lang.TypeList {
		return nil, lang.Errorf(lang.TypeError, "%s: expected a list, got %s", name, v.Type)
	}
	return v.Elems(), nil
}

func requireNumber(name string, v lang.Value) error {
	if !v.IsNumber() {
		return lang.Errorf(lang.TypeError, "%s: expected a number, got %s", name, v.Type)
	}
	return nil
}

// arithFold implements the variadic left-fold arithmetic contract from
// spec.md §4.3: all-integer operands stay integer, any float operand
// widens the whole computation to float, and at least one operand is
// required.
func arithFold(name string, args []lang.Value, identity int64, intOp func(a, b int64) (int64, error), floatOp func(a, b float64) float64) (lang.Value, error) {
	if len(args) == 0 {
		return lang.Value{}, lang.Errorf(lang.ArityError, "%s: expected at least 1 argument", name)
	}
	for _, a := range args {
		if err := requireNumber(name, a); err != nil {
			return lang.Value{}, err
		}
	}

	allInt := true
	for _, a := range args {
		if a.Type != lang.TypeInt {
			allInt = false
			break
		}
	}

	if allInt {
		if len(args) == 1 {
			r, err := intOp(identity, args[0].Int())
			if err != nil {
				return lang.Value{}, err
			}
			return lang.Int(r), nil
		}
		acc := args[0].Int()
		for _, a := range args[1:] {
			var err error
			acc, err = intOp(acc, a.Int())
			if err != nil {
				return lang.Value{}, err
			}
		}
		return lang.Int(acc), nil
	}

	if len(args) == 1 {
		return lang.Real(floatOp(float64(identity), args[0].AsFloat())), nil
	}
	acc := args[0].AsFloat()
	for _, a := range args[1:] {
		acc = floatOp(acc, a.AsFloat())
	}
	return lang.Real(acc), nil
}

func primAdd(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	return arithFold("+", args, 0,
		func(a, b int64) (int64, error) { return a + b, nil },
		func(a, b float64) float64 { return a + b })
}

func primMul(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	return arithFold("*", args, 1,
		func(a, b int64) (int64, error) { return a * b, nil },
		func(a, b float64) float64 { return a * b })
}

func primSub(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	if len(args) == 1 {
		// Unary minus negates rather than folding against 0-arg identity.
		if err := requireNumber("-", args[0]); err != nil {
			return lang.Value{}, err
		}
		if args[0].Type == lang.TypeInt {
			return lang.Int(-args[0].Int()), nil
		}
		return lang.Real(-args[0].Real()), nil
	}
	return arithFold("-", args, 0,
		func(a, b int64) (int64, error) { return a - b, nil },
		func(a, b float64) float64 { return a - b })
}

func primDiv(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	if len(args) == 1 {
		if err := requireNumber("/", args[0]); err != nil {
			return lang.Value{}, err
		}
		if args[0].Type == lang.TypeInt {
			if args[0].Int() == 0 {
				return lang.Value{}, lang.NewError(lang.TypeError, "/: division by zero")
			}
			return lang.Int(1 / args[0].Int()), nil
		}
		return lang.Real(1 / args[0].Real()), nil
	}
	return arithFold("/", args, 1,
		func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, lang.NewError(lang.TypeError, "/: division by zero")
			}
			return a / b, nil // Go's int64 division truncates toward zero.
		},
		func(a, b float64) float64 { return a / b })
}

func numCompare(cmp func(a, b float64) bool) func(lang.Invoker, []lang.Value) (lang.Value, error) {
	return func(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
		if err := requireNumber("comparison", args[0]); err != nil {
			return lang.Value{}, err
		}
		if err := requireNumber("comparison", args[1]); err != nil {
			return lang.Value{}, err
		}
		return lang.Bool(cmp(args[0].AsFloat(), args[1].AsFloat())), nil
	}
}

func primEq(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	return lang.Bool(lang.Identical(args[0], args[1])), nil
}

func primEqual(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	return lang.Bool(lang.Equal(args[0], args[1])), nil
}

func typePredicate(t lang.ValueType) func(lang.Invoker, []lang.Value) (lang.Value, error) {
	return func(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
		return lang.Bool(args[0].Type == t), nil
	}
}

func primNumP(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	return lang.Bool(args[0].IsNumber()), nil
}

func primNullP(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	return lang.Bool(args[0].IsNull()), nil
}

func primList(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	return lang.List(args...), nil
}

func primCons(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	tail, err := requireList("cons", args[1])
	if err != nil {
		return lang.Value{}, err
	}
	out := make([]lang.Value, 0, len(tail)+1)
	out = append(out, args[0])
	out = append(out, tail...)
	return lang.ListFromSlice(out), nil
}

func primAppend(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	a, err := requireList("append", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	b, err := requireList("append", args[1])
	if err != nil {
		return lang.Value{}, err
	}
	out := make([]lang.Value, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return lang.ListFromSlice(out), nil
}

func primCar(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	elems, err := requireList("car", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	if len(elems) == 0 {
		return lang.Value{}, lang.NewError(lang.TypeError, "car: empty list")
	}
	return elems[0], nil
}

func primCdr(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	elems, err := requireList("cdr", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	if len(elems) == 0 {
		return lang.Value{}, lang.NewError(lang.TypeError, "cdr: empty list")
	}
	return lang.List(elems[1:]...), nil
}

func primListRef(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	elems, err := requireList("list-ref", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	if args[1].Type != lang.TypeInt {
		return lang.Value{}, lang.NewError(lang.TypeError, "list-ref: index must be an integer")
	}
	idx := args[1].Int()
	if idx < 0 || idx >= int64(len(elems)) {
		return lang.Value{}, lang.Errorf(lang.TypeError, "list-ref: index %d out of range", idx)
	}
	return elems[idx], nil
}

func primLength(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	elems, err := requireList("length", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	return lang.Int(int64(len(elems))), nil
}

func primReverse(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	elems, err := requireList("reverse", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	out := make([]lang.Value, len(elems))
	for i, e := range elems {
		out[len(elems)-1-i] = e
	}
	return lang.ListFromSlice(out), nil
}

func primMap(inv lang.Invoker, args []lang.Value) (lang.Value, error) {
	if len(args) < 2 {
		return lang.Value{}, lang.Errorf(lang.ArityError, "map: expected a procedure and at least 1 list, got %d arguments", len(args))
	}
	proc := args[0]
	if !proc.IsCallable() {
		return lang.Value{}, lang.NewError(lang.TypeError, "map: first argument must be a procedure")
	}
	lists := make([][]lang.Value, len(args)-1)
	shortest := -1
	for i, l := range args[1:] {
		elems, err := requireList("map", l)
		if err != nil {
			return lang.Value{}, err
		}
		lists[i] = elems
		if shortest == -1 || len(elems) < shortest {
			shortest = len(elems)
		}
	}
	out := make([]lang.Value, shortest)
	for i := 0; i < shortest; i++ {
		callArgs := make([]lang.Value, len(lists))
		for j, l := range lists {
			callArgs[j] = l[i]
		}
		v, err := inv.Apply(proc, callArgs)
		if err != nil {
			return lang.Value{}, err
		}
		out[i] = v
	}
	return lang.ListFromSlice(out), nil
}

func primRange(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	var start, stop, step int64
	switch len(args) {
	case 1:
		start, stop, step = 0, args[0].Int(), 1
	case 2:
		start, stop, step = args[0].Int(), args[1].Int(), 1
	case 3:
		start, stop, step = args[0].Int(), args[1].Int(), args[2].Int()
	default:
		return lang.Value{}, lang.Errorf(lang.ArityError, "range: expected 1 to 3 arguments, got %d", len(args))
	}
	for _, a := range args {
		if a.Type != lang.TypeInt {
			return lang.Value{}, lang.NewError(lang.TypeError, "range: arguments must be integers")
		}
	}
	if step == 0 {
		return lang.Value{}, lang.NewError(lang.TypeError, "range: step must be non-zero")
	}
	if (step > 0 && start >= stop) || (step < 0 && start <= stop) {
		return lang.EmptyList, nil
	}
	var out []lang.Value
	if step > 0 {
		for v := start; v < stop; v += step {
			out = append(out, lang.Int(v))
		}
	} else {
		for v := start; v > stop; v += step {
			out = append(out, lang.Int(v))
		}
	}
	return lang.ListFromSlice(out), nil
}

func primAssert(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return lang.Value{}, lang.Errorf(lang.ArityError, "assert: expected 1 or 2 arguments, got %d", len(args))
	}
	if args[0].Truthy() {
		return lang.Unit, nil
	}
	msg := "assertion failed"
	if len(args) == 2 {
		msg = args[1].String()
	}
	return lang.Value{}, lang.NewError(lang.AssertionFailed, msg).WithExpr(args[0])
}

func primNot(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	if args[0].Type != lang.TypeBool {
		return lang.Value{}, lang.NewError(lang.TypeError, "not: expected a boolean")
	}
	return lang.Bool(!args[0].Bool()), nil
}

func primApply(inv lang.Invoker, args []lang.Value) (lang.Value, error) {
	if len(args) < 2 {
		return lang.Value{}, lang.Errorf(lang.ArityError, "apply: expected a procedure and an argument list, got %d arguments", len(args))
	}
	proc := args[0]
	if !proc.IsCallable() {
		return lang.Value{}, lang.NewError(lang.TypeError, "apply: first argument must be a procedure")
	}
	tail, err := requireList("apply", args[len(args)-1])
	if err != nil {
		return lang.Value{}, err
	}
	callArgs := make([]lang.Value, 0, len(args)-2+len(tail))
	callArgs = append(callArgs, args[1:len(args)-1]...)
	callArgs = append(callArgs, tail...)
	return inv.Apply(proc, callArgs)
}

var gensymCounter int64

func primGensym(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
	prefix := "g"
	if len(args) == 1 && args[0].Type == lang.TypeString {
		prefix = args[0].Str()
	}
	n := atomic.AddInt64(&gensymCounter, 1)
	return lang.Sym(lang.Intern(prefix + "$" + strconv.FormatInt(n, 10))), nil
}
