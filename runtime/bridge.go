package runtime

import (
	"reflect"

	"github.com/microsoft/schemy/lang"
)

// Lift wraps a statically-typed host function of N parameters into a
// NativeProcedure (spec.md §4.4's "typed adapter"). fn's parameters may be
// int64, float64, string, bool, or lang.Value; its result may be a single
// value of one of those types, optionally followed by an error. Lift
// panics if fn is not a func, is variadic, does not return one or two
// values, or has a second result that is not an error — it is meant to be
// called during host extension setup, not at request time. Parameter and
// result types are not checked here: an unsupported type surfaces as a
// TypeError when the procedure is called.
//
// Argument coercion widens an Integer argument to a float64 parameter; any
// other mismatch, including a Float argument for an int64 parameter, fails
// with a TypeError.
func Lift(name string, fn any) *lang.NativeProcedure {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		panic("runtime.Lift: fn must be a function")
	}
	if ft.IsVariadic() {
		panic("runtime.Lift: variadic host functions are not supported")
	}
	numOut := ft.NumOut()
	if numOut < 1 || numOut > 2 {
		panic("runtime.Lift: fn must return (result) or (result, error)")
	}
	returnsErr := numOut == 2
	if returnsErr && !ft.Out(1).Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		panic("runtime.Lift: second return value must be error")
	}

	arity := ft.NumIn()
	return &lang.NativeProcedure{
		Name:  name,
		Arity: arity,
		Fn: func(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
			if len(args) != arity {
				return lang.Value{}, lang.Errorf(lang.ArityError, "%s: expected %d arguments, got %d", name, arity, len(args))
			}
			in := make([]reflect.Value, arity)
			for i := 0; i < arity; i++ {
				coerced, err := coerceArg(name, i, args[i], ft.In(i))
				if err != nil {
					return lang.Value{}, err
				}
				in[i] = coerced
			}
			out := fv.Call(in)
			if returnsErr {
				if errVal := out[1].Interface(); errVal != nil {
					return lang.Value{}, errVal.(error)
				}
			}
			return goToValue(out[0])
		},
	}
}

var (
	valueType = reflect.TypeOf(lang.Value{})
)

func coerceArg(name string, index int, v lang.Value, want reflect.Type) (reflect.Value, error) {
	if want == valueType {
		return reflect.ValueOf(v), nil
	}
	switch want.Kind() {
	case reflect.Int64:
		if v.Type == lang.TypeInt {
			return reflect.ValueOf(v.Int()), nil
		}
	case reflect.Float64:
		if v.IsNumber() {
			return reflect.ValueOf(v.AsFloat()), nil
		}
	case reflect.String:
		if v.Type == lang.TypeString {
			return reflect.ValueOf(v.Str()), nil
		}
	case reflect.Bool:
		if v.Type == lang.TypeBool {
			return reflect.ValueOf(v.Bool()), nil
		}
	}
	return reflect.Value{}, lang.Errorf(lang.TypeError, "%s: argument %d: expected %s, got %s", name, index+1, want, v.Type)
}

func goToValue(rv reflect.Value) (lang.Value, error) {
	switch rv.Type() {
	case valueType:
		return rv.Interface().(lang.Value), nil
	}
	switch rv.Kind() {
	case reflect.Int64, reflect.Int, reflect.Int32:
		return lang.Int(rv.Int()), nil
	case reflect.Float64, reflect.Float32:
		return lang.Real(rv.Float()), nil
	case reflect.String:
		return lang.Str(rv.String()), nil
	case reflect.Bool:
		return lang.Bool(rv.Bool()), nil
	default:
		return lang.Value{}, lang.Errorf(lang.TypeError, "unsupported host return type: %s", rv.Type())
	}
}
