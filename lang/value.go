// Package lang implements the runtime value model, lexical environments,
// the syntactic expander and the trampolined evaluator for the schemy
// interpreter core.
package lang

import (
	"fmt"
	"math"
	"strings"
)

// ValueType enumerates the runtime value categories.
type ValueType int

const (
	TypeBool ValueType = iota
	TypeInt
	TypeReal
	TypeString
	TypeSymbol
	TypeList
	TypeProcedure
	TypeNative
	TypeUnit
	TypeEOF
)

func (t ValueType) String() string {
	switch t {
	case TypeBool:
		return "boolean"
	case TypeInt:
		return "integer"
	case TypeReal:
		return "float"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeList:
		return "list"
	case TypeProcedure:
		return "procedure"
	case TypeNative:
		return "native-procedure"
	case TypeUnit:
		return "unit"
	case TypeEOF:
		return "eof"
	default:
		return "unknown"
	}
}

// Value is the polymorphic runtime value. Lists are backed by a Go slice
// (an ordered sequence of Values) rather than a chain of cons cells: see
// SPEC_FULL.md Design Decision D1.
type Value struct {
	Type ValueType

	boolean bool
	integer int64
	real    float64
	str     string
	sym     *Symbol
	list    []Value
	proc    *Procedure
	native  *NativeProcedure
}

// Procedure is a script-defined closure.
type Procedure struct {
	// Params holds the fixed positional parameter names. Variadic is set
	// when the parameter shape is a single symbol instead of a list; in
	// that case Params is empty and Variadic names the collector symbol.
	Params   []*Symbol
	Variadic *Symbol
	Body     Value
	Env      *Env
	Name     string // optional label; the evaluator leaves it empty and the printer does not use it
}

// NativeProcedure is a host-provided callable.
type NativeProcedure struct {
	Name  string
	Arity int // -1 means variadic
	Fn    func(inv Invoker, args []Value) (Value, error)
}

// Invoker is the subset of the evaluator surface a native procedure needs
// to call back into script code (used by apply and map).
type Invoker interface {
	Apply(proc Value, args []Value) (Value, error)
	Global() *Env
}

var (
	// Unit is the sentinel returned by side-effecting forms.
	Unit = Value{Type: TypeUnit}
	// EOF is the sentinel the reader returns at end of input.
	EOF = Value{Type: TypeEOF}
	// EmptyList is the canonical empty list, distinct from Unit.
	EmptyList = Value{Type: TypeList, list: nil}
)

func Bool(b bool) Value { return Value{Type: TypeBool, boolean: b} }
func Int(i int64) Value { return Value{Type: TypeInt, integer: i} }
func Real(f float64) Value { return Value{Type: TypeReal, real: f} }
func Str(s string) Value { return Value{Type: TypeString, str: s} }
func Sym(s *Symbol) Value { return Value{Type: TypeSymbol, sym: s} }
func Native(n *NativeProcedure) Value { return Value{Type: TypeNative, native: n} }
func Proc(p *Procedure) Value { return Value{Type: TypeProcedure, proc: p} }

// List constructs a list value from the given elements, copying them so
// the caller may reuse its backing array.
func List(elems ...Value) Value {
	if len(elems) == 0 {
		return EmptyList
	}
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{Type: TypeList, list: cp}
}

// ListFromSlice takes ownership of elems without copying; callers must not
// mutate elems afterward.
func ListFromSlice(elems []Value) Value {
	if len(elems) == 0 {
		return EmptyList
	}
	return Value{Type: TypeList, list: elems}
}

func (v Value) Bool() bool             { return v.boolean }
func (v Value) Int() int64             { return v.integer }
func (v Value) Real() float64          { return v.real }
func (v Value) Str() string            { return v.str }
func (v Value) Symbol() *Symbol        { return v.sym }
func (v Value) Proc() *Procedure       { return v.proc }
func (v Value) NativeProc() *NativeProcedure { return v.native }

// Elems returns the list's elements. The caller must not mutate the
// returned slice in place; build new lists via List/ListFromSlice instead.
func (v Value) Elems() []Value { return v.list }

// IsList reports whether v is a list (including the empty list).
func (v Value) IsList() bool { return v.Type == TypeList }

// IsNull reports whether v is the empty list.
func (v Value) IsNull() bool { return v.Type == TypeList && len(v.list) == 0 }

// IsNumber reports whether v is Integer or Float.
func (v Value) IsNumber() bool { return v.Type == TypeInt || v.Type == TypeReal }

// IsCallable reports whether v can be invoked.
func (v Value) IsCallable() bool { return v.Type == TypeProcedure || v.Type == TypeNative }

// Truthy implements the language's truthiness rule: only #f is falsey.
func (v Value) Truthy() bool {
	return !(v.Type == TypeBool && !v.boolean)
}

// AsFloat widens an Integer or Float value to float64.
func (v Value) AsFloat() float64 {
	if v.Type == TypeInt {
		return float64(v.integer)
	}
	return v.real
}

// Equal implements structural equality (equal?).
func Equal(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeBool:
		return a.boolean == b.boolean
	case TypeInt:
		return a.integer == b.integer
	case TypeReal:
		return a.real == b.real || (math.IsNaN(a.real) && math.IsNaN(b.real))
	case TypeString:
		return a.str == b.str
	case TypeSymbol:
		return a.sym == b.sym
	case TypeList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case TypeUnit, TypeEOF:
		return true
	case TypeProcedure:
		return a.proc == b.proc
	case TypeNative:
		return a.native == b.native
	default:
		return false
	}
}

// Identical implements identity equality (eq?): symbols, procedures and
// native procedures compare by pointer identity, empty lists are always
// eq? to each other, non-empty lists compare by shared backing array, and
// everything else falls back to value equality.
func Identical(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeSymbol:
		return a.sym == b.sym
	case TypeList:
		if len(a.list) == 0 && len(b.list) == 0 {
			return true
		}
		return len(a.list) > 0 && len(b.list) > 0 && &a.list[0] == &b.list[0]
	case TypeProcedure:
		return a.proc == b.proc
	case TypeNative:
		return a.native == b.native
	default:
		return Equal(a, b)
	}
}

func (v Value) String() string { return printValue(v, false) }

// WriteString renders v using write-style escaping for strings (the form
// used by REPL/print output); String() displays raw string contents.
func (v Value) WriteString() string { return printValue(v, true) }

func fmtFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "+inf.0"
	}
	if math.IsInf(f, -1) {
		return "-inf.0"
	}
	if math.IsNaN(f) {
		return "+nan.0"
	}
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += "."
	}
	return s
}
