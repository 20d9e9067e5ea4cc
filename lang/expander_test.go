package lang

import "testing"

func testExpander() (*Evaluator, *Expander, *Env) {
	ev, global := testEvaluator()
	ex := NewExpander(ev, NewMacroTable())
	return ev, ex, global
}

func TestExpandIfPadsMissingAlternate(t *testing.T) {
	_, ex, global := testExpander()
	expr := List(Sym(SymIf), Bool(true), Int(1))
	got, err := ex.Expand(expr, global, false)
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	want := List(Sym(SymIf), Bool(true), Int(1), Unit)
	if !Equal(got, want) {
		t.Fatalf("Expand(if t c) = %v, want %v", got, want)
	}
}

func TestExpandDefineFunctionSugar(t *testing.T) {
	_, ex, global := testExpander()
	// (define (double x) (+ x x)) => (define double (lambda (x) (+ x x)))
	target := List(sym("double"), sym("x"))
	defineExpr := List(Sym(SymDefine), target, List(sym("+"), sym("x"), sym("x")))
	got, err := ex.Expand(defineExpr, global, true)
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	want := List(Sym(SymDefine), sym("double"), List(Sym(SymLambda), List(sym("x")), List(sym("+"), sym("x"), sym("x"))))
	if !Equal(got, want) {
		t.Fatalf("Expand(define sugar) = %v, want %v", got, want)
	}
}

func TestDefineMacroAndExpansion(t *testing.T) {
	ev, ex, global := testExpander()

	// (define-macro (twice x) (list '+ x x))
	macroTarget := List(sym("twice"), sym("x"))
	macroBody := List(sym("list"), List(Sym(SymQuote), sym("+")), sym("x"), sym("x"))
	global.Define(Intern("list"), Native(&NativeProcedure{
		Name: "list", Arity: -1,
		Fn: func(_ Invoker, args []Value) (Value, error) { return List(args...), nil },
	}))

	defineMacro := List(Sym(SymDefineMacro), macroTarget, macroBody)
	if _, err := ex.Expand(defineMacro, global, true); err != nil {
		t.Fatalf("expand define-macro: %v", err)
	}

	// (twice 21) should expand to (+ 21 21) and evaluate to 42.
	use := List(sym("twice"), Int(21))
	expanded, err := ex.Expand(use, global, false)
	if err != nil {
		t.Fatalf("expand macro use: %v", err)
	}
	want := List(sym("+"), Int(21), Int(21))
	if !Equal(expanded, want) {
		t.Fatalf("expanded = %v, want %v", expanded, want)
	}

	got, err := ev.Eval(expanded, global)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if got.Int() != 42 {
		t.Fatalf("(twice 21) = %v, want 42", got)
	}
}

func TestDefineMacroOnlyValidAtTopLevel(t *testing.T) {
	_, ex, global := testExpander()
	expr := List(Sym(SymDefineMacro), sym("m"), List(Sym(SymLambda), sym("args"), Bool(true)))
	if _, err := ex.Expand(expr, global, false); err == nil {
		t.Fatal("expected an error defining a macro outside top level")
	}
}

func TestQuasiquote(t *testing.T) {
	_, ex, global := testExpander()
	global.Define(Intern("cons"), Native(&NativeProcedure{
		Name: "cons", Arity: 2,
		Fn: func(_ Invoker, args []Value) (Value, error) {
			out := append([]Value{args[0]}, args[1].Elems()...)
			return ListFromSlice(out), nil
		},
	}))

	t.Run("unquote splices a single value in", func(t *testing.T) {
		// `(a ,(+ 1 2) c)
		global.Define(Intern("+"), Native(nativeSum("+", func(a, b int64) int64 { return a + b })))
		expr := List(Sym(SymQuasiquote), List(sym("a"), List(Sym(SymUnquote), List(sym("+"), Int(1), Int(2))), sym("c")))
		expanded, err := ex.Expand(expr, global, false)
		if err != nil {
			t.Fatalf("expand error: %v", err)
		}
		ev := NewEvaluator(global)
		got, err := ev.Eval(expanded, global)
		if err != nil {
			t.Fatalf("eval error: %v", err)
		}
		want := List(sym("a"), Int(3), sym("c"))
		if !Equal(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})
}
