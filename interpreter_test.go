package schemy

import (
	"bytes"
	"strings"
	"testing"

	"github.com/microsoft/schemy/lang"
)

func mustNew(t *testing.T, opts ...Option) *Interpreter {
	t.Helper()
	in, err := New(opts...)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return in
}

func eval(t *testing.T, in *Interpreter, src string) lang.Value {
	t.Helper()
	got, err := in.Evaluate(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Evaluate(%q) error: %v", src, err)
	}
	return got
}

func TestBasicArithmeticScenario(t *testing.T) {
	in := mustNew(t)
	got := eval(t, in, "(+ 1 2 3)")
	if got.Int() != 6 {
		t.Fatalf("got %v, want 6", got)
	}
}

func TestFunctionDefinitionScenario(t *testing.T) {
	in := mustNew(t)
	got := eval(t, in, "(define (sq x) (* x x)) (sq 7)")
	if got.Int() != 49 {
		t.Fatalf("got %v, want 49", got)
	}
}

func TestLetBasedSumScenario(t *testing.T) {
	in := mustNew(t)
	got := eval(t, in, "(let ((a 10) (b 32)) (+ a b))")
	if got.Int() != 42 {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestRecursiveListReversalScenario(t *testing.T) {
	in := mustNew(t)
	src := `
		(define (rev lst)
		  (define (lp lst acc)
		    (if (null? lst)
		        acc
		        (lp (cdr lst) (cons (car lst) acc))))
		  (lp lst '()))
		(rev (list 1 2 3 4))
	`
	got := eval(t, in, src)
	want := lang.List(lang.Int(4), lang.Int(3), lang.Int(2), lang.Int(1))
	if !lang.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCondScenario(t *testing.T) {
	in := mustNew(t)
	src := `
		(define (classify n)
		  (cond ((< n 0) 'negative)
		        ((= n 0) 'zero)
		        (else 'positive)))
		(list (classify -5) (classify 0) (classify 5))
	`
	got := eval(t, in, src)
	want := lang.List(lang.Sym(lang.Intern("negative")), lang.Sym(lang.Intern("zero")), lang.Sym(lang.Intern("positive")))
	if !lang.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEqualAndListScenario(t *testing.T) {
	in := mustNew(t)
	got := eval(t, in, `(equal? (list 1 2 (list 3 4)) (list 1 2 (list 3 4)))`)
	if got.Type != lang.TypeBool || !got.Bool() {
		t.Fatalf("got %v, want #t", got)
	}
}

func TestDefineGlobalInjectsBinding(t *testing.T) {
	in := mustNew(t)
	in.DefineGlobal("answer", lang.Int(42))
	got := eval(t, in, "answer")
	if got.Int() != 42 {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestWithExtensionExposesHostFunction(t *testing.T) {
	in := mustNew(t, WithExtension("host-double", func(x int64) int64 { return x * 2 }))
	got := eval(t, in, "(host-double 21)")
	if got.Int() != 42 {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestEvaluateStopsOnFirstError(t *testing.T) {
	in := mustNew(t)
	_, err := in.Evaluate(strings.NewReader("(+ 1 2) (undefined-symbol) (+ 3 4)"))
	if err == nil {
		t.Fatal("expected an error for the unbound symbol")
	}
}

func TestREPLPrintsResultsAndContinuesAfterErrors(t *testing.T) {
	in := mustNew(t)
	var out bytes.Buffer
	in.REPL(strings.NewReader("(+ 1 2)\n(undefined-symbol)\n(+ 3 4)\n"), &out, WithPrompt("> "))

	got := out.String()
	if !strings.Contains(got, "3") || !strings.Contains(got, "7") {
		t.Fatalf("expected both successful results in output, got %q", got)
	}
	if !strings.Contains(got, "UnboundSymbol") {
		t.Fatalf("expected the error to be reported, got %q", got)
	}
}

func TestDeniedAccessorRejectsLoad(t *testing.T) {
	in := mustNew(t)
	_, err := in.Evaluate(strings.NewReader(`(load "anything.ss")`))
	if err == nil {
		t.Fatal("expected load to fail under the default deny-all accessor")
	}
}
