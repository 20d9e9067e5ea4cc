package lang

import "testing"

func TestTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"false is falsey", Bool(false), false},
		{"true is truthy", Bool(true), true},
		{"zero is truthy", Int(0), true},
		{"empty list is truthy", EmptyList, true},
		{"unit is truthy", Unit, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.Truthy(); got != c.want {
				t.Fatalf("Truthy() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestEqualVsIdentical(t *testing.T) {
	t.Run("equal? compares list structure", func(t *testing.T) {
		a := List(Int(1), Int(2), Str("x"))
		b := List(Int(1), Int(2), Str("x"))
		if !Equal(a, b) {
			t.Fatal("expected structurally equal lists to be equal?")
		}
		if Identical(a, b) {
			t.Fatal("expected freshly built lists with distinct backing arrays to not be eq?")
		}
	})

	t.Run("eq? treats symbols as identical by interning", func(t *testing.T) {
		a := Sym(Intern("x"))
		b := Sym(Intern("x"))
		if !Identical(a, b) {
			t.Fatal("expected interned symbols to be eq?")
		}
	})

	t.Run("eq? treats all empty lists as identical", func(t *testing.T) {
		if !Identical(EmptyList, List()) {
			t.Fatal("expected empty lists to always be eq?")
		}
	})

	t.Run("eq? on a list is identical to itself", func(t *testing.T) {
		a := List(Int(1))
		if !Identical(a, a) {
			t.Fatal("expected a list to be eq? to itself")
		}
	})
}

func TestPrintRepresentation(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Bool(true), "#t"},
		{Bool(false), "#f"},
		{Int(42), "42"},
		{Int(-7), "-7"},
		{Str("hi"), "hi"},
		{Sym(Intern("foo")), "foo"},
		{EmptyList, "()"},
		{List(Int(1), Int(2), Int(3)), "(1 2 3)"},
		{Unit, ""},
	}
	for _, c := range cases {
		t.Run(c.want, func(t *testing.T) {
			if got := c.v.String(); got != c.want {
				t.Fatalf("String() = %q, want %q", got, c.want)
			}
		})
	}

	t.Run("write-style escapes string contents", func(t *testing.T) {
		v := Str("a\"b\nc")
		if got, want := v.WriteString(), `"a\"b\nc"`; got != want {
			t.Fatalf("WriteString() = %q, want %q", got, want)
		}
		if got, want := v.String(), "a\"b\nc"; got != want {
			t.Fatalf("String() = %q, want %q", got, want)
		}
	})
}

func TestAsFloat(t *testing.T) {
	if got := Int(3).AsFloat(); got != 3.0 {
		t.Fatalf("AsFloat() on Integer = %v, want 3.0", got)
	}
	if got := Real(2.5).AsFloat(); got != 2.5 {
		t.Fatalf("AsFloat() on Float = %v, want 2.5", got)
	}
}
