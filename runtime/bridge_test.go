package runtime

import (
	"errors"
	"strings"
	"testing"

	"github.com/microsoft/schemy/lang"
)

func TestLiftBasicCoercion(t *testing.T) {
	add := Lift("add", func(a, b int64) int64 { return a + b })

	t.Run("integer arguments pass through", func(t *testing.T) {
		got, err := add.Fn(nil, []lang.Value{lang.Int(2), lang.Int(3)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Type != lang.TypeInt || got.Int() != 5 {
			t.Fatalf("got %v, want 5", got)
		}
	})

	t.Run("wrong argument count is an ArityError", func(t *testing.T) {
		_, err := add.Fn(nil, []lang.Value{lang.Int(2)})
		ie, ok := err.(*lang.Error)
		if !ok || ie.Kind != lang.ArityError {
			t.Fatalf("expected ArityError, got %v", err)
		}
	})

	t.Run("non-numeric argument is a TypeError", func(t *testing.T) {
		_, err := add.Fn(nil, []lang.Value{lang.Str("x"), lang.Int(1)})
		ie, ok := err.(*lang.Error)
		if !ok || ie.Kind != lang.TypeError {
			t.Fatalf("expected TypeError, got %v", err)
		}
	})
}

func TestLiftWidensIntegerToFloatParameter(t *testing.T) {
	sqrtish := Lift("half", func(x float64) float64 { return x / 2 })
	got, err := sqrtish.Fn(nil, []lang.Value{lang.Int(10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Type != lang.TypeReal || got.Real() != 5 {
		t.Fatalf("got %v, want 5.0", got)
	}
}

func TestLiftPropagatesHostError(t *testing.T) {
	failing := Lift("fail", func(s string) (string, error) {
		return "", errors.New("boom")
	})
	_, err := failing.Fn(nil, []lang.Value{lang.Str("x")})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected host error to propagate, got %v", err)
	}
}

func TestLiftPassesLangValueThrough(t *testing.T) {
	identity := Lift("identity", func(v lang.Value) lang.Value { return v })
	in := lang.List(lang.Int(1), lang.Int(2))
	got, err := identity.Fn(nil, []lang.Value{in})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lang.Equal(got, in) {
		t.Fatalf("got %v, want %v", got, in)
	}
}
