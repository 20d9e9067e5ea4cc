package lang

// symCallCC names the call/cc special form. call/cc is not part of the
// mandatory built-in set (spec.md §4.4) — it is a core evaluator special
// form because escape continuations must interact with the trampoline
// directly — but per SPEC_FULL.md Design Decision D3 it only supports
// escape (non-reentrant, upward) continuations: invoking a continuation
// after its capturing call/cc has already returned is a TypeError rather
// than a re-entry.
var symCallCC = Intern("call/cc")

// ctToken identifies one dynamic extent of a call/cc invocation.
type ctToken struct {
	alive bool
}

// escapeSignal is an internal control-flow error used to unwind the Go
// call stack back to the call/cc frame that created the matching token.
// It is never shown to the user; evalCallCC intercepts it before it can
// escape as an interpreter error.
type escapeSignal struct {
	token *ctToken
	value Value
}

func (e *escapeSignal) Error() string { return "escape continuation invoked" }

func (ev *Evaluator) evalCallCC(items []Value, env *Env) (Value, error) {
	if len(items) != 2 {
		return Value{}, NewError(SyntaxError, "call/cc expects exactly one argument")
	}
	receiver, err := ev.Eval(items[1], env)
	if err != nil {
		return Value{}, err
	}
	if !receiver.IsCallable() {
		return Value{}, NewError(TypeError, "call/cc argument must be a procedure")
	}

	token := &ctToken{alive: true}
	cont := Native(&NativeProcedure{
		Name:  "continuation",
		Arity: 1,
		Fn: func(_ Invoker, args []Value) (Value, error) {
			if !token.alive {
				return Value{}, NewError(TypeError, "continuation invoked outside its dynamic extent")
			}
			var v Value = Unit
			if len(args) > 0 {
				v = args[0]
			}
			return Value{}, &escapeSignal{token: token, value: v}
		},
	})

	result, err := ev.Apply(receiver, []Value{cont})
	token.alive = false
	if err != nil {
		if sig, ok := err.(*escapeSignal); ok && sig.token == token {
			return sig.value, nil
		}
		return Value{}, err
	}
	return result, nil
}
