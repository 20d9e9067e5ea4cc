package lang

// Evaluator runs already-expanded expressions against lexical
// environments. Tail positions are implemented as an explicit loop that
// rebinds expr/env rather than as host recursion, so proper tail calls
// never grow the Go call stack (spec.md §4.3, §9).
type Evaluator struct {
	global *Env
}

// NewEvaluator constructs an evaluator rooted at the given global
// environment.
func NewEvaluator(global *Env) *Evaluator {
	return &Evaluator{global: global}
}

// Global returns the root environment.
func (ev *Evaluator) Global() *Env { return ev.global }

// Eval evaluates expr in env (or the global environment if env is nil).
func (ev *Evaluator) Eval(expr Value, env *Env) (Value, error) {
	if env == nil {
		env = ev.global
	}
	for {
		switch expr.Type {
		case TypeSymbol:
			return env.Get(expr.sym)

		case TypeList:
			if expr.IsNull() {
				return Value{}, NewError(SyntaxError, "cannot evaluate the empty list").WithExpr(expr)
			}
			items := expr.list
			head := items[0]

			if head.Type == TypeSymbol {
				switch head.sym {
				case SymQuote:
					return items[1], nil

				case SymIf:
					test, err := ev.Eval(items[1], env)
					if err != nil {
						return Value{}, err
					}
					if test.Truthy() {
						expr = items[2]
					} else {
						expr = items[3]
					}
					continue

				case SymDefine:
					val, err := ev.Eval(items[2], env)
					if err != nil {
						return Value{}, err
					}
					env.Define(items[1].sym, val)
					return Unit, nil

				case SymSet:
					val, err := ev.Eval(items[2], env)
					if err != nil {
						return Value{}, err
					}
					if err := env.Set(items[1].sym, val); err != nil {
						return Value{}, err
					}
					return Unit, nil

				case SymLambda:
					proc, err := makeProcedure(items[1], items[2], env, "")
					if err != nil {
						return Value{}, err
					}
					return Proc(proc), nil

				case SymBegin:
					body := items[1:]
					if len(body) == 0 {
						return Unit, nil
					}
					for _, e := range body[:len(body)-1] {
						if _, err := ev.Eval(e, env); err != nil {
							return Value{}, err
						}
					}
					expr = body[len(body)-1]
					continue

				case symCallCC:
					return ev.evalCallCC(items, env)
				}
			}

			// Ordinary combination: evaluate operator then operands
			// left-to-right, then dispatch.
			opVal, err := ev.Eval(head, env)
			if err != nil {
				return Value{}, err
			}
			args := make([]Value, len(items)-1)
			for i, a := range items[1:] {
				v, err := ev.Eval(a, env)
				if err != nil {
					return Value{}, err
				}
				args[i] = v
			}

			switch opVal.Type {
			case TypeNative:
				return opVal.native.Fn(ev, args)

			case TypeProcedure:
				callEnv, body, err := bindCall(opVal.proc, args)
				if err != nil {
					return Value{}, err
				}
				expr, env = body, callEnv
				continue

			default:
				return Value{}, NewError(TypeError, "attempt to call non-callable value: "+opVal.String()).WithExpr(expr)
			}

		default:
			// Non-list atom (Boolean, Integer, Float, String, Unit, EOF)
			// evaluates to itself.
			return expr, nil
		}
	}
}

// Apply invokes proc (a Procedure or NativeProcedure) with args, entering
// the trampoline for script-defined procedures so tail calls inside the
// body are still bounded.
func (ev *Evaluator) Apply(proc Value, args []Value) (Value, error) {
	switch proc.Type {
	case TypeNative:
		return proc.native.Fn(ev, args)
	case TypeProcedure:
		callEnv, body, err := bindCall(proc.proc, args)
		if err != nil {
			return Value{}, err
		}
		return ev.Eval(body, callEnv)
	default:
		return Value{}, NewError(TypeError, "attempt to call non-callable value: "+proc.String())
	}
}

func makeProcedure(paramSpec, body Value, env *Env, name string) (*Procedure, error) {
	p := &Procedure{Env: env, Body: body, Name: name}
	switch paramSpec.Type {
	case TypeSymbol:
		p.Variadic = paramSpec.sym
	case TypeList:
		params := make([]*Symbol, 0, len(paramSpec.list))
		for _, pv := range paramSpec.list {
			if pv.Type != TypeSymbol {
				return nil, NewError(SyntaxError, "lambda parameter must be a symbol").WithExpr(pv)
			}
			params = append(params, pv.sym)
		}
		p.Params = params
	default:
		return nil, NewError(SyntaxError, "invalid parameter list").WithExpr(paramSpec)
	}
	return p, nil
}

// bindCall constructs the call environment for invoking p with args and
// returns it along with the body expression to evaluate.
func bindCall(p *Procedure, args []Value) (*Env, Value, error) {
	callEnv := NewEnv(p.Env)
	if p.Variadic != nil {
		callEnv.Define(p.Variadic, List(args...))
		return callEnv, p.Body, nil
	}
	if len(args) != len(p.Params) {
		return nil, Value{}, Errorf(ArityError, "expected %d arguments, got %d", len(p.Params), len(args))
	}
	for i, name := range p.Params {
		callEnv.Define(name, args[i])
	}
	return callEnv, p.Body, nil
}
