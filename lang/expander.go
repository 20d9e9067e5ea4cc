package lang

// Expander is the pre-evaluation rewrite pass (spec.md §4.2). It
// validates and desugars special forms, expands quasiquotation, and
// dispatches macro transformers by evaluating their bodies through the
// evaluator supplied at construction — expansion and evaluation are
// mutually recursive through the shared global environment (spec.md §2).
type Expander struct {
	ev     *Evaluator
	macros *MacroTable
}

// NewExpander constructs an Expander bound to ev and macros.
func NewExpander(ev *Evaluator, macros *MacroTable) *Expander {
	return &Expander{ev: ev, macros: macros}
}

// Expand rewrites expr. topLevel marks whether expr occurs in a top-level
// context (the outermost source position, or inside a begin whose own
// context is top level) — the only context where define-macro is valid.
func (ex *Expander) Expand(expr Value, env *Env, topLevel bool) (Value, error) {
	switch expr.Type {
	case TypeList:
		if expr.IsNull() {
			return Value{}, NewError(SyntaxError, "empty list is not a valid expression")
		}
		return ex.expandList(expr, env, topLevel)
	default:
		return expr, nil
	}
}

func (ex *Expander) expandList(expr Value, env *Env, topLevel bool) (Value, error) {
	items := expr.list
	head := items[0]

	if head.Type == TypeSymbol {
		switch head.sym {
		case SymQuote:
			if len(items) != 2 {
				return Value{}, NewError(SyntaxError, "quote expects exactly 1 operand").WithExpr(expr)
			}
			return expr, nil

		case SymIf:
			return ex.expandIf(items, env)

		case SymSet:
			return ex.expandSet(items, env)

		case SymDefine:
			return ex.expandDefine(items, env, topLevel)

		case SymDefineMacro:
			return ex.expandDefineMacro(items, env, topLevel)

		case SymBegin:
			return ex.expandBegin(items, env, topLevel)

		case SymLambda:
			return ex.expandLambda(items, env)

		case SymQuasiquote:
			if len(items) != 2 {
				return Value{}, NewError(SyntaxError, "quasiquote expects exactly 1 operand").WithExpr(expr)
			}
			rewritten, err := quasiquoteTransform(items[1])
			if err != nil {
				return Value{}, err
			}
			return ex.Expand(rewritten, env, topLevel)
		}

		if macro, ok := ex.macros.Lookup(head.sym); ok {
			expanded, err := ex.invokeMacro(macro, items[1:], env)
			if err != nil {
				return Value{}, err
			}
			return ex.Expand(expanded, env, topLevel)
		}
	}

	// Ordinary combination: expand every sub-expression as non-top-level.
	out := make([]Value, len(items))
	for i, sub := range items {
		v, err := ex.Expand(sub, env, false)
		if err != nil {
			return Value{}, err
		}
		out[i] = v
	}
	return ListFromSlice(out), nil
}

func (ex *Expander) expandIf(items []Value, env *Env) (Value, error) {
	switch len(items) {
	case 3:
		test, err := ex.Expand(items[1], env, false)
		if err != nil {
			return Value{}, err
		}
		cons, err := ex.Expand(items[2], env, false)
		if err != nil {
			return Value{}, err
		}
		return List(Sym(SymIf), test, cons, Unit), nil
	case 4:
		test, err := ex.Expand(items[1], env, false)
		if err != nil {
			return Value{}, err
		}
		cons, err := ex.Expand(items[2], env, false)
		if err != nil {
			return Value{}, err
		}
		alt, err := ex.Expand(items[3], env, false)
		if err != nil {
			return Value{}, err
		}
		return List(Sym(SymIf), test, cons, alt), nil
	default:
		return Value{}, NewError(SyntaxError, "if expects 2 or 3 operands").WithExpr(ListFromSlice(items))
	}
}

func (ex *Expander) expandSet(items []Value, env *Env) (Value, error) {
	if len(items) != 3 {
		return Value{}, NewError(SyntaxError, "set! expects a name and a value").WithExpr(ListFromSlice(items))
	}
	if items[1].Type != TypeSymbol {
		return Value{}, NewError(SyntaxError, "set! target must be a symbol").WithExpr(items[1])
	}
	val, err := ex.Expand(items[2], env, false)
	if err != nil {
		return Value{}, err
	}
	return List(Sym(SymSet), items[1], val), nil
}

func (ex *Expander) expandDefine(items []Value, env *Env, topLevel bool) (Value, error) {
	if len(items) < 2 {
		return Value{}, NewError(SyntaxError, "define expects a target and a value").WithExpr(ListFromSlice(items))
	}
	target := items[1]

	if target.Type == TypeList {
		// (define (f p...) body...) => (define f (lambda (p...) body...))
		if target.IsNull() {
			return Value{}, NewError(SyntaxError, "define function target must name a function").WithExpr(target)
		}
		name := target.list[0]
		params := ListFromSlice(target.list[1:])
		body := items[2:]
		lambdaForm := append([]Value{SymLambdaValue, params}, body...)
		desugared := List(Sym(SymDefine), name, ListFromSlice(lambdaForm))
		return ex.Expand(desugared, env, topLevel)
	}

	if target.Type != TypeSymbol {
		return Value{}, NewError(SyntaxError, "define target must be a symbol or (name params...)").WithExpr(target)
	}
	if len(items) != 3 {
		return Value{}, NewError(SyntaxError, "define expects a single value expression").WithExpr(ListFromSlice(items))
	}
	val, err := ex.Expand(items[2], env, false)
	if err != nil {
		return Value{}, err
	}
	return List(Sym(SymDefine), target, val), nil
}

func (ex *Expander) expandDefineMacro(items []Value, env *Env, topLevel bool) (Value, error) {
	if !topLevel {
		return Value{}, NewError(MacroError, "define-macro is only valid at top level").WithExpr(ListFromSlice(items))
	}
	if len(items) < 2 {
		return Value{}, NewError(SyntaxError, "define-macro expects a target and a body").WithExpr(ListFromSlice(items))
	}
	target := items[1]

	var name *Symbol
	var rhs Value
	if target.Type == TypeList {
		if target.IsNull() || target.list[0].Type != TypeSymbol {
			return Value{}, NewError(SyntaxError, "define-macro function target must name a macro").WithExpr(target)
		}
		name = target.list[0].sym
		params := ListFromSlice(target.list[1:])
		body := items[2:]
		lambdaForm := append([]Value{SymLambdaValue, params}, body...)
		rhs = ListFromSlice(lambdaForm)
	} else if target.Type == TypeSymbol {
		if len(items) != 3 {
			return Value{}, NewError(SyntaxError, "define-macro expects a single value expression").WithExpr(ListFromSlice(items))
		}
		name = target.sym
		rhs = items[2]
	} else {
		return Value{}, NewError(SyntaxError, "define-macro target must be a symbol or (name params...)").WithExpr(target)
	}

	expandedRHS, err := ex.Expand(rhs, env, false)
	if err != nil {
		return Value{}, err
	}
	val, err := ex.ev.Eval(expandedRHS, env)
	if err != nil {
		return Value{}, err
	}
	if val.Type != TypeProcedure {
		return Value{}, NewError(MacroError, "define-macro right-hand side must evaluate to a procedure").WithExpr(rhs)
	}
	ex.macros.Define(name, val.proc)
	return Unit, nil
}

func (ex *Expander) expandBegin(items []Value, env *Env, topLevel bool) (Value, error) {
	body := items[1:]
	if len(body) == 0 {
		return Unit, nil
	}
	out := make([]Value, len(body))
	for i, e := range body {
		v, err := ex.Expand(e, env, topLevel)
		if err != nil {
			return Value{}, err
		}
		out[i] = v
	}
	return ListFromSlice(append([]Value{SymBeginValue}, out...)), nil
}

func (ex *Expander) expandLambda(items []Value, env *Env) (Value, error) {
	if len(items) < 3 {
		return Value{}, NewError(SyntaxError, "lambda expects a parameter list and a body").WithExpr(ListFromSlice(items))
	}
	params := items[1]
	if params.Type != TypeSymbol && params.Type != TypeList {
		return Value{}, NewError(SyntaxError, "lambda parameters must be a symbol or a list of symbols").WithExpr(params)
	}
	body := items[2:]
	var bodyExpr Value
	if len(body) == 1 {
		bodyExpr = body[0]
	} else {
		bodyExpr = ListFromSlice(append([]Value{SymBeginValue}, body...))
	}
	expandedBody, err := ex.Expand(bodyExpr, env, false)
	if err != nil {
		return Value{}, err
	}
	return List(SymLambdaValue, params, expandedBody), nil
}

func (ex *Expander) invokeMacro(macro *Procedure, rawArgs []Value, env *Env) (Value, error) {
	return ex.ev.Apply(Proc(macro), rawArgs)
}

// SymLambdaValue/SymBeginValue are pre-boxed Values for the lambda/begin
// keyword symbols, used when synthesizing rewritten forms.
var (
	SymLambdaValue = Sym(SymLambda)
	SymBeginValue  = Sym(SymBegin)
)

func isTagged(v Value, sym *Symbol) bool {
	return v.Type == TypeList && len(v.list) >= 1 && v.list[0].Type == TypeSymbol && v.list[0].sym == sym
}

func quasiquoteTransform(x Value) (Value, error) {
	if x.Type != TypeList || x.IsNull() {
		return List(Sym(SymQuote), x), nil
	}
	if isTagged(x, SymUnquoteSplicing) {
		return Value{}, NewError(SyntaxError, "unquote-splicing is not valid outside of a list context").WithExpr(x)
	}
	if isTagged(x, SymUnquote) {
		if len(x.list) != 2 {
			return Value{}, NewError(SyntaxError, "unquote expects exactly 1 operand").WithExpr(x)
		}
		return x.list[1], nil
	}

	head := x.list[0]
	tail := ListFromSlice(x.list[1:])

	if isTagged(head, SymUnquoteSplicing) {
		if len(head.list) != 2 {
			return Value{}, NewError(SyntaxError, "unquote-splicing expects exactly 1 operand").WithExpr(head)
		}
		restExpanded, err := quasiquoteTransform(tail)
		if err != nil {
			return Value{}, err
		}
		return List(Sym(SymAppend), head.list[1], restExpanded), nil
	}

	headExpanded, err := quasiquoteTransform(head)
	if err != nil {
		return Value{}, err
	}
	tailExpanded, err := quasiquoteTransform(tail)
	if err != nil {
		return Value{}, err
	}
	return List(Sym(SymCons), headExpanded, tailExpanded), nil
}
