// Package schemy embeds a small Scheme-family interpreter (spec.md §1):
// lexer/reader, macro expander, and a trampolined evaluator, wired up
// behind a single Interpreter type that a host program constructs,
// extends, and drives.
package schemy

import (
	"fmt"
	"io"

	"github.com/microsoft/schemy/lang"
	"github.com/microsoft/schemy/reader"
	"github.com/microsoft/schemy/runtime"
)

// Interpreter is one embeddable interpreter session (spec.md §4.5, §6). It
// is not safe for concurrent use: hosts that need concurrency construct
// one Interpreter per goroutine (spec.md §5).
type Interpreter struct {
	global   *lang.Env
	ev       *lang.Evaluator
	ex       *lang.Expander
	macros   *lang.MacroTable
	accessor runtime.Accessor
}

// Option configures an Interpreter at construction time.
type Option func(*config)

type config struct {
	accessor   runtime.Accessor
	extensions []extension
	initPath   string
}

type extension struct {
	name string
	fn   any
}

// WithAccessor supplies the file-system accessor load and any host I/O
// primitive route through (spec.md §4.4). The default is
// runtime.DenyAccessor, which rejects all file-system access.
func WithAccessor(a runtime.Accessor) Option {
	return func(c *config) { c.accessor = a }
}

// WithExtension registers a host function as a global procedure named
// name, adapted through runtime.Lift's typed argument coercion. Extensions
// are installed after the mandatory built-ins and before the embedded
// bootstrap script, so a host extension may shadow a built-in but the
// bootstrap macros always see the host's version (spec.md §6 construction
// order).
func WithExtension(name string, fn any) Option {
	return func(c *config) { c.extensions = append(c.extensions, extension{name: name, fn: fn}) }
}

// WithInitPath overrides the path New checks for an optional host-side
// bootstrap script (default ".init.ss", spec.md §6).
func WithInitPath(path string) Option {
	return func(c *config) { c.initPath = path }
}

// New constructs an Interpreter: an empty root environment, the mandatory
// built-in layer, any host extensions, then the embedded bootstrap script,
// then the optional host init script (by default `.init.ss`, resolved
// against the working directory; see WithInitPath) if the accessor can
// read one (spec.md §6).
func New(opts ...Option) (*Interpreter, error) {
	cfg := config{accessor: runtime.DenyAccessor{}, initPath: ".init.ss"}
	for _, opt := range opts {
		opt(&cfg)
	}

	global := lang.NewEnv(nil)
	runtime.InstallPrimitives(global)

	ev := lang.NewEvaluator(global)
	macros := lang.NewMacroTable()
	ex := lang.NewExpander(ev, macros)

	in := &Interpreter{global: global, ev: ev, ex: ex, macros: macros, accessor: cfg.accessor}
	in.installLoad()

	for _, ext := range cfg.extensions {
		global.Define(lang.Intern(ext.name), lang.Native(runtime.Lift(ext.name, ext.fn)))
	}

	if err := runtime.InstallPrelude(ev, ex, global); err != nil {
		return nil, fmt.Errorf("schemy: bootstrap script failed: %w", err)
	}

	if err := in.loadHostInit(cfg.initPath); err != nil {
		return nil, err
	}

	return in, nil
}

func (in *Interpreter) loadHostInit(path string) error {
	rc, err := in.accessor.OpenRead(path)
	if err != nil {
		return nil // absent or inaccessible: silently skipped, per spec.md §6.
	}
	defer rc.Close()
	forms, err := reader.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("schemy: %s: %w", path, err)
	}
	for _, form := range forms {
		if _, err := in.evalTopLevel(form); err != nil {
			return fmt.Errorf("schemy: %s: %w", path, err)
		}
	}
	return nil
}

func (in *Interpreter) installLoad() {
	in.global.Define(lang.Intern("load"), lang.Native(&lang.NativeProcedure{
		Name:  "load",
		Arity: 1,
		Fn: func(_ lang.Invoker, args []lang.Value) (lang.Value, error) {
			if len(args) != 1 || args[0].Type != lang.TypeString {
				return lang.Value{}, lang.NewError(lang.TypeError, "load: expected a string path")
			}
			rc, err := in.accessor.OpenRead(args[0].Str())
			if err != nil {
				return lang.Value{}, err
			}
			defer rc.Close()
			forms, err := reader.ReadAll(rc)
			if err != nil {
				return lang.Value{}, err
			}
			result := lang.Unit
			for _, form := range forms {
				result, err = in.evalTopLevel(form)
				if err != nil {
					return lang.Value{}, err
				}
			}
			return result, nil
		},
	}))
}

func (in *Interpreter) evalTopLevel(expr lang.Value) (lang.Value, error) {
	expanded, err := in.ex.Expand(expr, in.global, true)
	if err != nil {
		return lang.Value{}, err
	}
	return in.ev.Eval(expanded, in.global)
}

// DefineGlobal injects or overwrites a top-level binding (spec.md §6).
func (in *Interpreter) DefineGlobal(name string, value lang.Value) {
	in.global.Define(lang.Intern(name), value)
}

// Global returns the root environment.
func (in *Interpreter) Global() *lang.Env { return in.global }

// Accessor returns the file-system accessor this Interpreter was
// constructed with.
func (in *Interpreter) Accessor() runtime.Accessor { return in.accessor }

// Evaluate reads, expands, and evaluates every expression from r in
// source order, returning the last result. An error aborts the batch
// immediately; no further expressions are read (spec.md §4.5).
func (in *Interpreter) Evaluate(r io.Reader) (lang.Value, error) {
	rd := reader.New(r)
	result := lang.Unit
	for {
		expr, err := rd.Read()
		if err != nil {
			return lang.Value{}, err
		}
		if expr.Type == lang.TypeEOF {
			return result, nil
		}
		result, err = in.evalTopLevel(expr)
		if err != nil {
			return lang.Value{}, err
		}
	}
}

// EvalString reads every expression in src and evaluates them in order,
// returning the result of each. It stops and returns the partial results
// alongside the error on the first failure — the shape a line-buffered
// REPL needs to print one value per form entered rather than only the
// last (unlike Evaluate, which reads an entire stream to completion).
func (in *Interpreter) EvalString(src string) ([]lang.Value, error) {
	forms, err := reader.ReadString(src)
	if err != nil {
		return nil, err
	}
	results := make([]lang.Value, 0, len(forms))
	for _, form := range forms {
		v, err := in.evalTopLevel(form)
		if err != nil {
			return results, err
		}
		results = append(results, v)
	}
	return results, nil
}

// REPLOption configures a REPL session.
type REPLOption func(*replConfig)

type replConfig struct {
	prompt  string
	headers string
}

// WithPrompt sets the string printed before each read.
func WithPrompt(p string) REPLOption { return func(c *replConfig) { c.prompt = p } }

// WithHeaders sets a banner printed once before the session starts.
func WithHeaders(h string) REPLOption { return func(c *replConfig) { c.headers = h } }

// REPL prints headers (if any), then repeatedly prints the prompt, reads
// one expression, expands and evaluates it, and prints either its printed
// representation or its error message, until r is exhausted (spec.md
// §4.5). Unlike Evaluate, a failed expression does not end the session.
func (in *Interpreter) REPL(r io.Reader, w io.Writer, opts ...REPLOption) {
	var cfg replConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.headers != "" {
		fmt.Fprintln(w, cfg.headers)
	}

	rd := reader.New(r)
	for {
		if cfg.prompt != "" {
			fmt.Fprint(w, cfg.prompt)
		}
		expr, err := rd.Read()
		if err != nil {
			fmt.Fprintln(w, err)
			continue
		}
		if expr.Type == lang.TypeEOF {
			return
		}
		val, err := in.evalTopLevel(expr)
		if err != nil {
			fmt.Fprintln(w, err)
			continue
		}
		fmt.Fprintln(w, val.WriteString())
	}
}
