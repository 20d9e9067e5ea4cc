package runtime

import (
	"embed"

	"github.com/microsoft/schemy/lang"
	"github.com/microsoft/schemy/reader"
)

//go:embed prelude/init.ss
var preludeFS embed.FS

// InstallPrelude reads, expands, and evaluates the embedded bootstrap
// script into env (spec.md §6's third construction layer, after built-ins
// and any host extensions and before an optional adjacent .init.ss). It
// defines the standard macros that are not themselves primitives (let,
// cond, and, or, when, unless) and the for-each procedure.
func InstallPrelude(ev *lang.Evaluator, ex *lang.Expander, env *lang.Env) error {
	src, err := preludeFS.ReadFile("prelude/init.ss")
	if err != nil {
		return err
	}
	forms, err := reader.ReadString(string(src))
	if err != nil {
		return err
	}
	for _, form := range forms {
		expanded, err := ex.Expand(form, env, true)
		if err != nil {
			return err
		}
		if _, err := ev.Eval(expanded, env); err != nil {
			return err
		}
	}
	return nil
}
