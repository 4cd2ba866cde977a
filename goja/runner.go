// Package goja executes recipe-embedded scripts on the goja JavaScript
// interpreter.
//
// Scripts run with full trust, unsandboxed; a recipe's scripts are part
// of the recipe. Each execution gets a fresh VM so no state crosses
// between units of work. Context objects (a parsed document, a decoded
// feed, a raw URL) are exposed as global bindings; Go methods keep their
// exported names, so a document handle is used as document.Find("a"). A
// script communicates its output by assigning to the global "result":
// there is no implicit last-expression return.
package goja

import (
	"github.com/claudehenchoz/gensi"
	"github.com/dop251/goja"
)

// Ensure Runner implements gensi.ScriptRunner at compile time.
var _ gensi.ScriptRunner = (*Runner)(nil)

// Runner executes scripts. The zero value is usable and safe for
// concurrent use; every Execute call runs on its own VM.
type Runner struct{}

// NewRunner creates a new Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Execute runs source with the given global bindings and returns the
// exported value of the script's "result" binding. A script that throws,
// fails to compile, or never assigns result fails with EEXTRACT.
func (r *Runner) Execute(source string, bindings map[string]any) (any, error) {
	vm := goja.New()

	for name, value := range bindings {
		if err := vm.Set(name, value); err != nil {
			return nil, gensi.Errorf(gensi.EINTERNAL, "failed to bind %q: %v", name, err)
		}
	}

	if _, err := vm.RunString(source); err != nil {
		return nil, gensi.Errorf(gensi.EEXTRACT, "script failed: %v", err)
	}

	v := vm.Get("result")
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, gensi.Errorf(gensi.EEXTRACT, "script did not assign result")
	}

	return v.Export(), nil
}
