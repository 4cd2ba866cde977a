package gensi

// ScriptRunner executes recipe-embedded scripts. Scripts are the escape
// hatch for sources that selector and path extraction cannot handle.
//
// Trust boundary: scripts execute with full trust and are not sandboxed.
// Recipes are author-supplied configuration, not untrusted input; running
// a recipe means running its scripts.
//
// Scripts receive their context through bindings (a parsed document
// handle, a decoded feed, a raw URL) and must assign their output to a
// binding named "result". There is no implicit last-expression return: a
// script that never assigns result fails with EEXTRACT.
type ScriptRunner interface {
	Execute(source string, bindings map[string]any) (any, error)
}
