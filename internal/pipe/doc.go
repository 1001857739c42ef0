// Package pipe is the pipe execution engine.
//
// A pipe is a named function whose parameters are declared up front, at
// registration time, as an ordered list of bindings:
//
//   - built-ins, recognised by name: `dry_run` (bool) and `log` (*slog.Logger);
//   - config references (Config), read from the per-invocation config document;
//   - state references (State), read from the shared state document and
//     optionally Mutable, in which case the pipe receives an assignable
//     document.Handle;
//   - contexts (NewContext), ordered groups of further bindings with optional
//     OnEnter/OnExit hooks that scope a resource to the invocation.
//
// Registry holds the pipes of one process. Pipe.Run resolves every parameter
// in declaration order, type-checks it, acquires contexts outer first,
// calls the body and releases the contexts in reverse order.
//
// A pipe that does not declare `dry_run` is inert on dry runs: its parameters
// are still resolved, so configuration errors surface, but neither its hooks
// nor its body run.
//
// Example:
//
//	reg := pipe.NewRegistry()
//	reg.MustRegister("deployments", pipe.Define("create", create).
//		Param(pipe.LogParam).
//		Bind("name", pipe.Config("name").Type(pipe.String)).
//		Bind("deployment", pipe.State("deployment").Mutable()))
package pipe
