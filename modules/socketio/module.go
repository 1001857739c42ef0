// Package socketio provides the `socketio` context, a connected Socket.IO
// client scoped to one invocation, and the `socketio_emit` pipe.
package socketio

import (
	"github.com/vk/pipesgo/internal/pipe"
)

// Module implements the pipe.Module interface for this package.
type Module struct{}

// Register registers the module's pipes.
func (m *Module) Register(r *pipe.Registry) error {
	_, err := r.Register("socketio", pipe.Define("socketio_emit", onRunEmit).
		Help("Emit a Socket.IO event and optionally wait for a reply event.").
		Notes("Without reply-event the pipe returns right after emitting.").
		Param(pipe.DryRunParam).
		Param(pipe.LogParam).
		Bind("socketio", Context()).
		Bind("event", pipe.Config("event").Type(pipe.String)).
		Bind("data", pipe.State("data").Default(nil).Help("Event payload.")).
		Bind("reply-event", pipe.Config("reply-event").Type(pipe.String).Default(nil)).
		Bind("reply", pipe.State("reply").Mutable().Help("Destination of the reply payload.")))
	return err
}
