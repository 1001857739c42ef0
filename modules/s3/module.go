// Package s3 provides the `s3` context, a scoped S3 client, and the `s3_put`
// and `s3_get` pipes, which store and load state nodes as objects.
package s3

import (
	"github.com/vk/pipesgo/internal/pipe"
)

// Module implements the pipe.Module interface for this package.
type Module struct{}

// Register registers the module's pipes.
func (m *Module) Register(r *pipe.Registry) error {
	put := pipe.Define("s3_put", onRunPut).
		Help("Store a state node as an S3 object.").
		Param(pipe.DryRunParam).
		Param(pipe.LogParam).
		Bind("s3", Context()).
		Bind("bucket", pipe.Config("bucket").Type(pipe.String)).
		Bind("key", pipe.Config("key").Type(pipe.String)).
		Bind("format", pipe.Config("format").Type(pipe.String).Default("json").Help("Object encoding: yaml, json, cbor or hcl.")).
		Bind("value", pipe.State("value").Help("The node to store."))
	if _, err := r.Register("s3", put); err != nil {
		return err
	}

	get := pipe.Define("s3_get", onRunGet).
		Help("Load an S3 object into the state.").
		Param(pipe.DryRunParam).
		Param(pipe.LogParam).
		Bind("s3", Context()).
		Bind("bucket", pipe.Config("bucket").Type(pipe.String)).
		Bind("key", pipe.Config("key").Type(pipe.String)).
		Bind("format", pipe.Config("format").Type(pipe.String).Default("json")).
		Bind("value", pipe.State("value").Mutable().Help("Destination node."))
	_, err := r.Register("s3", get)
	return err
}
