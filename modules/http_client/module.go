// Package http_client provides the `http` context, a scoped HTTP client with
// optional OAuth2 client-credentials authentication, and the `http_request`
// pipe that uses it.
package http_client

import (
	"github.com/vk/pipesgo/internal/pipe"
)

// Module implements the pipe.Module interface. It's the main entrypoint
// for the http_client module, responsible for registering all of its
// pipes with the application's registry.
type Module struct{}

// Register registers the module's pipes.
func (m *Module) Register(r *pipe.Registry) error {
	_, err := r.Register("http_client", pipe.Define("http_request", onRunHttpRequest).
		Help("Send an HTTP request and store the response.").
		Notes("The response is stored as {status, body}; statuses >= 400 fail the pipe after storing it.").
		Param(pipe.DryRunParam).
		Param(pipe.LogParam).
		Bind("http", Context()).
		Bind("method", pipe.Config("method").Type(pipe.String).Default("GET")).
		Bind("path", pipe.Config("path").Type(pipe.String).Help("Path relative to api-url, or an absolute URL.")).
		Bind("body", pipe.State("body").Default(nil).Help("JSON request body.")).
		Bind("response", pipe.State("response").Mutable().Help("Destination of {status, body}.")))
	return err
}
