package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/pipesgo/internal/ctxlog"
	"github.com/vk/pipesgo/internal/pipe"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Client is the resource of the `socketio` context.
type Client struct {
	Socket  *socket.Socket
	Timeout time.Duration
}

// Context declares the `socketio` context.
func Context() *pipe.ContextSpec {
	return pipe.NewContext("socketio").
		Help("Socket.IO connection.").
		Field("url", pipe.Config("socketio-url").Type(pipe.String).Help("Server URL; its path is the engine.io path.")).
		Field("namespace", pipe.Config("socketio-namespace").Type(pipe.String).Default("/")).
		Field("insecure", pipe.Config("socketio-insecure").Type(pipe.Bool).Default(false).Help("Skip TLS certificate verification.")).
		Field("timeout", pipe.Config("socketio-timeout").Type(pipe.String).Default("15s").Help("Connection and reply timeout.")).
		OnEnter(connect).
		OnExit(disconnect)
}

// connect opens the connection and waits until it is established.
func connect(ctx context.Context, c *pipe.Context) error {
	rawURL := c.GetString("url")
	logger := ctxlog.FromContext(ctx).With("url", rawURL)

	timeout, err := time.ParseDuration(c.GetString("timeout"))
	if err != nil {
		return fmt.Errorf("invalid socketio-timeout: %w", err)
	}
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	if c.GetBool("insecure") {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(c.GetString("namespace"), opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return fmt.Errorf("timed out after %v waiting for socket.io connection", timeout)
	}

	c.SetResource(&Client{Socket: io, Timeout: timeout})
	return nil
}

// disconnect closes the connection.
func disconnect(ctx context.Context, c *pipe.Context, _ error) error {
	client, ok := c.Resource().(*Client)
	if !ok {
		return nil
	}
	ctxlog.FromContext(ctx).Debug("Disconnecting socket client", "sid", client.Socket.Id())
	client.Socket.Disconnect()
	return nil
}
