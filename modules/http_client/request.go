package http_client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/vk/pipesgo/internal/pipe"
)

// onRunHttpRequest is the body of the `http_request` pipe. The response is
// stored before a failing status is reported, so later pipes and the
// written state can inspect it.
func onRunHttpRequest(ctx context.Context, args *pipe.Args) error {
	logger := args.Logger()
	client, ok := args.Sub("http").Resource().(*Client)
	if !ok {
		return fmt.Errorf("http client was not initialized")
	}

	method := strings.ToUpper(args.GetString("method"))
	path := args.GetString("path")
	if args.DryRun() {
		logger.Info("Dry run: skipping HTTP request", "method", method, "url", client.BaseURL, "path", path)
		return nil
	}

	logger.Info("Making HTTP request", "method", method, "url", client.BaseURL, "path", path)
	resp, err := client.Do(ctx, method, path, args.Get("body"))
	if err != nil {
		return err
	}
	logger.Info("Received HTTP response", "status", resp.Status)

	if err := args.Set("response", map[string]any{"status": resp.Status, "body": resp.Body}); err != nil {
		return err
	}
	if resp.Status >= http.StatusBadRequest {
		return fmt.Errorf("%s %s: unexpected status %d %s", method, path, resp.Status, http.StatusText(resp.Status))
	}
	return nil
}
