package http_client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/vk/pipesgo/internal/ctxlog"
	"github.com/vk/pipesgo/internal/document"
	"github.com/vk/pipesgo/internal/pipe"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Client is the resource of the `http` context: an HTTP client bound to an
// API base URL.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	APIKey  string

	// transport is the pooled base transport; the oauth2 wrapper does not
	// expose it.
	transport *http.Transport
}

// Response is what a request stores in the state.
type Response struct {
	Status int
	Body   any
}

// Context declares the `http` context. Pipes bind it under any name.
func Context() *pipe.ContextSpec {
	return pipe.NewContext("http").
		Help("HTTP API client.").
		Field("api-url", pipe.Config("api-url").Type(pipe.String).Help("Base URL of the API.")).
		Field("api-key", pipe.Config("api-key").Type(pipe.String).Default(nil).Help("Sent as `Authorization: ApiKey <key>`.")).
		Field("timeout", pipe.Config("timeout").Type(pipe.String).Default("30s").Help("Per-request timeout.")).
		Field("oauth2-client-id", pipe.Config("oauth2-client-id").Type(pipe.String).Default(nil).Help("Enables OAuth2 client credentials.")).
		Field("oauth2-client-secret", pipe.Config("oauth2-client-secret").Type(pipe.String).Default(nil)).
		Field("oauth2-token-url", pipe.Config("oauth2-token-url").Type(pipe.String).Default(nil)).
		Field("oauth2-scopes", pipe.Config("oauth2-scopes").TypeExpr("list(string)").Default(nil)).
		Field("oidc-issuer", pipe.Config("oidc-issuer").Type(pipe.String).Default(nil).Help("Discovers the token URL from the issuer.")).
		OnEnter(createHttpClient).
		OnExit(destroyHttpClient)
}

// createHttpClient builds the client. With an OAuth2 client id, requests
// carry client-credentials tokens; the token URL is either configured or
// discovered from the OIDC issuer.
func createHttpClient(ctx context.Context, c *pipe.Context) error {
	logger := ctxlog.FromContext(ctx)

	timeout, err := time.ParseDuration(c.GetString("timeout"))
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	base := &http.Client{Timeout: timeout, Transport: transport}
	client := base

	if clientID := c.GetString("oauth2-client-id"); clientID != "" {
		tokenURL := c.GetString("oauth2-token-url")
		if issuer := c.GetString("oidc-issuer"); issuer != "" && tokenURL == "" {
			provider, err := oidc.NewProvider(oidc.ClientContext(ctx, base), issuer)
			if err != nil {
				return fmt.Errorf("failed to discover OIDC issuer: %w", err)
			}
			tokenURL = provider.Endpoint().TokenURL
			logger.Debug("Discovered token endpoint.", "issuer", issuer, "token_url", tokenURL)
		}
		if tokenURL == "" {
			return errors.New("oauth2-client-id requires oauth2-token-url or oidc-issuer")
		}

		var scopes []string
		for i, item := range c.GetList("oauth2-scopes") {
			scope, ok := item.(string)
			if !ok {
				return fmt.Errorf("oauth2-scopes[%d]: not a string: %s", i, document.Describe(item))
			}
			scopes = append(scopes, scope)
		}
		cc := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: c.GetString("oauth2-client-secret"),
			TokenURL:     tokenURL,
			Scopes:       scopes,
		}
		// Token requests outlive this hook, so they must not inherit its
		// cancellation.
		tokenCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, base)
		client = cc.Client(tokenCtx)
		client.Timeout = timeout
		logger.Debug("OAuth2 client credentials enabled.", "client_id", clientID)
	}

	c.SetResource(&Client{
		HTTP:      client,
		BaseURL:   strings.TrimRight(c.GetString("api-url"), "/"),
		APIKey:    c.GetString("api-key"),
		transport: transport,
	})
	return nil
}

// destroyHttpClient closes idle connections.
func destroyHttpClient(_ context.Context, c *pipe.Context, _ error) error {
	if client, ok := c.Resource().(*Client); ok {
		client.transport.CloseIdleConnections()
	}
	return nil
}

// Do sends a request. A non-nil body is sent as JSON; JSON responses are
// decoded into a document tree, anything else is returned as a string.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = c.BaseURL + "/" + strings.TrimLeft(path, "/")
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "ApiKey "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	out := &Response{Status: resp.StatusCode, Body: string(data)}
	if strings.Contains(resp.Header.Get("Content-Type"), "json") && len(data) > 0 {
		decoded, err := document.Decode(data, document.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode response body: %w", err)
		}
		out.Body = decoded
	}
	return out, nil
}
