package s3

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/vk/pipesgo/internal/ctxlog"
	"github.com/vk/pipesgo/internal/pipe"
)

// Context declares the `s3` context.
func Context() *pipe.ContextSpec {
	return pipe.NewContext("s3").
		Help("S3-compatible object storage.").
		Field("endpoint", pipe.Config("s3-endpoint").Type(pipe.String).Help("host:port, or a URL whose scheme sets s3-secure.")).
		Field("access-key", pipe.Config("s3-access-key").Type(pipe.String).Default("")).
		Field("secret-key", pipe.Config("s3-secret-key").Type(pipe.String).Default("")).
		Field("region", pipe.Config("s3-region").Type(pipe.String).Default("us-east-1")).
		Field("secure", pipe.Config("s3-secure").Type(pipe.Bool).Default(true)).
		OnEnter(createClient)
}

// createClient builds the minio client. No request is made until a pipe
// uses it.
func createClient(ctx context.Context, c *pipe.Context) error {
	endpoint := c.GetString("endpoint")
	secure := c.GetBool("secure")
	if strings.Contains(endpoint, "://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return fmt.Errorf("invalid s3-endpoint: %w", err)
		}
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.GetString("access-key"), c.GetString("secret-key"), ""),
		Secure: secure,
		Region: c.GetString("region"),
	})
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("S3 client created.", "endpoint", endpoint, "secure", secure)
	c.SetResource(client)
	return nil
}

func clientOf(args *pipe.Args) (*minio.Client, error) {
	client, ok := args.Sub("s3").Resource().(*minio.Client)
	if !ok {
		return nil, fmt.Errorf("s3 client was not initialized")
	}
	return client, nil
}
