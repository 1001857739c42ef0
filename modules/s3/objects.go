package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/vk/pipesgo/internal/document"
	"github.com/vk/pipesgo/internal/pipe"
)

var contentTypes = map[document.Format]string{
	document.YAML:  "application/yaml",
	document.JSON:  "application/json",
	document.JSONC: "application/json",
	document.HCL:   "text/plain",
	document.CBOR:  "application/cbor",
}

// onRunPut encodes the value and uploads it.
func onRunPut(ctx context.Context, args *pipe.Args) error {
	logger := args.Logger().With("bucket", args.GetString("bucket"), "key", args.GetString("key"))

	format, err := document.ParseFormat(args.GetString("format"))
	if err != nil {
		return err
	}
	data, err := document.Encode(args.Get("value"), format)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	if args.DryRun() {
		logger.Info("Dry run: skipping upload", "size", len(data))
		return nil
	}

	client, err := clientOf(args)
	if err != nil {
		return err
	}
	logger.Info("Uploading object", "size", len(data), "format", format)
	info, err := client.PutObject(ctx, args.GetString("bucket"), args.GetString("key"),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentTypes[format]})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	logger.Info("Successfully uploaded object", "etag", info.ETag)
	return nil
}

// onRunGet downloads the object and stores the decoded value.
func onRunGet(ctx context.Context, args *pipe.Args) error {
	logger := args.Logger().With("bucket", args.GetString("bucket"), "key", args.GetString("key"))

	format, err := document.ParseFormat(args.GetString("format"))
	if err != nil {
		return err
	}
	if args.DryRun() {
		logger.Info("Dry run: skipping download")
		return nil
	}

	client, err := clientOf(args)
	if err != nil {
		return err
	}
	obj, err := client.GetObject(ctx, args.GetString("bucket"), args.GetString("key"), minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to download object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return fmt.Errorf("failed to download object: %w", err)
	}
	value, err := document.Decode(data, format)
	if err != nil {
		return fmt.Errorf("failed to decode object: %w", err)
	}
	logger.Info("Successfully downloaded object", "size", len(data))
	return args.Set("value", value)
}
