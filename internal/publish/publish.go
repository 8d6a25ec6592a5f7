// Package publish uploads a built site bundle to an S3 compatible bucket.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Uploader is the subset of *s3.Client used for publishing.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Options struct {
	Bucket      string
	Prefix      string
	Concurrency int
	Logger      *slog.Logger
}

type Object struct {
	Key         string
	ContentType string
	Size        int
}

// NewS3Client builds a client from the default credential chain. An empty
// region defers to the environment and shared config.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Dir uploads every regular file under dir. Keys are the slash separated
// relative path behind the prefix. The returned objects are sorted by key.
func Dir(ctx context.Context, up Uploader, dir string, opts Options) ([]Object, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("publish bucket is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	root := os.DirFS(dir)
	var files []string
	err := fs.WalkDir(root, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk bundle: %w", err)
	}
	sort.Strings(files)

	objects := make([]Object, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range files {
		g.Go(func() error {
			data, err := fs.ReadFile(root, p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			obj := Object{Key: Key(opts.Prefix, p), ContentType: ContentType(p), Size: len(data)}
			_, err = up.PutObject(gctx, &s3.PutObjectInput{
				Bucket:      aws.String(opts.Bucket),
				Key:         aws.String(obj.Key),
				Body:        bytes.NewReader(data),
				ContentType: aws.String(obj.ContentType),
			})
			if err != nil {
				return fmt.Errorf("upload %s: %w", obj.Key, err)
			}
			logger.Debug("uploaded object", "bucket", opts.Bucket, "key", obj.Key, "bytes", obj.Size)
			objects[i] = obj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return objects, nil
}

func Key(prefix, rel string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}

// ContentType picks the media type by extension.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return "application/yaml"
	case ".json":
		return "application/json"
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
