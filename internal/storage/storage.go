// package storage opens report destinations on the local filesystem or in S3
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3iface is the subset of the s3 client used here; allows test fakes.
type s3iface interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// newS3Client constructs an s3 client from the default AWS config chain; overridden in tests.
var newS3Client = func(ctx context.Context) (s3iface, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

// Scheme returns "file" for plain paths and file:// URIs, otherwise the URI scheme.
func Scheme(uri string) string {
	if !strings.Contains(uri, "://") {
		return "file"
	}
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return u.Scheme
}

// CreateWriter opens uri for writing, truncating any existing content.
//
// Plain paths and file:// URIs create parent directories as needed. s3://bucket/key buffers in memory
// and uploads on Close.
func CreateWriter(ctx context.Context, uri string) (io.WriteCloser, error) {
	switch Scheme(uri) {
	case "file":
		return create(strings.TrimPrefix(uri, "file://"))
	case "s3":
		u, err := url.Parse(uri)
		if err != nil {
			return nil, err
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("s3 uri needs a bucket and key: %s", uri)
		}
		return &s3Writer{ctx: ctx, bucket: u.Host, key: key}, nil
	default:
		return nil, errors.New("unsupported scheme for CreateWriter: " + uri)
	}
}

func create(path string) (*os.File, error) {
	if path == "" {
		return nil, errors.New("empty output path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

type s3Writer struct {
	ctx    context.Context
	bucket string
	key    string
	buf    bytes.Buffer
	done   bool
}

func (w *s3Writer) Write(p []byte) (int, error) {
	if w.done {
		return 0, os.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *s3Writer) Close() error {
	if w.done {
		return nil
	}
	w.done = true

	cl, err := newS3Client(w.ctx)
	if err != nil {
		return fmt.Errorf("failed to create s3 client: %w", err)
	}
	_, err = cl.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(w.key),
		Body:        bytes.NewReader(w.buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", w.bucket, w.key, err)
	}
	return nil
}
