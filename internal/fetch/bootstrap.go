package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Bootstrapper downloads model artifacts from their configured sources.
// It satisfies artifacts.Fetcher.
type Bootstrapper struct {
	sources map[string]string
	opts    *Options
	s3cfg   S3Config
	logger  *zap.Logger

	s3Once sync.Once
	s3     ObjectGetter
	s3Err  error
}

// NewBootstrapper maps artifact names to source URLs.
func NewBootstrapper(sources map[string]string, s3cfg S3Config, opts *Options, logger *zap.Logger) *Bootstrapper {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bootstrapper{
		sources: sources,
		opts:    opts,
		s3cfg:   s3cfg,
		logger:  logger.Named("fetch"),
	}
}

// WithObjectGetter replaces the S3 client built from S3Config.
func (b *Bootstrapper) WithObjectGetter(g ObjectGetter) *Bootstrapper {
	b.s3Once.Do(func() {})
	b.s3 = g
	return b
}

// Source returns the configured source for an artifact.
func (b *Bootstrapper) Source(artifact string) string {
	return b.sources[artifact]
}

// Fetch downloads artifact and writes it to dest, replacing any existing file.
// The file only appears once the full body has been written.
func (b *Bootstrapper) Fetch(ctx context.Context, artifact, dest string) error {
	raw, ok := b.sources[artifact]
	if !ok || raw == "" {
		return &Error{URL: raw, Message: fmt.Sprintf("no source configured for %s", artifact)}
	}

	start := time.Now()
	data, err := b.Download(ctx, raw)
	if err != nil {
		return err
	}

	if err := writeFile(dest, data); err != nil {
		return &Error{URL: raw, Message: "failed to save artifact", Cause: err}
	}

	b.logger.Info("artifact downloaded",
		zap.String("artifact", artifact),
		zap.String("source", raw),
		zap.String("dest", dest),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Download returns the bytes at an http(s) or s3 source.
func (b *Bootstrapper) Download(ctx context.Context, raw string) ([]byte, error) {
	src, err := ParseSource(raw)
	if err != nil {
		return nil, err
	}

	switch src.Kind {
	case KindS3:
		client, err := b.s3Client(ctx)
		if err != nil {
			return nil, &Error{URL: raw, Message: "S3 client unavailable", Cause: err}
		}
		return DownloadObject(ctx, client, src.Bucket, src.Key, b.opts.MaxBytes)
	default:
		result, err := URL(ctx, src.Raw, b.opts)
		if err != nil {
			return nil, err
		}
		return result.Body, nil
	}
}

func (b *Bootstrapper) s3Client(ctx context.Context) (ObjectGetter, error) {
	b.s3Once.Do(func() {
		b.s3, b.s3Err = NewS3Client(ctx, b.s3cfg)
	})
	return b.s3, b.s3Err
}

func writeFile(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
