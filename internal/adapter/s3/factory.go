package s3

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Ning0612/hfind/internal/adapter"
	"github.com/Ning0612/hfind/internal/config"
	"github.com/Ning0612/hfind/internal/logger"
)

// Factory opens bucket-scoped adapters for s3:// URIs. Credentials come
// from the configuration when access_key is set, otherwise from the
// standard AWS chain (env, shared config, instance role).
type Factory struct {
	cfg config.S3Config
}

// NewFactory creates an S3 factory
func NewFactory(cfg config.S3Config) *Factory {
	return &Factory{cfg: cfg}
}

// Supports implements adapter.Factory
func (f *Factory) Supports(scheme string) bool {
	return scheme == Scheme || scheme == "s3a"
}

// Open implements adapter.Factory. The URI host is the bucket.
func (f *Factory) Open(ctx context.Context, uri *url.URL) (adapter.Filesystem, error) {
	if uri.Host == "" {
		return nil, fmt.Errorf("s3 uri %q has no bucket", uri.String())
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, f.loadOptions()...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, f.clientOptions)

	logger.Get().Debug("s3 client opened", "bucket", uri.Host, "region", awsCfg.Region, "endpoint", f.cfg.Endpoint)
	return newAdapter(client, uri.Host), nil
}

func (f *Factory) loadOptions() []func(*awsconfig.LoadOptions) error {
	var opts []func(*awsconfig.LoadOptions) error
	if f.cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(f.cfg.Region))
	}
	if f.cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(f.cfg.AccessKey, f.cfg.SecretKey, ""),
		))
	}
	return opts
}

func (f *Factory) clientOptions(o *s3.Options) {
	if f.cfg.Endpoint != "" {
		o.BaseEndpoint = aws.String(f.cfg.Endpoint)
	}
	o.UsePathStyle = f.cfg.UsePathStyle
}

var _ adapter.Factory = (*Factory)(nil)
