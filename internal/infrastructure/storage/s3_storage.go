// Package storage resolves product image references against S3-compatible
// object storage.
package storage

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	catalogapp "github.com/shopflux/storefront/internal/application/catalog"
	"github.com/shopflux/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultRegion     = "us-east-1"
	defaultPresignTTL = 15 * time.Minute
)

var _ catalogapp.ImageResolver = (*S3Images)(nil)

// S3Images presigns GET URLs for product images kept as object keys. AWS S3
// and S3-compatible servers such as MinIO both work.
type S3Images struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	ttl       time.Duration
	log       *zap.Logger
}

// NewS3Images builds the client from cfg. Static credentials are used when
// an access key is set; otherwise the default AWS chain applies. A nil log
// discards warnings.
func NewS3Images(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (*S3Images, error) {
	switch {
	case cfg.Bucket == "":
		return nil, errors.New("storage: bucket is required")
	case (cfg.AccessKey == "") != (cfg.SecretKey == ""):
		return nil, errors.New("storage: access key and secret key must be set together")
	}
	endpoint, err := endpointURL(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	load := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cmp.Or(cfg.Region, defaultRegion))}
	if cfg.AccessKey != "" {
		static := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		load = append(load, awsconfig.WithCredentialsProvider(static))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, load...)
	if err != nil {
		return nil, fmt.Errorf("storage: aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	if log == nil {
		log = zap.NewNop()
	}
	return &S3Images{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		ttl:       cmp.Or(max(cfg.PresignExpiration, 0), defaultPresignTTL),
		log:       log,
	}, nil
}

// endpointURL accepts a bare host[:port] and assumes https for it.
func endpointURL(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return "", fmt.Errorf("storage: endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("storage: endpoint scheme %q", u.Scheme)
	}
	return raw, nil
}

// CheckBucket reports an unreachable or missing bucket. The storefront only
// reads images, so it never creates one.
func (s *S3Images) CheckBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	var (
		notFound     *types.NotFound
		noSuchBucket *types.NoSuchBucket
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &notFound), errors.As(err, &noSuchBucket):
		return fmt.Errorf("storage: bucket %q does not exist", s.bucket)
	default:
		return fmt.Errorf("storage: head bucket %q: %w", s.bucket, err)
	}
}

// Presign returns a GET URL for key and the moment it stops working.
func (s *S3Images) Presign(ctx context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage: object key is required")
	}
	req, err := s.presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)},
		s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("storage: presign %q: %w", key, err)
	}
	return req.URL, time.Now().Add(s.ttl), nil
}

// ResolveImageURL passes direct URLs through and presigns object keys. A
// key may carry the bucket name as its first segment.
func (s *S3Images) ResolveImageURL(ctx context.Context, ref string) (string, error) {
	if IsDirectURL(ref) {
		return ref, nil
	}
	signed, _, err := s.Presign(ctx, strings.TrimPrefix(ref, s.bucket+"/"))
	if err != nil {
		s.log.Warn("Image URL not presigned", zap.String("ref", ref), zap.Error(err))
		return "", err
	}
	return signed, nil
}

// IsDirectURL reports whether ref can be served as-is: absolute http(s)
// and data URLs, and root-relative paths.
func IsDirectURL(ref string) bool {
	if strings.HasPrefix(ref, "/") {
		return true
	}
	scheme, _, ok := strings.Cut(ref, ":")
	if !ok {
		return false
	}
	switch strings.ToLower(scheme) {
	case "http", "https":
		return strings.HasPrefix(ref[len(scheme):], "://")
	case "data":
		return true
	}
	return false
}
