package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// objectPutter is the subset of *s3.Client used for uploads.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// objectPresigner is the subset of *s3.PresignClient used for links.
type objectPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Backend uploads artifacts to a bucket and returns presigned GET links.
type S3Backend struct {
	client    objectPutter
	presigner objectPresigner
	bucket    string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewS3Backend creates an S3Backend. Credentials come from cfg.AccessKey
// and cfg.SecretKey when set, otherwise from the default AWS chain. A
// DefaultTTL outside [MinTTL, MaxTTL] is rejected here.
func NewS3Backend(ctx context.Context, cfg Config) (*S3Backend, error) {
	if err := ValidateTTL(cfg.DefaultTTL); err != nil {
		return nil, err
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", ErrInvalidConfig)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, &Error{Op: "init", Bucket: cfg.Bucket, Err: fmt.Errorf("load aws config: %w", err)}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Backend(client, s3.NewPresignClient(client), cfg.Bucket, cfg.DefaultTTL, cfg.logger()), nil
}

func newS3Backend(client objectPutter, presigner objectPresigner, bucket string, ttl time.Duration, logger *zap.Logger) *S3Backend {
	return &S3Backend{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
		ttl:       ttl,
		logger:    logger,
	}
}

// Backend returns BackendS3.
func (b *S3Backend) Backend() Backend { return BackendS3 }

// Put uploads data and returns a presigned link valid for ttl (zero means
// the configured default). An out-of-range ttl fails before any upload.
func (b *S3Backend) Put(ctx context.Context, data []byte, ext string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = b.ttl
	}
	art, err := newArtifact(data, ext, ttl)
	if err != nil {
		return "", &Error{Op: "put", Bucket: b.bucket, Err: err}
	}
	if err := ValidateTTL(art.TTL); err != nil {
		return "", &Error{Op: "put", Bucket: b.bucket, Key: art.Key, Err: err}
	}

	start := time.Now()
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(art.Key),
		Body:          bytes.NewReader(art.Data),
		ContentLength: aws.Int64(int64(len(art.Data))),
		ContentType:   aws.String(art.ContentType),
	})
	if err != nil {
		return "", &Error{Op: "put", Bucket: b.bucket, Key: art.Key, Err: err}
	}

	req, err := b.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(art.Key),
	}, s3.WithPresignExpires(art.TTL))
	if err != nil {
		return "", &Error{Op: "presign", Bucket: b.bucket, Key: art.Key, Err: err}
	}

	b.logger.Debug("S3 put object",
		zap.String("bucket", b.bucket),
		zap.String("key", art.Key),
		zap.Int("size", len(art.Data)),
		zap.Duration("ttl", art.TTL),
		zap.Duration("duration", time.Since(start)))

	return req.URL, nil
}

// Delete does nothing and reports true. Uploaded objects are expected to
// be removed by the bucket's lifecycle rules once their links expire.
func (b *S3Backend) Delete(_ context.Context, locator string) (bool, error) {
	b.logger.Debug("S3 delete skipped, objects expire by bucket lifecycle",
		zap.String("bucket", b.bucket),
		zap.String("locator", locator))
	return true, nil
}
