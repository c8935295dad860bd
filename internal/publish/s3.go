package publish

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3API is the part of the S3 client used here.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Option func(*S3)

func WithRegion(region string) Option {
	return func(r *S3) {
		r.Region = region
	}
}

func WithBucket(bucket string) Option {
	return func(r *S3) {
		r.Bucket = bucket
	}
}

func WithPrefix(prefix string) Option {
	return func(r *S3) {
		r.Prefix = prefix
	}
}

func WithEndpoint(endpoint string) Option {
	return func(r *S3) {
		r.Endpoint = endpoint
	}
}

func WithForcePathStyle(forcePathStyle bool) Option {
	return func(r *S3) {
		r.ForcePathStyle = forcePathStyle
	}
}

// WithStaticCredentials is ignored unless both keys are set.
func WithStaticCredentials(accessKey, secretKey string) Option {
	return func(r *S3) {
		r.accessKey = accessKey
		r.secretKey = secretKey
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *S3) {
		r.log = l
	}
}

// WithClient replaces the client built from the AWS config.
func WithClient(c S3API) Option {
	return func(r *S3) {
		r.client = c
	}
}

// S3 uploads objects to a bucket.
type S3 struct {
	log    zerolog.Logger
	client S3API

	accessKey string
	secretKey string

	Endpoint       string
	Region         string
	Bucket         string
	Prefix         string
	ForcePathStyle bool
}

func NewS3(ctx context.Context, opts ...Option) (*S3, error) {
	r := &S3{log: zerolog.Nop()}
	for _, o := range opts {
		o(r)
	}
	if r.client != nil {
		return r, nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if r.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(r.Region))
	}
	if r.accessKey != "" && r.secretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(r.accessKey, r.secretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	r.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = r.ForcePathStyle
		if r.Endpoint != "" {
			o.BaseEndpoint = aws.String(r.Endpoint)
		}
	})
	return r, nil
}

func (r *S3) Write(ctx context.Context, key string, reader io.Reader) error {
	objPath := path.Join(r.Prefix, key)

	r.log.Debug().
		Str("key", key).
		Str("prefix", r.Prefix).
		Str("object_path", objPath).
		Str("bucket", r.Bucket).
		Msg("s3 write")

	input := &s3.PutObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(objPath),
		Body:   reader,
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		input.ContentType = aws.String(ct)
	}
	_, err := r.client.PutObject(ctx, input)
	return err
}
