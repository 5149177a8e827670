package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config locates a dataset object in AWS S3 or an S3-compatible store such as MinIO.
type S3Config struct {
	Region    string
	Bucket    string
	Key       string
	Endpoint  string // optional custom endpoint
	PathStyle bool

	// Static credentials; the default credential chain is used when empty.
	AccessKeyID     string
	SecretAccessKey string

	// HTTPClient overrides the SDK transport.
	HTTPClient aws.HTTPClient
}

// S3Object opens one object from a bucket.
type S3Object struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Object builds an S3 client from cfg and the default AWS configuration chain.
func NewS3Object(ctx context.Context, cfg S3Config) (*S3Object, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, errors.New("s3 bucket and key required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})
	return &S3Object{client: client, bucket: cfg.Bucket, key: cfg.Key}, nil
}

func (o *S3Object) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return out.Body, nil
}

func (o *S3Object) Name() string { return fmt.Sprintf("s3://%s/%s", o.bucket, o.key) }
