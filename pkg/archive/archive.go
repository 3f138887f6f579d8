// Package archive uploads exported audit data to S3 before retention deletes it.
package archive

import (
	"context"
	"fmt"
	"io"
	"path"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultRegion = "us-east-1"

type Archiver interface {
	Upload(ctx context.Context, name string, body io.Reader) (string, error)
}

type Settings struct {
	Bucket  string
	Prefix  string
	Region  string
	Profile string
}

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
}

// New returns nil when no bucket is configured.
func New(ctx context.Context, settings Settings) (Archiver, error) {
	if settings.Bucket == "" {
		return nil, nil
	}
	cfg, err := LoadConfig(ctx, settings.Profile, settings.Region)
	if err != nil {
		return nil, err
	}
	return NewWithClient(s3.NewFromConfig(*cfg), settings.Bucket, settings.Prefix), nil
}

func NewWithClient(client ObjectPutter, bucket, prefix string) Archiver {
	return &s3Archiver{client: client, bucket: bucket, prefix: prefix}
}

func LoadConfig(ctx context.Context, profile, region string) (*awssdk.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithDefaultRegion(DefaultRegion)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return &awsCfg, nil
}

// Upload stores body under prefix/name and returns the object key.
func (a *s3Archiver) Upload(ctx context.Context, name string, body io.Reader) (string, error) {
	key := path.Join(a.prefix, name)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awssdk.String(a.bucket),
		Key:         awssdk.String(key),
		Body:        body,
		ContentType: awssdk.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload s3://%s/%s: %w", a.bucket, key, err)
	}
	return key, nil
}
