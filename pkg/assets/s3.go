package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config holds the settings of an S3-compatible bucket.
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UsePathStyle  bool
	PublicBaseURL string
	Folder        string
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader crops images locally and stores them in an S3-compatible bucket.
type S3Uploader struct {
	client  objectPutter
	bucket  string
	folder  string
	baseURL string
}

// NewS3Uploader creates a new S3Uploader.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		folder:  cfg.Folder,
		baseURL: publicBaseURL(cfg),
	}, nil
}

// publicBaseURL returns the URL prefix under which objects of the bucket are served.
func publicBaseURL(cfg S3Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "" && cfg.UsePathStyle:
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/")
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// UploadProfileImage fill-crops r to a square JPEG, stores it under a random
// key and returns its public URL.
func (u *S3Uploader) UploadProfileImage(ctx context.Context, r io.Reader, filename string) (string, error) {
	data, err := ProcessProfileImage(r)
	if err != nil {
		return "", fmt.Errorf("process %s: %w", filename, err)
	}

	key := path.Join(u.folder, uuid.New().String()+".jpg")
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put %s: %w", key, err)
	}

	return u.baseURL + "/" + key, nil
}
