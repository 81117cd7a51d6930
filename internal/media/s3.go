package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
)

// S3Config describes the media host. Endpoint is only needed for S3
// compatible services other than AWS.
type S3Config struct {
	Bucket        string
	AccessKey     string
	SecretKey     string
	Region        string
	Endpoint      string
	PublicBaseURL string
	Timeout       time.Duration
	KeyPrefix     string
}

// S3Uploader uploads images with a single bounded attempt.
type S3Uploader struct {
	uploader *s3manager.Uploader
	cfg      S3Config
}

func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("media bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "posts"
	}

	awsCfg := &aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		MaxRetries:  aws.Int(0),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create media session: %w", err)
	}

	return &S3Uploader{uploader: s3manager.NewUploader(sess), cfg: cfg}, nil
}

func (u *S3Uploader) Backend() string { return "s3" }

// Upload stores the image under <prefix>/<uuid>.<ext> and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, img Image) (string, error) {
	if u.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.cfg.Timeout)
		defer cancel()
	}

	key := path.Join(u.cfg.KeyPrefix, uuid.NewString()+"."+Extension(img.Filename))
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	out, err := u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:       aws.String(u.cfg.Bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(img.Data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("upload to media host: %w", err)
	}

	if u.cfg.PublicBaseURL != "" {
		return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + key, nil
	}
	return out.Location, nil
}
