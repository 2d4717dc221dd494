package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/melody-ding/go-clipset/internal/logger"
	"go.uber.org/zap"
)

// S3Uploader copies exported shards to a bucket under a key prefix.
type S3Uploader struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
	logger   *zap.Logger
}

type S3Config struct {
	Region string
	Bucket string
	Prefix string
}

// NewS3Uploader uses the default AWS credential chain.
func NewS3Uploader(cfg S3Config, log *zap.Logger) (*S3Uploader, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.Region)})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return NewS3UploaderWithAPI(s3manager.NewUploader(sess), cfg, log), nil
}

func NewS3UploaderWithAPI(api s3manageriface.UploaderAPI, cfg S3Config, log *zap.Logger) *S3Uploader {
	return &S3Uploader{uploader: api, bucket: cfg.Bucket, prefix: cfg.Prefix, logger: logger.OrNop(log)}
}

// Key is the object key a local file is uploaded under.
func (u *S3Uploader) Key(localPath string) string {
	return path.Join(u.prefix, filepath.Base(localPath))
}

// UploadFiles uploads each file and returns the s3:// URLs in order.
func (u *S3Uploader) UploadFiles(ctx context.Context, paths []string) ([]string, error) {
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		url, err := u.uploadFile(ctx, p)
		if err != nil {
			return urls, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (u *S3Uploader) uploadFile(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	key := u.Key(localPath)
	_, err = u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/x-tar"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to s3://%s/%s: %w", localPath, u.bucket, key, err)
	}

	u.logger.Info("shard uploaded", zap.String("bucket", u.bucket), zap.String("key", key))
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}
