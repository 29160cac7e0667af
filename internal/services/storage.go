package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	appconfig "panveliq/internal/config"
	"panveliq/internal/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var storageLog = logger.New("storage")

// S3Service handles uploads and signed URL generation for content assets
// and proposal exports.
type S3Service struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewS3Service(cfg appconfig.S3Config) (*S3Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, storageLog.Error("failed to load aws config", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Service{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.BucketName,
	}, nil
}

// UploadFile stores an object under a generated key and returns that key.
func (s *S3Service) UploadFile(ctx context.Context, body io.Reader, filename, contentType string) (string, error) {
	key := fmt.Sprintf("uploads/%s%s", uuid.New().String(), filepath.Ext(filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", storageLog.Error("failed to upload object", err)
	}

	storageLog.Info("uploaded %s", key)
	return key, nil
}

// GetSignedURL satisfies models.FileURLGenerator.
func (s *S3Service) GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", storageLog.Error("failed to presign object", err)
	}
	return req.URL, nil
}

// DeleteFile removes an object.
func (s *S3Service) DeleteFile(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return storageLog.Error("failed to delete object", err)
	}
	return nil
}
