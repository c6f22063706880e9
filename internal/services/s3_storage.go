package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3StorageService stores food photos in an S3 bucket. Returned URLs are
// rooted at publicBaseURL (a CloudFront domain or the bucket endpoint).
type S3StorageService struct {
	client        s3API
	presign       *s3.PresignClient
	bucket        string
	publicBaseURL string
}

func NewS3StorageService(cfg aws.Config, bucket, publicBaseURL string) *S3StorageService {
	client := s3.NewFromConfig(cfg)
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}
	return &S3StorageService{
		client:        client,
		presign:       s3.NewPresignClient(client),
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *S3StorageService) UploadFile(ctx context.Context, content []byte, filename string, folder string) (string, error) {
	key := path.Join(strings.Trim(folder, "/"), filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(http.DetectContentType(content)),
	})
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	return s.publicBaseURL + "/" + key, nil
}

func (s *S3StorageService) DeleteFile(ctx context.Context, fileURL string) error {
	key, err := s.keyFromURL(fileURL)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *S3StorageService) GetSignedURL(ctx context.Context, fileURL string) (string, error) {
	key, err := s.keyFromURL(fileURL)
	if err != nil {
		return "", err
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(time.Hour))
	if err != nil {
		return "", fmt.Errorf("get signed url: %w", err)
	}
	return req.URL, nil
}

func (s *S3StorageService) keyFromURL(fileURL string) (string, error) {
	prefix := s.publicBaseURL + "/"
	if !strings.HasPrefix(fileURL, prefix) {
		return "", fmt.Errorf("file url does not belong to configured bucket")
	}
	key, err := url.PathUnescape(strings.TrimPrefix(fileURL, prefix))
	if err != nil {
		return "", fmt.Errorf("parse file url: %w", err)
	}
	return key, nil
}
