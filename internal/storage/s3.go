// s3.go
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Provider implements StorageProvider for Amazon S3, used for pasted-image
// entries when UPLOAD_USE_S3 is set. Unfurled thumbnails are not stored here.
type S3Provider struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	region     string
	cdnDomain  string
	baseURL    string
}

// NewS3Provider creates a new S3 storage provider.
func NewS3Provider(ctx context.Context, cfg StorageConfig) (*S3Provider, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		return nil, fmt.Errorf("failed to access S3 bucket %s: %w", cfg.Bucket, err)
	}

	baseURL := cfg.CDNDomain
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = cfg.Endpoint
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Provider{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		cdnDomain:  cfg.CDNDomain,
		baseURL:    baseURL,
	}, nil
}

func loadAWSConfig(ctx context.Context, cfg StorageConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// Upload uploads a file to S3.
func (s *S3Provider) Upload(key string, data io.Reader, contentType string, size int64) (*UploadResult, error) {
	ctx := context.Background()

	var buf bytes.Buffer
	actualSize, err := io.Copy(&buf, data)
	if err != nil {
		return nil, NewStorageErrorWithKey(ErrCodeInternal, fmt.Sprintf("failed to read data: %v", err), key)
	}
	if size > 0 && actualSize != size {
		return nil, NewStorageErrorWithKey(ErrCodeInvalidInput,
			fmt.Sprintf("size mismatch: expected %d, got %d", size, actualSize), key)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	}
	if isMediaContentType(contentType) {
		input.CacheControl = aws.String("public, max-age=31536000")
	}

	result, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return nil, s.handleS3Error(err, key)
	}

	publicURL := s.generateURL(key)
	cdnURL := publicURL
	if s.cdnDomain != "" {
		cdnURL = fmt.Sprintf("https://%s/%s", strings.TrimPrefix(s.cdnDomain, "https://"), key)
	}

	etag := ""
	if result.ETag != nil {
		etag = strings.Trim(*result.ETag, "\"")
	}

	return &UploadResult{
		Key:         key,
		URL:         publicURL,
		CDNUrl:      cdnURL,
		Size:        actualSize,
		ContentType: contentType,
		ETag:        etag,
	}, nil
}

// Download downloads a file from S3.
func (s *S3Provider) Download(key string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.handleS3Error(err, key)
	}
	return result.Body, nil
}

// Delete removes a file from S3.
func (s *S3Provider) Delete(key string) error {
	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s.handleS3Error(err, key)
	}
	return nil
}

// Exists checks if a file exists in S3.
func (s *S3Provider) Exists(key string) (bool, error) {
	_, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if s.isNotFoundError(err) {
			return false, nil
		}
		return false, s.handleS3Error(err, key)
	}
	return true, nil
}

// GetURL generates a public URL for the file.
func (s *S3Provider) GetURL(key string) (string, error) {
	return s.generateURL(key), nil
}

// GetSignedURL generates a temporary signed URL.
func (s *S3Provider) GetSignedURL(key string, expiration time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", NewStorageErrorWithKey(ErrCodeInternal, fmt.Sprintf("failed to generate signed URL: %v", err), key)
	}
	return req.URL, nil
}

// GetMetadata retrieves file metadata from S3.
func (s *S3Provider) GetMetadata(key string) (*FileMetadata, error) {
	result, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.handleS3Error(err, key)
	}

	size := int64(0)
	if result.ContentLength != nil {
		size = *result.ContentLength
	}
	etag := ""
	if result.ETag != nil {
		etag = strings.Trim(*result.ETag, "\"")
	}
	lastModified := time.Time{}
	if result.LastModified != nil {
		lastModified = *result.LastModified
	}

	return &FileMetadata{
		Key:          key,
		Size:         size,
		ContentType:  aws.ToString(result.ContentType),
		LastModified: lastModified,
		ETag:         etag,
		Metadata:     result.Metadata,
	}, nil
}

// Copy copies a file within S3.
func (s *S3Provider) Copy(sourceKey, destKey string) error {
	copySource := fmt.Sprintf("%s/%s", s.bucket, sourceKey)
	_, err := s.client.CopyObject(context.Background(), &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(destKey),
		CopySource: aws.String(copySource),
	})
	if err != nil {
		return s.handleS3Error(err, destKey)
	}
	return nil
}

// Move moves a file within S3 (copy then delete).
func (s *S3Provider) Move(sourceKey, destKey string) error {
	if err := s.Copy(sourceKey, destKey); err != nil {
		return err
	}
	return s.Delete(sourceKey)
}

// ListFiles lists files with optional prefix.
func (s *S3Provider) ListFiles(prefix string, limit int) ([]FileInfo, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	if limit > 0 {
		input.MaxKeys = aws.Int32(int32(limit))
	}

	result, err := s.client.ListObjectsV2(context.Background(), input)
	if err != nil {
		return nil, NewStorageError(ErrCodeInternal, fmt.Sprintf("failed to list files: %v", err))
	}

	files := make([]FileInfo, 0, len(result.Contents))
	for _, obj := range result.Contents {
		size := int64(0)
		if obj.Size != nil {
			size = *obj.Size
		}
		lastModified := time.Time{}
		if obj.LastModified != nil {
			lastModified = *obj.LastModified
		}
		files = append(files, FileInfo{
			Key:          aws.ToString(obj.Key),
			Size:         size,
			LastModified: lastModified,
		})
	}

	return files, nil
}

// GetStorageInfo returns information about this S3 provider.
func (s *S3Provider) GetStorageInfo() StorageInfo {
	return StorageInfo{
		Provider: "s3",
		Region:   s.region,
		Bucket:   s.bucket,
		Endpoint: s.baseURL,
	}
}

func (s *S3Provider) generateURL(key string) string {
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", strings.TrimPrefix(s.cdnDomain, "https://"), key)
	}
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.baseURL, "/"), key)
}

func (s *S3Provider) handleS3Error(err error, key string) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return NewStorageErrorWithKey(ErrCodeNotFound, "file not found", key)
	}
	return NewStorageErrorWithKey(ErrCodeInternal, err.Error(), key)
}

func (s *S3Provider) isNotFoundError(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}

func isMediaContentType(contentType string) bool {
	for _, mediaType := range []string{"image/", "video/", "audio/"} {
		if strings.HasPrefix(contentType, mediaType) {
			return true
		}
	}
	return false
}

// GenerateStorageKey builds the object key for a user's stored image/thumbnail.
func GenerateStorageKey(userID, fileName, fileType string) string {
	cleanName := filepath.Base(fileName)
	switch fileType {
	case "thumbnail":
		return fmt.Sprintf("thumbnails/%s/%s", userID, cleanName)
	case "pasted_image":
		return fmt.Sprintf("images/%s/%s", userID, cleanName)
	default:
		return fmt.Sprintf("uploads/%s/%s", userID, cleanName)
	}
}

// CleanupExpiredFiles removes files under prefix older than olderThan.
func (s *S3Provider) CleanupExpiredFiles(prefix string, olderThan time.Time) error {
	files, err := s.ListFiles(prefix, 0)
	if err != nil {
		return err
	}

	var deleteErrors []error
	for _, file := range files {
		if file.LastModified.Before(olderThan) {
			if err := s.Delete(file.Key); err != nil {
				deleteErrors = append(deleteErrors, err)
			}
		}
	}

	if len(deleteErrors) > 0 {
		return fmt.Errorf("failed to delete %d files", len(deleteErrors))
	}
	return nil
}
