// 레시피 이미지를 S3 호환 버킷에 저장하는 클라이언트
//
// 환경변수 (config.StorageConfig):
//   - S3_BUCKET: 비어 있으면 이미지 업로드 비활성화
//   - S3_REGION (default: us-east-1)
//   - S3_ENDPOINT: MinIO 등 S3 호환 엔드포인트
//   - S3_ACCESS_KEY_ID / S3_SECRET_ACCESS_KEY: 정적 자격 증명 (없으면 기본 체인 사용)
//   - S3_PUBLIC_BASE_URL: 응답에 내려줄 공개 URL prefix (CDN 등)
//   - S3_USE_PATH_STYLE: path-style 주소 사용 여부

package client

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/recipehub/backend/internal/config"
	"github.com/recipehub/backend/internal/model"
)

// S3ImageStore uploads recipe images as public objects. The object key is
// used as the image's public id.
type S3ImageStore struct {
	client        *s3.Client
	bucket        string
	region        string
	endpoint      string
	publicBaseURL string
	now           func() time.Time
}

func NewS3ImageStore(ctx context.Context, cfg config.StorageConfig) (*S3ImageStore, error) {
	if !cfg.ImagesEnabled() {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3ImageStore{
		client:        s3Client,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      cfg.Endpoint,
		publicBaseURL: cfg.PublicBaseURL,
		now:           time.Now,
	}, nil
}

// Upload stores the file at path under a fresh key.
func (s *S3ImageStore) Upload(ctx context.Context, path string) (*model.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	key := imageKey(s.now(), ext)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}

	return &model.Image{
		URL:      objectURL(s.publicBaseURL, s.endpoint, s.bucket, s.region, key),
		PublicID: key,
	}, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, publicID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", publicID, err)
	}
	return nil
}

func imageKey(t time.Time, ext string) string {
	t = t.UTC()
	return fmt.Sprintf("recipes/%04d/%02d/%02d/%s%s", t.Year(), t.Month(), t.Day(), uuid.NewString(), ext)
}

// objectURL prefers the configured public base, then a path-style URL on the
// custom endpoint, then the virtual-hosted AWS URL.
func objectURL(publicBase, endpoint, bucket, region, key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	switch {
	case publicBase != "":
		return strings.TrimRight(publicBase, "/") + "/" + escaped
	case endpoint != "":
		return strings.TrimRight(endpoint, "/") + "/" + bucket + "/" + escaped
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, escaped)
	}
}
