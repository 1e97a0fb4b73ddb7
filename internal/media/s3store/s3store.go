package s3store

import (
	"bytes"
	"context"
	"crypto/tls"
	"devEvents/internal/config"
	"devEvents/internal/media"
	"fmt"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"net/http"
	"path"
	"strings"
)

// API is the subset of the S3 client the store uses.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Store struct {
	api       API
	bucket    string
	folder    string
	publicURL string
}

func New(cfg *config.Media) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("media bucket is not configured")
	}

	awsCfg := aws.Config{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		),
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return NewWithAPI(client, cfg.Bucket, cfg.Folder, publicURL), nil
}

func NewWithAPI(api API, bucket, folder, publicURL string) *Store {
	return &Store{
		api:       api,
		bucket:    bucket,
		folder:    folder,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Upload stores data under a fresh key in the configured folder.
// Payloads that do not sniff as an image are rejected with media.ErrNotImage.
func (s *Store) Upload(ctx context.Context, data []byte) (media.Image, error) {
	const op = "media.s3store.Upload"

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return media.Image{}, fmt.Errorf("%s: %s: %w", op, mime.String(), media.ErrNotImage)
	}

	key := path.Join(s.folder, uuid.NewString()+mime.Extension())

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mime.String()),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return media.Image{}, fmt.Errorf("%s: %w", op, err)
	}

	return media.Image{
		URL: s.publicURL + "/" + key,
		ID:  key,
	}, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	const op = "media.s3store.Delete"

	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
