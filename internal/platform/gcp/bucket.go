package gcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/versatil/versatil-backend/internal/platform/ctxutil"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type BucketConfig struct {
	Name      string
	CDNDomain string
}

// BucketService stores public objects such as user avatars.
type BucketService interface {
	UploadFile(ctx context.Context, key string, file io.Reader) error
	DeleteFile(ctx context.Context, key string) error
	GetPublicURL(key string) string
	Close() error
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucket        BucketConfig
}

func NewBucketService(log *logger.Logger, cfg BucketConfig) (BucketService, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("missing bucket name")
	}
	serviceLog := log.With("service", "BucketService")

	opts := append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
	st, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog.Info("Object storage initialized", "bucket", cfg.Name, "cdn_domain", cfg.CDNDomain)
	return &bucketService{log: serviceLog, storageClient: st, bucket: cfg}, nil
}

func (bs *bucketService) UploadFile(ctx context.Context, key string, file io.Reader) error {
	ctx = ctxutil.Default(ctx)
	w := bs.storageClient.Bucket(bs.bucket.Name).Object(key).NewWriter(ctx)
	w.ContentType = contentTypeForKey(key)
	w.CacheControl = "public, max-age=86400"
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", key, err)
	}
	return nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, key string) error {
	err := bs.storageClient.Bucket(bs.bucket.Name).Object(key).Delete(ctxutil.Default(ctx))
	if err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (bs *bucketService) GetPublicURL(key string) string {
	return publicURL(bs.bucket, key)
}

func (bs *bucketService) Close() error {
	if bs == nil || bs.storageClient == nil {
		return nil
	}
	return bs.storageClient.Close()
}

func publicURL(cfg BucketConfig, key string) string {
	escaped := (&url.URL{Path: strings.TrimLeft(key, "/")}).EscapedPath()
	if cdn := strings.TrimRight(strings.TrimSpace(cfg.CDNDomain), "/"); cdn != "" {
		if !strings.HasPrefix(cdn, "http://") && !strings.HasPrefix(cdn, "https://") {
			cdn = "https://" + cdn
		}
		return cdn + "/" + escaped
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.Name, escaped)
}

func contentTypeForKey(key string) string {
	k := strings.ToLower(key)
	switch {
	case strings.HasSuffix(k, ".png"):
		return "image/png"
	case strings.HasSuffix(k, ".jpg"), strings.HasSuffix(k, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(k, ".pdf"):
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
