package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

const pingTimeout = 5 * time.Second

// ErrObjectNotFound is returned by Delete when the bucket has no such object.
var ErrObjectNotFound = errors.New("gcs object not found")

type Client struct {
	svc           *storage.Service
	defaultBucket string
	publicBaseURL string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Object describes a stored bucket object.
type Object struct {
	Bucket      string
	Name        string
	ContentType string
	Size        uint64
}

// UploadInput carries a single object write.
type UploadInput struct {
	Name         string
	ContentType  string
	CacheControl string
	Body         io.Reader
}

func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	svc, err := storage.NewService(ctx, clientOptions(cfg, gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating storage service: %w", err)
	}

	client := &Client{
		svc:           svc,
		defaultBucket: cfg.BucketName,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "gcs client initialized")
	}

	return client, nil
}

func clientOptions(cfg config.GCSConfig, gcp config.GCPConfig) []option.ClientOption {
	var opts []option.ClientOption
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		// emulators and test servers take unauthenticated requests
		return append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	return append(opts, option.WithScopes(storage.DevstorageReadWriteScope))
}

func (c *Client) Bucket() string {
	if c == nil {
		return ""
	}
	return c.defaultBucket
}

func (c *Client) Close() error {
	return nil
}

// Upload writes the object into the default bucket.
func (c *Client) Upload(ctx context.Context, in UploadInput) (Object, error) {
	if c == nil || c.svc == nil {
		return Object{}, errors.New("gcs client not initialized")
	}
	if in.Name == "" {
		return Object{}, errors.New("object name is required")
	}
	if in.Body == nil {
		return Object{}, errors.New("object body is required")
	}

	meta := &storage.Object{
		Name:         in.Name,
		ContentType:  in.ContentType,
		CacheControl: in.CacheControl,
	}

	var media []googleapi.MediaOption
	if in.ContentType != "" {
		media = append(media, googleapi.ContentType(in.ContentType))
	}

	stored, err := c.svc.Objects.Insert(c.defaultBucket, meta).
		Media(in.Body, media...).
		Context(ctx).
		Do()
	if err != nil {
		return Object{}, fmt.Errorf("uploading %q: %w", in.Name, err)
	}
	if stored == nil || stored.Name == "" {
		return Object{}, nil
	}

	return Object{
		Bucket:      stored.Bucket,
		Name:        stored.Name,
		ContentType: stored.ContentType,
		Size:        stored.Size,
	}, nil
}

// Delete removes the object from the default bucket. A missing object yields ErrObjectNotFound.
func (c *Client) Delete(ctx context.Context, name string) error {
	if c == nil || c.svc == nil {
		return errors.New("gcs client not initialized")
	}
	if name == "" {
		return errors.New("object name is required")
	}

	err := c.svc.Objects.Delete(c.defaultBucket, name).Context(ctx).Do()
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return ErrObjectNotFound
	}
	return fmt.Errorf("deleting %q: %w", name, err)
}

// PublicURL is the address at which a public-read object is served.
func (c *Client) PublicURL(name string) string {
	if c == nil {
		return ""
	}
	base := c.publicBaseURL
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return fmt.Sprintf("%s/%s/%s", base, url.PathEscape(c.defaultBucket), url.PathEscape(name))
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.svc == nil {
		return errors.New("gcs client not initialized")
	}
	if c.defaultBucket == "" {
		return errors.New("gcs bucket not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	// object-level check (requires storage.objects.list)
	if _, err := c.svc.Objects.List(c.defaultBucket).MaxResults(1).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gcs object check failed: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
