// Package images stores product images in the bucket and removes them by public URL.
package images

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/schemas"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/storage/gcs"
)

// DefaultCacheControl is applied to every uploaded image.
const DefaultCacheControl = "public, max-age=3600"

type storageClient interface {
	Upload(ctx context.Context, in gcs.UploadInput) (gcs.Object, error)
	Delete(ctx context.Context, name string) error
	PublicURL(name string) string
}

// Service uploads and deletes product images.
type Service interface {
	UploadImage(ctx context.Context, file *schemas.File) (string, error)
	DeleteImage(ctx context.Context, imageURL string) error
}

type service struct {
	storage      storageClient
	cacheControl string
	now          func() time.Time
}

// NewService constructs the image adapter over the bucket client.
func NewService(storage storageClient, cacheControl string) (Service, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage client required")
	}
	if strings.TrimSpace(cacheControl) == "" {
		cacheControl = DefaultCacheControl
	}
	return &service{
		storage:      storage,
		cacheControl: cacheControl,
		now:          time.Now,
	}, nil
}

// UploadImage writes the file as "<unix millis>-<file name>" and returns its public URL.
func (s *service) UploadImage(ctx context.Context, file *schemas.File) (string, error) {
	if file == nil || file.Open == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image is required")
	}

	body, err := file.Open()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "error reading image")
	}
	defer func() { _ = body.Close() }()

	name := objectName(s.now(), file.Name)
	stored, err := s.storage.Upload(ctx, gcs.UploadInput{
		Name:         name,
		ContentType:  file.ContentType,
		CacheControl: s.cacheControl,
		Body:         body,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "error uploading image")
	}
	if stored.Name == "" {
		return "", pkgerrors.New(pkgerrors.CodeStorage, "error uploading image")
	}

	return s.storage.PublicURL(stored.Name), nil
}

// DeleteImage removes the object named by the last path segment of imageURL.
// Deleting an object that is already gone succeeds.
func (s *service) DeleteImage(ctx context.Context, imageURL string) error {
	name, err := objectNameFromURL(imageURL)
	if err != nil {
		return err
	}

	err = s.storage.Delete(ctx, name)
	if err == nil || errors.Is(err, gcs.ErrObjectNotFound) {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "error deleting image")
}

func objectName(now time.Time, fileName string) string {
	clean := strings.NewReplacer("/", "-", "\\", "-").Replace(strings.TrimSpace(fileName))
	if clean == "" {
		clean = "image"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), clean)
}

func objectNameFromURL(raw string) (string, error) {
	invalid := pkgerrors.New(pkgerrors.CodeStorage, "invalid URL")

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", invalid
	}

	escapedPath := trimmed
	if parsed, err := url.Parse(trimmed); err == nil {
		escapedPath = parsed.EscapedPath()
	}
	if strings.HasSuffix(escapedPath, "/") {
		return "", invalid
	}

	segment := path.Base(escapedPath)
	if segment == "" || segment == "." || segment == "/" {
		return "", invalid
	}
	name, err := url.PathUnescape(segment)
	if err != nil || name == "" {
		return "", invalid
	}
	return name, nil
}
