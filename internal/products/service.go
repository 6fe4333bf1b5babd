// Package products implements the catalog and admin product actions.
package products

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/access"
	"github.com/angelmondragon/storefront-backend/internal/images"
	"github.com/angelmondragon/storefront-backend/internal/schemas"
	"github.com/angelmondragon/storefront-backend/pkg/action"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/events"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/routecache"
	"github.com/google/uuid"
)

// Route paths whose cached data the product actions read and invalidate.
const (
	RouteHome          = "/"
	RouteProducts      = "/products"
	RouteAdminProducts = "/admin/products"
)

func ProductRoute(id string) string { return RouteProducts + "/" + id }

func EditRoute(id string) string { return RouteAdminProducts + "/" + id + "/edit" }

const (
	msgProductRemoved = "product removed"
	msgProductUpdated = "Product updated successfully"
	msgImageUpdated   = "Product image updated successfully"
)

// Service exposes the product actions. Every mutation reports failures as a
// message result; gate failures redirect to the home route.
type Service interface {
	FetchFeaturedProducts(ctx context.Context) action.Result[[]models.Product]
	FetchAllProducts(ctx context.Context, search string) action.Result[[]models.Product]
	FetchSingleProduct(ctx context.Context, productID string) action.Result[models.Product]
	CreateProduct(ctx context.Context, caller *auth.Identity, input schemas.Input) action.Result[action.Message]
	FetchAdminProducts(ctx context.Context, caller *auth.Identity) action.Result[[]models.Product]
	DeleteProduct(ctx context.Context, caller *auth.Identity, productID string) action.Result[action.Message]
	FetchAdminProductDetails(ctx context.Context, caller *auth.Identity, productID string) action.Result[models.Product]
	UpdateProduct(ctx context.Context, caller *auth.Identity, productID string, input schemas.Input) action.Result[action.Message]
	UpdateProductImage(ctx context.Context, caller *auth.Identity, productID string, input schemas.Input) action.Result[action.Message]
}

type productStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListFeatured(ctx context.Context) ([]models.Product, error)
	List(ctx context.Context, search string) ([]models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields Fields) error
	UpdateImage(ctx context.Context, id uuid.UUID, imageURL string) error
}

// ServiceParams groups dependencies for the product service.
type ServiceParams struct {
	Repo   productStore
	Images images.Service
	Gate   access.Gate
	Cache  *routecache.Cache
	Events events.Publisher
	Logger *logger.Logger
}

type service struct {
	repo   productStore
	images images.Service
	gate   access.Gate
	cache  *routecache.Cache
	events events.Publisher
	logg   *logger.Logger
}

// NewService builds a product service. Cache may be nil and Events defaults to a no-op publisher.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.Images == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image service is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	publisher := params.Events
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &service{
		repo:   params.Repo,
		images: params.Images,
		gate:   params.Gate,
		cache:  params.Cache,
		events: publisher,
		logg:   params.Logger,
	}, nil
}

func (s *service) FetchFeaturedProducts(ctx context.Context) action.Result[[]models.Product] {
	products, err := routecache.Load(ctx, s.cache, RouteHome, s.repo.ListFeatured)
	if err != nil {
		return readFailure[[]models.Product](s, ctx, "fetchFeaturedProducts", err)
	}
	return action.Success(products)
}

// FetchAllProducts caches only the unfiltered listing.
func (s *service) FetchAllProducts(ctx context.Context, search string) action.Result[[]models.Product] {
	search = strings.TrimSpace(search)
	load := func(ctx context.Context) ([]models.Product, error) {
		return s.repo.List(ctx, search)
	}

	var (
		products []models.Product
		err      error
	)
	if search == "" {
		products, err = routecache.Load(ctx, s.cache, RouteProducts, load)
	} else {
		products, err = load(ctx)
	}
	if err != nil {
		return readFailure[[]models.Product](s, ctx, "fetchAllProducts", err)
	}
	return action.Success(products)
}

func (s *service) FetchSingleProduct(ctx context.Context, productID string) action.Result[models.Product] {
	return s.lookup(ctx, "fetchSingleProduct", productID, ProductRoute, RouteProducts)
}

func (s *service) CreateProduct(ctx context.Context, caller *auth.Identity, input schemas.Input) action.Result[action.Message] {
	const name = "createProduct"
	identity, ok := s.gate.RequireAuthenticated(caller)
	if !ok {
		return action.Redirect[action.Message](access.HomeRoute)
	}
	ctx = s.logg.WithUserID(s.logg.WithAction(ctx, name), identity.UserID)

	fields, err := schemas.Validate[schemas.ProductInput](input)
	if err != nil {
		return s.failure(ctx, name, err)
	}
	image, err := schemas.Validate[schemas.ImageInput](input)
	if err != nil {
		return s.failure(ctx, name, err)
	}

	imageURL, err := s.images.UploadImage(ctx, image.Image)
	if err != nil {
		return s.failure(ctx, name, err)
	}

	product := &models.Product{
		Name:        fields.Name,
		Company:     fields.Company,
		Description: fields.Description,
		Featured:    fields.Featured,
		Price:       fields.Price,
		Image:       imageURL,
		OwnerID:     identity.UserID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		s.discardImage(ctx, imageURL)
		return s.failure(ctx, name, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create product"))
	}

	s.invalidate(ctx, RouteHome, RouteProducts, RouteAdminProducts)
	s.publish(ctx, events.ProductCreated, identity.UserID, productPayload(product))
	return action.Redirect[action.Message](RouteAdminProducts)
}

func (s *service) FetchAdminProducts(ctx context.Context, caller *auth.Identity) action.Result[[]models.Product] {
	if _, ok := s.gate.RequireAdmin(caller); !ok {
		return action.Redirect[[]models.Product](access.HomeRoute)
	}
	products, err := routecache.Load(ctx, s.cache, RouteAdminProducts, func(ctx context.Context) ([]models.Product, error) {
		return s.repo.List(ctx, "")
	})
	if err != nil {
		return readFailure[[]models.Product](s, ctx, "fetchAdminProducts", err)
	}
	return action.Success(products)
}

func (s *service) DeleteProduct(ctx context.Context, caller *auth.Identity, productID string) action.Result[action.Message] {
	const name = "deleteProduct"
	identity, ok := s.gate.RequireAdmin(caller)
	if !ok {
		return action.Redirect[action.Message](access.HomeRoute)
	}
	ctx = s.logg.WithUserID(s.logg.WithAction(ctx, name), identity.UserID)

	id, err := parseProductID(productID)
	if err != nil {
		return s.failure(ctx, name, err)
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.failure(ctx, name, persistenceError(err, "failed to delete product"))
	}

	s.discardImage(ctx, deleted.Image)
	key := id.String()
	s.invalidate(ctx, RouteAdminProducts, RouteHome, RouteProducts, ProductRoute(key), EditRoute(key))
	s.publish(ctx, events.ProductDeleted, identity.UserID, productPayload(deleted))
	return action.Done(msgProductRemoved)
}

func (s *service) FetchAdminProductDetails(ctx context.Context, caller *auth.Identity, productID string) action.Result[models.Product] {
	if _, ok := s.gate.RequireAdmin(caller); !ok {
		return action.Redirect[models.Product](access.HomeRoute)
	}
	return s.lookup(ctx, "fetchAdminProductDetails", productID, EditRoute, RouteAdminProducts)
}

func (s *service) UpdateProduct(ctx context.Context, caller *auth.Identity, productID string, input schemas.Input) action.Result[action.Message] {
	const name = "updateProduct"
	identity, ok := s.gate.RequireAdmin(caller)
	if !ok {
		return action.Redirect[action.Message](access.HomeRoute)
	}
	ctx = s.logg.WithUserID(s.logg.WithAction(ctx, name), identity.UserID)

	id, err := parseProductID(productID)
	if err != nil {
		return s.failure(ctx, name, err)
	}
	fields, err := schemas.Validate[schemas.ProductInput](input)
	if err != nil {
		return s.failure(ctx, name, err)
	}

	err = s.repo.UpdateFields(ctx, id, Fields{
		Name:        fields.Name,
		Company:     fields.Company,
		Description: fields.Description,
		Featured:    fields.Featured,
		Price:       fields.Price,
	})
	if err != nil {
		return s.failure(ctx, name, persistenceError(err, "failed to update product"))
	}

	key := id.String()
	s.invalidate(ctx, EditRoute(key), ProductRoute(key), RouteAdminProducts, RouteProducts, RouteHome)
	s.publish(ctx, events.ProductUpdated, identity.UserID, events.ProductPayload{ProductID: key, Name: fields.Name})
	return action.Done(msgProductUpdated)
}

// UpdateProductImage replaces the stored image. The previous object is the one
// recorded on the product; a "url" form value is only used when none is recorded.
func (s *service) UpdateProductImage(ctx context.Context, caller *auth.Identity, productID string, input schemas.Input) action.Result[action.Message] {
	const name = "updateProductImage"
	identity, ok := s.gate.RequireAdmin(caller)
	if !ok {
		return action.Redirect[action.Message](access.HomeRoute)
	}
	ctx = s.logg.WithUserID(s.logg.WithAction(ctx, name), identity.UserID)

	id, err := parseProductID(productID)
	if err != nil {
		return s.failure(ctx, name, err)
	}
	image, err := schemas.Validate[schemas.ImageInput](input)
	if err != nil {
		return s.failure(ctx, name, err)
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.failure(ctx, name, persistenceError(err, "failed to load product"))
	}
	oldURL := current.Image
	if oldURL == "" {
		oldURL = strings.TrimSpace(input.Values["url"])
	}

	imageURL, err := s.images.UploadImage(ctx, image.Image)
	if err != nil {
		return s.failure(ctx, name, err)
	}
	if err := s.repo.UpdateImage(ctx, id, imageURL); err != nil {
		s.discardImage(ctx, imageURL)
		return s.failure(ctx, name, persistenceError(err, "failed to update product image"))
	}
	if oldURL != imageURL {
		s.discardImage(ctx, oldURL)
	}

	key := id.String()
	s.invalidate(ctx, EditRoute(key), ProductRoute(key), RouteAdminProducts, RouteProducts, RouteHome)
	s.publish(ctx, events.ProductImageUpdated, identity.UserID, events.ProductPayload{ProductID: key, Name: current.Name, Image: imageURL})
	return action.Done(msgImageUpdated)
}

// lookup loads one product through the route cache and redirects to fallback
// when the id is malformed or unknown.
func (s *service) lookup(ctx context.Context, name, productID string, route func(string) string, fallback string) action.Result[models.Product] {
	id, err := parseProductID(productID)
	if err != nil {
		return action.Redirect[models.Product](fallback)
	}
	product, err := routecache.Load(ctx, s.cache, route(id.String()), func(ctx context.Context) (models.Product, error) {
		found, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return models.Product{}, err
		}
		return *found, nil
	})
	if errors.Is(err, ErrProductNotFound) {
		return action.Redirect[models.Product](fallback)
	}
	if err != nil {
		return readFailure[models.Product](s, ctx, name, err)
	}
	return action.Success(product)
}

func (s *service) failure(ctx context.Context, name string, err error) action.Result[action.Message] {
	ctx = s.logg.WithFields(s.logg.WithAction(ctx, name), pkgerrors.Dump(err).Fields())
	if pkgerrors.IsCode(err, pkgerrors.CodeValidation) || pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		s.logg.Warn(ctx, name+" rejected")
	} else {
		s.logg.Error(ctx, name+" failed", err)
	}
	return action.Failure(err)
}

func readFailure[T any](s *service, ctx context.Context, name string, err error) action.Result[T] {
	ctx = s.logg.WithFields(s.logg.WithAction(ctx, name), pkgerrors.Dump(err).Fields())
	s.logg.Error(ctx, name+" failed", err)
	return action.Error[T](pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load products"))
}

// discardImage removes an object that is no longer referenced. Failures are logged only.
func (s *service) discardImage(ctx context.Context, imageURL string) {
	if strings.TrimSpace(imageURL) == "" {
		return
	}
	if err := s.images.DeleteImage(ctx, imageURL); err != nil {
		ctx = s.logg.WithField(ctx, "image", imageURL)
		s.logg.Error(ctx, "image cleanup failed", err)
	}
}

func (s *service) invalidate(ctx context.Context, paths ...string) {
	if err := s.cache.Invalidate(ctx, paths...); err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"routes": paths, "error": err.Error()})
		s.logg.Warn(ctx, "route cache invalidation failed")
	}
}

func (s *service) publish(ctx context.Context, eventType events.Type, actorID string, data any) {
	if err := s.events.Publish(ctx, eventType, actorID, data); err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"event_type": string(eventType), "error": err.Error()})
		s.logg.Warn(ctx, "catalog event publish failed")
	}
}

func parseProductID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, ErrProductNotFound
	}
	return id, nil
}

// persistenceError keeps typed errors and wraps driver failures as dependency errors.
func persistenceError(err error, message string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

func productPayload(p *models.Product) events.ProductPayload {
	return events.ProductPayload{ProductID: p.ID.String(), Name: p.Name, Image: p.Image}
}
