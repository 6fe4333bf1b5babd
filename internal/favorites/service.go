// Package favorites lets signed-in callers like and unlike products.
package favorites

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/access"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/action"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/events"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/routecache"
	"github.com/google/uuid"
)

// RouteFavorites is the caller's favorites page.
const RouteFavorites = "/favorites"

const (
	msgAdded   = "added to favorites"
	msgRemoved = "removed from favorites"
)

type favoriteStore interface {
	Add(ctx context.Context, ownerID string, productID uuid.UUID) (*models.Favorite, error)
	Remove(ctx context.Context, id uuid.UUID, ownerID string) (*models.Favorite, error)
	FindByOwnerAndProduct(ctx context.Context, ownerID string, productID uuid.UUID) (*models.Favorite, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Favorite, error)
}

type productLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// ServiceParams groups dependencies for the favorites service.
type ServiceParams struct {
	Repo     favoriteStore
	Products productLookup
	Gate     access.Gate
	Cache    *routecache.Cache
	Events   events.Publisher
	Logger   *logger.Logger
}

// Service exposes the favorite actions. All of them require a signed-in caller.
type Service interface {
	ToggleFavorite(ctx context.Context, caller *auth.Identity, in ToggleInput) action.Result[action.Message]
	FetchFavoriteID(ctx context.Context, caller *auth.Identity, productID string) action.Result[Lookup]
	FetchUserFavorites(ctx context.Context, caller *auth.Identity) action.Result[[]models.Favorite]
}

type service struct {
	repo     favoriteStore
	products productLookup
	gate     access.Gate
	cache    *routecache.Cache
	events   events.Publisher
	logg     *logger.Logger
}

// NewService builds a favorites service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "favorite repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	publisher := params.Events
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &service{
		repo:     params.Repo,
		products: params.Products,
		gate:     params.Gate,
		cache:    params.Cache,
		events:   publisher,
		logg:     params.Logger,
	}, nil
}

// ToggleFavorite removes in.FavoriteID when set, otherwise likes in.ProductID.
func (s *service) ToggleFavorite(ctx context.Context, caller *auth.Identity, in ToggleInput) action.Result[action.Message] {
	const name = "toggleFavorite"
	identity, ok := s.gate.RequireAuthenticated(caller)
	if !ok {
		return action.Redirect[action.Message](access.HomeRoute)
	}
	ctx = s.logg.WithUserID(s.logg.WithAction(ctx, name), identity.UserID)

	var (
		eventType events.Type
		payload   events.FavoritePayload
		message   string
	)
	if favoriteID := strings.TrimSpace(in.FavoriteID); favoriteID != "" {
		id, err := uuid.Parse(favoriteID)
		if err != nil {
			return s.failure(ctx, name, ErrFavoriteNotFound)
		}
		removed, err := s.repo.Remove(ctx, id, identity.UserID)
		if err != nil {
			return s.failure(ctx, name, persistenceError(err, "failed to remove favorite"))
		}
		eventType, message = events.FavoriteRemoved, msgRemoved
		payload = events.FavoritePayload{FavoriteID: removed.ID.String(), ProductID: removed.ProductID.String()}
	} else {
		rawID := strings.TrimSpace(in.ProductID)
		if rawID == "" {
			return s.failure(ctx, name, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
		}
		productID, err := uuid.Parse(rawID)
		if err != nil {
			return s.failure(ctx, name, products.ErrProductNotFound)
		}
		if _, err := s.products.FindByID(ctx, productID); err != nil {
			return s.failure(ctx, name, persistenceError(err, "failed to load product"))
		}
		added, err := s.repo.Add(ctx, identity.UserID, productID)
		if err != nil {
			return s.failure(ctx, name, persistenceError(err, "failed to add favorite"))
		}
		eventType, message = events.FavoriteAdded, msgAdded
		payload = events.FavoritePayload{FavoriteID: added.ID.String(), ProductID: productID.String()}
	}

	if pathname, ok := staleRoute(in.Pathname); ok {
		if err := s.cache.Invalidate(ctx, pathname); err != nil {
			warnCtx := s.logg.WithFields(ctx, map[string]any{"route": pathname, "error": err.Error()})
			s.logg.Warn(warnCtx, "route cache invalidation failed")
		}
	}
	if err := s.events.Publish(ctx, eventType, identity.UserID, payload); err != nil {
		warnCtx := s.logg.WithFields(ctx, map[string]any{"event_type": string(eventType), "error": err.Error()})
		s.logg.Warn(warnCtx, "catalog event publish failed")
	}
	return action.Done(message)
}

func (s *service) FetchFavoriteID(ctx context.Context, caller *auth.Identity, productID string) action.Result[Lookup] {
	identity, ok := s.gate.RequireAuthenticated(caller)
	if !ok {
		return action.Redirect[Lookup](access.HomeRoute)
	}
	id, err := uuid.Parse(strings.TrimSpace(productID))
	if err != nil {
		return action.Success(Lookup{})
	}

	favorite, err := s.repo.FindByOwnerAndProduct(ctx, identity.UserID, id)
	switch {
	case errors.Is(err, ErrFavoriteNotFound):
		return action.Success(Lookup{})
	case err != nil:
		return readFailure[Lookup](s, ctx, "fetchFavoriteId", err)
	}
	return action.Success(Lookup{FavoriteID: &favorite.ID})
}

func (s *service) FetchUserFavorites(ctx context.Context, caller *auth.Identity) action.Result[[]models.Favorite] {
	identity, ok := s.gate.RequireAuthenticated(caller)
	if !ok {
		return action.Redirect[[]models.Favorite](access.HomeRoute)
	}
	favorites, err := s.repo.ListByOwner(ctx, identity.UserID)
	if err != nil {
		return readFailure[[]models.Favorite](s, ctx, "fetchUserFavorites", err)
	}
	return action.Success(favorites)
}

func (s *service) failure(ctx context.Context, name string, err error) action.Result[action.Message] {
	ctx = s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		s.logg.Warn(ctx, name+" rejected")
	} else {
		s.logg.Error(ctx, name+" failed", err)
	}
	return action.Failure(err)
}

func readFailure[T any](s *service, ctx context.Context, name string, err error) action.Result[T] {
	ctx = s.logg.WithFields(s.logg.WithAction(ctx, name), pkgerrors.Dump(err).Fields())
	s.logg.Error(ctx, name+" failed", err)
	return action.Error[T](pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load favorites"))
}

func persistenceError(err error, message string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

// staleRoute cleans a client-supplied pathname and accepts it only when it names
// a public page whose favorite state may be cached.
func staleRoute(raw string) (string, bool) {
	p := strings.TrimSpace(raw)
	if !strings.HasPrefix(p, "/") {
		return "", false
	}
	p = path.Clean(p)
	switch {
	case p == products.RouteHome, p == products.RouteProducts, p == RouteFavorites:
		return p, true
	case strings.HasPrefix(p, products.RouteProducts+"/"), strings.HasPrefix(p, RouteFavorites+"/"):
		return p, true
	}
	return "", false
}
