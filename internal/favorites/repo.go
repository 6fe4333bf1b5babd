package favorites

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrFavoriteNotFound is returned when the caller owns no favorite with the given id.
var ErrFavoriteNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "favorite not found")

// Repository encapsulates favorite persistence.
type Repository struct {
	repo.Base
}

// NewRepository constructs a favorite repository bound to the provided gorm DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// Add inserts the (owner, product) favorite, ignoring duplicates, and returns the stored row.
func (r *Repository) Add(ctx context.Context, ownerID string, productID uuid.UUID) (*models.Favorite, error) {
	if ownerID == "" || productID == uuid.Nil {
		return nil, gorm.ErrInvalidValue
	}

	favorite := &models.Favorite{ProductID: productID, OwnerID: ownerID}
	err := r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(favorite).
		Error
	if db.IsForeignKeyViolation(err) {
		// product deleted between lookup and insert
		return nil, products.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.FindByOwnerAndProduct(ctx, ownerID, productID)
}

// Remove deletes the favorite when it belongs to ownerID and returns the deleted row.
func (r *Repository) Remove(ctx context.Context, id uuid.UUID, ownerID string) (*models.Favorite, error) {
	var removed models.Favorite
	err := r.Tx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&removed, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
			return repo.NotFound(err, ErrFavoriteNotFound)
		}
		res := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Favorite{})
		return repo.Affected(res, ErrFavoriteNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

// FindByOwnerAndProduct returns ErrFavoriteNotFound when the owner has not liked the product.
func (r *Repository) FindByOwnerAndProduct(ctx context.Context, ownerID string, productID uuid.UUID) (*models.Favorite, error) {
	var favorite models.Favorite
	err := r.DB(ctx).
		Where("owner_id = ? AND product_id = ?", ownerID, productID).
		First(&favorite).
		Error
	if err != nil {
		return nil, repo.NotFound(err, ErrFavoriteNotFound)
	}
	return &favorite, nil
}

// ListByOwner returns the owner's favorites with their products, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]models.Favorite, error) {
	favorites := []models.Favorite{}
	err := r.DB(ctx).
		Preload("Product").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&favorites).
		Error
	return favorites, err
}
