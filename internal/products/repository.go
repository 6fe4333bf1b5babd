package products

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when no product matches the requested id.
var ErrProductNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "product not found")

const newestFirst = "created_at DESC, id DESC"

// searchClause matches name or company case-insensitively. The pattern is
// lowercased and LIKE-escaped by searchPattern.
const searchClause = `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(company) LIKE ? ESCAPE '\')`

// Fields holds the editable product columns. The image is updated separately.
type Fields struct {
	Name        string
	Company     string
	Description string
	Featured    bool
	Price       int
}

func (f Fields) columns() map[string]any {
	return map[string]any{
		"name":        f.Name,
		"company":     f.Company,
		"description": f.Description,
		"featured":    f.Featured,
		"price":       f.Price,
	}
}

// Repository persists catalog products.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Create(product).Error
}

// FindByID loads a single product, returning ErrProductNotFound when absent.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, repo.NotFound(err, ErrProductNotFound)
	}
	return &product, nil
}

// ListFeatured returns featured products, newest first.
func (r *Repository) ListFeatured(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := r.DB(ctx).
		Where("featured = ?", true).
		Order(newestFirst).
		Find(&products).
		Error
	return products, err
}

// List returns every product whose name or company contains search, newest
// first. An empty search returns the full catalog.
func (r *Repository) List(ctx context.Context, search string) ([]models.Product, error) {
	products := []models.Product{}
	qb := r.DB(ctx).Model(&models.Product{})
	if term := strings.TrimSpace(search); term != "" {
		pattern := searchPattern(term)
		qb = qb.Where(searchClause, pattern, pattern)
	}
	err := qb.Order(newestFirst).Find(&products).Error
	return products, err
}

// Delete removes the product and its favorites and returns the deleted row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var deleted models.Product
	err := r.Tx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&deleted, "id = ?", id).Error; err != nil {
			return repo.NotFound(err, ErrProductNotFound)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return repo.Affected(tx.Where("id = ?", id).Delete(&models.Product{}), ErrProductNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// UpdateFields overwrites the editable columns, including zero values.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields Fields) error {
	return r.updateColumns(ctx, id, fields.columns())
}

func (r *Repository) UpdateImage(ctx context.Context, id uuid.UUID, imageURL string) error {
	return r.updateColumns(ctx, id, map[string]any{"image": imageURL})
}

func (r *Repository) updateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	res := r.DB(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(columns)
	return repo.Affected(res, ErrProductNotFound)
}

func searchPattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(term))
	return "%" + escaped + "%"
}
