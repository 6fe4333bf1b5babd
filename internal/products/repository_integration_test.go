//go:build integration

package products_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/favorites"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
)

type PostgresRepositorySuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	client    *db.Client
	products  *products.Repository
	favorites *favorites.Repository
}

func TestPostgresRepositorySuite(t *testing.T) {
	suite.Run(t, new(PostgresRepositorySuite))
}

func (s *PostgresRepositorySuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.client, err = db.New(s.ctx, config.DBConfig{DSN: dsn, Driver: config.DriverPostgres, MaxOpenConns: 5, MaxIdleConns: 2}, nil)
	s.Require().NoError(err)

	sqlDB, err := s.client.DB().DB()
	s.Require().NoError(err)
	applied, err := migrate.Up(s.ctx, sqlDB, nil)
	s.Require().NoError(err)
	s.Require().Equal(2, applied)

	s.products = products.NewRepository(s.client.DB())
	s.favorites = favorites.NewRepository(s.client.DB())
}

func (s *PostgresRepositorySuite) TearDownSuite() {
	if s.client != nil {
		s.NoError(s.client.Close())
	}
	if s.container != nil {
		s.NoError(testcontainers.TerminateContainer(s.container))
	}
}

func (s *PostgresRepositorySuite) SetupTest() {
	s.Require().NoError(s.client.DB().Exec("TRUNCATE favorites, products").Error)
}

func (s *PostgresRepositorySuite) seed(name, company string, createdAt time.Time) models.Product {
	product := models.Product{
		Name:        name,
		Company:     company,
		Description: "solid oak furniture built to last for many long years",
		Image:       "https://storage.googleapis.com/bucket/" + name + ".png",
		Price:       120,
		OwnerID:     "user_admin",
		CreatedAt:   createdAt,
	}
	s.Require().NoError(s.client.DB().Create(&product).Error)
	return product
}

func (s *PostgresRepositorySuite) TestListSearchIsCaseInsensitiveAndLiteral() {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s.seed("Oak Table", "ACME", base)
	s.seed("Pine Desk", "Woodworks", base.Add(time.Hour))
	s.seed("100% Wool Rug", "acme textiles", base.Add(2*time.Hour))

	found, err := s.products.List(s.ctx, "acme")
	s.Require().NoError(err)
	s.Require().Len(found, 2)
	s.Equal("100% Wool Rug", found[0].Name)
	s.Equal("Oak Table", found[1].Name)

	literal, err := s.products.List(s.ctx, "0%")
	s.Require().NoError(err)
	s.Require().Len(literal, 1)
	s.Equal("100% Wool Rug", literal[0].Name)

	all, err := s.products.List(s.ctx, "")
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *PostgresRepositorySuite) TestFavoriteAddIsIdempotent() {
	product := s.seed("Oak Table", "ACME", time.Now().UTC())

	first, err := s.favorites.Add(s.ctx, "user_shopper", product.ID)
	s.Require().NoError(err)
	second, err := s.favorites.Add(s.ctx, "user_shopper", product.ID)
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	var count int64
	s.Require().NoError(s.client.DB().Model(&models.Favorite{}).Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *PostgresRepositorySuite) TestFavoriteAddForMissingProduct() {
	_, err := s.favorites.Add(s.ctx, "user_shopper", uuid.New())
	s.ErrorIs(err, products.ErrProductNotFound)
}

func (s *PostgresRepositorySuite) TestDeleteRemovesFavorites() {
	product := s.seed("Oak Table", "ACME", time.Now().UTC())
	_, err := s.favorites.Add(s.ctx, "user_shopper", product.ID)
	s.Require().NoError(err)

	removed, err := s.products.Delete(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Equal(product.Image, removed.Image)

	var count int64
	s.Require().NoError(s.client.DB().Model(&models.Favorite{}).Count(&count).Error)
	s.Zero(count)

	_, err = s.products.Delete(s.ctx, product.ID)
	s.True(pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func (s *PostgresRepositorySuite) TestFindByIDMissing() {
	_, err := s.products.FindByID(s.ctx, uuid.New())
	s.ErrorIs(err, products.ErrProductNotFound)
	s.Require().NotErrorIs(err, gorm.ErrRecordNotFound)
}
