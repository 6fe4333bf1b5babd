package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a catalog listing. Image holds the public URL of the bucket object.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Company     string    `gorm:"column:company;not null" json:"company"`
	Description string    `gorm:"column:description;not null" json:"description"`
	Featured    bool      `gorm:"column:featured;not null;default:false;index:products_featured_idx" json:"featured"`
	Image       string    `gorm:"column:image;not null" json:"image"`
	Price       int       `gorm:"column:price;not null;default:0" json:"price"`
	OwnerID     string    `gorm:"column:owner_id;not null" json:"owner_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index:products_created_at_idx" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
