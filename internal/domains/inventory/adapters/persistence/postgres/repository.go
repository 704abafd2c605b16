package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/ports"
)

type productRecord struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	Quantity  int32
	UpdatedAt time.Time
}

func (productRecord) TableName() string { return "products" }

func (r productRecord) toDomain() *domain.Product {
	return &domain.Product{ID: r.ID, Name: r.Name, Quantity: r.Quantity}
}

// Repository persists products in Postgres. Decrements lock the row with
// SELECT FOR UPDATE so the clamp is computed against the committed value
// even under concurrent consumers.
type Repository struct {
	db *gorm.DB
}

var _ ports.Repository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var record productRecord
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) Seed(ctx context.Context, product *domain.Product) error {
	record := productRecord{ID: product.ID, Name: product.Name, Quantity: product.Quantity}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "quantity", "updated_at"}),
		}).
		Create(&record).Error
}

func (r *Repository) ApplyDecrement(ctx context.Context, productID int64, quantitySold int32) (*ports.DecrementOutcome, error) {
	var outcome ports.DecrementOutcome
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record productRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		product := record.toDomain()
		clamped := product.ApplySale(quantitySold)
		if err := tx.Model(&productRecord{}).
			Where("id = ?", productID).
			Update("quantity", product.Quantity).Error; err != nil {
			return err
		}
		outcome = ports.DecrementOutcome{Product: product, Clamped: clamped}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}
