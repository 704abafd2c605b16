package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/go-sales-api-server/internal/domains/sales/domain"
	"github.com/Apurer/go-sales-api-server/internal/domains/sales/ports"
	outboxpostgres "github.com/Apurer/go-sales-api-server/internal/shared/outbox/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists sale orders and items in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&saleOrderRecord{}, &saleItemRecord{})
	}
	return repo
}

type saleOrderRecord struct {
	ID            int64     `gorm:"primaryKey;column:id"`
	ClientID      int64     `gorm:"column:client_id"`
	EmployeeID    int64     `gorm:"column:employee_id"`
	Date          time.Time `gorm:"column:date"`
	PaymentMethod string    `gorm:"column:payment_method;type:varchar(50)"`
	Status        string    `gorm:"column:status;type:varchar(20)"`
	Notes         string    `gorm:"column:notes"`
	CreatedAt     time.Time `gorm:"column:created_at;index"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (saleOrderRecord) TableName() string { return "sale_orders" }

type saleItemRecord struct {
	ID          int64   `gorm:"primaryKey;column:id"`
	SaleOrderID int64   `gorm:"column:sale_order_id;index"`
	ProductID   int64   `gorm:"column:product_id;index"`
	Quantity    int32   `gorm:"column:quantity"`
	Price       float64 `gorm:"column:price"`
	Discount    float64 `gorm:"column:discount"`
}

func (saleItemRecord) TableName() string { return "sale_items" }

// CreateWithItems writes the order header, all items, and the factory's
// outbox events in one transaction. Either the caller gets back a fully
// persisted order with events recorded, or nothing was written.
func (r *Repository) CreateWithItems(ctx context.Context, order *domain.SaleOrder, events ports.EventFactory) (*domain.SaleOrder, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("sale order is nil")
	}
	var saved *domain.SaleOrder
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := toOrderRecord(order)
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		itemRecords := make([]saleItemRecord, 0, len(order.Items))
		for _, item := range order.Items {
			itemRecords = append(itemRecords, saleItemRecord{
				SaleOrderID: record.ID,
				ProductID:   item.ProductID,
				Quantity:    item.Quantity,
				Price:       item.Price,
				Discount:    item.Discount,
			})
		}
		if err := tx.Create(&itemRecords).Error; err != nil {
			return err
		}
		saved = toDomainOrder(record, itemRecords)
		if events != nil {
			outboxEvents, err := events(saved)
			if err != nil {
				return err
			}
			if err := outboxpostgres.AppendTx(tx, outboxEvents); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// GetByID fetches an order and its items.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.SaleOrder, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record saleOrderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	items, err := r.itemsFor(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	return toDomainOrder(record, items), nil
}

// List returns all orders with their items.
func (r *Repository) List(ctx context.Context) ([]*domain.SaleOrder, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []saleOrderRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.SaleOrder, 0, len(records))
	for _, record := range records {
		items, err := r.itemsFor(ctx, record.ID)
		if err != nil {
			return nil, err
		}
		orders = append(orders, toDomainOrder(record, items))
	}
	return orders, nil
}

// UpdateHeader persists header-field changes; items are untouched.
func (r *Repository) UpdateHeader(ctx context.Context, order *domain.SaleOrder) (*domain.SaleOrder, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).
		Model(&saleOrderRecord{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"client_id":      order.ClientID,
			"employee_id":    order.EmployeeID,
			"date":           order.Date,
			"payment_method": order.PaymentMethod,
			"status":         order.Status,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, order.ID)
}

// Delete removes the order and cascades to its items in one transaction.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_order_id = ?", id).Delete(&saleItemRecord{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&saleOrderRecord{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

func (r *Repository) itemsFor(ctx context.Context, orderID int64) ([]saleItemRecord, error) {
	var items []saleItemRecord
	if err := r.db.WithContext(ctx).
		Where("sale_order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres sales repository not configured")
	}
	return nil
}

func toOrderRecord(order *domain.SaleOrder) saleOrderRecord {
	return saleOrderRecord{
		ID:            order.ID,
		ClientID:      order.ClientID,
		EmployeeID:    order.EmployeeID,
		Date:          order.Date,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
		Notes:         order.Notes,
	}
}

func toDomainOrder(record saleOrderRecord, items []saleItemRecord) *domain.SaleOrder {
	order := &domain.SaleOrder{
		ID:            record.ID,
		ClientID:      record.ClientID,
		EmployeeID:    record.EmployeeID,
		Date:          record.Date,
		PaymentMethod: record.PaymentMethod,
		Status:        record.Status,
		Notes:         record.Notes,
	}
	order.Items = make([]domain.SaleItem, 0, len(items))
	for _, item := range items {
		order.Items = append(order.Items, domain.SaleItem{
			ID:          item.ID,
			SaleOrderID: item.SaleOrderID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Discount:    item.Discount,
		})
	}
	return order
}
