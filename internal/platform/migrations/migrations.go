package migrations

import (
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/go-sales-api-server/internal/shared/contracts"
)

// Run applies the schema for all bounded contexts. Intended to replace
// adapter-level automigrate in deployments that run migrations separately.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&saleOrderRecord{},
		&saleItemRecord{},
		&productRecord{},
		&invoiceRecord{},
		&outboxRecord{},
	)
}

// Sale order schema mirrors the sales Postgres adapter.
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

// Product schema mirrors the inventory Postgres adapter.
type productRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name"`
	Quantity  int32     `gorm:"column:quantity"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Invoice schema mirrors the invoices Postgres adapter.
type invoiceRecord struct {
	NFID        string                    `gorm:"primaryKey;column:nf_id;size:64"`
	SaleOrderID int64                     `gorm:"column:sale_order_id;index"`
	Document    contracts.InvoiceDocument `gorm:"column:document;serializer:json"`
	CreatedAt   time.Time                 `gorm:"column:created_at"`
	UpdatedAt   time.Time                 `gorm:"column:updated_at"`
}

func (invoiceRecord) TableName() string { return "invoice_documents" }

// Outbox schema mirrors the shared outbox Postgres adapter.
type outboxRecord struct {
	ID          string     `gorm:"primaryKey;column:id;size:36"`
	AggregateID int64      `gorm:"column:aggregate_id;index"`
	Topic       string     `gorm:"column:topic;type:varchar(64)"`
	Key         string     `gorm:"column:key;type:varchar(128)"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status;type:varchar(16);index"`
	CreatedAt   time.Time  `gorm:"column:created_at;index"`
	SentAt      *time.Time `gorm:"column:sent_at"`
}

func (outboxRecord) TableName() string { return "outbox_events" }
