package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-sales-api-server/internal/domains/invoices/ports"
	"github.com/Apurer/go-sales-api-server/internal/shared/contracts"
)

type invoiceRecord struct {
	NFID        string                    `gorm:"column:nf_id;primaryKey;size:64"`
	SaleOrderID int64                     `gorm:"index"`
	Document    contracts.InvoiceDocument `gorm:"serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (invoiceRecord) TableName() string { return "invoice_documents" }

// Store persists invoice documents in Postgres, one row per nf_id.
type Store struct {
	db *gorm.DB
}

var _ ports.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Upsert(ctx context.Context, doc contracts.InvoiceDocument) error {
	record := invoiceRecord{
		NFID:        doc.NFID,
		SaleOrderID: doc.SaleOrderID,
		Document:    doc,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "nf_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sale_order_id", "document", "updated_at"}),
		}).
		Create(&record).Error
}

func (s *Store) GetByID(ctx context.Context, nfID string) (*contracts.InvoiceDocument, error) {
	var record invoiceRecord
	if err := s.db.WithContext(ctx).First(&record, "nf_id = ?", nfID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	doc := record.Document
	return &doc, nil
}
