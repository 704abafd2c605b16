//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	invoicespostgres "github.com/Apurer/go-sales-api-server/internal/domains/invoices/adapters/persistence/postgres"
	"github.com/Apurer/go-sales-api-server/internal/domains/invoices/ports"
	"github.com/Apurer/go-sales-api-server/internal/platform/migrations"
	"github.com/Apurer/go-sales-api-server/internal/shared/contracts"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("invoices_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func sampleDocument() contracts.InvoiceDocument {
	return contracts.InvoiceDocument{
		NFID:          "7a9f0c1e-0000-4000-8000-000000000001",
		SaleOrderID:   42,
		IssueDate:     time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
		ClientID:      7,
		EmployeeID:    3,
		PaymentMethod: "card",
		Status:        "EMITIDA",
		TotalValue:    210,
		Items: []contracts.InvoiceItem{
			{ProductID: 10, Quantity: 2, Price: 50, Discount: 0, Total: 100},
			{ProductID: 20, Quantity: 1, Price: 120, Discount: 10, Total: 110},
		},
	}
}

func TestPostgresStore_UpsertAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	store := invoicespostgres.NewStore(db)
	ctx := context.Background()

	doc := sampleDocument()
	require.NoError(t, store.Upsert(ctx, doc))

	loaded, err := store.GetByID(ctx, doc.NFID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), loaded.SaleOrderID)
	assert.InDelta(t, 210.0, loaded.TotalValue, 0.001)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, int64(20), loaded.Items[1].ProductID)

	_, err = store.GetByID(ctx, "unknown")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPostgresStore_RedeliverySettlesOnOneRow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	store := invoicespostgres.NewStore(db)
	ctx := context.Background()

	doc := sampleDocument()
	require.NoError(t, store.Upsert(ctx, doc))

	doc.Status = "REEMITIDA"
	require.NoError(t, store.Upsert(ctx, doc))

	var count int64
	require.NoError(t, db.Table("invoice_documents").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	loaded, err := store.GetByID(ctx, doc.NFID)
	require.NoError(t, err)
	assert.Equal(t, "REEMITIDA", loaded.Status, "the last delivery wins")
}
