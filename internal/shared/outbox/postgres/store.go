package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/go-sales-api-server/internal/shared/outbox"
)

var _ outbox.Store = (*Store)(nil)

// Store reads and updates outbox rows in PostgreSQL. Rows are appended by the
// sales repository inside the order transaction using AppendTx.
type Store struct {
	db *gorm.DB
}

// NewStore wires a PostgreSQL-backed outbox store. Caller manages DB lifecycle.
func NewStore(db *gorm.DB) *Store {
	store := &Store{db: db}
	if db != nil {
		_ = db.AutoMigrate(&eventRecord{})
	}
	return store
}

type eventRecord struct {
	ID          string     `gorm:"primaryKey;column:id;size:36"`
	AggregateID int64      `gorm:"column:aggregate_id;index"`
	Topic       string     `gorm:"column:topic;type:varchar(64)"`
	Key         string     `gorm:"column:key;type:varchar(128)"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status;type:varchar(16);index"`
	CreatedAt   time.Time  `gorm:"column:created_at;index"`
	SentAt      *time.Time `gorm:"column:sent_at"`
}

func (eventRecord) TableName() string { return "outbox_events" }

// AppendTx inserts events within an existing transaction. The sales
// repository calls this alongside the order and item inserts so the rows
// commit or roll back together.
func AppendTx(tx *gorm.DB, events []outbox.Event) error {
	if len(events) == 0 {
		return nil
	}
	records := make([]eventRecord, 0, len(events))
	for _, ev := range events {
		records = append(records, toRecord(ev))
	}
	return tx.Create(&records).Error
}

// ListPending returns pending events created before now−grace, oldest first.
func (s *Store) ListPending(ctx context.Context, limit int, grace time.Duration) ([]outbox.Event, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).
		Where("status = ?", string(outbox.StatusPending)).
		Order("created_at ASC")
	if grace > 0 {
		q = q.Where("created_at < ?", time.Now().Add(-grace))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var records []eventRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return toEvents(records), nil
}

// PendingForAggregate returns one aggregate's pending events, oldest first.
func (s *Store) PendingForAggregate(ctx context.Context, aggregateID int64) ([]outbox.Event, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var records []eventRecord
	if err := s.db.WithContext(ctx).
		Where("aggregate_id = ? AND status = ?", aggregateID, string(outbox.StatusPending)).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return toEvents(records), nil
}

// MarkSent flips the event to SENT. Already-sent events are left untouched so
// a concurrent dispatcher and workflow cannot double-flip state.
func (s *Store) MarkSent(ctx context.Context, id string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	now := time.Now()
	result := s.db.WithContext(ctx).
		Model(&eventRecord{}).
		Where("id = ? AND status = ?", id, string(outbox.StatusPending)).
		Updates(map[string]any{"status": string(outbox.StatusSent), "sent_at": &now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return outbox.ErrNotFound
	}
	return nil
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres outbox store not configured")
	}
	return nil
}

func toRecord(ev outbox.Event) eventRecord {
	return eventRecord{
		ID:          ev.ID,
		AggregateID: ev.AggregateID,
		Topic:       ev.Topic,
		Key:         ev.Key,
		Payload:     ev.Payload,
		Status:      string(ev.Status),
		CreatedAt:   ev.CreatedAt,
		SentAt:      ev.SentAt,
	}
}

func toEvents(records []eventRecord) []outbox.Event {
	events := make([]outbox.Event, 0, len(records))
	for _, r := range records {
		events = append(events, outbox.Event{
			ID:          r.ID,
			AggregateID: r.AggregateID,
			Topic:       r.Topic,
			Key:         r.Key,
			Payload:     r.Payload,
			Status:      outbox.Status(r.Status),
			CreatedAt:   r.CreatedAt,
			SentAt:      r.SentAt,
		})
	}
	return events
}
