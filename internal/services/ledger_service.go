package services

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// LedgerStore is the slice of storage the ledger service mutates.
type LedgerStore interface {
	CreateCategory(ctx context.Context, p storage.CreateCategoryParams) (*core.Category, error)
	UpdateCategory(ctx context.Context, id, userID int64, patch core.CategoryPatch) error
	DeleteCategory(ctx context.Context, id, userID int64) error
	CreateTransaction(ctx context.Context, p storage.CreateTransactionParams) (*core.Transaction, error)
	UpdateTransaction(ctx context.Context, id, userID int64, patch core.TransactionPatch) error
	DeleteTransaction(ctx context.Context, id, userID int64) error
}

// EventSink publishes ledger events. A nil sink disables publishing.
type EventSink interface {
	Publish(ctx context.Context, ev events.LedgerEvent) error
}

// LedgerService applies category and transaction mutations, then
// invalidates cached aggregates and fans out a ledger event. Publish
// failures are logged and swallowed; the write has already committed
// and the broker must not gate the API.
type LedgerService struct {
	store  LedgerStore
	sink   EventSink
	stats  *StatsService
	logger *log.Logger
}

// NewLedgerService wires the mutation path. sink and stats may be nil.
func NewLedgerService(store LedgerStore, sink EventSink, stats *StatsService, logger *log.Logger) *LedgerService {
	return &LedgerService{
		store:  store,
		sink:   sink,
		stats:  stats,
		logger: logger.WithComponent(log.ComponentLedger),
	}
}

// CreateCategory inserts a category for the user.
func (s *LedgerService) CreateCategory(ctx context.Context, p storage.CreateCategoryParams) (*core.Category, error) {
	cat, err := s.store.CreateCategory(ctx, p)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EntityCategory, events.ActionCreated, cat.ID, p.UserID)
	return cat, nil
}

// UpdateCategory applies a partial update. A mismatched id or owner is
// a silent no-op, so the event is published unconditionally.
func (s *LedgerService) UpdateCategory(ctx context.Context, id, userID int64, patch core.CategoryPatch) error {
	if err := s.store.UpdateCategory(ctx, id, userID, patch); err != nil {
		return err
	}
	s.invalidate(userID)
	s.publish(ctx, events.EntityCategory, events.ActionUpdated, id, userID)
	return nil
}

// DeleteCategory removes the category. Transactions keep their now
// dangling category reference.
func (s *LedgerService) DeleteCategory(ctx context.Context, id, userID int64) error {
	if err := s.store.DeleteCategory(ctx, id, userID); err != nil {
		return err
	}
	s.invalidate(userID)
	s.publish(ctx, events.EntityCategory, events.ActionDeleted, id, userID)
	return nil
}

// CreateTransaction inserts a transaction for the user.
func (s *LedgerService) CreateTransaction(ctx context.Context, p storage.CreateTransactionParams) (*core.Transaction, error) {
	tx, err := s.store.CreateTransaction(ctx, p)
	if err != nil {
		return nil, err
	}
	s.invalidate(p.UserID)
	s.publish(ctx, events.EntityTransaction, events.ActionCreated, tx.ID, p.UserID)
	s.logger.InfoContext(ctx, "transaction recorded",
		log.FieldUserID, p.UserID,
		log.FieldTransaction, tx.ID,
		log.FieldAmountCents, p.AmountCents,
		log.FieldKind, string(p.Kind))
	return tx, nil
}

// UpdateTransaction applies a partial update to the user's transaction.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id, userID int64, patch core.TransactionPatch) error {
	if err := s.store.UpdateTransaction(ctx, id, userID, patch); err != nil {
		return err
	}
	s.invalidate(userID)
	s.publish(ctx, events.EntityTransaction, events.ActionUpdated, id, userID)
	return nil
}

// DeleteTransaction removes the user's transaction.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id, userID int64) error {
	if err := s.store.DeleteTransaction(ctx, id, userID); err != nil {
		return err
	}
	s.invalidate(userID)
	s.publish(ctx, events.EntityTransaction, events.ActionDeleted, id, userID)
	return nil
}

func (s *LedgerService) invalidate(userID int64) {
	if s.stats != nil {
		s.stats.Invalidate(userID)
	}
}

func (s *LedgerService) publish(ctx context.Context, entity, action string, id, userID int64) {
	if s.sink == nil {
		return
	}
	ev := events.NewLedgerEvent(entity, action, id, userID)
	if err := s.sink.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "ledger event publish failed",
			log.FieldError, err,
			log.FieldUserID, userID,
			log.FieldOperation, log.OpPublish)
	}
}
