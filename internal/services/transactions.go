package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// EventPublisher is the slice of the AMQP client the transaction service
// needs. A nil publisher disables the feed.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, id, action string) error
}

type TransactionService struct {
	storage *storage.Repository
	events  EventPublisher
	logger  *log.Logger
}

func NewTransactionService(storage *storage.Repository, events EventPublisher, logger *log.Logger) *TransactionService {
	return &TransactionService{
		storage: storage,
		events:  events,
		logger:  logger.WithComponent(log.ComponentTransaction),
	}
}

type CreateTransactionInput struct {
	Amount      core.Money
	Description string
	Type        core.TransactionType
	Date        time.Time
	Notes       *string
	CategoryID  string
}

type UpdateTransactionInput struct {
	Amount      *core.Money
	Description *string
	Type        *core.TransactionType
	Date        *time.Time
	Notes       core.Optional[string]
	CategoryID  *string
}

func (s *TransactionService) List(ctx context.Context, userID string, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, userID, f)
}

// Totals returns the income and expense sums for the same filter shape the
// list uses.
func (s *TransactionService) Totals(ctx context.Context, userID string, f storage.TransactionFilter) (income, expenses core.Money, err error) {
	return s.storage.TransactionTotals(ctx, userID, f)
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (*core.Transaction, error) {
	return s.storage.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) Create(ctx context.Context, userID string, in CreateTransactionInput) (*core.Transaction, error) {
	// An omitted date means "now", not a zero timestamp.
	if in.Date.IsZero() {
		in.Date = time.Now().UTC()
	}
	tx := core.Transaction{
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Type:        in.Type,
		Date:        in.Date,
		Notes:       in.Notes,
		Category:    core.CategoryRef{ID: in.CategoryID},
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, userID, in.CategoryID, tx.Type); err != nil {
		return nil, err
	}

	created, err := s.storage.CreateTransaction(ctx, userID, tx)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldUserID, userID,
		log.FieldRecordID, created.ID,
		log.FieldAmountCents, created.Amount.Cents)
	s.publish(ctx, created.ID, amqp.ActionCreated)
	return created, nil
}

func (s *TransactionService) Update(ctx context.Context, userID, id string, in UpdateTransactionInput) (*core.Transaction, error) {
	tx, err := s.storage.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Amount != nil {
		tx.Amount = *in.Amount
	}
	if in.Description != nil {
		tx.Description = strings.TrimSpace(*in.Description)
	}
	if in.Type != nil {
		tx.Type = *in.Type
	}
	if in.Date != nil {
		tx.Date = *in.Date
	}
	if in.Notes.Set {
		tx.Notes = in.Notes.Ptr()
	}
	if in.CategoryID != nil {
		tx.Category = core.CategoryRef{ID: *in.CategoryID}
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	// The resulting pair must agree even when only one side changed.
	if err := s.checkCategory(ctx, userID, tx.Category.ID, tx.Type); err != nil {
		return nil, err
	}

	if err := s.storage.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	updated, err := s.storage.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, id, amqp.ActionUpdated)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.storage.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return core.ErrNotFound
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldUserID, userID,
		log.FieldRecordID, id)
	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

// checkCategory verifies the category belongs to the user and carries the
// same type as the transaction. A missing category is a validation failure
// here, not a 404: the transaction route was found, its payload is wrong.
func (s *TransactionService) checkCategory(ctx context.Context, userID, categoryID string, typ core.TransactionType) error {
	category, err := s.storage.GetCategory(ctx, userID, categoryID)
	if errors.Is(err, core.ErrNotFound) {
		return core.ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("load category: %w", err)
	}
	if category.Type != typ {
		return core.ErrCategoryTypeMismatch
	}
	return nil
}

func (s *TransactionService) publish(ctx context.Context, id, action string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, id, action); err != nil {
		// The row is already persisted; the export worker catches up from
		// the bookkeeping table on its next sweep.
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldRecordID, id,
			log.FieldAction, action,
			log.FieldError, err)
	}
}
