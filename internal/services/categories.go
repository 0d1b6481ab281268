// Package services holds the domain services sitting between the HTTP
// layer and the repository. Services validate input, enforce cross-entity
// rules, and return sentinel-wrapped domain errors; they never retry.
package services

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

type CategoryService struct {
	storage *storage.Repository
	logger  *log.Logger
}

func NewCategoryService(storage *storage.Repository, logger *log.Logger) *CategoryService {
	return &CategoryService{
		storage: storage,
		logger:  logger.WithComponent(log.ComponentCategory),
	}
}

type CreateCategoryInput struct {
	Name  string
	Type  core.TransactionType
	Color *string
	Icon  *string
}

type UpdateCategoryInput struct {
	Name  *string
	Type  *core.TransactionType
	Color core.Optional[string]
	Icon  core.Optional[string]
}

func (s *CategoryService) List(ctx context.Context, userID string, typ *core.TransactionType) ([]core.Category, error) {
	return s.storage.ListCategories(ctx, userID, typ)
}

func (s *CategoryService) Get(ctx context.Context, userID, id string) (*core.Category, error) {
	return s.storage.GetCategory(ctx, userID, id)
}

func (s *CategoryService) Create(ctx context.Context, userID string, in CreateCategoryInput) (*core.Category, error) {
	category := core.Category{
		Name:  strings.TrimSpace(in.Name),
		Type:  in.Type,
		Color: in.Color,
		Icon:  in.Icon,
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.storage.CategoryNameTaken(ctx, userID, category.Name, category.Type, "")
	if err != nil {
		return nil, fmt.Errorf("check category uniqueness: %w", err)
	}
	if taken {
		return nil, core.ErrCategoryExists
	}

	created, err := s.storage.CreateCategory(ctx, userID, category)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Category created",
		log.FieldUserID, userID,
		log.FieldRecordID, created.ID,
		log.FieldCategory, created.Name)
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id string, in UpdateCategoryInput) (*core.Category, error) {
	category, err := s.storage.GetCategory(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		category.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		category.Type = *in.Type
	}
	if in.Color.Set {
		category.Color = in.Color.Ptr()
	}
	if in.Icon.Set {
		category.Icon = in.Icon.Ptr()
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.storage.CategoryNameTaken(ctx, userID, category.Name, category.Type, id)
	if err != nil {
		return nil, fmt.Errorf("check category uniqueness: %w", err)
	}
	if taken {
		return nil, core.ErrCategoryExists
	}

	if err := s.storage.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete refuses to remove a category that still has transactions; the
// caller must reassign or delete them first.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	category, err := s.storage.GetCategory(ctx, userID, id)
	if err != nil {
		return err
	}
	if category.UsageCount > 0 {
		return core.ErrCategoryInUse
	}

	deleted, err := s.storage.DeleteCategory(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return core.ErrNotFound
	}

	s.logger.InfoContext(ctx, "Category deleted",
		log.FieldUserID, userID,
		log.FieldRecordID, id)
	return nil
}
