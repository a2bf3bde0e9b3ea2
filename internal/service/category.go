package service

import (
	"context"
	"log/slog"

	"editorial_catalog/internal/domain"
)

type CategoryService struct {
	categories CategoryStore
	articles   ArticleStore
	slugs      SlugIndex
	txManager  TransactionManager
	notifier   *Notifier
	logger     *slog.Logger
}

func NewCategoryService(
	categories CategoryStore,
	articles ArticleStore,
	slugs SlugIndex,
	txManager TransactionManager,
	notifier *Notifier,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{
		categories: categories,
		articles:   articles,
		slugs:      slugs,
		txManager:  txManager,
		notifier:   notifier,
		logger:     logger.With("component", "categories"),
	}
}

// Create stores a new category. Without an explicit sort order it is
// placed after every existing one.
func (s *CategoryService) Create(ctx context.Context, in domain.CategoryInput) (*domain.CategoryView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	categoryType, err := domain.ParseCategoryType(in.Type)
	if err != nil {
		return nil, err
	}
	categorySlug, err := resolveSlug(in.Slug, in.Name)
	if err != nil {
		return nil, err
	}

	category := &domain.Category{Slug: categorySlug, Type: categoryType}
	applyCategoryInput(category, in)

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := claimSlug(txCtx, s.slugs, domain.EntityCategory, categorySlug, 0); err != nil {
			return err
		}

		if in.SortOrder == nil {
			next, err := s.categories.NextSortOrder(txCtx)
			if err != nil {
				return err
			}
			category.SortOrder = next
		}

		_, err := s.categories.Create(txCtx, category)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category created", "id", category.ID, "slug", category.Slug)
	s.notifier.Notify(ctx, domain.EntityCategory, domain.ActionCreated, category.ID, category.Slug)

	return category.View(), nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, in domain.CategoryInput) (*domain.CategoryView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	categoryType, err := domain.ParseCategoryType(in.Type)
	if err != nil {
		return nil, err
	}
	categorySlug, err := resolveSlug(in.Slug, in.Name)
	if err != nil {
		return nil, err
	}

	var category *domain.Category
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if category, err = s.mustGet(txCtx, id); err != nil {
			return err
		}

		if categorySlug != category.Slug {
			if err := claimSlug(txCtx, s.slugs, domain.EntityCategory, categorySlug, id); err != nil {
				return err
			}
			category.Slug = categorySlug
		}

		category.Type = categoryType
		applyCategoryInput(category, in)

		return s.categories.Update(txCtx, category)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category updated", "id", id, "slug", category.Slug)
	s.notifier.Notify(ctx, domain.EntityCategory, domain.ActionUpdated, id, category.Slug)

	return category.View(), nil
}

// Delete removes a category that no article references.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	var category *domain.Category
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if category, err = s.mustGet(txCtx, id); err != nil {
			return err
		}

		count, err := s.articles.CountByCategory(txCtx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ReferentialConflictError{Entity: domain.EntityCategory, ID: id, Count: count}
		}

		return s.categories.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("category deleted", "id", id, "slug", category.Slug)
	s.notifier.Notify(ctx, domain.EntityCategory, domain.ActionDeleted, id, category.Slug)

	return nil
}

// Reorder gives each listed category its position as sort order. An unknown
// id aborts the whole reorder.
func (s *CategoryService) Reorder(ctx context.Context, orderedIDs []int64) ([]domain.CategoryView, error) {
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for position, id := range orderedIDs {
			if err := s.categories.SetSortOrder(txCtx, id, position); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("categories reordered", "count", len(orderedIDs))
	s.notifier.Notify(ctx, domain.EntityCategory, domain.ActionReordered, 0, "")

	return s.List(ctx)
}

func (s *CategoryService) List(ctx context.Context) ([]domain.CategoryView, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]domain.CategoryView, len(categories))
	for i := range categories {
		views[i] = *categories[i].View()
	}
	return views, nil
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*domain.CategoryView, error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.NewNotFound(domain.EntityCategory, slug)
	}
	return category.View(), nil
}

func (s *CategoryService) GetByID(ctx context.Context, id int64) (*domain.CategoryView, error) {
	category, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	return category.View(), nil
}

func (s *CategoryService) mustGet(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.NewNotFound(domain.EntityCategory, id)
	}
	return category, nil
}

func applyCategoryInput(c *domain.Category, in domain.CategoryInput) {
	c.Name = in.Name
	c.DisplayName = in.DisplayName
	c.Description = in.Description
	c.Emoji = in.Emoji
	c.Color = in.Color
	c.BgColor = in.BgColor
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}
}
