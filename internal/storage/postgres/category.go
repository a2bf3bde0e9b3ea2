package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"editorial_catalog/internal/domain"
)

type CategoryStore struct {
	db *sqlx.DB
}

func NewCategoryStore(db *sqlx.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryWithCount = `
	SELECT c.id, c.name, c.slug, c.display_name, c.description, c.emoji, c.color,
		c.bg_color, c.type, c.sort_order, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM articles a WHERE a.category_id = c.id) AS article_count
	FROM categories c`

func (s *CategoryStore) Create(ctx context.Context, c *domain.Category) (int64, error) {
	query := `
		INSERT INTO categories (
			name, slug, display_name, description, emoji, color, bg_color, type, sort_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		c.Name,
		c.Slug,
		c.DisplayName,
		c.Description,
		c.Emoji,
		c.Color,
		c.BgColor,
		c.Type,
		c.SortOrder,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", translateUnique(err, domain.EntityCategory, c.Slug))
	}
	return c.ID, nil
}

func (s *CategoryStore) Update(ctx context.Context, c *domain.Category) error {
	query := `
		UPDATE categories SET
			name = $1, slug = $2, display_name = $3, description = $4, emoji = $5,
			color = $6, bg_color = $7, type = $8, sort_order = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`

	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		c.Name,
		c.Slug,
		c.DisplayName,
		c.Description,
		c.Emoji,
		c.Color,
		c.BgColor,
		c.Type,
		c.SortOrder,
		c.ID,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFound(domain.EntityCategory, c.ID)
	}
	if err != nil {
		return fmt.Errorf("update category: %w", translateUnique(err, domain.EntityCategory, c.Slug))
	}
	return nil
}

func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return expectAffected(res, domain.EntityCategory, id)
}

func (s *CategoryStore) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	return s.getOne(ctx, categoryWithCount+` WHERE c.id = $1`, id)
}

func (s *CategoryStore) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return s.getOne(ctx, categoryWithCount+` WHERE c.slug = $1`, slug)
}

func (s *CategoryStore) getOne(ctx context.Context, query string, arg any) (*domain.Category, error) {
	var c domain.Category
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &c, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// List returns all categories by sort order, name breaking ties.
func (s *CategoryStore) List(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &categories,
		categoryWithCount+` ORDER BY c.sort_order, c.name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryStore) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Category, error) {
	result := make(map[int64]domain.Category, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var categories []domain.Category
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &categories,
		categoryWithCount+` WHERE c.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get categories: %w", err)
	}
	for _, c := range categories {
		result[c.ID] = c
	}
	return result, nil
}

func (s *CategoryStore) SetSortOrder(ctx context.Context, id int64, sortOrder int) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE categories SET sort_order = $1, updated_at = NOW() WHERE id = $2`, sortOrder, id)
	if err != nil {
		return fmt.Errorf("set sort order: %w", err)
	}
	return expectAffected(res, domain.EntityCategory, id)
}

// NextSortOrder is one past the highest sort order in use, 0 when empty.
func (s *CategoryStore) NextSortOrder(ctx context.Context) (int, error) {
	var next int
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &next,
		`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM categories`)
	if err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	return next, nil
}

func (s *CategoryStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &n, `SELECT COUNT(*) FROM categories`); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}
