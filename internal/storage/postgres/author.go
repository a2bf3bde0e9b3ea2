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

type AuthorStore struct {
	db *sqlx.DB
}

func NewAuthorStore(db *sqlx.DB) *AuthorStore {
	return &AuthorStore{db: db}
}

const authorWithCount = `
	SELECT au.id, au.name, au.slug, au.bio, au.email, au.avatar_url,
		au.created_at, au.updated_at,
		(SELECT COUNT(*) FROM articles a WHERE a.author_id = au.id) AS article_count
	FROM authors au`

func (s *AuthorStore) Create(ctx context.Context, a *domain.Author) (int64, error) {
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, `
		INSERT INTO authors (name, slug, bio, email, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		a.Name, a.Slug, a.Bio, a.Email, a.AvatarURL,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert author: %w", translateUnique(err, domain.EntityAuthor, a.Slug))
	}
	return a.ID, nil
}

func (s *AuthorStore) Update(ctx context.Context, a *domain.Author) error {
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, `
		UPDATE authors SET
			name = $1, slug = $2, bio = $3, email = $4, avatar_url = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`,
		a.Name, a.Slug, a.Bio, a.Email, a.AvatarURL, a.ID,
	).Scan(&a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFound(domain.EntityAuthor, a.ID)
	}
	if err != nil {
		return fmt.Errorf("update author: %w", translateUnique(err, domain.EntityAuthor, a.Slug))
	}
	return nil
}

func (s *AuthorStore) Delete(ctx context.Context, id int64) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	return expectAffected(res, domain.EntityAuthor, id)
}

func (s *AuthorStore) GetByID(ctx context.Context, id int64) (*domain.Author, error) {
	return s.getOne(ctx, authorWithCount+` WHERE au.id = $1`, id)
}

func (s *AuthorStore) GetBySlug(ctx context.Context, slug string) (*domain.Author, error) {
	return s.getOne(ctx, authorWithCount+` WHERE au.slug = $1`, slug)
}

func (s *AuthorStore) getOne(ctx context.Context, query string, arg any) (*domain.Author, error) {
	var a domain.Author
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &a, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}
	return &a, nil
}

func (s *AuthorStore) List(ctx context.Context) ([]domain.Author, error) {
	authors := []domain.Author{}
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &authors, authorWithCount+` ORDER BY au.name, au.id`)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return authors, nil
}

func (s *AuthorStore) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Author, error) {
	result := make(map[int64]domain.Author, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var authors []domain.Author
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &authors,
		authorWithCount+` WHERE au.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get authors: %w", err)
	}
	for _, a := range authors {
		result[a.ID] = a
	}
	return result, nil
}

func (s *AuthorStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &n, `SELECT COUNT(*) FROM authors`); err != nil {
		return 0, fmt.Errorf("count authors: %w", err)
	}
	return n, nil
}
