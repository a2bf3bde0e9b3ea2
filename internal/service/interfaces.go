package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"editorial_catalog/internal/domain"
)

// Stores return (nil, nil) from GetByID and GetBySlug when nothing matches.

type ArticleStore interface {
	Create(ctx context.Context, article *domain.Article) (int64, error)
	Update(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Article, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Article, error)
	ListPublishedFeatured(ctx context.Context) ([]domain.Article, error)
	SetFeatured(ctx context.Context, id int64, featured bool) error
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.ArticleStatus]int64, error)
	Find(ctx context.Context, filter domain.ArticleFilter, page domain.PageRequest) ([]domain.Article, int64, error)
}

type TagStore interface {
	Create(ctx context.Context, tag *domain.Tag) (int64, error)
	Update(ctx context.Context, tag *domain.Tag) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Tag, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Tag, error)
	List(ctx context.Context) ([]domain.Tag, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Tag, error)
	ArticleIDs(ctx context.Context, tagID int64) ([]int64, error)
	Attach(ctx context.Context, articleID, tagID int64) error
	Detach(ctx context.Context, articleID, tagID int64) error
	ReplaceAll(ctx context.Context, articleID int64, tagIDs []int64) error
	GetByArticleIDs(ctx context.Context, articleIDs []int64) (map[int64][]domain.Tag, error)
	Count(ctx context.Context) (int64, error)
}

type CategoryStore interface {
	Create(ctx context.Context, category *domain.Category) (int64, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Category, error)
	SetSortOrder(ctx context.Context, id int64, sortOrder int) error
	NextSortOrder(ctx context.Context) (int, error)
	Count(ctx context.Context) (int64, error)
}

type AuthorStore interface {
	Create(ctx context.Context, author *domain.Author) (int64, error)
	Update(ctx context.Context, author *domain.Author) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Author, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Author, error)
	List(ctx context.Context) ([]domain.Author, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Author, error)
	Count(ctx context.Context) (int64, error)
}

type SlugIndex interface {
	SlugTaken(ctx context.Context, entity domain.Entity, slug string, excludeID int64) (bool, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, event domain.CatalogEvent) error
	Close() error
}

// ListingCache stores rendered public listings. Get reports whether key was
// present and decoded into dest. InvalidateAll advances the generation; Set
// drops the value when generation is no longer current.
type ListingCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, generation int64, key string, value any) error
	InvalidateAll(ctx context.Context) error
}
