// Package httpapi exposes the catalog over JSON HTTP: a read-only public
// surface and a token-guarded admin surface.
package httpapi

import (
	"context"
	"log/slog"

	"editorial_catalog/internal/domain"
)

type Articles interface {
	Create(ctx context.Context, in domain.ArticleInput) (*domain.ArticleDetail, error)
	Update(ctx context.Context, id int64, in domain.ArticleInput) (*domain.ArticleDetail, error)
	ChangeStatus(ctx context.Context, id int64, status string) (*domain.ArticleDetail, error)
	ToggleFeatured(ctx context.Context, id int64) (*domain.ArticleDetail, error)
	Delete(ctx context.Context, id int64, hard bool) error
	GetBySlug(ctx context.Context, slug string) (*domain.ArticleDetail, error)
	GetByID(ctx context.Context, id int64) (*domain.ArticleDetail, error)
	GetFeatured(ctx context.Context) (*domain.ArticleDetail, error)
}

type Categories interface {
	Create(ctx context.Context, in domain.CategoryInput) (*domain.CategoryView, error)
	Update(ctx context.Context, id int64, in domain.CategoryInput) (*domain.CategoryView, error)
	Delete(ctx context.Context, id int64) error
	Reorder(ctx context.Context, orderedIDs []int64) ([]domain.CategoryView, error)
	List(ctx context.Context) ([]domain.CategoryView, error)
	GetBySlug(ctx context.Context, slug string) (*domain.CategoryView, error)
	GetByID(ctx context.Context, id int64) (*domain.CategoryView, error)
}

type Authors interface {
	Create(ctx context.Context, in domain.AuthorInput) (*domain.AuthorView, error)
	Update(ctx context.Context, id int64, in domain.AuthorInput) (*domain.AuthorView, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.AuthorView, error)
	GetBySlug(ctx context.Context, slug string) (*domain.AuthorView, error)
	GetByID(ctx context.Context, id int64) (*domain.AuthorView, error)
}

type Tags interface {
	Create(ctx context.Context, name string) (*domain.TagView, error)
	Rename(ctx context.Context, id int64, name string) (*domain.TagView, error)
	Delete(ctx context.Context, id int64) error
	Merge(ctx context.Context, sourceID, targetID int64) (*domain.TagView, error)
	List(ctx context.Context) ([]domain.TagView, error)
	GetByID(ctx context.Context, id int64) (*domain.TagView, error)
}

type Queries interface {
	PageRequest(page, size int, sort string, admin bool) (domain.PageRequest, error)
	ListPublished(ctx context.Context, filter domain.ArticleFilter, page domain.PageRequest) (domain.Page[domain.ArticleSummary], error)
	ListAdmin(ctx context.Context, filter domain.ArticleFilter, page domain.PageRequest) (domain.Page[domain.ArticleSummary], error)
	Search(ctx context.Context, q string, page domain.PageRequest) (domain.Page[domain.ArticleSummary], error)
	Related(ctx context.Context, slug string, page domain.PageRequest) (domain.Page[domain.ArticleSummary], error)
	Stats(ctx context.Context) (domain.Stats, error)
}

type Options struct {
	// AdminPageSize replaces a missing size on admin listings. Public
	// listings use the query service default.
	AdminPageSize int
	RelatedLimit  int
}

type Handler struct {
	articles   Articles
	categories Categories
	authors    Authors
	tags       Tags
	queries    Queries
	opts       Options
	logger     *slog.Logger
}

func NewHandler(
	articles Articles,
	categories Categories,
	authors Authors,
	tags Tags,
	queries Queries,
	opts Options,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		articles:   articles,
		categories: categories,
		authors:    authors,
		tags:       tags,
		queries:    queries,
		opts:       opts,
		logger:     logger.With("component", "httpapi"),
	}
}
