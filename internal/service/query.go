package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"editorial_catalog/internal/domain"
)

const defaultRelatedLimit = 3

// QueryService serves the read side of the catalog: paged listings,
// search, related articles and dashboard counts.
type QueryService struct {
	articles        ArticleStore
	categories      CategoryStore
	authors         AuthorStore
	tags            TagStore
	cache           ListingCache
	defaultPageSize int
	logger          *slog.Logger
}

func NewQueryService(
	articles ArticleStore,
	categories CategoryStore,
	authors AuthorStore,
	tags TagStore,
	cache ListingCache,
	defaultPageSize int,
	logger *slog.Logger,
) *QueryService {
	return &QueryService{
		articles:        articles,
		categories:      categories,
		authors:         authors,
		tags:            tags,
		cache:           cache,
		defaultPageSize: defaultPageSize,
		logger:          logger.With("component", "query"),
	}
}

// PageRequest normalises raw paging parameters. Public listings default to
// newest publication first, admin listings to newest creation first.
func (s *QueryService) PageRequest(page, size int, sort string, admin bool) (domain.PageRequest, error) {
	defaultField := domain.SortPublishedDate
	if admin {
		defaultField = domain.SortCreatedAt
	}

	parsed, err := domain.ParseSort(sort, defaultField)
	if err != nil {
		return domain.PageRequest{}, err
	}
	return domain.NewPageRequest(page, size, s.defaultPageSize, parsed), nil
}

// ListPublished lists published articles matching filter. Any status in
// filter is overridden.
func (s *QueryService) ListPublished(ctx context.Context, filter domain.ArticleFilter, page domain.PageRequest) (domain.Page[domain.ArticleSummary], error) {
	published := domain.StatusPublished
	filter.Status = &published

	generation, cacheable := s.cacheGeneration(ctx)
	key := listingKey(generation, filter, page)
	if cacheable {
		var cached domain.Page[domain.ArticleSummary]
		if s.cacheGet(ctx, key, &cached) {
			return cached, nil
		}
	}

	result, err := s.list(ctx, filter, page)
	if err != nil {
		return domain.Page[domain.ArticleSummary]{}, err
	}

	// a write committed since generation was read has already bumped it,
	// so the cache refuses this fill
	if cacheable {
		s.cacheSet(ctx, generation, key, result)
	}
	return result, nil
}

// ListAdmin lists articles of any status unless filter names one.
func (s *QueryService) ListAdmin(ctx context.Context, filter domain.ArticleFilter, page domain.PageRequest) (domain.Page[domain.ArticleSummary], error) {
	return s.list(ctx, filter, page)
}

// Search matches q case-insensitively against title, excerpt and body of
// published articles.
func (s *QueryService) Search(ctx context.Context, q string, page domain.PageRequest) (domain.Page[domain.ArticleSummary], error) {
	q = strings.TrimSpace(q)
	if q == "" {
		var verr domain.ValidationError
		verr.Add("q", "must not be blank")
		return domain.Page[domain.ArticleSummary]{}, verr
	}
	return s.ListPublished(ctx, domain.ArticleFilter{Query: q}, page)
}

// Related pages through the other published articles in the category of
// the article with slug, newest first.
func (s *QueryService) Related(ctx context.Context, slug string, page domain.PageRequest) (domain.Page[domain.ArticleSummary], error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Page[domain.ArticleSummary]{}, err
	}
	if article == nil || !article.IsPublished() {
		return domain.Page[domain.ArticleSummary]{}, domain.NewNotFound(domain.EntityArticle, slug)
	}

	published := domain.StatusPublished
	filter := domain.ArticleFilter{
		Status:     &published,
		CategoryID: article.CategoryID,
		ExcludeID:  article.ID,
	}
	page = domain.NewPageRequest(page.Page, page.Size, defaultRelatedLimit, domain.Sort{Field: domain.SortPublishedDate})

	return s.list(ctx, filter, page)
}

func (s *QueryService) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats

	byStatus, err := s.articles.CountByStatus(ctx)
	if err != nil {
		return stats, err
	}
	for _, n := range byStatus {
		stats.TotalArticles += n
	}
	stats.PublishedArticles = byStatus[domain.StatusPublished]
	stats.DraftArticles = byStatus[domain.StatusDraft]
	stats.ArchivedArticles = byStatus[domain.StatusArchived]

	if stats.Categories, err = s.categories.Count(ctx); err != nil {
		return stats, err
	}
	if stats.Authors, err = s.authors.Count(ctx); err != nil {
		return stats, err
	}
	if stats.Tags, err = s.tags.Count(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *QueryService) list(ctx context.Context, filter domain.ArticleFilter, page domain.PageRequest) (domain.Page[domain.ArticleSummary], error) {
	articles, total, err := s.articles.Find(ctx, filter, page)
	if err != nil {
		return domain.Page[domain.ArticleSummary]{}, err
	}

	summaries, err := s.summarize(ctx, articles)
	if err != nil {
		return domain.Page[domain.ArticleSummary]{}, err
	}
	return domain.NewPage(summaries, page, total), nil
}

// summarize loads the categories, authors and tags of articles in one
// query each and builds their summaries.
func (s *QueryService) summarize(ctx context.Context, articles []domain.Article) ([]domain.ArticleSummary, error) {
	if len(articles) == 0 {
		return []domain.ArticleSummary{}, nil
	}

	articleIDs := make([]int64, len(articles))
	categoryIDs := make([]int64, 0, len(articles))
	authorIDs := make([]int64, 0, len(articles))
	for i, a := range articles {
		articleIDs[i] = a.ID
		categoryIDs = append(categoryIDs, a.CategoryID)
		authorIDs = append(authorIDs, a.AuthorID)
	}

	categories, err := s.categories.GetByIDs(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	authors, err := s.authors.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	tags, err := s.tags.GetByArticleIDs(ctx, articleIDs)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	summaries := make([]domain.ArticleSummary, len(articles))
	for i := range articles {
		a := &articles[i]

		var categoryView *domain.CategoryView
		if c, ok := categories[a.CategoryID]; ok {
			categoryView = c.View()
		}
		var authorView *domain.AuthorView
		if au, ok := authors[a.AuthorID]; ok {
			authorView = au.View()
		}

		summaries[i] = a.Summary(categoryView, authorView, tagViews(tags[a.ID]))
	}
	return summaries, nil
}

func (s *QueryService) cacheGeneration(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	generation, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("listing cache generation unavailable", "error", err)
		return 0, false
	}
	return generation, true
}

func (s *QueryService) cacheGet(ctx context.Context, key string, dest any) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("listing cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (s *QueryService) cacheSet(ctx context.Context, generation int64, key string, value any) {
	if err := s.cache.Set(ctx, generation, key, value); err != nil {
		s.logger.Warn("listing cache write failed", "key", key, "error", err)
	}
}

func listingKey(generation int64, filter domain.ArticleFilter, page domain.PageRequest) string {
	raw, _ := json.Marshal(struct {
		Filter domain.ArticleFilter
		Page   domain.PageRequest
	}{filter, page})
	return fmt.Sprintf("articles:g%d:%s", generation, raw)
}
