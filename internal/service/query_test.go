package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"editorial_catalog/internal/domain"
	"editorial_catalog/internal/service/mocks"
)

type QueryServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller
	ctx  context.Context

	articles   *mocks.MockArticleStore
	categories *mocks.MockCategoryStore
	authors    *mocks.MockAuthorStore
	tags       *mocks.MockTagStore
	cache      *mocks.MockListingCache

	service *QueryService
}

func (s *QueryServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ctx = context.Background()

	s.articles = mocks.NewMockArticleStore(s.ctrl)
	s.categories = mocks.NewMockCategoryStore(s.ctrl)
	s.authors = mocks.NewMockAuthorStore(s.ctrl)
	s.tags = mocks.NewMockTagStore(s.ctrl)
	s.cache = mocks.NewMockListingCache(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.service = NewQueryService(s.articles, s.categories, s.authors, s.tags, s.cache, 12, logger)
}

func (s *QueryServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestQueryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(QueryServiceTestSuite))
}

func (s *QueryServiceTestSuite) expectRelations(articleIDs []int64) {
	s.categories.EXPECT().GetByIDs(s.ctx, gomock.Any()).Return(map[int64]domain.Category{
		1: {ID: 1, Slug: "sprache"},
	}, nil)
	s.authors.EXPECT().GetByIDs(s.ctx, gomock.Any()).Return(map[int64]domain.Author{
		2: {ID: 2, Slug: "anna"},
	}, nil)
	s.tags.EXPECT().GetByArticleIDs(s.ctx, articleIDs).Return(map[int64][]domain.Tag{}, nil)
}

func (s *QueryServiceTestSuite) TestPageRequest_Defaults() {
	req, err := s.service.PageRequest(-3, 0, "", false)
	s.Require().NoError(err)
	s.Equal(0, req.Page)
	s.Equal(12, req.Size)
	s.Equal(domain.SortPublishedDate, req.Sort.Field)
	s.False(req.Sort.Ascending)

	req, err = s.service.PageRequest(0, 500, "title,asc", true)
	s.Require().NoError(err)
	s.Equal(domain.MaxPageSize, req.Size)
	s.Equal(domain.SortTitle, req.Sort.Field)
	s.True(req.Sort.Ascending)

	req, err = s.service.PageRequest(0, 5, "", true)
	s.Require().NoError(err)
	s.Equal(domain.SortCreatedAt, req.Sort.Field)

	req, err = s.service.PageRequest(0, 5, "slug,sideways", false)
	s.Require().NoError(err)
	s.False(req.Sort.Ascending)

	_, err = s.service.PageRequest(0, 5, "password", false)
	s.ErrorIs(err, domain.ErrInvalidEnum)
}

func (s *QueryServiceTestSuite) TestListPublished_ForcesStatusAndCaches() {
	page := domain.NewPageRequest(0, 10, 10, domain.Sort{Field: domain.SortPublishedDate})
	draft := domain.StatusDraft
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s.cache.EXPECT().Generation(s.ctx).Return(int64(4), nil)
	s.cache.EXPECT().Get(s.ctx, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, key string, _ any) (bool, error) {
			s.True(strings.HasPrefix(key, "articles:g4:"), key)
			return false, nil
		},
	)
	s.articles.EXPECT().Find(s.ctx, gomock.Any(), page).DoAndReturn(
		func(_ context.Context, filter domain.ArticleFilter, _ domain.PageRequest) ([]domain.Article, int64, error) {
			s.Require().NotNil(filter.Status)
			s.Equal(domain.StatusPublished, *filter.Status)
			s.Equal("sprache", filter.CategorySlug)
			return []domain.Article{{
				ID: 5, Slug: "a", Status: domain.StatusPublished, CategoryID: 1, AuthorID: 2, PublishedDate: &date,
			}}, 11, nil
		},
	)
	s.expectRelations([]int64{5})
	s.cache.EXPECT().Set(s.ctx, int64(4), gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.service.ListPublished(s.ctx, domain.ArticleFilter{Status: &draft, CategorySlug: "sprache"}, page)

	s.Require().NoError(err)
	s.Equal(int64(11), result.TotalElements)
	s.Equal(2, result.TotalPages)
	s.True(result.First)
	s.False(result.Last)
	s.Require().Len(result.Content, 1)
	s.Equal("sprache", result.Content[0].Category.Slug)
	s.Equal("anna", result.Content[0].Author.Slug)
	s.NotNil(result.Content[0].Tags)
}

func (s *QueryServiceTestSuite) TestListPublished_CacheHit() {
	page := domain.NewPageRequest(0, 10, 10, domain.Sort{Field: domain.SortPublishedDate})

	s.cache.EXPECT().Generation(s.ctx).Return(int64(0), nil)
	s.cache.EXPECT().Get(s.ctx, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, dest any) (bool, error) {
			p := dest.(*domain.Page[domain.ArticleSummary])
			p.TotalElements = 42
			return true, nil
		},
	)

	result, err := s.service.ListPublished(s.ctx, domain.ArticleFilter{}, page)

	s.Require().NoError(err)
	s.Equal(int64(42), result.TotalElements)
}

func (s *QueryServiceTestSuite) TestListPublished_FillCarriesGenerationReadBeforeFind() {
	page := domain.NewPageRequest(0, 10, 10, domain.Sort{Field: domain.SortPublishedDate})
	invalidated := false

	gomock.InOrder(
		s.cache.EXPECT().Generation(s.ctx).Return(int64(5), nil),
		s.cache.EXPECT().Get(s.ctx, gomock.Any(), gomock.Any()).Return(false, nil),
		s.articles.EXPECT().Find(s.ctx, gomock.Any(), page).DoAndReturn(
			func(context.Context, domain.ArticleFilter, domain.PageRequest) ([]domain.Article, int64, error) {
				// a concurrent write commits and invalidates while the reader
				// holds pre-commit rows
				invalidated = true
				return []domain.Article{}, 0, nil
			},
		),
		s.cache.EXPECT().Set(s.ctx, int64(5), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, generation int64, key string, _ any) error {
				s.True(invalidated)
				s.True(strings.HasPrefix(key, "articles:g5:"), key)
				return nil
			},
		),
	)

	_, err := s.service.ListPublished(s.ctx, domain.ArticleFilter{}, page)

	s.NoError(err)
}

func (s *QueryServiceTestSuite) TestListPublished_GenerationErrorBypassesCache() {
	page := domain.NewPageRequest(0, 10, 10, domain.Sort{Field: domain.SortPublishedDate})

	s.cache.EXPECT().Generation(s.ctx).Return(int64(0), errors.New("redis down"))
	s.articles.EXPECT().Find(s.ctx, gomock.Any(), page).Return([]domain.Article{}, int64(0), nil)

	result, err := s.service.ListPublished(s.ctx, domain.ArticleFilter{}, page)

	s.Require().NoError(err)
	s.Empty(result.Content)
}

func (s *QueryServiceTestSuite) TestListAdmin_NoStatusFilter() {
	page := domain.NewPageRequest(0, 10, 10, domain.Sort{Field: domain.SortCreatedAt})

	s.articles.EXPECT().Find(s.ctx, domain.ArticleFilter{}, page).Return([]domain.Article{}, int64(0), nil)

	result, err := s.service.ListAdmin(s.ctx, domain.ArticleFilter{}, page)

	s.Require().NoError(err)
	s.NotNil(result.Content)
	s.Empty(result.Content)
	s.True(result.First)
	s.True(result.Last)
}

func (s *QueryServiceTestSuite) TestSearch_BlankQuery() {
	page := domain.NewPageRequest(0, 10, 10, domain.Sort{Field: domain.SortPublishedDate})

	_, err := s.service.Search(s.ctx, "   ", page)

	s.ErrorIs(err, domain.ErrValidation)
}

func (s *QueryServiceTestSuite) TestSearch_PassesQuery() {
	page := domain.NewPageRequest(0, 10, 10, domain.Sort{Field: domain.SortPublishedDate})

	s.cache.EXPECT().Generation(s.ctx).Return(int64(1), nil)
	s.cache.EXPECT().Get(s.ctx, gomock.Any(), gomock.Any()).Return(false, nil)
	s.articles.EXPECT().Find(s.ctx, gomock.Any(), page).DoAndReturn(
		func(_ context.Context, filter domain.ArticleFilter, _ domain.PageRequest) ([]domain.Article, int64, error) {
			s.Equal("50%", filter.Query)
			s.Equal(domain.StatusPublished, *filter.Status)
			return nil, 0, nil
		},
	)
	s.cache.EXPECT().Set(s.ctx, int64(1), gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.Search(s.ctx, " 50% ", page)

	s.NoError(err)
}

func (s *QueryServiceTestSuite) TestRelated_SameCategoryExcludingSelf() {
	article := &domain.Article{ID: 7, Slug: "basis", Status: domain.StatusPublished, CategoryID: 1, AuthorID: 2}

	s.articles.EXPECT().GetBySlug(s.ctx, "basis").Return(article, nil)
	s.articles.EXPECT().Find(s.ctx, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, filter domain.ArticleFilter, page domain.PageRequest) ([]domain.Article, int64, error) {
			s.Equal(int64(1), filter.CategoryID)
			s.Equal(int64(7), filter.ExcludeID)
			s.Equal(domain.StatusPublished, *filter.Status)
			s.Equal(0, page.Page)
			s.Equal(3, page.Size)
			s.Equal(domain.SortPublishedDate, page.Sort.Field)
			s.False(page.Sort.Ascending)
			return []domain.Article{{ID: 8, CategoryID: 1, AuthorID: 2, Status: domain.StatusPublished}}, 1, nil
		},
	)
	s.expectRelations([]int64{8})

	related, err := s.service.Related(s.ctx, "basis", domain.PageRequest{})

	s.Require().NoError(err)
	s.Require().Len(related.Content, 1)
	s.Equal(int64(8), related.Content[0].ID)
	s.Equal(int64(1), related.TotalElements)
	s.True(related.Last)
}

func (s *QueryServiceTestSuite) TestRelated_LaterPage() {
	article := &domain.Article{ID: 7, Slug: "basis", Status: domain.StatusPublished, CategoryID: 1, AuthorID: 2}
	requested := domain.NewPageRequest(2, 2, 3, domain.Sort{Field: domain.SortTitle, Ascending: true})

	s.articles.EXPECT().GetBySlug(s.ctx, "basis").Return(article, nil)
	s.articles.EXPECT().Find(s.ctx, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.ArticleFilter, page domain.PageRequest) ([]domain.Article, int64, error) {
			s.Equal(2, page.Page)
			s.Equal(2, page.Size)
			s.Equal(domain.SortPublishedDate, page.Sort.Field)
			s.False(page.Sort.Ascending)
			return []domain.Article{{ID: 12, CategoryID: 1, AuthorID: 2, Status: domain.StatusPublished}}, 7, nil
		},
	)
	s.expectRelations([]int64{12})

	related, err := s.service.Related(s.ctx, "basis", requested)

	s.Require().NoError(err)
	s.Equal(2, related.Page)
	s.Equal(2, related.Size)
	s.Equal(int64(7), related.TotalElements)
	s.Equal(4, related.TotalPages)
	s.False(related.First)
	s.False(related.Last)
	s.Require().Len(related.Content, 1)
}

func (s *QueryServiceTestSuite) TestRelated_UnpublishedIsNotFound() {
	s.articles.EXPECT().GetBySlug(s.ctx, "geheim").Return(&domain.Article{ID: 1, Status: domain.StatusDraft}, nil)

	_, err := s.service.Related(s.ctx, "geheim", domain.PageRequest{Size: 3})

	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *QueryServiceTestSuite) TestStats() {
	s.articles.EXPECT().CountByStatus(s.ctx).Return(map[domain.ArticleStatus]int64{
		domain.StatusPublished: 4,
		domain.StatusDraft:     2,
	}, nil)
	s.categories.EXPECT().Count(s.ctx).Return(int64(3), nil)
	s.authors.EXPECT().Count(s.ctx).Return(int64(2), nil)
	s.tags.EXPECT().Count(s.ctx).Return(int64(9), nil)

	stats, err := s.service.Stats(s.ctx)

	s.Require().NoError(err)
	s.Equal(domain.Stats{
		TotalArticles:     6,
		PublishedArticles: 4,
		DraftArticles:     2,
		ArchivedArticles:  0,
		Categories:        3,
		Authors:           2,
		Tags:              9,
	}, stats)
}
