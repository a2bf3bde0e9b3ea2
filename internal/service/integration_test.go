//go:build integration

package service_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"editorial_catalog/internal/domain"
	"editorial_catalog/internal/service"
	"editorial_catalog/internal/storage/postgres"
	"editorial_catalog/testdata/utils"
)

type CatalogIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	db        *sqlx.DB

	articles   *service.ArticleService
	categories *service.CategoryService
	tags       *service.TagService
	queries    *service.QueryService

	category *domain.CategoryView
	author   *domain.AuthorView
}

func (s *CatalogIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("test_db"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
	s.Require().NoError(postgres.Migrate(db))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	articleStore := postgres.NewArticleStore(db)
	categoryStore := postgres.NewCategoryStore(db)
	authorStore := postgres.NewAuthorStore(db)
	tagStore := postgres.NewTagStore(db)
	slugIndex := postgres.NewSlugIndex(db)
	txManager := postgres.NewTransactionManager(db)
	notifier := service.NewNotifier(nil, nil, logger)

	s.articles = service.NewArticleService(
		articleStore, categoryStore, authorStore, tagStore, slugIndex, txManager, notifier, logger,
	)
	s.categories = service.NewCategoryService(categoryStore, articleStore, slugIndex, txManager, notifier, logger)
	s.tags = service.NewTagService(tagStore, slugIndex, txManager, notifier, logger)
	s.queries = service.NewQueryService(articleStore, categoryStore, authorStore, tagStore, nil, 12, logger)

	authors := service.NewAuthorService(authorStore, articleStore, slugIndex, txManager, notifier, logger)
	s.author, err = authors.Create(s.ctx, domain.AuthorInput{Name: "Anna Beispiel"})
	s.Require().NoError(err)
}

func (s *CatalogIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *CatalogIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM article_tags")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM tags")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM articles")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM categories")

	var err error
	s.category, err = s.categories.Create(s.ctx, domain.CategoryInput{
		Name:        "Sprache",
		DisplayName: "Sprache & Literacy",
		Type:        string(domain.CategoryTypeEducationArea),
	})
	s.Require().NoError(err)
}

func TestCatalogIntegrationSuite(t *testing.T) {
	suite.Run(t, new(CatalogIntegrationSuite))
}

func (s *CatalogIntegrationSuite) create(title string, status domain.ArticleStatus, tagIDs ...int64) *domain.ArticleDetail {
	if tagIDs == nil {
		tagIDs = []int64{}
	}
	article, err := s.articles.Create(s.ctx, domain.ArticleInput{
		Title:      title,
		Excerpt:    "Kurz",
		Body:       "Ein kurzer Text",
		CategoryID: s.category.ID,
		AuthorID:   s.author.ID,
		TagIDs:     &tagIDs,
		Status:     &status,
	})
	s.Require().NoError(err)
	return article
}

func (s *CatalogIntegrationSuite) featured(ids ...int64) []bool {
	out := make([]bool, 0, len(ids))
	for _, id := range ids {
		a, err := s.articles.GetByID(s.ctx, id)
		s.Require().NoError(err)
		out = append(out, a.Featured)
	}
	return out
}

func (s *CatalogIntegrationSuite) TestDuplicateExplicitSlug() {
	in := domain.ArticleInput{
		Title:      "Erster",
		Slug:       "gleicher-slug",
		Excerpt:    "e",
		Body:       "b",
		CategoryID: s.category.ID,
		AuthorID:   s.author.ID,
	}
	_, err := s.articles.Create(s.ctx, in)
	s.Require().NoError(err)

	in.Title = "Zweiter"
	_, err = s.articles.Create(s.ctx, in)
	s.ErrorIs(err, domain.ErrSlugConflict)

	var count int
	s.Require().NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM articles WHERE slug = 'gleicher-slug'"))
	s.Equal(1, count)
}

func (s *CatalogIntegrationSuite) TestToggleFeatured_DraftLeavesPublishedAlone() {
	published := s.create("Veröffentlicht", domain.StatusPublished)
	draft := s.create("Entwurf", domain.StatusDraft)

	_, err := s.articles.ToggleFeatured(s.ctx, published.ID)
	s.Require().NoError(err)
	_, err = s.articles.ToggleFeatured(s.ctx, draft.ID)
	s.Require().NoError(err)

	s.Equal([]bool{true, true}, s.featured(published.ID, draft.ID))
	s.NoError(s.articles.AuditFeatured(s.ctx))
}

func (s *CatalogIntegrationSuite) TestToggleFeatured_SwapsBetweenPublished() {
	a := s.create("Artikel A", domain.StatusPublished)
	b := s.create("Artikel B", domain.StatusPublished)

	_, err := s.articles.ToggleFeatured(s.ctx, a.ID)
	s.Require().NoError(err)
	_, err = s.articles.ToggleFeatured(s.ctx, b.ID)
	s.Require().NoError(err)

	s.Equal([]bool{false, true}, s.featured(a.ID, b.ID))

	current, err := s.articles.GetFeatured(s.ctx)
	s.Require().NoError(err)
	s.Equal(b.ID, current.ID)
}

func (s *CatalogIntegrationSuite) TestDeleteTag_DetachesFromArticles() {
	tag, err := s.tags.Create(s.ctx, "Spiel")
	s.Require().NoError(err)

	first := s.create("Eins", domain.StatusPublished, tag.ID)
	second := s.create("Zwei", domain.StatusDraft, tag.ID)

	s.Require().NoError(s.tags.Delete(s.ctx, tag.ID))

	for _, id := range []int64{first.ID, second.ID} {
		a, err := s.articles.GetByID(s.ctx, id)
		s.Require().NoError(err)
		s.Empty(a.Tags)
	}

	_, err = s.tags.GetByID(s.ctx, tag.ID)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *CatalogIntegrationSuite) TestMergeTag_NoDuplicateEdges() {
	source, err := s.tags.Create(s.ctx, "Spielen")
	s.Require().NoError(err)
	target, err := s.tags.Create(s.ctx, "Spiel")
	s.Require().NoError(err)

	both := s.create("Beide", domain.StatusPublished, source.ID, target.ID)
	onlySource := s.create("Nur Quelle", domain.StatusPublished, source.ID)

	merged, err := s.tags.Merge(s.ctx, source.ID, target.ID)
	s.Require().NoError(err)
	s.Equal(2, merged.ArticleCount)

	for _, id := range []int64{both.ID, onlySource.ID} {
		a, err := s.articles.GetByID(s.ctx, id)
		s.Require().NoError(err)
		s.Require().Len(a.Tags, 1)
		s.Equal(target.ID, a.Tags[0].ID)
	}

	_, err = s.tags.GetByID(s.ctx, source.ID)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *CatalogIntegrationSuite) TestPublishSetsDateOnce() {
	draft := s.create("Später", domain.StatusDraft)
	s.Nil(draft.PublishedDate)

	today := domain.DateOf(time.Now()).Format(time.DateOnly)

	first, err := s.articles.ChangeStatus(s.ctx, draft.ID, string(domain.StatusPublished))
	s.Require().NoError(err)
	s.Require().NotNil(first.PublishedDate)
	s.Equal(today, first.PublishedDate.Format(time.DateOnly))

	_, err = s.db.ExecContext(s.ctx, "UPDATE articles SET published_date = '2020-02-02' WHERE id = $1", draft.ID)
	s.Require().NoError(err)

	second, err := s.articles.ChangeStatus(s.ctx, draft.ID, string(domain.StatusPublished))
	s.Require().NoError(err)
	s.Equal("2020-02-02", second.PublishedDate.Format(time.DateOnly))
}

func (s *CatalogIntegrationSuite) TestReadingTimeFromBody() {
	status := domain.StatusDraft
	article, err := s.articles.Create(s.ctx, domain.ArticleInput{
		Title:      "Lang",
		Excerpt:    "e",
		Body:       "<p>" + strings.Repeat("wort ", 400) + "</p>",
		CategoryID: s.category.ID,
		AuthorID:   s.author.ID,
		Status:     &status,
	})
	s.Require().NoError(err)
	s.Equal(2, article.ReadingTimeMinutes)
}

func (s *CatalogIntegrationSuite) TestDeleteCategory() {
	s.create("Hängt dran", domain.StatusDraft)

	err := s.categories.Delete(s.ctx, s.category.ID)
	s.ErrorIs(err, domain.ErrReferentialConflict)

	empty, err := s.categories.Create(s.ctx, domain.CategoryInput{
		Name:        "Bewegung",
		DisplayName: "Bewegung",
		Type:        string(domain.CategoryTypeEducationArea),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.categories.Delete(s.ctx, empty.ID))
	_, err = s.categories.GetByID(s.ctx, empty.ID)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *CatalogIntegrationSuite) TestReorderCategories() {
	second, err := s.categories.Create(s.ctx, domain.CategoryInput{
		Name: "Natur", DisplayName: "Natur", Type: string(domain.CategoryTypeEducationArea),
	})
	s.Require().NoError(err)
	third, err := s.categories.Create(s.ctx, domain.CategoryInput{
		Name: "Inklusion", DisplayName: "Inklusion", Type: string(domain.CategoryTypeCrossCutting),
		SortOrder: utils.Ptr(9),
	})
	s.Require().NoError(err)

	ordered, err := s.categories.Reorder(s.ctx, []int64{third.ID, s.category.ID, second.ID})
	s.Require().NoError(err)

	s.Require().Len(ordered, 3)
	s.Equal(third.ID, ordered[0].ID)
	s.Equal(0, ordered[0].SortOrder)
	s.Equal(s.category.ID, ordered[1].ID)
	s.Equal(1, ordered[1].SortOrder)
	s.Equal(second.ID, ordered[2].ID)
	s.Equal(2, ordered[2].SortOrder)

	_, err = s.categories.Reorder(s.ctx, []int64{second.ID, 999999})
	s.ErrorIs(err, domain.ErrNotFound)

	after, err := s.categories.GetByID(s.ctx, second.ID)
	s.Require().NoError(err)
	s.Equal(2, after.SortOrder)
}

func (s *CatalogIntegrationSuite) TestPublicListingHidesUnpublished() {
	s.create("Öffentlich", domain.StatusPublished)
	s.create("Entwurf", domain.StatusDraft)
	s.create("Archiv", domain.StatusArchived)

	publicPage, err := s.queries.PageRequest(0, 0, "", false)
	s.Require().NoError(err)
	public, err := s.queries.ListPublished(s.ctx, domain.ArticleFilter{}, publicPage)
	s.Require().NoError(err)
	s.Equal(int64(1), public.TotalElements)
	for _, a := range public.Content {
		s.Equal(domain.StatusPublished, a.Status)
	}

	adminPage, err := s.queries.PageRequest(0, 0, "", true)
	s.Require().NoError(err)
	admin, err := s.queries.ListAdmin(s.ctx, domain.ArticleFilter{}, adminPage)
	s.Require().NoError(err)
	s.Equal(int64(3), admin.TotalElements)
}
