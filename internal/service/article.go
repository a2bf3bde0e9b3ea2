package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"editorial_catalog/internal/domain"
)

type ArticleService struct {
	articles   ArticleStore
	categories CategoryStore
	authors    AuthorStore
	tags       TagStore
	slugs      SlugIndex
	txManager  TransactionManager
	notifier   *Notifier
	logger     *slog.Logger
	now        func() time.Time
}

func NewArticleService(
	articles ArticleStore,
	categories CategoryStore,
	authors AuthorStore,
	tags TagStore,
	slugs SlugIndex,
	txManager TransactionManager,
	notifier *Notifier,
	logger *slog.Logger,
) *ArticleService {
	return &ArticleService{
		articles:   articles,
		categories: categories,
		authors:    authors,
		tags:       tags,
		slugs:      slugs,
		txManager:  txManager,
		notifier:   notifier,
		logger:     logger.With("component", "articles"),
		now:        time.Now,
	}
}

func (s *ArticleService) Create(ctx context.Context, in domain.ArticleInput) (*domain.ArticleDetail, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := validateStatus(in.Status); err != nil {
		return nil, err
	}

	articleSlug, err := resolveSlug(in.Slug, in.Title)
	if err != nil {
		return nil, err
	}

	article := &domain.Article{
		Slug:   articleSlug,
		Status: domain.StatusDraft,
	}
	applyInput(article, in)

	var detail domain.ArticleDetail
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := claimSlug(txCtx, s.slugs, domain.EntityArticle, articleSlug, 0); err != nil {
			return err
		}

		category, author, err := s.references(txCtx, in.CategoryID, in.AuthorID)
		if err != nil {
			return err
		}

		var tags []domain.Tag
		if in.TagIDs != nil {
			if tags, err = s.tags.FindByIDs(txCtx, *in.TagIDs); err != nil {
				return fmt.Errorf("resolve tags: %w", err)
			}
		}

		article.ApplyPublishDate(s.now())

		if _, err := s.articles.Create(txCtx, article); err != nil {
			return err
		}

		if len(tags) > 0 {
			if err := s.tags.ReplaceAll(txCtx, article.ID, tagIDs(tags)); err != nil {
				return fmt.Errorf("link tags: %w", err)
			}
			countNewLinks(tags, nil)
		}

		if err := s.enforceFeatured(txCtx, article); err != nil {
			return err
		}

		detail = assembleDetail(article, category, author, tags)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("article created", "id", article.ID, "slug", article.Slug, "status", article.Status)
	s.notifier.Notify(ctx, domain.EntityArticle, domain.ActionCreated, article.ID, article.Slug)

	return &detail, nil
}

func (s *ArticleService) Update(ctx context.Context, id int64, in domain.ArticleInput) (*domain.ArticleDetail, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := validateStatus(in.Status); err != nil {
		return nil, err
	}

	articleSlug, err := resolveSlug(in.Slug, in.Title)
	if err != nil {
		return nil, err
	}

	var (
		article *domain.Article
		detail  domain.ArticleDetail
	)
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if article, err = s.mustGet(txCtx, id); err != nil {
			return err
		}

		if articleSlug != article.Slug {
			if err := claimSlug(txCtx, s.slugs, domain.EntityArticle, articleSlug, id); err != nil {
				return err
			}
			article.Slug = articleSlug
		}

		category, author, err := s.references(txCtx, in.CategoryID, in.AuthorID)
		if err != nil {
			return err
		}

		// nil keeps the current tags, an empty slice clears them
		previousTags := article.TagIDs
		wantTags := previousTags
		if in.TagIDs != nil {
			wantTags = *in.TagIDs
		}
		tags, err := s.tags.FindByIDs(txCtx, wantTags)
		if err != nil {
			return fmt.Errorf("resolve tags: %w", err)
		}

		applyInput(article, in)
		article.ApplyPublishDate(s.now())

		if err := s.articles.Update(txCtx, article); err != nil {
			return err
		}

		if in.TagIDs != nil {
			if err := s.tags.ReplaceAll(txCtx, article.ID, tagIDs(tags)); err != nil {
				return fmt.Errorf("link tags: %w", err)
			}
			countNewLinks(tags, previousTags)
		}

		if err := s.enforceFeatured(txCtx, article); err != nil {
			return err
		}

		detail = assembleDetail(article, category, author, tags)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("article updated", "id", id, "slug", article.Slug)
	s.notifier.Notify(ctx, domain.EntityArticle, domain.ActionUpdated, id, article.Slug)

	return &detail, nil
}

// ChangeStatus moves an article to status. Every transition is allowed.
func (s *ArticleService) ChangeStatus(ctx context.Context, id int64, status string) (*domain.ArticleDetail, error) {
	next, err := domain.ParseArticleStatus(status)
	if err != nil {
		return nil, err
	}

	var article *domain.Article
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if article, err = s.mustGet(txCtx, id); err != nil {
			return err
		}

		article.Status = next
		article.ApplyPublishDate(s.now())

		if err := s.articles.Update(txCtx, article); err != nil {
			return err
		}
		return s.enforceFeatured(txCtx, article)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("article status changed", "id", id, "status", next)
	s.notifier.Notify(ctx, domain.EntityArticle, domain.ActionStatusChanged, id, article.Slug)

	return s.detail(ctx, article)
}

// ToggleFeatured flips the featured flag. A published article that becomes
// featured takes the flag away from every other published article; a draft
// or archived one leaves them alone.
func (s *ArticleService) ToggleFeatured(ctx context.Context, id int64) (*domain.ArticleDetail, error) {
	var article *domain.Article
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if article, err = s.mustGet(txCtx, id); err != nil {
			return err
		}

		article.Featured = !article.Featured
		if err := s.enforceFeatured(txCtx, article); err != nil {
			return err
		}
		return s.articles.SetFeatured(txCtx, id, article.Featured)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("article featured toggled", "id", id, "featured", article.Featured)
	s.notifier.Notify(ctx, domain.EntityArticle, domain.ActionFeaturedToggled, id, article.Slug)

	return s.detail(ctx, article)
}

// Delete archives the article, or removes it with its tag edges when hard
// is set.
func (s *ArticleService) Delete(ctx context.Context, id int64, hard bool) error {
	var article *domain.Article
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if article, err = s.mustGet(txCtx, id); err != nil {
			return err
		}

		if !hard {
			article.Status = domain.StatusArchived
			return s.articles.Update(txCtx, article)
		}

		if err := s.tags.ReplaceAll(txCtx, id, nil); err != nil {
			return fmt.Errorf("unlink tags: %w", err)
		}
		return s.articles.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	action := domain.ActionArchived
	if hard {
		action = domain.ActionDeleted
	}
	s.logger.Info("article removed", "id", id, "hard", hard)
	s.notifier.Notify(ctx, domain.EntityArticle, action, id, article.Slug)

	return nil
}

// GetBySlug is the public read: only published articles are visible.
func (s *ArticleService) GetBySlug(ctx context.Context, slug string) (*domain.ArticleDetail, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article == nil || !article.IsPublished() {
		return nil, domain.NewNotFound(domain.EntityArticle, slug)
	}
	return s.detail(ctx, article)
}

func (s *ArticleService) GetByID(ctx context.Context, id int64) (*domain.ArticleDetail, error) {
	article, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, article)
}

// GetFeatured returns the published featured article. If the singleton was
// broken by a race the most recently updated one wins.
func (s *ArticleService) GetFeatured(ctx context.Context) (*domain.ArticleDetail, error) {
	featured, err := s.articles.ListPublishedFeatured(ctx)
	if err != nil {
		return nil, err
	}
	if len(featured) == 0 {
		return nil, domain.NewNotFound(domain.EntityArticle, "featured")
	}
	return s.detail(ctx, &featured[0])
}

func (s *ArticleService) mustGet(ctx context.Context, id int64) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, domain.NewNotFound(domain.EntityArticle, id)
	}
	return article, nil
}

func (s *ArticleService) references(ctx context.Context, categoryID, authorID int64) (*domain.Category, *domain.Author, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, nil, err
	}
	if category == nil {
		return nil, nil, domain.NewNotFound(domain.EntityCategory, categoryID)
	}

	author, err := s.authors.GetByID(ctx, authorID)
	if err != nil {
		return nil, nil, err
	}
	if author == nil {
		return nil, nil, domain.NewNotFound(domain.EntityAuthor, authorID)
	}

	return category, author, nil
}

func (s *ArticleService) detail(ctx context.Context, article *domain.Article) (*domain.ArticleDetail, error) {
	category, author, err := s.references(ctx, article.CategoryID, article.AuthorID)
	if err != nil {
		return nil, err
	}

	tagIDs := article.TagIDs
	if tagIDs == nil {
		byArticle, err := s.tags.GetByArticleIDs(ctx, []int64{article.ID})
		if err != nil {
			return nil, err
		}
		detail := assembleDetail(article, category, author, byArticle[article.ID])
		return &detail, nil
	}

	tags, err := s.tags.FindByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	detail := assembleDetail(article, category, author, tags)
	return &detail, nil
}

// applyInput copies the writable fields of in onto a. Slug, category and
// author resolution happen elsewhere.
func applyInput(a *domain.Article, in domain.ArticleInput) {
	a.Title = in.Title
	a.Excerpt = in.Excerpt
	a.Body = in.Body
	a.CategoryID = in.CategoryID
	a.AuthorID = in.AuthorID
	a.CardEmoji = in.CardEmoji
	a.CoverImageURL = in.CoverImageURL
	a.CoverImageCredit = in.CoverImageCredit
	a.MetaTitle = in.MetaTitle
	a.MetaDescription = in.MetaDescription
	a.ReadingTimeMinutes = domain.ReadingTimeMinutes(in.Body)

	if in.Status != nil {
		a.Status = *in.Status
	}
	if in.Academic != nil {
		a.Academic = *in.Academic
	}
	if in.Featured != nil {
		a.Featured = *in.Featured
	}
	if in.PublishedDate != nil {
		d := domain.DateOf(*in.PublishedDate)
		a.PublishedDate = &d
	}
}

func validateStatus(status *domain.ArticleStatus) error {
	if status == nil {
		return nil
	}
	_, err := domain.ParseArticleStatus(string(*status))
	return err
}

func tagIDs(tags []domain.Tag) []int64 {
	ids := make([]int64, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}

// countNewLinks adjusts counts read before ReplaceAll so tags linked by it
// include the article they were just attached to.
func countNewLinks(tags []domain.Tag, previous []int64) {
	for i := range tags {
		if !slices.Contains(previous, tags[i].ID) {
			tags[i].ArticleCount++
		}
	}
}

func tagViews(tags []domain.Tag) []domain.TagView {
	views := make([]domain.TagView, len(tags))
	for i := range tags {
		views[i] = tags[i].View()
	}
	return views
}

func assembleDetail(a *domain.Article, c *domain.Category, au *domain.Author, tags []domain.Tag) domain.ArticleDetail {
	a.TagIDs = tagIDs(tags)
	return a.Detail(c.View(), au.View(), tagViews(tags))
}
