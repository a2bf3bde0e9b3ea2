package service

import (
	"context"
	"log/slog"

	"editorial_catalog/internal/domain"
)

type AuthorService struct {
	authors   AuthorStore
	articles  ArticleStore
	slugs     SlugIndex
	txManager TransactionManager
	notifier  *Notifier
	logger    *slog.Logger
}

func NewAuthorService(
	authors AuthorStore,
	articles ArticleStore,
	slugs SlugIndex,
	txManager TransactionManager,
	notifier *Notifier,
	logger *slog.Logger,
) *AuthorService {
	return &AuthorService{
		authors:   authors,
		articles:  articles,
		slugs:     slugs,
		txManager: txManager,
		notifier:  notifier,
		logger:    logger.With("component", "authors"),
	}
}

func (s *AuthorService) Create(ctx context.Context, in domain.AuthorInput) (*domain.AuthorView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	authorSlug, err := resolveSlug(in.Slug, in.Name)
	if err != nil {
		return nil, err
	}

	author := &domain.Author{Slug: authorSlug}
	applyAuthorInput(author, in)

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := claimSlug(txCtx, s.slugs, domain.EntityAuthor, authorSlug, 0); err != nil {
			return err
		}
		_, err := s.authors.Create(txCtx, author)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("author created", "id", author.ID, "slug", author.Slug)
	s.notifier.Notify(ctx, domain.EntityAuthor, domain.ActionCreated, author.ID, author.Slug)

	return author.View(), nil
}

func (s *AuthorService) Update(ctx context.Context, id int64, in domain.AuthorInput) (*domain.AuthorView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	authorSlug, err := resolveSlug(in.Slug, in.Name)
	if err != nil {
		return nil, err
	}

	var author *domain.Author
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if author, err = s.mustGet(txCtx, id); err != nil {
			return err
		}

		if authorSlug != author.Slug {
			if err := claimSlug(txCtx, s.slugs, domain.EntityAuthor, authorSlug, id); err != nil {
				return err
			}
			author.Slug = authorSlug
		}

		applyAuthorInput(author, in)
		return s.authors.Update(txCtx, author)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("author updated", "id", id, "slug", author.Slug)
	s.notifier.Notify(ctx, domain.EntityAuthor, domain.ActionUpdated, id, author.Slug)

	return author.View(), nil
}

// Delete removes an author that no article references.
func (s *AuthorService) Delete(ctx context.Context, id int64) error {
	var author *domain.Author
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if author, err = s.mustGet(txCtx, id); err != nil {
			return err
		}

		count, err := s.articles.CountByAuthor(txCtx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ReferentialConflictError{Entity: domain.EntityAuthor, ID: id, Count: count}
		}

		return s.authors.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("author deleted", "id", id, "slug", author.Slug)
	s.notifier.Notify(ctx, domain.EntityAuthor, domain.ActionDeleted, id, author.Slug)

	return nil
}

func (s *AuthorService) List(ctx context.Context) ([]domain.AuthorView, error) {
	authors, err := s.authors.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]domain.AuthorView, len(authors))
	for i := range authors {
		views[i] = *authors[i].View()
	}
	return views, nil
}

func (s *AuthorService) GetBySlug(ctx context.Context, slug string) (*domain.AuthorView, error) {
	author, err := s.authors.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, domain.NewNotFound(domain.EntityAuthor, slug)
	}
	return author.View(), nil
}

func (s *AuthorService) GetByID(ctx context.Context, id int64) (*domain.AuthorView, error) {
	author, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	return author.View(), nil
}

func (s *AuthorService) mustGet(ctx context.Context, id int64) (*domain.Author, error) {
	author, err := s.authors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, domain.NewNotFound(domain.EntityAuthor, id)
	}
	return author, nil
}

func applyAuthorInput(a *domain.Author, in domain.AuthorInput) {
	a.Name = in.Name
	a.Bio = in.Bio
	a.Email = in.Email
	a.AvatarURL = in.AvatarURL
}
